// Package password generates random passwords for seeded accounts.
package password

import (
	"crypto/rand"

	"github.com/pkg/errors"
)

// MinLen is the shortest password Generate accepts, one character per class.
const MinLen = 4

// DefaultLen is used for the generated administrator password.
const DefaultLen = 20

// character classes, every generated password contains at least one of each
var classes = [][]byte{ //nolint:gochecknoglobals
	[]byte("ABCDEFGHJKLMNPQRSTUVWXYZ"),
	[]byte("abcdefghijkmnopqrstuvwxyz"),
	[]byte("23456789"),
	[]byte("*!#$%&+-=?@"),
}

// ErrTooShort is returned for lengths below MinLen.
var ErrTooShort = errors.New("password length is too short")

// Generate returns a random password of length characters with at least one
// upper case letter, lower case letter, digit and symbol.
func Generate(length int) (string, error) {
	if length < MinLen {
		return "", ErrTooShort
	}

	var all []byte
	for _, c := range classes {
		all = append(all, c...)
	}

	out := make([]byte, length)

	for i := range out {
		chars := all
		if i < len(classes) {
			chars = classes[i]
		}

		b, err := pick(chars)
		if err != nil {
			return "", err
		}

		out[i] = b
	}

	// move the fixed class characters to random positions
	for i := len(out) - 1; i > 0; i-- {
		j, err := intn(i + 1)
		if err != nil {
			return "", err
		}

		out[i], out[j] = out[j], out[i]
	}

	return string(out), nil
}

func pick(chars []byte) (byte, error) {
	i, err := intn(len(chars))
	if err != nil {
		return 0, err
	}

	return chars[i], nil
}

// intn returns a uniform random number in [0, n) for n <= 256.
// Bytes above the largest multiple of n are rejected to avoid modulo bias.
func intn(n int) (int, error) {
	limit := 256 - (256 % n) //nolint:mnd
	buf := make([]byte, 1)

	for {
		if _, err := rand.Read(buf); err != nil {
			return 0, errors.Wrap(err, "error reading random bytes")
		}

		if int(buf[0]) < limit {
			return int(buf[0]) % n, nil
		}
	}
}
