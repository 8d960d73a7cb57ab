package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	seen := map[string]bool{}

	for _, length := range []int{MinLen, 8, DefaultLen, 64} {
		for range 50 {
			p, err := Generate(length)
			require.NoError(t, err)
			assert.Len(t, p, length)

			for _, class := range classes {
				assert.True(t, strings.ContainsAny(p, string(class)), "%q misses one of %q", p, class)
			}

			if length >= 8 {
				seen[p] = true
			}
		}
	}

	// collisions among 150 long passwords would mean the generator is broken
	assert.Len(t, seen, 150)
}

func TestGenerateTooShort(t *testing.T) {
	_, err := Generate(MinLen - 1)
	require.ErrorIs(t, err, ErrTooShort)
}

func TestIntn(t *testing.T) {
	counts := make([]int, 3)

	for range 3000 {
		n, err := intn(3)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 3)
		counts[n]++
	}

	for _, c := range counts {
		assert.Greater(t, c, 800)
	}
}
