package health

import (
	"encoding/json"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	var alive atomic.Bool

	app := fiber.New()
	Register(app, alive.Load)

	check := func(wantStatus int, want string) {
		t.Helper()

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, Path, nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, wantStatus, resp.StatusCode)

		var s Status
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
		assert.Equal(t, want, s.Status)
	}

	alive.Store(true)
	check(fiber.StatusOK, "Healthy")

	alive.Store(false)
	check(fiber.StatusServiceUnavailable, "Unhealthy")
}
