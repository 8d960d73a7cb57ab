package tenant_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plex-projectplanner/projectplanner/internal/tenant"
)

func newApp(cfg tenant.Config) *fiber.App {
	app := fiber.New()
	app.Use(tenant.New(cfg))
	app.Get("/", func(c *fiber.Ctx) error {
		t := tenant.FromCtx(c)
		if !t.Valid {
			return c.SendString("host")
		}

		return c.SendString(t.UUID.String())
	})

	return app
}

func TestNew(t *testing.T) {
	const id = "3fa85f64-5717-4562-b3fc-2c963f66afa6"

	tests := []struct {
		name       string
		cfg        tenant.Config
		header     string
		value      string
		wantStatus int
		wantBody   string
	}{
		{name: "no header", cfg: tenant.Config{Enabled: true}, wantStatus: fiber.StatusOK, wantBody: "host"},
		{name: "default header", cfg: tenant.Config{Enabled: true}, header: "__tenant", value: id, wantStatus: fiber.StatusOK, wantBody: id},
		{
			name: "custom header", cfg: tenant.Config{Enabled: true, Header: "X-Tenant"},
			header: "X-Tenant", value: id, wantStatus: fiber.StatusOK, wantBody: id,
		},
		{name: "malformed", cfg: tenant.Config{Enabled: true}, header: "__tenant", value: "acme", wantStatus: fiber.StatusBadRequest},
		{
			name: "nil uuid", cfg: tenant.Config{Enabled: true}, header: "__tenant",
			value: "00000000-0000-0000-0000-000000000000", wantStatus: fiber.StatusBadRequest,
		},
		{name: "disabled ignores header", cfg: tenant.Config{}, header: "__tenant", value: id, wantStatus: fiber.StatusOK, wantBody: "host"},
		{name: "disabled ignores garbage", cfg: tenant.Config{}, header: "__tenant", value: "acme", wantStatus: fiber.StatusOK, wantBody: "host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}

			resp, err := newApp(tt.cfg).Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantBody != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}
}
