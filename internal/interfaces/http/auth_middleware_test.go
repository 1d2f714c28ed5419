package http_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dariomv/puntoventa-api/internal/domain/entity"
	apihttp "github.com/dariomv/puntoventa-api/internal/interfaces/http"
	"github.com/dariomv/puntoventa-api/pkg/jwt"
)

const testSecret = "secreto-de-test"

func newProtectedApp(roles ...string) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{apihttp.AuthMiddleware(testSecret)}
	if len(roles) > 0 {
		handlers = append(handlers, apihttp.RequireRole(roles...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":          apihttp.GetUserID(c),
			"establishment_id": apihttp.GetEstablishmentID(c),
			"role":             apihttp.GetRole(c),
		})
	})
	app.Get("/protegido", handlers...)
	return app
}

func signToken(t *testing.T, secret, role string) string {
	t.Helper()
	token, err := jwt.Generate(secret, "user-1", "est-1", role, "puntoventa", 15)
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware_TokenValido(t *testing.T) {
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, entity.RoleVendedor))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "est-1", "el establecimiento del token llega al handler")
}

func TestAuthMiddleware_SinHeader(t *testing.T) {
	app := newProtectedApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/protegido", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	app := newProtectedApp()

	for _, header := range []string{"Basic abc123", "Bearer", "Bearer "} {
		req := httptest.NewRequest("GET", "/protegido", nil)
		req.Header.Set("Authorization", header)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "header %q", header)
	}
}

func TestAuthMiddleware_FirmaIncorrecta(t *testing.T) {
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "otro-secreto", entity.RoleAdmin))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

// Las escrituras de traslados están restringidas a admin y encargado; un
// vendedor autenticado recibe 403, no 401.
func TestRequireRole(t *testing.T) {
	app := newProtectedApp(entity.RoleAdmin, entity.RoleEncargado)

	cases := []struct {
		role string
		want int
	}{
		{entity.RoleAdmin, fiber.StatusOK},
		{entity.RoleEncargado, fiber.StatusOK},
		{entity.RoleVendedor, fiber.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/protegido", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, tc.role))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, "rol %s", tc.role)
	}
}
