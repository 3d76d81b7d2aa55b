package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investflow/investflow/app/models"
)

func newProtectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/admin", RequireAuth, RequireAdmin, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals(KeyUserID),
			"role":    c.Locals(KeyUserRole),
		})
	})
	return app
}

func adminRequest(t *testing.T, app *fiber.App, authorization string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestRequireAuthMissingHeader(t *testing.T) {
	resp := adminRequest(t, newProtectedApp(), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuthMalformedToken(t *testing.T) {
	resp := adminRequest(t, newProtectedApp(), "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuthWrongScheme(t *testing.T) {
	token, err := IssueToken(&models.User{ID: 1, Role: models.ROLE_ADMIN})
	require.NoError(t, err)

	resp := adminRequest(t, newProtectedApp(), "Basic "+token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAdminRejectsInvestor(t *testing.T) {
	token, err := IssueToken(&models.User{ID: 2, Role: models.ROLE_INVESTOR})
	require.NoError(t, err)

	resp := adminRequest(t, newProtectedApp(), "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequireAdminAcceptsAdmin(t *testing.T) {
	token, err := IssueToken(&models.User{ID: 1, Role: models.ROLE_ADMIN})
	require.NoError(t, err)

	resp := adminRequest(t, newProtectedApp(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
