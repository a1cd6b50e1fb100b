package serverutils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"noteshare-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type stubResolver struct {
	user *entity.User
}

func (r *stubResolver) Authenticate(ctx context.Context, header string) (*entity.User, error) {
	if header == "Bearer good" {
		return r.user, nil
	}
	return nil, errors.New("token expired")
}

func newAuthTestApp(t *testing.T) (*fiber.App, *entity.User) {
	t.Helper()
	user := &entity.User{Id: uuid.New(), Email: "alice@example.com"}
	resolver := &stubResolver{user: user}

	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(nopLogger{}))

	app.Get("/protected", RequireAuth(resolver, nopLogger{}), func(ctx *fiber.Ctx) error {
		caller := CurrentUser(ctx)
		return ctx.JSON(fiber.Map{"email": caller.Email})
	})
	app.Get("/open", OptionalAuth(resolver, nopLogger{}), func(ctx *fiber.Ctx) error {
		if caller := CurrentUser(ctx); caller != nil {
			return ctx.JSON(fiber.Map{"email": caller.Email})
		}
		return ctx.JSON(fiber.Map{"email": nil})
	})

	return app, user
}

func doRequest(t *testing.T, app *fiber.App, path, authorization string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRequireAuth(t *testing.T) {
	app, user := newAuthTestApp(t)

	t.Run("valid token reaches the handler with identity set", func(t *testing.T) {
		resp := doRequest(t, app, "/protected", "Bearer good")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, user.Email, decodeBody(t, resp)["email"])
	})

	t.Run("missing and invalid tokens get the same generic 401", func(t *testing.T) {
		missing := doRequest(t, app, "/protected", "")
		invalid := doRequest(t, app, "/protected", "Bearer bad")

		assert.Equal(t, http.StatusUnauthorized, missing.StatusCode)
		assert.Equal(t, http.StatusUnauthorized, invalid.StatusCode)

		missingBody := decodeBody(t, missing)
		invalidBody := decodeBody(t, invalid)
		assert.Equal(t, missingBody["message"], invalidBody["message"])
		// The stage-specific reason never leaks.
		assert.NotContains(t, invalidBody["message"], "expired")
	})
}

func TestOptionalAuth(t *testing.T) {
	app, user := newAuthTestApp(t)

	t.Run("no header means anonymous", func(t *testing.T) {
		resp := doRequest(t, app, "/open", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Nil(t, decodeBody(t, resp)["email"])
	})

	t.Run("valid token sets identity", func(t *testing.T) {
		resp := doRequest(t, app, "/open", "Bearer good")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, user.Email, decodeBody(t, resp)["email"])
	})

	t.Run("present but invalid token is still rejected", func(t *testing.T) {
		resp := doRequest(t, app, "/open", "Bearer bad")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
