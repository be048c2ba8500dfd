package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"thaitour_go/config"
	"thaitour_go/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfig(t *testing.T, secret string) {
	t.Helper()
	previous := config.AppConfig
	config.AppConfig = &config.Config{JWTSecret: secret, JWTExpiresIn: time.Hour}
	t.Cleanup(func() { config.AppConfig = previous })
}

func TestGenerateAndParseToken(t *testing.T) {
	withConfig(t, "test-secret")

	user := &models.User{Username: "editor1", Role: models.RoleEditor}
	user.ID = 42

	token, err := GenerateToken(user)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "editor1", claims.Username)
	assert.Equal(t, models.RoleEditor, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)

	config.AppConfig.JWTSecret = "rotated"
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(token)
	})

	cases := map[string]int{
		"":             fiber.StatusUnauthorized,
		"Bearer ":      fiber.StatusUnauthorized,
		"Basic abc":    fiber.StatusUnauthorized,
		"Bearer abc.d": fiber.StatusOK,
	}
	for header, code := range cases {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, code, resp.StatusCode, header)
	}
}

func TestJWTMiddlewareRejectsMissingAndInvalidTokens(t *testing.T) {
	withConfig(t, "test-secret")

	app := fiber.New()
	app.Get("/", JWTMiddleware(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	newApp := func(role string, guard fiber.Handler) *fiber.App {
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error {
			if role != "" {
				c.Locals("claims", &Claims{Role: role})
			}
			return c.Next()
		}, guard, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
		return app
	}

	tests := []struct {
		name  string
		role  string
		guard fiber.Handler
		code  int
	}{
		{"admin passes admin guard", models.RoleAdmin, RequireAdmin(), fiber.StatusOK},
		{"editor blocked from admin guard", models.RoleEditor, RequireAdmin(), fiber.StatusForbidden},
		{"editor passes editor guard", models.RoleEditor, RequireEditorOrAbove(), fiber.StatusOK},
		{"admin passes editor guard", models.RoleAdmin, RequireEditorOrAbove(), fiber.StatusOK},
		{"no claims", "", RequireEditorOrAbove(), fiber.StatusUnauthorized},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			resp, err := newApp(tc.role, tc.guard).Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.code, resp.StatusCode)
		})
	}
}
