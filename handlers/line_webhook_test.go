package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http/httptest"
	"strings"
	"testing"

	"thaitour_go/services"

	"github.com/gofiber/fiber/v2"
	"github.com/line/line-bot-sdk-go/linebot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestValidateSignature(t *testing.T) {
	body := `{"events":[]}`
	assert.True(t, validateSignature("secret", []byte(body), sign("secret", body)))
	assert.False(t, validateSignature("secret", []byte(body), sign("other", body)))
	assert.False(t, validateSignature("secret", []byte(body+" "), sign("secret", body)))
}

func newWebhookApp(t *testing.T, h *LineWebhookHandler) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Post("/line/webhook", h.Handle)
	return app
}

func TestWebhookDisabledReturnsOK(t *testing.T) {
	app := newWebhookApp(t, NewLineWebhookHandler("secret", &services.LineMessagingService{}))
	req := httptest.NewRequest("POST", "/line/webhook", strings.NewReader(`{"events":[]}`))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	bot, err := linebot.New("secret", "token")
	require.NoError(t, err)
	app := newWebhookApp(t, NewLineWebhookHandler("secret", &services.LineMessagingService{Bot: bot}))

	body := `{"events":[]}`

	req := httptest.NewRequest("POST", "/line/webhook", strings.NewReader(body))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest("POST", "/line/webhook", strings.NewReader(body))
	req.Header.Set("X-Line-Signature", sign("wrong", body))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("POST", "/line/webhook", strings.NewReader(body))
	req.Header.Set("X-Line-Signature", sign("secret", body))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
