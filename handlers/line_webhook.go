package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"

	"thaitour_go/services"

	"github.com/gofiber/fiber/v2"
	"github.com/line/line-bot-sdk-go/linebot"
	"github.com/sirupsen/logrus"
)

const replyTimeout = 10 * time.Second

type LineWebhookHandler struct {
	Secret    string
	Messaging *services.LineMessagingService
}

func NewLineWebhookHandler(secret string, messaging *services.LineMessagingService) *LineWebhookHandler {
	return &LineWebhookHandler{Secret: secret, Messaging: messaging}
}

// Handle acknowledges the webhook at once and answers text messages in the background.
func (h *LineWebhookHandler) Handle(c *fiber.Ctx) error {
	if h.Messaging == nil || !h.Messaging.Enabled() {
		logrus.Debug("LINE webhook received but messaging is disabled")
		return c.SendStatus(fiber.StatusOK)
	}

	signature := c.Get("X-Line-Signature")
	if signature == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	body := append([]byte(nil), c.Body()...)
	if !validateSignature(h.Secret, body, signature) {
		logrus.WithField("ip", c.IP()).Warn("LINE webhook signature mismatch")
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	// LINE verifies the endpoint by expecting a fast 200.
	go h.process(body)

	return c.SendStatus(fiber.StatusOK)
}

func (h *LineWebhookHandler) process(body []byte) {
	var webhook struct {
		Events []*linebot.Event `json:"events"`
	}
	if err := json.Unmarshal(body, &webhook); err != nil {
		logrus.WithError(err).Error("Failed to parse LINE webhook body")
		return
	}

	for _, event := range webhook.Events {
		if event.Type != linebot.EventTypeMessage || event.ReplyToken == "" {
			continue
		}
		message, ok := event.Message.(*linebot.TextMessage)
		if !ok {
			continue
		}
		h.answer(event.ReplyToken, message.Text)
	}
}

func (h *LineWebhookHandler) answer(replyToken, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	reply, err := h.Messaging.AnswerText(ctx, text)
	if err != nil {
		logrus.WithError(err).WithField("text", text).Error("Failed to build LINE reply")
		return
	}
	if err := h.Messaging.Reply(replyToken, reply); err != nil {
		logrus.WithError(err).Error("Failed to send LINE reply")
	}
}

// validateSignature checks the base64 HMAC-SHA256 of body against the header value.
func validateSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
