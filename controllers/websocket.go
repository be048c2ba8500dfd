package controllers

import (
	"thaitour_go/database"
	"thaitour_go/middleware"
	"thaitour_go/models"
	"thaitour_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

// WebSocketController pushes catalog change events to open admin consoles
type WebSocketController struct {
	hub *websocket.Hub
}

func NewWebSocketController(hub *websocket.Hub) *WebSocketController {
	return &WebSocketController{hub: hub}
}

// validateToken checks the JWT the same way the HTTP middleware does
func (wsc *WebSocketController) validateToken(tokenString string) (*models.User, error) {
	claims, err := middleware.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := database.DB.Where("id = ? AND status = ?", claims.UserID, "active").First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Upgrade rejects non websocket requests before the handshake
func (wsc *WebSocketController) Upgrade(c *fiber.Ctx) error {
	if !fiberws.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
			"error": "Use the WebSocket endpoint: ws://<host>/ws?token=YOUR_JWT",
		})
	}
	return c.Next()
}

// WebSocketHandler returns a Fiber WebSocket handler that validates the JWT and joins the hub
func (wsc *WebSocketController) WebSocketHandler() fiber.Handler {
	return fiberws.New(func(c *fiberws.Conn) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("WebSocket handler panic")
			}
		}()

		token := c.Query("token")
		if token == "" {
			logrus.Warn("WebSocket connection rejected: missing token")
			_ = c.WriteMessage(fiberws.CloseMessage, []byte("Missing token"))
			_ = c.Close()
			return
		}

		user, err := wsc.validateToken(token)
		if err != nil {
			logrus.WithError(err).Warn("WebSocket connection rejected: invalid token")
			_ = c.WriteMessage(fiberws.CloseMessage, []byte("Invalid token"))
			_ = c.Close()
			return
		}

		logrus.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("WebSocket connection established")
		wsc.hub.ServeFiberWS(c, user.ID)
	})
}

// GetWebSocketStats returns WebSocket connection statistics (admin only)
func (wsc *WebSocketController) GetWebSocketStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"connected_clients": wsc.hub.GetClientCount(),
		"status":            "active",
	})
}
