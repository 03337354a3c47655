package controller

import (
	"medassist-be/internal/pkg/logger"
	"medassist-be/internal/pkg/serverutils"
	internalWS "medassist-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IWsController interface {
	RegisterRoutes(r fiber.Router)
	ServeWs(ctx *fiber.Ctx) error
}

type wsController struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewWsController(hub *internalWS.Hub, log logger.ILogger) IWsController {
	return &wsController{
		hub:    hub,
		logger: log,
	}
}

func (c *wsController) RegisterRoutes(r fiber.Router) {
	r.Get("/ws", serverutils.JwtMiddleware, c.ServeWs)
}

func (c *wsController) ServeWs(ctx *fiber.Ctx) error {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Unauthorized"))
	}

	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			c.logger.Info("WsController", "WebSocket session started", map[string]interface{}{"user_id": userId})
			internalWS.ServeWs(c.hub, conn, userId)
			c.logger.Info("WsController", "WebSocket session ended", map[string]interface{}{"user_id": userId})
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}
