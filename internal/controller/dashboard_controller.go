package controller

import (
	"medassist-be/internal/pkg/serverutils"
	"medassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDashboardController interface {
	RegisterRoutes(r fiber.Router, limiter *serverutils.RateLimiter)
	Stats(ctx *fiber.Ctx) error
}

type dashboardController struct {
	dashboardService service.IDashboardService
}

func NewDashboardController(dashboardService service.IDashboardService) IDashboardController {
	return &dashboardController{
		dashboardService: dashboardService,
	}
}

func (c *dashboardController) RegisterRoutes(r fiber.Router, limiter *serverutils.RateLimiter) {
	h := r.Group("/medical/dashboard")
	h.Use(serverutils.JwtMiddleware)
	h.Use(limiter.Middleware())
	h.Get("stats", c.Stats)
}

func (c *dashboardController) Stats(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.dashboardService.Stats(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Dashboard stats", res))
}
