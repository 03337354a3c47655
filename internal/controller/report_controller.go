package controller

import (
	"medassist-be/internal/dto"
	"medassist-be/internal/pkg/serverutils"
	"medassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IReportController interface {
	RegisterRoutes(r fiber.Router, limiter *serverutils.RateLimiter)
	Generate(ctx *fiber.Ctx) error
	Download(ctx *fiber.Ctx) error
}

type reportController struct {
	reportService service.IReportService
}

func NewReportController(reportService service.IReportService) IReportController {
	return &reportController{
		reportService: reportService,
	}
}

func (c *reportController) RegisterRoutes(r fiber.Router, limiter *serverutils.RateLimiter) {
	h := r.Group("/report")
	h.Use(serverutils.JwtMiddleware)
	h.Use(limiter.Middleware())
	h.Post("generate", c.Generate)
	h.Get("download/:id", c.Download)
}

func (c *reportController) Generate(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.GenerateReportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reportService.Generate(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Report generated", res))
}

func (c *reportController) Download(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	reportId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid report id"))
	}

	path, fileName, err := c.reportService.Download(ctx.Context(), userId, reportId)
	if err != nil {
		return err
	}

	return ctx.Download(path, fileName)
}
