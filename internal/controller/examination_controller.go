package controller

import (
	"io"
	"mime/multipart"

	"medassist-be/internal/dto"
	"medassist-be/internal/entity"
	"medassist-be/internal/pkg/serverutils"
	"medassist-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IExaminationController interface {
	RegisterRoutes(r fiber.Router, limiter *serverutils.RateLimiter)
	AnalyzeImage(ctx *fiber.Ctx) error
	ImageHistory(ctx *fiber.Ctx) error
	StartVoice(ctx *fiber.Ctx) error
	UploadVoice(ctx *fiber.Ctx) error
	VoiceHistory(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Retry(ctx *fiber.Ctx) error
}

type examinationController struct {
	examinationService service.IExaminationService
}

func NewExaminationController(examinationService service.IExaminationService) IExaminationController {
	return &examinationController{
		examinationService: examinationService,
	}
}

func (c *examinationController) RegisterRoutes(r fiber.Router, limiter *serverutils.RateLimiter) {
	h := r.Group("/medical")
	h.Use(serverutils.JwtMiddleware)
	h.Use(limiter.Middleware())
	h.Post("image/analyze", c.AnalyzeImage)
	h.Get("image/history", c.ImageHistory)
	h.Post("voice/start", c.StartVoice)
	h.Post("voice/upload/:examId", c.UploadVoice)
	h.Get("voice/history", c.VoiceHistory)
	h.Get("exam/:id", c.Show)
	h.Post("exam/:id/retry", c.Retry)
}

func (c *examinationController) AnalyzeImage(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Image file is required"))
	}

	data, err := readMultipartFile(fileHeader)
	if err != nil {
		return err
	}

	req := dto.ImageAnalyzeRequest{
		ImageType:      ctx.FormValue("image_type"),
		PatientContext: ctx.FormValue("patient_context"),
	}

	res, err := c.examinationService.AnalyzeImage(ctx.Context(), userId, &req, fileHeader.Filename, data)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Image analyzed", res))
}

func (c *examinationController) ImageHistory(ctx *fiber.Ctx) error {
	return c.history(ctx, entity.ExamKindImage)
}

func (c *examinationController) VoiceHistory(ctx *fiber.Ctx) error {
	return c.history(ctx, entity.ExamKindVoice)
}

func (c *examinationController) history(ctx *fiber.Ctx, kind entity.ExamKind) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	page := ctx.QueryInt("page", 1)
	limit := ctx.QueryInt("limit", 10)

	res, err := c.examinationService.History(ctx.Context(), userId, kind, page, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Examination history", res))
}

func (c *examinationController) StartVoice(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.VoiceStartRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	res, err := c.examinationService.StartVoice(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Voice examination started", res))
}

func (c *examinationController) UploadVoice(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	examId, err := uuid.Parse(ctx.Params("examId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid examination id"))
	}

	fileHeader, err := ctx.FormFile("audio")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Audio file is required"))
	}

	data, err := readMultipartFile(fileHeader)
	if err != nil {
		return err
	}

	res, err := c.examinationService.UploadVoice(ctx.Context(), userId, examId, fileHeader.Filename, data)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Voice examination analyzed", res))
}

func (c *examinationController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	examId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid examination id"))
	}

	res, err := c.examinationService.Show(ctx.Context(), userId, examId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Examination details", res))
}

func (c *examinationController) Retry(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	examId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid examination id"))
	}

	res, err := c.examinationService.Retry(ctx.Context(), userId, examId)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Enrichment queued", res))
}

func readMultipartFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
