package controller

import (
	"fin-query-be/internal/dto"
	"fin-query-be/internal/pkg/serverutils"
	"fin-query-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IEvidenceController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type evidenceController struct {
	evidenceService service.IEvidenceService
}

func NewEvidenceController(evidenceService service.IEvidenceService) IEvidenceController {
	return &evidenceController{
		evidenceService: evidenceService,
	}
}

func (c *evidenceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/evidence/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Ingest)
	h.Get("", c.List)
	h.Delete(":id", c.Delete)
}

func (c *evidenceController) Ingest(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.IngestEvidenceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.evidenceService.Ingest(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Success ingest evidence", res))
}

func (c *evidenceController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.evidenceService.List(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list evidence", res))
}

func (c *evidenceController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	documentId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid document id")
	}

	if err := c.evidenceService.Delete(ctx.Context(), userId, documentId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete evidence", nil))
}
