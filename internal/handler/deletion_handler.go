package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushire/placement-api/internal/dto"
	"github.com/campushire/placement-api/internal/service"
	"github.com/campushire/placement-api/internal/utils"
)

// DeletionHandler wires deletion-request HTTP routes.
type DeletionHandler struct {
	deletions service.DeletionService
	logger    zerolog.Logger
}

// NewDeletionHandler constructs the handler.
func NewDeletionHandler(deletions service.DeletionService, logger zerolog.Logger) *DeletionHandler {
	return &DeletionHandler{
		deletions: deletions,
		logger:    logger.With().Str("component", "deletion_handler").Logger(),
	}
}

// RegisterDriveRoutes attaches the request endpoint under the drive group.
func (h *DeletionHandler) RegisterDriveRoutes(router fiber.Router) {
	router.Post("/:id/deletion-requests", h.request)
}

// Register attaches review/listing endpoints.
func (h *DeletionHandler) Register(router fiber.Router) {
	router.Get("/pending", h.listPending)
	router.Get("/mine", h.listMine)
	router.Patch("/:id/review", h.review)
}

func (h *DeletionHandler) request(c *fiber.Ctx) error {
	driveID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.DeletionRequestCreate
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	request, err := h.deletions.Request(c.Context(), driveID, payload, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "deletion request recorded", request)
}

func (h *DeletionHandler) review(c *fiber.Ctx) error {
	requestID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.DeletionReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	request, err := h.deletions.Review(c.Context(), requestID, payload, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "deletion request reviewed", request)
}

func (h *DeletionHandler) listPending(c *fiber.Ctx) error {
	requests, err := h.deletions.ListPending(c.Context(), actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "pending deletion requests retrieved", requests)
}

func (h *DeletionHandler) listMine(c *fiber.Ctx) error {
	requests, err := h.deletions.ListMine(c.Context(), actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "deletion requests retrieved", requests)
}
