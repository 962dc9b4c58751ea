package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushire/placement-api/internal/dto"
	"github.com/campushire/placement-api/internal/service"
	"github.com/campushire/placement-api/internal/utils"
)

// PlacementHandler wires placed-roster HTTP routes.
type PlacementHandler struct {
	placements service.PlacementService
	logger     zerolog.Logger
}

// NewPlacementHandler constructs the handler.
func NewPlacementHandler(placements service.PlacementService, logger zerolog.Logger) *PlacementHandler {
	return &PlacementHandler{
		placements: placements,
		logger:     logger.With().Str("component", "placement_handler").Logger(),
	}
}

// Register attaches placement endpoints under the drive group.
func (h *PlacementHandler) Register(router fiber.Router) {
	router.Post("/:id/finalize", h.finalize)
	router.Get("/:id/placed", h.listPlaced)
	router.Patch("/:id/placed/:index", h.updatePlaced)
	router.Delete("/:id/placed/:index", h.removePlaced)
}

func (h *PlacementHandler) finalize(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.placements.Finalize(c.Context(), id, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "placement finalized", result)
}

func (h *PlacementHandler) listPlaced(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	placed, err := h.placements.ListPlaced(c.Context(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "placed students retrieved", placed)
}

func (h *PlacementHandler) updatePlaced(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	index, err := parseIndexParam(c, "index")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var patch dto.PlacedStudentUpdateRequest
	if err := c.BodyParser(&patch); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.placements.UpdatePlaced(c.Context(), id, index, patch, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "placed student updated", record)
}

func (h *PlacementHandler) removePlaced(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	index, err := parseIndexParam(c, "index")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.placements.RemovePlaced(c.Context(), id, index, actorFromContext(c)); err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "placed student removed", nil)
}
