package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushire/placement-api/internal/dto"
	"github.com/campushire/placement-api/internal/repository"
	"github.com/campushire/placement-api/internal/service"
	"github.com/campushire/placement-api/internal/utils"
)

// DriveHandler wires job-drive HTTP routes.
type DriveHandler struct {
	drives service.DriveService
	rounds service.RoundService
	logger zerolog.Logger
}

// NewDriveHandler constructs the handler.
func NewDriveHandler(drives service.DriveService, rounds service.RoundService, logger zerolog.Logger) *DriveHandler {
	return &DriveHandler{
		drives: drives,
		rounds: rounds,
		logger: logger.With().Str("component", "drive_handler").Logger(),
	}
}

// Register attaches drive endpoints to the router group.
func (h *DriveHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/eligible", h.listEligible)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Get("/:id/eligibility", h.checkEligibility)
	router.Post("/:id/apply", h.apply)
	router.Get("/:id/applications", h.listApplications)
	router.Patch("/:id/applications/:applicationID/status", h.updateApplicationStatus)
	router.Put("/:id/rounds", h.replaceRounds)
	router.Patch("/:id/rounds/:index/status", h.setRoundStatus)
	router.Put("/:id/rounds/:index/students", h.selectStudents)
}

// RegisterApplicationRoutes attaches applicant-facing application endpoints.
func (h *DriveHandler) RegisterApplicationRoutes(router fiber.Router) {
	router.Get("/mine", h.listMyApplications)
}

func (h *DriveHandler) listMyApplications(c *fiber.Ctx) error {
	applications, err := h.drives.ListMyApplications(c.Context(), actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "applications retrieved", applications)
}

func (h *DriveHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page parameter")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size parameter")
	}

	filter := repository.DriveFilter{
		Search:   c.Query("search"),
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	}

	listing, err := h.drives.List(c.Context(), filter)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "drives retrieved", listing)
}

func (h *DriveHandler) listEligible(c *fiber.Ctx) error {
	drives, err := h.drives.ListEligible(c.Context(), actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "eligible drives retrieved", drives)
}

func (h *DriveHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	drive, err := h.drives.Get(c.Context(), id)
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "drive retrieved", drive)
}

func (h *DriveHandler) create(c *fiber.Ctx) error {
	var payload dto.DriveCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	drive, err := h.drives.Create(c.Context(), payload, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "drive created", drive)
}

func (h *DriveHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var patch dto.DriveUpdateRequest
	if err := c.BodyParser(&patch); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	drive, err := h.drives.Update(c.Context(), id, patch, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "drive updated", drive)
}

func (h *DriveHandler) checkEligibility(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	reasons, err := h.drives.CheckEligibility(c.Context(), id, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "eligibility evaluated", fiber.Map{
		"eligible": len(reasons) == 0,
		"reasons":  reasons,
	})
}

func (h *DriveHandler) apply(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	application, err := h.drives.Apply(c.Context(), id, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "application submitted", application)
}

func (h *DriveHandler) listApplications(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	applications, err := h.drives.ListApplications(c.Context(), id, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "applications retrieved", applications)
}

func (h *DriveHandler) updateApplicationStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	applicationID, err := parseUintParam(c, "applicationID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ApplicationStatusUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	application, err := h.drives.UpdateApplicationStatus(c.Context(), id, applicationID, payload.Status, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "application status updated", application)
}

func (h *DriveHandler) replaceRounds(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RoundsReplaceRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	rounds, err := h.rounds.ReplaceRounds(c.Context(), id, payload.Rounds, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "selection rounds replaced", rounds)
}

func (h *DriveHandler) setRoundStatus(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	index, err := parseIndexParam(c, "index")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RoundStatusRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	round, err := h.rounds.SetStatus(c.Context(), id, index, payload.Status, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "round status updated", round)
}

func (h *DriveHandler) selectStudents(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	index, err := parseIndexParam(c, "index")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.RoundSelectionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	round, err := h.rounds.SelectStudents(c.Context(), id, index, payload.StudentIDs, actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "round selection updated", round)
}
