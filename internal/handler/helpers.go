package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/campushire/placement-api/internal/middleware"
	"github.com/campushire/placement-api/internal/models"
	"github.com/campushire/placement-api/internal/service"
	"github.com/campushire/placement-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	raw := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + key + " parameter")
	}
	return uint(parsed), nil
}

func parseIndexParam(c *fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Params(key))
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return 0, errors.New("invalid " + key + " parameter")
	}
	return parsed, nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// actorFromContext builds the service actor from the identity the JWT
// middleware stored on the request.
func actorFromContext(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			actor.ID = id
		}
	}
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(models.Role); ok {
			actor.Role = role
		} else if raw, ok := v.(string); ok {
			actor.Role = models.NormalizeRole(raw)
		}
	}
	return actor
}

// sendServiceError maps service sentinels onto the API error taxonomy.
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make(map[string]string, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details[fieldErr.Field()] = fieldErr.Tag()
		}
		return utils.SendErrorWithDetails(c, fiber.StatusBadRequest, "validation failed", details)
	}

	switch {
	case errors.Is(err, service.ErrDriveNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrApplicationNotFound),
		errors.Is(err, service.ErrDeletionRequestNotFound),
		errors.Is(err, service.ErrInvalidRoundIndex),
		errors.Is(err, service.ErrInvalidPlacedIndex):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrAlreadyApplied),
		errors.Is(err, service.ErrDriveInactive),
		errors.Is(err, service.ErrDeadlinePassed),
		errors.Is(err, service.ErrDeletionAlreadyPending),
		errors.Is(err, service.ErrDeletionRequestResolved):
		return utils.SendError(c, fiber.StatusConflict, err.Error())

	case errors.Is(err, service.ErrDeadlineUnresolvable),
		errors.Is(err, service.ErrNoSelectionRounds),
		errors.Is(err, service.ErrEmptyFinalRound),
		errors.Is(err, service.ErrNoPlacedResolved):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, service.ErrInvalidRoundStatus),
		errors.Is(err, service.ErrInvalidStatus):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	logger.Error().Err(err).
		Str("correlation_id", middleware.GetCorrelationID(c)).
		Str("path", c.Path()).
		Msg("unhandled service error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
