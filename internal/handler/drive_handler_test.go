package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/campushire/placement-api/internal/dto"
	"github.com/campushire/placement-api/internal/models"
	"github.com/campushire/placement-api/internal/repository"
	"github.com/campushire/placement-api/internal/service"
)

// stubDriveService lets each test pin the behavior of single methods.
type stubDriveService struct {
	createFn       func(context.Context, dto.DriveCreateRequest, service.Actor) (dto.DriveResponse, error)
	getFn          func(context.Context, uint) (dto.DriveResponse, error)
	applyFn        func(context.Context, uint, service.Actor) (dto.ApplicationResponse, error)
	listEligibleFn func(context.Context, service.Actor) ([]dto.DriveResponse, error)
	lastActor      service.Actor
}

func (s *stubDriveService) Create(ctx context.Context, payload dto.DriveCreateRequest, actor service.Actor) (dto.DriveResponse, error) {
	s.lastActor = actor
	if s.createFn != nil {
		return s.createFn(ctx, payload, actor)
	}
	return dto.DriveResponse{}, nil
}

func (s *stubDriveService) List(context.Context, repository.DriveFilter) (dto.DriveListResponse, error) {
	return dto.DriveListResponse{Items: []dto.DriveResponse{}}, nil
}

func (s *stubDriveService) Get(ctx context.Context, id uint) (dto.DriveResponse, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return dto.DriveResponse{ID: id}, nil
}

func (s *stubDriveService) ListEligible(ctx context.Context, actor service.Actor) ([]dto.DriveResponse, error) {
	s.lastActor = actor
	if s.listEligibleFn != nil {
		return s.listEligibleFn(ctx, actor)
	}
	return []dto.DriveResponse{}, nil
}

func (s *stubDriveService) CheckEligibility(context.Context, uint, service.Actor) ([]string, error) {
	return []string{}, nil
}

func (s *stubDriveService) Apply(ctx context.Context, driveID uint, actor service.Actor) (dto.ApplicationResponse, error) {
	s.lastActor = actor
	if s.applyFn != nil {
		return s.applyFn(ctx, driveID, actor)
	}
	return dto.ApplicationResponse{JobDriveID: driveID}, nil
}

func (s *stubDriveService) Update(context.Context, uint, dto.DriveUpdateRequest, service.Actor) (dto.DriveResponse, error) {
	return dto.DriveResponse{}, nil
}

func (s *stubDriveService) ListApplications(context.Context, uint, service.Actor) ([]dto.ApplicationResponse, error) {
	return []dto.ApplicationResponse{}, nil
}

func (s *stubDriveService) ListMyApplications(context.Context, service.Actor) ([]dto.MyApplicationResponse, error) {
	return []dto.MyApplicationResponse{}, nil
}

func (s *stubDriveService) UpdateApplicationStatus(context.Context, uint, uint, string, service.Actor) (dto.ApplicationResponse, error) {
	return dto.ApplicationResponse{}, nil
}

type stubRoundService struct {
	setStatusFn func(context.Context, uint, int, string, service.Actor) (dto.RoundResponse, error)
}

func (s *stubRoundService) SetStatus(ctx context.Context, driveID uint, index int, status string, actor service.Actor) (dto.RoundResponse, error) {
	if s.setStatusFn != nil {
		return s.setStatusFn(ctx, driveID, index, status, actor)
	}
	return dto.RoundResponse{Index: index, Status: status}, nil
}

func (s *stubRoundService) SelectStudents(context.Context, uint, int, []uint, service.Actor) (dto.RoundResponse, error) {
	return dto.RoundResponse{}, nil
}

func (s *stubRoundService) ReplaceRounds(context.Context, uint, []dto.RoundPayload, service.Actor) ([]dto.RoundResponse, error) {
	return []dto.RoundResponse{}, nil
}

func newDriveApp(drives service.DriveService, rounds service.RoundService, actor service.Actor) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", actor.ID)
		c.Locals("user_role", actor.Role)
		return c.Next()
	})
	handler := NewDriveHandler(drives, rounds, zerolog.Nop())
	handler.Register(app.Group("/drives"))
	return app
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	return req
}

func TestApplyRouteBuildsActorFromLocals(t *testing.T) {
	drives := &stubDriveService{}
	app := newDriveApp(drives, &stubRoundService{}, service.Actor{ID: 42, Role: models.RoleStudent})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/drives/7/apply", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.Equal(t, uint(42), drives.lastActor.ID)
	require.Equal(t, models.RoleStudent, drives.lastActor.Role)
}

func TestApplyRouteRejectsBadDriveID(t *testing.T) {
	app := newDriveApp(&stubDriveService{}, &stubRoundService{}, service.Actor{ID: 1, Role: models.RoleStudent})

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/drives/abc/apply", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", service.ErrDriveNotFound, fiber.StatusNotFound},
		{"forbidden", service.ErrForbidden, fiber.StatusForbidden},
		{"duplicate", service.ErrAlreadyApplied, fiber.StatusConflict},
		{"deadline passed", service.ErrDeadlinePassed, fiber.StatusConflict},
		{"inactive", service.ErrDriveInactive, fiber.StatusConflict},
		{"unresolvable deadline", service.ErrDeadlineUnresolvable, fiber.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			drives := &stubDriveService{
				applyFn: func(context.Context, uint, service.Actor) (dto.ApplicationResponse, error) {
					return dto.ApplicationResponse{}, tc.err
				},
			}
			app := newDriveApp(drives, &stubRoundService{}, service.Actor{ID: 1, Role: models.RoleStudent})

			resp, err := app.Test(jsonRequest(t, http.MethodPost, "/drives/7/apply", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestSetRoundStatusRoutePassesPayload(t *testing.T) {
	var gotStatus string
	var gotIndex int
	rounds := &stubRoundService{
		setStatusFn: func(_ context.Context, _ uint, index int, status string, _ service.Actor) (dto.RoundResponse, error) {
			gotIndex = index
			gotStatus = status
			return dto.RoundResponse{Index: index, Status: status}, nil
		},
	}
	app := newDriveApp(&stubDriveService{}, rounds, service.Actor{ID: 1, Role: models.RoleOfficer})

	body := dto.RoundStatusRequest{Status: models.RoundStatusCompleted}
	resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/drives/7/rounds/2/status", body))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 2, gotIndex)
	require.Equal(t, models.RoundStatusCompleted, gotStatus)
}

func TestRoundIndexErrorsMapToNotFound(t *testing.T) {
	rounds := &stubRoundService{
		setStatusFn: func(context.Context, uint, int, string, service.Actor) (dto.RoundResponse, error) {
			return dto.RoundResponse{}, service.ErrInvalidRoundIndex
		},
	}
	app := newDriveApp(&stubDriveService{}, rounds, service.Actor{ID: 1, Role: models.RoleOfficer})

	body := dto.RoundStatusRequest{Status: models.RoundStatusCompleted}
	resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/drives/7/rounds/9/status", body))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateRouteReturnsCreated(t *testing.T) {
	drives := &stubDriveService{
		createFn: func(_ context.Context, payload dto.DriveCreateRequest, _ service.Actor) (dto.DriveResponse, error) {
			return dto.DriveResponse{ID: 1, CompanyName: payload.CompanyName}, nil
		},
	}
	app := newDriveApp(drives, &stubRoundService{}, service.Actor{ID: 1, Role: models.RoleOfficer})

	body := dto.DriveCreateRequest{CompanyName: "Acme Corp", Role: "SDE", Description: "Campus drive for 2026", DriveDate: "2026-03-10"}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/drives", body))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload struct {
		Success bool              `json:"success"`
		Data    dto.DriveResponse `json:"data"`
	}
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.True(t, payload.Success)
	require.Equal(t, "Acme Corp", payload.Data.CompanyName)
}
