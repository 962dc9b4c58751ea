package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campushire/placement-api/internal/dto"
	"github.com/campushire/placement-api/internal/models"
)

func seedDriveWithRounds(t *testing.T, env *testEnv, creatorID uint, rounds []models.SelectionRound) models.JobDrive {
	t.Helper()
	drive := models.JobDrive{IsActive: true, CreatedByID: creatorID}
	drive.SetRounds(rounds)
	return seedDrive(t, env.db, drive)
}

func TestSetRoundStatus(t *testing.T) {
	env := newTestEnv(t)
	officer := seedUser(t, env.db, models.User{Name: "PO", Email: "po@campus.edu", Role: models.RoleOfficer})
	drive := seedDriveWithRounds(t, env, officer.ID, []models.SelectionRound{
		{Name: "Aptitude Test", Status: models.RoundStatusPending},
		{Name: "HR Interview", Status: models.RoundStatusPending},
	})
	svc := env.roundService()
	actor := Actor{ID: officer.ID, Role: models.RoleOfficer}

	updated, err := svc.SetStatus(context.Background(), drive.ID, 1, models.RoundStatusInProgress, actor)
	require.NoError(t, err)
	require.Equal(t, models.RoundStatusInProgress, updated.Status)

	stored, err := env.drives.GetByID(context.Background(), drive.ID)
	require.NoError(t, err)
	rounds := stored.Rounds()
	require.Equal(t, models.RoundStatusPending, rounds[0].Status)
	require.Equal(t, models.RoundStatusInProgress, rounds[1].Status)
}

func TestSetRoundStatusRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)
	officer := seedUser(t, env.db, models.User{Name: "PO", Email: "po@campus.edu", Role: models.RoleOfficer})
	drive := seedDriveWithRounds(t, env, officer.ID, []models.SelectionRound{{Name: "Aptitude Test"}})
	svc := env.roundService()

	_, err := svc.SetStatus(context.Background(), drive.ID, 0, "done", Actor{ID: officer.ID, Role: models.RoleOfficer})
	require.ErrorIs(t, err, ErrInvalidRoundStatus)
}

func TestSetRoundStatusRejectsOutOfRangeIndex(t *testing.T) {
	env := newTestEnv(t)
	officer := seedUser(t, env.db, models.User{Name: "PO", Email: "po@campus.edu", Role: models.RoleOfficer})
	drive := seedDriveWithRounds(t, env, officer.ID, []models.SelectionRound{{Name: "Aptitude Test"}})
	svc := env.roundService()
	actor := Actor{ID: officer.ID, Role: models.RoleOfficer}

	_, err := svc.SetStatus(context.Background(), drive.ID, 1, models.RoundStatusCompleted, actor)
	require.ErrorIs(t, err, ErrInvalidRoundIndex)
}

// A later selection replaces the earlier one wholesale; it never unions.
func TestSelectStudentsReplacesWholesale(t *testing.T) {
	env := newTestEnv(t)
	officer := seedUser(t, env.db, models.User{Name: "PO", Email: "po@campus.edu", Role: models.RoleOfficer})
	drive := seedDriveWithRounds(t, env, officer.ID, []models.SelectionRound{{Name: "Aptitude Test"}})
	svc := env.roundService()
	actor := Actor{ID: officer.ID, Role: models.RoleOfficer}

	first, err := svc.SelectStudents(context.Background(), drive.ID, 0, []uint{1, 2, 3}, actor)
	require.NoError(t, err)
	require.Equal(t, []uint{1, 2, 3}, first.SelectedStudents)

	second, err := svc.SelectStudents(context.Background(), drive.ID, 0, []uint{7, 8}, actor)
	require.NoError(t, err)
	require.Equal(t, []uint{7, 8}, second.SelectedStudents)

	stored, err := env.drives.GetByID(context.Background(), drive.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{7, 8}, stored.Rounds()[0].SelectedStudents)
}

func TestSelectStudentsNilClearsSelection(t *testing.T) {
	env := newTestEnv(t)
	officer := seedUser(t, env.db, models.User{Name: "PO", Email: "po@campus.edu", Role: models.RoleOfficer})
	drive := seedDriveWithRounds(t, env, officer.ID, []models.SelectionRound{
		{Name: "Aptitude Test", SelectedStudents: []uint{1, 2}},
	})
	svc := env.roundService()

	cleared, err := svc.SelectStudents(context.Background(), drive.ID, 0, nil, Actor{ID: officer.ID, Role: models.RoleOfficer})
	require.NoError(t, err)
	require.Empty(t, cleared.SelectedStudents)
}

func TestReplaceRoundsPreservesSelectionsByIndex(t *testing.T) {
	env := newTestEnv(t)
	officer := seedUser(t, env.db, models.User{Name: "PO", Email: "po@campus.edu", Role: models.RoleOfficer})
	drive := seedDriveWithRounds(t, env, officer.ID, []models.SelectionRound{
		{Name: "Aptitude Test", Status: models.RoundStatusCompleted, SelectedStudents: []uint{4, 5}},
	})
	svc := env.roundService()

	payloads := []dto.RoundPayload{
		{Name: "Aptitude Test", Status: models.RoundStatusCompleted},
		{Name: "Technical Interview"},
	}
	rounds, err := svc.ReplaceRounds(context.Background(), drive.ID, payloads, Actor{ID: officer.ID, Role: models.RoleOfficer})
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	require.Equal(t, []uint{4, 5}, rounds[0].SelectedStudents)
	require.Equal(t, models.RoundStatusPending, rounds[1].Status)
	require.Empty(t, rounds[1].SelectedStudents)
}

func TestRoundOperationsRequireManagementRights(t *testing.T) {
	env := newTestEnv(t)
	creator := seedUser(t, env.db, models.User{Name: "Creator", Email: "creator@campus.edu", Role: models.RoleRepresentative, Department: "CSE"})
	student := seedUser(t, env.db, models.User{Name: "Asha", Email: "asha@campus.edu"})
	drive := seedDriveWithRounds(t, env, creator.ID, []models.SelectionRound{{Name: "Aptitude Test"}})
	svc := env.roundService()

	_, err := svc.SetStatus(context.Background(), drive.ID, 0, models.RoundStatusCompleted, Actor{ID: student.ID, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.SelectStudents(context.Background(), drive.ID, 0, []uint{1}, Actor{ID: student.ID, Role: models.RoleStudent})
	require.ErrorIs(t, err, ErrForbidden)
}
