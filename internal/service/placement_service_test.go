package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campushire/placement-api/internal/dto"
	"github.com/campushire/placement-api/internal/events"
	"github.com/campushire/placement-api/internal/models"
)

// finalizableDrive seeds a drive with applicants and a completed final round
// selecting them.
func finalizableDrive(t *testing.T, env *testEnv, officerID uint, applicants ...models.User) models.JobDrive {
	t.Helper()

	drive := seedDrive(t, env.db, models.JobDrive{IsActive: true, CreatedByID: officerID})
	selected := make([]uint, 0, len(applicants))
	for _, applicant := range applicants {
		application := models.Application{
			JobDriveID:  drive.ID,
			ApplicantID: applicant.ID,
			AppliedAt:   drive.CreatedAt,
			Status:      models.ApplicationStatusApplied,
		}
		require.NoError(t, env.db.Create(&application).Error)
		selected = append(selected, applicant.ID)
	}

	drive.SetRounds([]models.SelectionRound{
		{Name: "Aptitude Test", Status: models.RoundStatusCompleted},
		{Name: "HR Interview", Status: models.RoundStatusCompleted, SelectedStudents: selected},
	})
	require.NoError(t, env.db.Save(&drive).Error)
	return drive
}

func TestFinalizeRequiresRounds(t *testing.T) {
	env := newTestEnv(t)
	officer := seedUser(t, env.db, models.User{Name: "PO", Email: "po@campus.edu", Role: models.RoleOfficer})
	drive := seedDrive(t, env.db, models.JobDrive{IsActive: true, CreatedByID: officer.ID})
	svc := env.placementService()

	_, err := svc.Finalize(context.Background(), drive.ID, Actor{ID: officer.ID, Role: models.RoleOfficer})
	require.ErrorIs(t, err, ErrNoSelectionRounds)
}

func TestFinalizeRequiresNonEmptyFinalRound(t *testing.T) {
	env := newTestEnv(t)
	officer := seedUser(t, env.db, models.User{Name: "PO", Email: "po@campus.edu", Role: models.RoleOfficer})
	drive := models.JobDrive{IsActive: true, CreatedByID: officer.ID}
	drive.SetRounds([]models.SelectionRound{{Name: "HR Interview", Status: models.RoundStatusCompleted}})
	drive = seedDrive(t, env.db, drive)
	svc := env.placementService()

	_, err := svc.Finalize(context.Background(), drive.ID, Actor{ID: officer.ID, Role: models.RoleOfficer})
	require.ErrorIs(t, err, ErrEmptyFinalRound)
}

func TestFinalizeRequiresResolvableSelections(t *testing.T) {
	env := newTestEnv(t)
	officer := seedUser(t, env.db, models.User{Name: "PO", Email: "po@campus.edu", Role: models.RoleOfficer})
	drive := models.JobDrive{IsActive: true, CreatedByID: officer.ID}
	// Selected id 42 never applied to this drive.
	drive.SetRounds([]models.SelectionRound{{Name: "HR Interview", SelectedStudents: []uint{42}}})
	drive = seedDrive(t, env.db, drive)
	svc := env.placementService()

	_, err := svc.Finalize(context.Background(), drive.ID, Actor{ID: officer.ID, Role: models.RoleOfficer})
	require.ErrorIs(t, err, ErrNoPlacedResolved)
}

func TestFinalizePropagatesAllProjections(t *testing.T) {
	env := newTestEnv(t)
	officer := seedUser(t, env.db, models.User{Name: "PO", Email: "po@campus.edu", Role: models.RoleOfficer})
	asha := seedUser(t, env.db, models.User{Name: "Asha", Email: "asha@campus.edu", RollNumber: "CS26001", Department: "CSE"})
	ravi := seedUser(t, env.db, models.User{Name: "Ravi", Email: "ravi@campus.edu", RollNumber: "CS26002", Department: "CSE"})
	drive := finalizableDrive(t, env, officer.ID, asha, ravi)
	svc := env.placementService()
	actor := Actor{ID: officer.ID, Role: models.RoleOfficer}

	result, err := svc.Finalize(context.Background(), drive.ID, actor)
	require.NoError(t, err)
	require.Equal(t, 2, result.PlacedCount)
	require.False(t, result.Resynced)

	// Projection 1: drive roster.
	stored, err := env.drives.GetByID(context.Background(), drive.ID)
	require.NoError(t, err)
	require.True(t, stored.PlacementFinalized)
	placed := stored.Placed()
	require.Len(t, placed, 2)
	require.Equal(t, "CS26001", placed[0].RollNumber)
	require.Equal(t, officer.ID, placed[0].AddedByID)

	// Projection 2: normalized side table.
	rows, err := env.placed.ListByDrive(context.Background(), drive.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Projection 3: user flags.
	for _, email := range []string{"asha@campus.edu", "ravi@campus.edu"} {
		var user models.User
		require.NoError(t, env.db.Where("email = ?", email).First(&user).Error)
		require.True(t, user.IsPlaced)
		require.Equal(t, models.PlacementStatusPlaced, user.PlacementStatus)
	}

	require.Len(t, env.bus.named(events.PlacementFinalized), 1)
}

func TestFinalizeAgainResyncsIdempotently(t *testing.T) {
	env := newTestEnv(t)
	officer := seedUser(t, env.db, models.User{Name: "PO", Email: "po@campus.edu", Role: models.RoleOfficer})
	asha := seedUser(t, env.db, models.User{Name: "Asha", Email: "asha@campus.edu", RollNumber: "CS26001"})
	drive := finalizableDrive(t, env, officer.ID, asha)
	svc := env.placementService()
	actor := Actor{ID: officer.ID, Role: models.RoleOfficer}

	first, err := svc.Finalize(context.Background(), drive.ID, actor)
	require.NoError(t, err)
	require.Equal(t, 1, first.PlacedCount)

	// Simulate a lost projection write, then retry.
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", asha.ID).
		Updates(map[string]interface{}{"is_placed": false, "placement_status": models.PlacementStatusUnplaced}).Error)

	second, err := svc.Finalize(context.Background(), drive.ID, actor)
	require.NoError(t, err)
	require.True(t, second.Resynced)
	require.Equal(t, 1, second.PlacedCount)

	var user models.User
	require.NoError(t, env.db.First(&user, asha.ID).Error)
	require.True(t, user.IsPlaced)

	rows, err := env.placed.ListByDrive(context.Background(), drive.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestRemovePlacedKeepsFlagWhilePlacedElsewhere(t *testing.T) {
	env := newTestEnv(t)
	officer := seedUser(t, env.db, models.User{Name: "PO", Email: "po@campus.edu", Role: models.RoleOfficer})
	asha := seedUser(t, env.db, models.User{Name: "Asha", Email: "asha@campus.edu", RollNumber: "CS26001"})
	drive := finalizableDrive(t, env, officer.ID, asha)
	svc := env.placementService()
	actor := Actor{ID: officer.ID, Role: models.RoleOfficer}

	_, err := svc.Finalize(context.Background(), drive.ID, actor)
	require.NoError(t, err)

	// A second drive also lists Asha as placed.
	other := models.PlacedStudent{JobDriveID: drive.ID + 100, RollNumber: "CS26001", Email: "asha@campus.edu", Name: "Asha"}
	require.NoError(t, env.placed.Upsert(context.Background(), &other))

	require.NoError(t, svc.RemovePlaced(context.Background(), drive.ID, 0, actor))

	var user models.User
	require.NoError(t, env.db.First(&user, asha.ID).Error)
	require.True(t, user.IsPlaced, "flag stays while another drive lists the student")

	// Delete the remaining placement; now the flag resets.
	stored, err := env.drives.GetByID(context.Background(), drive.ID)
	require.NoError(t, err)
	require.Empty(t, stored.Placed())
}

func TestRemovePlacedResetsFlagForSolePlacement(t *testing.T) {
	env := newTestEnv(t)
	officer := seedUser(t, env.db, models.User{Name: "PO", Email: "po@campus.edu", Role: models.RoleOfficer})
	asha := seedUser(t, env.db, models.User{Name: "Asha", Email: "asha@campus.edu", RollNumber: "CS26001"})
	drive := finalizableDrive(t, env, officer.ID, asha)
	svc := env.placementService()
	actor := Actor{ID: officer.ID, Role: models.RoleOfficer}

	_, err := svc.Finalize(context.Background(), drive.ID, actor)
	require.NoError(t, err)

	require.NoError(t, svc.RemovePlaced(context.Background(), drive.ID, 0, actor))

	var user models.User
	require.NoError(t, env.db.First(&user, asha.ID).Error)
	require.False(t, user.IsPlaced)
	require.Equal(t, models.PlacementStatusUnplaced, user.PlacementStatus)

	rows, err := env.placed.ListByDrive(context.Background(), drive.ID)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestRemovePlacedRejectsBadIndex(t *testing.T) {
	env := newTestEnv(t)
	officer := seedUser(t, env.db, models.User{Name: "PO", Email: "po@campus.edu", Role: models.RoleOfficer})
	drive := seedDrive(t, env.db, models.JobDrive{IsActive: true, CreatedByID: officer.ID})
	svc := env.placementService()

	err := svc.RemovePlaced(context.Background(), drive.ID, 0, Actor{ID: officer.ID, Role: models.RoleOfficer})
	require.ErrorIs(t, err, ErrInvalidPlacedIndex)
}

func TestUpdatePlacedReKeysNormalizedRow(t *testing.T) {
	env := newTestEnv(t)
	officer := seedUser(t, env.db, models.User{Name: "PO", Email: "po@campus.edu", Role: models.RoleOfficer})
	asha := seedUser(t, env.db, models.User{Name: "Asha", Email: "asha@campus.edu", RollNumber: "CS26001"})
	drive := finalizableDrive(t, env, officer.ID, asha)
	svc := env.placementService()
	actor := Actor{ID: officer.ID, Role: models.RoleOfficer}

	_, err := svc.Finalize(context.Background(), drive.ID, actor)
	require.NoError(t, err)

	roll := "CS26099"
	updated, err := svc.UpdatePlaced(context.Background(), drive.ID, 0, dto.PlacedStudentUpdateRequest{RollNumber: &roll}, actor)
	require.NoError(t, err)
	require.Equal(t, roll, updated.RollNumber)

	rows, err := env.placed.ListByDrive(context.Background(), drive.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, roll, rows[0].RollNumber)
}
