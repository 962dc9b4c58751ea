package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolvedDeadlineDefaultsToDriveDateEndOfDay(t *testing.T) {
	drive := JobDrive{DriveDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}

	deadline, ok := drive.ResolvedDeadline()
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 3, 10, 23, 59, 59, int(999*time.Millisecond), time.UTC), deadline)
}

func TestResolvedDeadlinePrefersExplicitDeadline(t *testing.T) {
	deadlineDate := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	drive := JobDrive{
		DriveDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Deadline:  &deadlineDate,
	}

	deadline, ok := drive.ResolvedDeadline()
	require.True(t, ok)
	require.Equal(t, 5, deadline.Day())
	require.Equal(t, 23, deadline.Hour())
}

func TestResolvedDeadlineAppliesClockOnlyWithExplicitDeadline(t *testing.T) {
	deadlineDate := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	withBoth := JobDrive{DriveDate: deadlineDate.AddDate(0, 0, 5), Deadline: &deadlineDate, DriveTime: "10:30"}
	deadline, ok := withBoth.ResolvedDeadline()
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 3, 5, 10, 30, 0, 0, time.UTC), deadline)

	// Drive time without an explicit deadline keeps the end-of-day cutoff.
	timeOnly := JobDrive{DriveDate: deadlineDate, DriveTime: "10:30"}
	deadline, ok = timeOnly.ResolvedDeadline()
	require.True(t, ok)
	require.Equal(t, 23, deadline.Hour())
}

func TestResolvedDeadlineUnresolvableWithoutDates(t *testing.T) {
	_, ok := JobDrive{}.ResolvedDeadline()
	require.False(t, ok)
}

func TestAcceptsApplicationsAtBoundary(t *testing.T) {
	drive := JobDrive{DriveDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}
	cutoff := time.Date(2026, 3, 10, 23, 59, 59, int(999*time.Millisecond), time.UTC)

	require.True(t, drive.AcceptsApplicationsAt(cutoff))
	require.False(t, drive.AcceptsApplicationsAt(cutoff.Add(time.Millisecond)))
}

func TestRoundAccessorsRoundTrip(t *testing.T) {
	drive := JobDrive{}
	drive.SetRounds([]SelectionRound{
		{Name: "Aptitude Test", Status: RoundStatusCompleted, SelectedStudents: []uint{1, 2}},
		{Name: "HR Interview", Status: RoundStatusPending},
	})

	rounds := drive.Rounds()
	require.Len(t, rounds, 2)
	require.Equal(t, []uint{1, 2}, rounds[0].SelectedStudents)
	require.Empty(t, rounds[1].SelectedStudents)
}

func TestNormalizeRoleSynonyms(t *testing.T) {
	require.Equal(t, RoleOfficer, NormalizeRole("PO"))
	require.Equal(t, RoleOfficer, NormalizeRole("placement-officer"))
	require.Equal(t, RoleRepresentative, NormalizeRole(" pr "))
	require.Equal(t, RoleStudent, NormalizeRole("Student"))
	require.Equal(t, Role(""), NormalizeRole("admin"))
}

func TestEffectiveBatchFallback(t *testing.T) {
	require.Equal(t, "2026", User{Batch: " 2026 "}.EffectiveBatch())
	require.Equal(t, "2027", User{GraduationYear: 2027}.EffectiveBatch())
	require.Equal(t, "", User{}.EffectiveBatch())
}
