package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/campushire/placement-api/internal/events"
	"github.com/campushire/placement-api/internal/repository"
)

// DriveSweeper periodically deactivates drives whose resolved application
// deadline has passed, keeping listings and the apply gate consistent without
// a per-request check against every drive.
type DriveSweeper struct {
	drives   repository.DriveRepository
	bus      events.Publisher
	logger   zerolog.Logger
	schedule string
	cron     *cron.Cron
	now      func() time.Time
}

// NewDriveSweeper builds a sweeper on the given cron schedule.
func NewDriveSweeper(drives repository.DriveRepository, bus events.Publisher, schedule string, logger zerolog.Logger) *DriveSweeper {
	return &DriveSweeper{
		drives:   drives,
		bus:      bus,
		logger:   logger.With().Str("component", "drive_sweeper").Logger(),
		schedule: schedule,
		now:      time.Now,
	}
}

// Start registers the cron entry and begins sweeping. It returns an error
// only when the schedule expression cannot be parsed.
func (s *DriveSweeper) Start(ctx context.Context) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, func() { s.Sweep(ctx) }); err != nil {
		return err
	}
	s.cron.Start()

	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()

	return nil
}

// Sweep runs one pass. Exported so operators can trigger it manually and
// tests can drive it directly.
func (s *DriveSweeper) Sweep(ctx context.Context) {
	now := s.now()

	// Coarse DB prefilter; the resolved deadline (with its end-of-day
	// fallback) is re-checked per drive.
	candidates, err := s.drives.ListActiveBefore(ctx, now)
	if err != nil {
		s.logger.Error().Err(err).Msg("sweep query failed")
		return
	}

	expired := 0
	for _, drive := range candidates {
		deadline, ok := drive.ResolvedDeadline()
		if !ok || !now.After(deadline) {
			continue
		}

		drive.IsActive = false
		if err := s.drives.Update(ctx, &drive); err != nil {
			s.logger.Warn().Err(err).Uint("job_drive_id", drive.ID).Msg("failed to deactivate expired drive")
			continue
		}
		expired++

		s.bus.Publish(ctx, events.Event{
			Name: events.DriveUpdated,
			Room: events.RoomBroadcast,
			Payload: map[string]interface{}{
				"job_drive_id": drive.ID,
				"is_active":    false,
			},
		})
	}

	if expired > 0 {
		s.logger.Info().Int("expired", expired).Msg("deactivated expired drives")
	}
}
