package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Archiver is the store-side sweep the scheduler drives.
type Archiver interface {
	ArchivePast() int
}

// Sweeper runs the archival sweep at startup and on a fixed schedule,
// flipping elapsed active bookings to archived.
type Sweeper struct {
	cron     *cron.Cron
	archiver Archiver
	schedule string
	logger   *zerolog.Logger
}

func NewSweeper(archiver Archiver, schedule string, logger *zerolog.Logger) *Sweeper {
	return &Sweeper{
		cron:     cron.New(),
		archiver: archiver,
		schedule: schedule,
		logger:   logger,
	}
}

// Start performs one immediate sweep and schedules the recurring one.
func (s *Sweeper) Start() error {
	s.sweep()

	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info().Str("schedule", s.schedule).Msg("archival sweep started")
	return nil
}

// Stop halts the schedule; a sweep already running finishes.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweep() {
	if count := s.archiver.ArchivePast(); count > 0 {
		s.logger.Info().Int("count", count).Msg("archived past bookings")
	}
}
