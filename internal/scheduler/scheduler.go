package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper is the maintenance job run on schedule
type Sweeper interface {
	SweepExpired()
}

// Scheduler runs the expiry sweep periodically
type Scheduler struct {
	cron *cron.Cron
}

// New schedules sweeper according to spec, a cron expression or descriptor such as "@weekly"
func New(spec string, sweeper Sweeper) (*Scheduler, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		logrus.Debugf("Running scheduled thumbnail sweep")
		sweeper.SweepExpired()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add sweep job %q: %w", spec, err)
	}

	return &Scheduler{cron: c}, nil
}

// Start starts the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	logrus.Infof("Thumbnail sweep scheduled, next run at %s", s.cron.Entries()[0].Next)
}

// Stop stops the scheduler; the returned context is done once a running sweep finishes
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
