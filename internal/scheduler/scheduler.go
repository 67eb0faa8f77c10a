// Package scheduler runs the daily digest on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/metrics"
	"github.com/fitgrow/fitgrow-backend/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Source provides the users and their daily rollups
type Source interface {
	Users(ctx context.Context) ([]models.User, error)
	DailyStats(ctx context.Context, userID string) (models.DailyStats, error)
	Location() *time.Location
}

// Mailer delivers one digest
type Mailer interface {
	SendDailyDigest(to, username string, day time.Time, stats models.DailyStats, goals models.Goals) error
}

// Scheduler owns the cron runner
type Scheduler struct {
	cron   *cron.Cron
	source Source
	mailer Mailer
	log    *logrus.Logger
	now    func() time.Time
}

// New creates a scheduler whose schedules are interpreted in the source's location
func New(source Source, mailer Mailer, log *logrus.Logger) *Scheduler {
	cronLog := cron.PrintfLogger(log)
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(source.Location()),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		source: source,
		mailer: mailer,
		log:    log,
		now:    time.Now,
	}
}

// Start registers the digest job on spec, a standard five-field cron expression, and starts the runner
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() {
		if _, err := s.RunDigest(context.Background()); err != nil {
			s.log.Errorf("Daily digest failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	s.cron.Start()
	s.log.Infof("Daily digest scheduled: %s", spec)
	return nil
}

// Stop halts the runner. The returned context is done once a running job finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Report counts the outcome of one digest run
type Report struct {
	Sent   int
	Failed int
}

// RunDigest mails every user their daily rollup. A failure for one user is
// logged and counted; the remaining users are still processed.
func (s *Scheduler) RunDigest(ctx context.Context) (Report, error) {
	users, err := s.source.Users(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list users: %w", err)
	}

	day := s.now().In(s.source.Location())
	var report Report
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		stats, err := s.source.DailyStats(ctx, u.ID)
		if err != nil {
			s.log.Errorf("Failed to compute digest for user %s: %v", u.ID, err)
			metrics.DigestsSent.WithLabelValues("failed").Inc()
			report.Failed++
			continue
		}
		if err := s.mailer.SendDailyDigest(u.Email, u.Username, day, stats, u.Goals); err != nil {
			metrics.DigestsSent.WithLabelValues("failed").Inc()
			report.Failed++
			continue
		}
		metrics.DigestsSent.WithLabelValues("sent").Inc()
		report.Sent++
	}
	s.log.Infof("Daily digest done: %d sent, %d failed", report.Sent, report.Failed)
	return report, nil
}
