package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fitgrow/fitgrow-backend/internal/logging"
	"github.com/fitgrow/fitgrow-backend/internal/models"
)

type fakeSource struct {
	users    []models.User
	stats    map[string]models.DailyStats
	usersErr error
}

func (f *fakeSource) Users(context.Context) ([]models.User, error) { return f.users, f.usersErr }

func (f *fakeSource) DailyStats(_ context.Context, userID string) (models.DailyStats, error) {
	stats, ok := f.stats[userID]
	if !ok {
		return models.DailyStats{}, errors.New("no stats")
	}
	return stats, nil
}

func (f *fakeSource) Location() *time.Location { return time.UTC }

type sentDigest struct {
	to    string
	stats models.DailyStats
	goals models.Goals
}

type fakeMailer struct {
	sent   []sentDigest
	failTo string
}

func (f *fakeMailer) SendDailyDigest(to, _ string, _ time.Time, stats models.DailyStats, goals models.Goals) error {
	if to == f.failTo {
		return errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, sentDigest{to: to, stats: stats, goals: goals})
	return nil
}

func TestRunDigest(t *testing.T) {
	source := &fakeSource{
		users: []models.User{
			{ID: "1", Email: "a@x.com", Goals: models.DefaultGoals()},
			{ID: "2", Email: "b@x.com", Goals: models.DefaultGoals()},
			{ID: "3", Email: "c@x.com", Goals: models.Goals{Steps: 5000}},
			{ID: "4", Email: "d@x.com"},
		},
		stats: map[string]models.DailyStats{
			"1": {Steps: 5500},
			"2": {Calories: 100},
			"3": {Steps: 6000},
		},
	}
	mailer := &fakeMailer{failTo: "b@x.com"}
	s := New(source, mailer, logging.Discard())

	report, err := s.RunDigest(context.Background())
	if err != nil {
		t.Fatalf("RunDigest() error = %v", err)
	}
	if report.Sent != 2 || report.Failed != 2 {
		t.Errorf("RunDigest() = %+v, want 2 sent 2 failed", report)
	}
	if len(mailer.sent) != 2 || mailer.sent[0].to != "a@x.com" || mailer.sent[1].to != "c@x.com" {
		t.Fatalf("sent = %+v", mailer.sent)
	}
	if mailer.sent[1].stats.Steps != 6000 || mailer.sent[1].goals.Steps != 5000 {
		t.Errorf("digest for c = %+v", mailer.sent[1])
	}
}

func TestRunDigestUsersError(t *testing.T) {
	s := New(&fakeSource{usersErr: errors.New("db down")}, &fakeMailer{}, logging.Discard())
	if _, err := s.RunDigest(context.Background()); err == nil {
		t.Error("RunDigest() error = nil, want failure")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(&fakeSource{}, &fakeMailer{}, logging.Discard())
	if err := s.Start("every evening"); err == nil {
		t.Error("Start() error = nil, want invalid schedule")
	}

	if err := s.Start("0 21 * * *"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	<-s.Stop().Done()
}
