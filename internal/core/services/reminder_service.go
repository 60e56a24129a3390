package services

import (
	"context"
	"log"
	"time"

	"loanapply/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// Expired refresh tokens are purged nightly.
const tokenCleanupSchedule = "0 3 * * *"

// ReminderService runs the background jobs: it reminds applicants
// whose submission has sat in Pending past the reminder window, and
// purges expired refresh tokens.
type ReminderService struct {
	appRepo       repositories.ApplicationRepository
	tokenRepo     repositories.RefreshTokenRepository
	notifyService *NotificationService
	cron          *cron.Cron
	schedule      string
	pendingAfter  time.Duration
}

// NewReminderService creates a new reminder service. schedule is a
// standard cron expression; pendingAfter is how long an application may
// stay Pending before a reminder goes out.
func NewReminderService(
	appRepo repositories.ApplicationRepository,
	tokenRepo repositories.RefreshTokenRepository,
	notifyService *NotificationService,
	schedule string,
	pendingAfter time.Duration,
) *ReminderService {
	return &ReminderService{
		appRepo:       appRepo,
		tokenRepo:     tokenRepo,
		notifyService: notifyService,
		cron:          cron.New(),
		schedule:      schedule,
		pendingAfter:  pendingAfter,
	}
}

// Start registers the jobs and starts the scheduler
func (s *ReminderService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runOnce); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(tokenCleanupSchedule, s.cleanupTokens); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("⏰ Reminder job scheduled: %s", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("⏰ Reminder job stopped")
}

// runOnce sends a reminder for every stale pending application. Errors
// are logged; the job runs again on the next tick regardless.
func (s *ReminderService) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-s.pendingAfter)
	apps, err := s.appRepo.FindPendingOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("⚠️ Reminder job failed to list pending applications: %v", err)
		return
	}

	if len(apps) == 0 {
		return
	}

	for _, app := range apps {
		s.notifyService.NotifyPendingReminder(app)
	}

	log.Printf("⏰ Reminder sent for %d pending application(s)", len(apps))
}

// cleanupTokens removes refresh tokens that are past their expiry
func (s *ReminderService) cleanupTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.tokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("⚠️ Token cleanup failed: %v", err)
		return
	}

	log.Println("🧹 Expired refresh tokens purged")
}
