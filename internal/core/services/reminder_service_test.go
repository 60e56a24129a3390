package services

import (
	"context"
	"testing"
	"time"

	"loanapply/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReminderService(appRepo *fakeApplicationRepository, tokenRepo *fakeRefreshTokenRepository, sender *recordingSender) *ReminderService {
	return NewReminderService(appRepo, tokenRepo, NewNotificationService(sender), "0 9 * * *", 72*time.Hour)
}

func TestRunOnce_NotifiesStalePendingApplications(t *testing.T) {
	appRepo := &fakeApplicationRepository{apps: []*models.Application{
		{
			ApplicationID: "APP-old-AAAAAA1",
			ApplicantName: "Priya Sharma",
			EmailID:       "priya@example.com",
			Status:        models.StatusPending,
			CreatedAt:     time.Now().Add(-96 * time.Hour),
		},
		{
			ApplicationID: "APP-new-AAAAAA2",
			EmailID:       "recent@example.com",
			Status:        models.StatusPending,
			CreatedAt:     time.Now().Add(-1 * time.Hour),
		},
		{
			ApplicationID: "APP-done-AAAAAA3",
			EmailID:       "approved@example.com",
			Status:        models.StatusApproved,
			CreatedAt:     time.Now().Add(-96 * time.Hour),
		},
	}}
	sender := newRecordingSender()
	svc := newTestReminderService(appRepo, &fakeRefreshTokenRepository{}, sender)

	svc.runOnce()

	mail := sender.wait(t)
	assert.Equal(t, "priya@example.com", mail.recipient)
	assert.Contains(t, mail.body, "APP-old-AAAAAA1")

	// The recent and decided applications stay quiet
	select {
	case <-sender.done:
		t.Fatal("unexpected second reminder")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCleanupTokens_PurgesExpired(t *testing.T) {
	tokenRepo := &fakeRefreshTokenRepository{}
	require.NoError(t, tokenRepo.Create(context.Background(), &models.RefreshToken{
		UserID:    1,
		TokenHash: "expired",
		ExpiresAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, tokenRepo.Create(context.Background(), &models.RefreshToken{
		UserID:    1,
		TokenHash: "live",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	svc := newTestReminderService(&fakeApplicationRepository{}, tokenRepo, newRecordingSender())
	svc.cleanupTokens()

	assert.Equal(t, 1, tokenRepo.deleteExpiredCalls)
	require.Len(t, tokenRepo.tokens, 1)
	assert.Equal(t, "live", tokenRepo.tokens[0].TokenHash)
}

func TestReminderService_StartStop(t *testing.T) {
	svc := newTestReminderService(&fakeApplicationRepository{}, &fakeRefreshTokenRepository{}, newRecordingSender())

	require.NoError(t, svc.Start())
	svc.Stop()
}

func TestReminderService_RejectsBadSchedule(t *testing.T) {
	svc := NewReminderService(&fakeApplicationRepository{}, &fakeRefreshTokenRepository{}, NewNotificationService(nil), "not a cron expr", time.Hour)

	assert.Error(t, svc.Start())
}
