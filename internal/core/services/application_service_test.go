package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"loanapply/internal/adapters/persistence/models"
	"loanapply/internal/core/domain"
	"loanapply/internal/pkg/apiquery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var applicationIDRe = regexp.MustCompile(`^APP-[0-9a-z]+-[A-Z0-9]{7}$`)

// fakeApplicationRepository is an in-memory ApplicationRepository used
// to exercise the service without a database.
type fakeApplicationRepository struct {
	apps []*models.Application
}

func (r *fakeApplicationRepository) Create(_ context.Context, app *models.Application) error {
	for _, existing := range r.apps {
		if existing.ApplicationID == app.ApplicationID {
			return domain.ErrConflict
		}
	}
	stored := *app
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.apps = append(r.apps, &stored)
	return nil
}

func (r *fakeApplicationRepository) GetByApplicationID(_ context.Context, applicationID string) (*models.Application, error) {
	for _, app := range r.apps {
		if app.ApplicationID == applicationID {
			copied := *app
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeApplicationRepository) FindByEmail(_ context.Context, email string) ([]*models.Application, error) {
	var out []*models.Application
	for _, app := range r.apps {
		if app.EmailID == email {
			out = append(out, app)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepository) List(_ context.Context, opts *apiquery.Options) ([]*models.Application, error) {
	start := opts.Offset()
	if start >= len(r.apps) {
		return nil, nil
	}
	end := start + opts.Limit
	if end > len(r.apps) {
		end = len(r.apps)
	}
	return r.apps[start:end], nil
}

func (r *fakeApplicationRepository) Update(_ context.Context, app *models.Application) error {
	for i, existing := range r.apps {
		if existing.ApplicationID == app.ApplicationID {
			updated := *app
			updated.UpdatedAt = time.Now()
			r.apps[i] = &updated
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeApplicationRepository) DeleteByApplicationID(_ context.Context, applicationID string) (*models.Application, error) {
	for i, app := range r.apps {
		if app.ApplicationID == applicationID {
			r.apps = append(r.apps[:i], r.apps[i+1:]...)
			return app, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeApplicationRepository) FindPendingOlderThan(_ context.Context, cutoff time.Time) ([]*models.Application, error) {
	var out []*models.Application
	for _, app := range r.apps {
		if app.Status == models.StatusPending && app.CreatedAt.Before(cutoff) {
			out = append(out, app)
		}
	}
	return out, nil
}

// failingSender always errors, simulating a broken transport.
type failingSender struct{}

func (failingSender) Send(_, _, _ string) error {
	return errors.New("smtp: connection refused")
}

func validSubmitInput() *SubmitInput {
	return &SubmitInput{
		ApplicantName:      "Priya Sharma",
		DOB:                time.Date(1992, 4, 17, 0, 0, 0, 0, time.UTC),
		Gender:             "female",
		AadharNumber:       "123456789012",
		PANNumber:          "ABCDE1234F",
		EmailID:            "priya@example.com",
		PhoneNumber:        "9876543210",
		ResidentialAddress: "12 MG Road, Bengaluru",
		PermanentAddress:   "12 MG Road, Bengaluru",
		EmploymentType:     "salaried",
		CompanyName:        "Acme Corp",
		Income:             45000,
		BankName:           "State Bank",
		AccountNumber:      "123456789012",
		IFSCCode:           "SBIN0001234",
		LoanType:           "personal",
		LoanAmount:         200000,
		LoanTenure:         5,
		LoanPurpose:        "education",
		IncomeProofPath:    "uploads/income.pdf",
	}
}

func newTestService(repo *fakeApplicationRepository) *ApplicationService {
	return NewApplicationService(repo, NewNotificationService(failingSender{}))
}

func TestSubmit_AssignsApplicationID(t *testing.T) {
	repo := &fakeApplicationRepository{}
	svc := newTestService(repo)

	app, err := svc.Submit(context.Background(), validSubmitInput())
	require.NoError(t, err)

	assert.Regexp(t, applicationIDRe, app.ApplicationID)
	assert.Equal(t, models.StatusPending, app.Status)
	assert.Equal(t, "India", app.Nationality)
	assert.Len(t, repo.apps, 1)
}

func TestSubmit_IDsAreUnique(t *testing.T) {
	repo := &fakeApplicationRepository{}
	svc := newTestService(repo)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		input := validSubmitInput()
		app, err := svc.Submit(context.Background(), input)
		require.NoError(t, err)
		assert.False(t, seen[app.ApplicationID], "duplicate application ID %s", app.ApplicationID)
		seen[app.ApplicationID] = true
	}
}

func TestSubmit_NormalizesDocumentPaths(t *testing.T) {
	repo := &fakeApplicationRepository{}
	svc := newTestService(repo)

	input := validSubmitInput()
	input.IncomeProofPath = `docs\income.pdf`

	app, err := svc.Submit(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "docs/income.pdf", app.IncomeProofPath)
}

func TestSubmit_SubmitterEmailOverridesForm(t *testing.T) {
	repo := &fakeApplicationRepository{}
	svc := newTestService(repo)

	input := validSubmitInput()
	input.SubmitterEmail = "account@example.com"

	app, err := svc.Submit(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "account@example.com", app.EmailID)
}

func TestSubmit_InvalidInputDoesNotPersist(t *testing.T) {
	repo := &fakeApplicationRepository{}
	svc := newTestService(repo)

	input := validSubmitInput()
	input.IncomeProofPath = ""

	_, err := svc.Submit(context.Background(), input)
	_, ok := domain.AsValidationError(err)
	assert.True(t, ok, "expected validation error, got %v", err)
	assert.Empty(t, repo.apps)
}

func TestSubmit_NotificationFailureDoesNotFailSubmit(t *testing.T) {
	// The sender always errors; Submit must still succeed.
	repo := &fakeApplicationRepository{}
	svc := newTestService(repo)

	app, err := svc.Submit(context.Background(), validSubmitInput())
	require.NoError(t, err)
	assert.NotEmpty(t, app.ApplicationID)
}

func TestDecide_UpdatesStatus(t *testing.T) {
	repo := &fakeApplicationRepository{}
	svc := newTestService(repo)

	app, err := svc.Submit(context.Background(), validSubmitInput())
	require.NoError(t, err)

	updated, err := svc.Decide(context.Background(), app.ApplicationID, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)

	stored, err := repo.GetByApplicationID(context.Background(), app.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
}

func TestDecide_MissingParameters(t *testing.T) {
	svc := newTestService(&fakeApplicationRepository{})

	_, err := svc.Decide(context.Background(), "", models.StatusApproved)
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = svc.Decide(context.Background(), "APP-x-YYYYYYY", "")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestDecide_UnknownApplication(t *testing.T) {
	svc := newTestService(&fakeApplicationRepository{})

	_, err := svc.Decide(context.Background(), "APP-missing-AAAAAAA", models.StatusApproved)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDecide_RejectsUnknownStatus(t *testing.T) {
	repo := &fakeApplicationRepository{}
	svc := newTestService(repo)

	app, err := svc.Submit(context.Background(), validSubmitInput())
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), app.ApplicationID, "Cancelled")
	_, ok := domain.AsValidationError(err)
	assert.True(t, ok, "expected validation error, got %v", err)

	// Stored record keeps its original status
	stored, err := repo.GetByApplicationID(context.Background(), app.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestWithdraw_RemovesApplication(t *testing.T) {
	repo := &fakeApplicationRepository{}
	svc := newTestService(repo)

	app, err := svc.Submit(context.Background(), validSubmitInput())
	require.NoError(t, err)

	deleted, err := svc.Withdraw(context.Background(), app.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, app.ApplicationID, deleted.ApplicationID)
	assert.Empty(t, repo.apps)
}

func TestWithdraw_NotIdempotent(t *testing.T) {
	repo := &fakeApplicationRepository{}
	svc := newTestService(repo)

	app, err := svc.Submit(context.Background(), validSubmitInput())
	require.NoError(t, err)

	_, err = svc.Withdraw(context.Background(), app.ApplicationID)
	require.NoError(t, err)

	_, err = svc.Withdraw(context.Background(), app.ApplicationID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWithdraw_MissingParameter(t *testing.T) {
	svc := newTestService(&fakeApplicationRepository{})

	_, err := svc.Withdraw(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestListBySubmitter(t *testing.T) {
	repo := &fakeApplicationRepository{}
	svc := newTestService(repo)

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(context.Background(), validSubmitInput())
		require.NoError(t, err)
	}
	other := validSubmitInput()
	other.SubmitterEmail = "someone@example.com"
	_, err := svc.Submit(context.Background(), other)
	require.NoError(t, err)

	apps, err := svc.ListBySubmitter(context.Background(), "priya@example.com")
	require.NoError(t, err)
	assert.Len(t, apps, 3)
}

func TestListAll_Pagination(t *testing.T) {
	repo := &fakeApplicationRepository{}
	svc := newTestService(repo)

	for i := 0; i < 15; i++ {
		_, err := svc.Submit(context.Background(), validSubmitInput())
		require.NoError(t, err)
	}

	page2, err := svc.ListAll(context.Background(), map[string]string{"page": "2", "limit": "10"})
	require.NoError(t, err)
	assert.Len(t, page2, 5)
}

func TestGenerateApplicationID_Shape(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Regexp(t, applicationIDRe, GenerateApplicationID())
	}
}

func TestSuffixes_StayWithinAlphabet(t *testing.T) {
	suffixRe := regexp.MustCompile(`^[A-Z0-9]{7}$`)

	assert.Regexp(t, suffixRe, randomSuffix(7))
	// The entropy fallback must produce the same shape.
	assert.Regexp(t, suffixRe, clockSuffix(7))
}
