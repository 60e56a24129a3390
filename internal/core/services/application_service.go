package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"strconv"
	"time"

	"loanapply/internal/adapters/persistence/models"
	"loanapply/internal/adapters/persistence/repositories"
	"loanapply/internal/core/domain"
	"loanapply/internal/core/validation"
	"loanapply/internal/pkg/apiquery"
	"loanapply/internal/pkg/upload"
)

// ApplicationService handles the loan application lifecycle
type ApplicationService struct {
	appRepo       repositories.ApplicationRepository
	notifyService *NotificationService
}

// NewApplicationService creates a new application service
func NewApplicationService(appRepo repositories.ApplicationRepository, notifyService *NotificationService) *ApplicationService {
	return &ApplicationService{
		appRepo:       appRepo,
		notifyService: notifyService,
	}
}

// SubmitInput represents a submitted application form
type SubmitInput struct {
	ApplicantName      string
	DOB                time.Time
	Gender             string
	Nationality        string
	AadharNumber       string
	PANNumber          string
	EmailID            string
	PhoneNumber        string
	ResidentialAddress string
	PermanentAddress   string

	EmploymentType     string
	CompanyName        string
	SelfEmploymentType string
	BusinessType       string

	Income        float64
	BankName      string
	AccountNumber string
	IFSCCode      string

	LoanType              string
	LoanAmount            float64
	LoanTenure            int
	LoanPurpose           string
	CollateralType        string
	CollateralValue       float64
	CollateralDescription string

	// Stored paths of the uploaded documents; may arrive with either
	// separator style.
	IncomeProofPath        string
	CollateralDocumentPath string

	// Email of the authenticated submitter, when known.
	SubmitterEmail string
}

// Submit creates a new application: normalizes document paths, issues
// the application ID, validates the whole record and persists it. The
// submission confirmation email is fire-and-forget.
func (s *ApplicationService) Submit(ctx context.Context, input *SubmitInput) (*models.Application, error) {
	app := &models.Application{
		ApplicationID:          GenerateApplicationID(),
		ApplicantName:          input.ApplicantName,
		DOB:                    input.DOB,
		Gender:                 input.Gender,
		Nationality:            input.Nationality,
		AadharNumber:           input.AadharNumber,
		PANNumber:              input.PANNumber,
		EmailID:                input.EmailID,
		PhoneNumber:            input.PhoneNumber,
		ResidentialAddress:     input.ResidentialAddress,
		PermanentAddress:       input.PermanentAddress,
		EmploymentType:         input.EmploymentType,
		CompanyName:            input.CompanyName,
		SelfEmploymentType:     input.SelfEmploymentType,
		BusinessType:           input.BusinessType,
		Income:                 input.Income,
		BankName:               input.BankName,
		AccountNumber:          input.AccountNumber,
		IFSCCode:               input.IFSCCode,
		LoanType:               input.LoanType,
		LoanAmount:             input.LoanAmount,
		LoanTenure:             input.LoanTenure,
		LoanPurpose:            input.LoanPurpose,
		CollateralType:         input.CollateralType,
		CollateralValue:        input.CollateralValue,
		CollateralDescription:  input.CollateralDescription,
		IncomeProofPath:        upload.NormalizePath(input.IncomeProofPath),
		CollateralDocumentPath: upload.NormalizePath(input.CollateralDocumentPath),
		Status:                 models.StatusPending,
	}

	if app.Nationality == "" {
		app.Nationality = "India"
	}
	if input.SubmitterEmail != "" {
		app.EmailID = input.SubmitterEmail
	}

	if err := validation.ValidateApplication(app); err != nil {
		return nil, err
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	if s.notifyService != nil {
		s.notifyService.NotifySubmitted(app)
	}

	return app, nil
}

// ListAll lists applications matching the raw query parameters,
// composed by the query feature builder.
func (s *ApplicationService) ListAll(ctx context.Context, params map[string]string) ([]*models.Application, error) {
	opts := apiquery.Parse(params)
	return s.appRepo.List(ctx, opts)
}

// ListBySubmitter lists the applications submitted with the given email
func (s *ApplicationService) ListBySubmitter(ctx context.Context, email string) ([]*models.Application, error) {
	return s.appRepo.FindByEmail(ctx, email)
}

// Decide applies an admin decision to an application. The record is
// re-validated with the new status before persisting; the decision
// email is fire-and-forget.
func (s *ApplicationService) Decide(ctx context.Context, applicationID, status string) (*models.Application, error) {
	if applicationID == "" || status == "" {
		return nil, domain.BadRequestf("applicationId and status are required in the request body")
	}

	app, err := s.appRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	app.Status = status
	if err := validation.ValidateApplication(app); err != nil {
		return nil, err
	}

	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}

	if s.notifyService != nil {
		s.notifyService.NotifyDecision(app)
	}

	return app, nil
}

// Withdraw hard-deletes an application and returns the deleted
// snapshot. A second call for the same ID finds nothing and fails.
func (s *ApplicationService) Withdraw(ctx context.Context, applicationID string) (*models.Application, error) {
	if applicationID == "" {
		return nil, domain.BadRequestf("applicationId is required in the request body")
	}

	return s.appRepo.DeleteByApplicationID(ctx, applicationID)
}

const applicationIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateApplicationID issues a new public application identifier:
// APP-<unix millis, base36>-<7 random chars A-Z0-9>.
func GenerateApplicationID() string {
	return fmt.Sprintf("APP-%s-%s", strconv.FormatInt(time.Now().UnixMilli(), 36), randomSuffix(7))
}

// randomSuffix returns n characters from the ID alphabet. It falls
// back to a clock-derived suffix if the system entropy source fails.
func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return clockSuffix(n)
	}
	for i, b := range buf {
		buf[i] = applicationIDAlphabet[int(b)%len(applicationIDAlphabet)]
	}
	return string(buf)
}

// clockSuffix derives n alphabet characters from the nanosecond clock
func clockSuffix(n int) string {
	buf := make([]byte, n)
	v := time.Now().UnixNano()
	for i := range buf {
		buf[i] = applicationIDAlphabet[int(v%int64(len(applicationIDAlphabet)))]
		v /= int64(len(applicationIDAlphabet))
	}
	return string(buf)
}
