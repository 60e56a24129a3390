package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"loanapply/internal/adapters/persistence/models"
	"loanapply/internal/config"
	"loanapply/internal/core/domain"
	"loanapply/internal/core/services"
	"loanapply/internal/pkg/apiquery"
	"loanapply/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryApplicationRepository backs handler tests without a database.
type memoryApplicationRepository struct {
	apps []*models.Application
}

func (r *memoryApplicationRepository) Create(_ context.Context, app *models.Application) error {
	stored := *app
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.apps = append(r.apps, &stored)
	return nil
}

func (r *memoryApplicationRepository) GetByApplicationID(_ context.Context, applicationID string) (*models.Application, error) {
	for _, app := range r.apps {
		if app.ApplicationID == applicationID {
			copied := *app
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryApplicationRepository) FindByEmail(_ context.Context, email string) ([]*models.Application, error) {
	var out []*models.Application
	for _, app := range r.apps {
		if app.EmailID == email {
			out = append(out, app)
		}
	}
	return out, nil
}

func (r *memoryApplicationRepository) List(_ context.Context, opts *apiquery.Options) ([]*models.Application, error) {
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

func (r *memoryApplicationRepository) Update(_ context.Context, app *models.Application) error {
	for i := range r.apps {
		if r.apps[i].ApplicationID == app.ApplicationID {
			updated := *app
			r.apps[i] = &updated
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memoryApplicationRepository) DeleteByApplicationID(_ context.Context, applicationID string) (*models.Application, error) {
	for i, app := range r.apps {
		if app.ApplicationID == applicationID {
			r.apps = append(r.apps[:i], r.apps[i+1:]...)
			return app, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryApplicationRepository) FindPendingOlderThan(_ context.Context, cutoff time.Time) ([]*models.Application, error) {
	var out []*models.Application
	for _, app := range r.apps {
		if app.Status == models.StatusPending && app.CreatedAt.Before(cutoff) {
			out = append(out, app)
		}
	}
	return out, nil
}

func seededApplication() *models.Application {
	return &models.Application{
		ApplicationID:      "APP-lxyzab12-K3M9QZ1",
		ApplicantName:      "Priya Sharma",
		DOB:                time.Date(1992, 4, 17, 0, 0, 0, 0, time.UTC),
		Gender:             "female",
		Nationality:        "India",
		AadharNumber:       "123456789012",
		PANNumber:          "ABCDE1234F",
		EmailID:            "priya@example.com",
		PhoneNumber:        "9876543210",
		ResidentialAddress: "12 MG Road, Bengaluru",
		PermanentAddress:   "12 MG Road, Bengaluru",
		EmploymentType:     "salaried",
		Income:             45000,
		BankName:           "State Bank",
		AccountNumber:      "123456789012",
		IFSCCode:           "SBIN0001234",
		LoanType:           "personal",
		LoanAmount:         200000,
		LoanTenure:         5,
		LoanPurpose:        "education",
		IncomeProofPath:    "uploads/income.pdf",
		Status:             models.StatusPending,
	}
}

// newTestApp wires the handler into a fiber app with a stub identity
// middleware in place of JWT auth.
func newTestApp(t *testing.T, repo *memoryApplicationRepository) *fiber.App {
	t.Helper()

	cfg := &config.Config{
		Upload: config.UploadConfig{Dir: t.TempDir()},
	}
	svc := services.NewApplicationService(repo, services.NewNotificationService(nil))
	handler := NewApplicationHandler(svc, cfg)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("email", "priya@example.com")
		c.Locals("role", models.RoleAdmin)
		return c.Next()
	})

	group := app.Group("/api/v1/applications")
	group.Post("/", handler.Submit)
	group.Get("/", handler.List)
	group.Get("/get-login-forms", handler.GetLoginForms)
	group.Patch("/approve-reject-loan", handler.Decide)
	group.Delete("/with-draw-application", handler.Withdraw)

	app.Use(func(c *fiber.Ctx) error {
		return response.NotFound(c, "Can't find "+c.OriginalURL()+" on this server")
	})

	return app
}

func decodeEnvelope(t *testing.T, res *http.Response) map[string]interface{} {
	t.Helper()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestSubmit_Multipart(t *testing.T) {
	repo := &memoryApplicationRepository{}
	app := newTestApp(t, repo)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"applicantName":      "Priya Sharma",
		"dob":                "1992-04-17",
		"gender":             "female",
		"aadharNumber":       "123456789012",
		"panNumber":          "ABCDE1234F",
		"emailId":            "form@example.com",
		"phoneNumber":        "9876543210",
		"residentialAddress": "12 MG Road, Bengaluru",
		"permanentAddress":   "12 MG Road, Bengaluru",
		"employmentType":     "salaried",
		"companyName":        "Acme Corp",
		"income":             "45000",
		"bankName":           "State Bank",
		"accountNumber":      "123456789012",
		"ifscCode":           "SBIN0001234",
		"loanType":           "personal",
		"loanAmount":         "200000",
		"loanTenure":         "5",
		"loanPurpose":        "education",
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("incomeProof", "income.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, res.StatusCode)

	envelope := decodeEnvelope(t, res)
	assert.Equal(t, "success", envelope["status"])

	form := envelope["data"].(map[string]interface{})["form"].(map[string]interface{})
	assert.Regexp(t, `^APP-[0-9a-z]+-[A-Z0-9]{7}$`, form["applicationId"])
	assert.True(t, strings.HasPrefix(form["incomeProofUrl"].(string), "/uploads/"))
	// Authenticated submitter owns the record regardless of form value
	assert.Equal(t, "priya@example.com", form["emailId"])
}

func TestSubmit_MissingIncomeProofFails(t *testing.T) {
	repo := &memoryApplicationRepository{}
	app := newTestApp(t, repo)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("applicantName", "Priya Sharma"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/applications/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)

	envelope := decodeEnvelope(t, res)
	assert.Equal(t, "fail", envelope["status"])
	assert.Contains(t, envelope["message"], "Income proof document is required")
	assert.Empty(t, repo.apps)
}

func TestList_ReturnsResultsCount(t *testing.T) {
	repo := &memoryApplicationRepository{}
	require.NoError(t, repo.Create(context.Background(), seededApplication()))
	app := newTestApp(t, repo)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/applications/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	envelope := decodeEnvelope(t, res)
	assert.Equal(t, "success", envelope["status"])
	assert.Equal(t, float64(1), envelope["results"])
}

func TestGetLoginForms(t *testing.T) {
	repo := &memoryApplicationRepository{}
	require.NoError(t, repo.Create(context.Background(), seededApplication()))
	app := newTestApp(t, repo)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/applications/get-login-forms", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	envelope := decodeEnvelope(t, res)
	assert.Equal(t, float64(1), envelope["results"])
	loginForms := envelope["data"].(map[string]interface{})["loginForms"].([]interface{})
	assert.Len(t, loginForms, 1)
}

func TestDecide_UpdatesForm(t *testing.T) {
	repo := &memoryApplicationRepository{}
	require.NoError(t, repo.Create(context.Background(), seededApplication()))
	app := newTestApp(t, repo)

	req := jsonRequest(http.MethodPatch, "/api/v1/applications/approve-reject-loan", fiber.Map{
		"applicationId": "APP-lxyzab12-K3M9QZ1",
		"status":        models.StatusApproved,
	})

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	envelope := decodeEnvelope(t, res)
	updatedForm := envelope["data"].(map[string]interface{})["updatedForm"].(map[string]interface{})
	assert.Equal(t, models.StatusApproved, updatedForm["status"])
}

func TestDecide_MissingStatus(t *testing.T) {
	repo := &memoryApplicationRepository{}
	app := newTestApp(t, repo)

	req := jsonRequest(http.MethodPatch, "/api/v1/applications/approve-reject-loan", fiber.Map{
		"applicationId": "APP-lxyzab12-K3M9QZ1",
	})

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)

	envelope := decodeEnvelope(t, res)
	assert.Equal(t, "fail", envelope["status"])
}

func TestDecide_UnknownApplication(t *testing.T) {
	repo := &memoryApplicationRepository{}
	app := newTestApp(t, repo)

	req := jsonRequest(http.MethodPatch, "/api/v1/applications/approve-reject-loan", fiber.Map{
		"applicationId": "APP-missing-AAAAAAA",
		"status":        models.StatusApproved,
	})

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestWithdraw_ReturnsDeletedForm(t *testing.T) {
	repo := &memoryApplicationRepository{}
	require.NoError(t, repo.Create(context.Background(), seededApplication()))
	app := newTestApp(t, repo)

	req := jsonRequest(http.MethodDelete, "/api/v1/applications/with-draw-application", fiber.Map{
		"applicationId": "APP-lxyzab12-K3M9QZ1",
	})

	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	envelope := decodeEnvelope(t, res)
	assert.Equal(t, "success", envelope["status"])
	deletedForm := envelope["data"].(map[string]interface{})["deletedForm"].(map[string]interface{})
	assert.Equal(t, "APP-lxyzab12-K3M9QZ1", deletedForm["applicationId"])
	assert.Empty(t, repo.apps)

	// A second withdrawal finds nothing
	res, err = app.Test(jsonRequest(http.MethodDelete, "/api/v1/applications/with-draw-application", fiber.Map{
		"applicationId": "APP-lxyzab12-K3M9QZ1",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestWithdraw_MissingApplicationID(t *testing.T) {
	repo := &memoryApplicationRepository{}
	app := newTestApp(t, repo)

	res, err := app.Test(jsonRequest(http.MethodDelete, "/api/v1/applications/with-draw-application", fiber.Map{}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}

func TestUnmatchedRouteEnvelope(t *testing.T) {
	app := newTestApp(t, &memoryApplicationRepository{})

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)

	envelope := decodeEnvelope(t, res)
	assert.Equal(t, "fail", envelope["status"])
	assert.Contains(t, envelope["message"], "/api/v1/nope")
}
