package handlers

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"loanapply/internal/adapters/persistence/models"
	"loanapply/internal/config"
	"loanapply/internal/core/domain"
	"loanapply/internal/core/services"
	"loanapply/internal/pkg/response"
	"loanapply/internal/pkg/upload"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler handles loan application endpoints
type ApplicationHandler struct {
	appService *services.ApplicationService
	cfg        *config.Config
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(appService *services.ApplicationService, cfg *config.Config) *ApplicationHandler {
	return &ApplicationHandler{
		appService: appService,
		cfg:        cfg,
	}
}

// DecideRequest represents an admin decision request body
type DecideRequest struct {
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
}

// WithdrawRequest represents a withdrawal request body
type WithdrawRequest struct {
	ApplicationID string `json:"applicationId"`
}

// Submit handles a new loan application submission
// @Summary Submit loan application
// @Description Submit a new loan application with supporting documents
// @Tags Applications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	input := &services.SubmitInput{
		ApplicantName:         strings.TrimSpace(c.FormValue("applicantName")),
		Gender:                c.FormValue("gender"),
		Nationality:           strings.TrimSpace(c.FormValue("nationality")),
		AadharNumber:          strings.TrimSpace(c.FormValue("aadharNumber")),
		PANNumber:             strings.ToUpper(strings.TrimSpace(c.FormValue("panNumber"))),
		EmailID:               strings.TrimSpace(c.FormValue("emailId")),
		PhoneNumber:           strings.TrimSpace(c.FormValue("phoneNumber")),
		ResidentialAddress:    strings.TrimSpace(c.FormValue("residentialAddress")),
		PermanentAddress:      strings.TrimSpace(c.FormValue("permanentAddress")),
		EmploymentType:        c.FormValue("employmentType"),
		CompanyName:           strings.TrimSpace(c.FormValue("companyName")),
		SelfEmploymentType:    strings.TrimSpace(c.FormValue("selfEmploymentType")),
		BusinessType:          strings.TrimSpace(c.FormValue("businessType")),
		BankName:              strings.TrimSpace(c.FormValue("bankName")),
		AccountNumber:         strings.TrimSpace(c.FormValue("accountNumber")),
		IFSCCode:              strings.ToUpper(strings.TrimSpace(c.FormValue("ifscCode"))),
		LoanType:              c.FormValue("loanType"),
		LoanPurpose:           c.FormValue("loanPurpose"),
		CollateralType:        strings.TrimSpace(c.FormValue("collateralType")),
		CollateralDescription: strings.TrimSpace(c.FormValue("collateralDescription")),
	}

	if dob := c.FormValue("dob"); dob != "" {
		parsed, err := time.Parse("2006-01-02", dob)
		if err != nil {
			return response.BadRequest(c, "dob must be in YYYY-MM-DD format")
		}
		input.DOB = parsed
	}

	input.Income, _ = strconv.ParseFloat(c.FormValue("income"), 64)
	input.LoanAmount, _ = strconv.ParseFloat(c.FormValue("loanAmount"), 64)
	input.LoanTenure, _ = strconv.Atoi(c.FormValue("loanTenure"))
	input.CollateralValue, _ = strconv.ParseFloat(c.FormValue("collateralValue"), 64)

	// Income proof is required; its absence surfaces as a validation
	// failure on the empty stored path.
	if file, err := c.FormFile("incomeProof"); err == nil {
		stored, err := upload.Save(c, file, h.cfg.Upload.Dir)
		if err != nil {
			log.Printf("⚠️ Failed to store income proof: %v", err)
			return response.InternalServerError(c, "Failed to store uploaded document")
		}
		input.IncomeProofPath = stored
	}

	// Collateral document is optional for personal loans
	if file, err := c.FormFile("collateralDocument"); err == nil {
		stored, err := upload.Save(c, file, h.cfg.Upload.Dir)
		if err != nil {
			log.Printf("⚠️ Failed to store collateral document: %v", err)
			return response.InternalServerError(c, "Failed to store uploaded document")
		}
		input.CollateralDocumentPath = stored
	}

	// The authenticated submitter owns the application
	if email, ok := c.Locals("email").(string); ok && email != "" {
		input.SubmitterEmail = email
	}

	app, err := h.appService.Submit(c.Context(), input)
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Created(c, fiber.Map{
		"form": app.ToResponse(),
	})
}

// List handles the admin application listing with query features
// @Summary List applications
// @Description List applications with filtering, sorting, field selection and pagination
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort fields, comma separated, '-' prefix for descending"
// @Param fields query string false "Fields to project, comma separated"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	apps, err := h.appService.ListAll(c.Context(), c.Queries())
	if err != nil {
		return h.mapError(c, err)
	}

	forms := make([]*models.ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		forms = append(forms, app.ToResponse())
	}

	return response.SuccessList(c, len(forms), forms)
}

// GetLoginForms handles listing the authenticated submitter's applications
// @Summary List own applications
// @Description List applications submitted by the authenticated user
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /applications/get-login-forms [get]
func (h *ApplicationHandler) GetLoginForms(c *fiber.Ctx) error {
	email, ok := c.Locals("email").(string)
	if !ok || email == "" {
		return response.Unauthorized(c, "Unauthorized")
	}

	apps, err := h.appService.ListBySubmitter(c.Context(), email)
	if err != nil {
		return h.mapError(c, err)
	}

	loginForms := make([]*models.ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		loginForms = append(loginForms, app.ToResponse())
	}

	return response.SuccessList(c, len(loginForms), fiber.Map{
		"loginForms": loginForms,
	})
}

// Decide handles an admin approve/reject decision
// @Summary Approve or reject application
// @Description Set the decision status on a loan application
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DecideRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/approve-reject-loan [patch]
func (h *ApplicationHandler) Decide(c *fiber.Ctx) error {
	var req DecideRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	app, err := h.appService.Decide(c.Context(), strings.TrimSpace(req.ApplicationID), strings.TrimSpace(req.Status))
	if err != nil {
		return h.mapError(c, err)
	}

	return response.Success(c, fiber.Map{
		"updatedForm": app.ToResponse(),
	})
}

// Withdraw handles a submitter withdrawing their application
// @Summary Withdraw application
// @Description Permanently remove a submitted loan application
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body WithdrawRequest true "Application to withdraw"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applications/with-draw-application [delete]
func (h *ApplicationHandler) Withdraw(c *fiber.Ctx) error {
	var req WithdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	app, err := h.appService.Withdraw(c.Context(), strings.TrimSpace(req.ApplicationID))
	if err != nil {
		return h.mapError(c, err)
	}

	return response.SuccessMessage(c, "Application withdrawn successfully", fiber.Map{
		"deletedForm": app.ToResponse(),
	})
}

// mapError translates domain errors into the uniform envelope
func (h *ApplicationHandler) mapError(c *fiber.Ctx, err error) error {
	if ve, ok := domain.AsValidationError(err); ok {
		msgs := make([]string, 0, len(ve.Violations))
		for _, v := range ve.Violations {
			msgs = append(msgs, v.Message)
		}
		return response.BadRequest(c, "Invalid input data: "+strings.Join(msgs, ". "))
	}

	switch {
	case errors.Is(err, domain.ErrConflict):
		return response.Conflict(c, "Duplicate value for a unique field")
	case errors.Is(err, domain.ErrBadRequest):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, "No application found with that ID")
	default:
		log.Printf("❌ Application operation failed: %v", err)
		return response.InternalServerError(c, "Something went wrong")
	}
}
