package validation

import (
	"regexp"

	"loanapply/internal/adapters/persistence/models"
)

// Validation thresholds
const (
	MinIncome     = 10000.0
	MinLoanAmount = 50000.0
	MinTenure     = 1
	MaxTenure     = 50
)

// Field enums
var (
	Genders         = []string{"male", "female", "other"}
	EmploymentTypes = []string{"salaried", "self_employed", "business"}
	LoanTypes       = []string{"home", "personal", "vehicle", "business"}
	LoanPurposes    = []string{"education", "medical", "wedding", "travel", "home_renovation", "debt_consolidation", "other"}
	Statuses        = []string{models.StatusPending, models.StatusUnderReview, models.StatusApproved, models.StatusRejected, models.StatusWithdrawn}
)

var (
	aadharRe  = regexp.MustCompile(`^[0-9]{12}$`)
	panRe     = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	emailRe   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe   = regexp.MustCompile(`^[0-9]{10}$`)
	accountRe = regexp.MustCompile(`^[0-9]{9,18}$`)
	ifscRe    = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
)

// isPersonal reports whether the candidate is a personal loan.
// Collateral fields and the collateral document are required for every
// other loan type; loan purpose is required only for personal loans.
func isPersonal(a *models.Application) bool {
	return a.LoanType == "personal"
}

func notPersonal(a *models.Application) bool {
	return !isPersonal(a)
}

// applicationRules is the declarative rule table for a loan
// application. Uniqueness is not checked here: the store enforces it
// and surfaces conflicts as a distinct error kind.
var applicationRules = []Rule{
	{Field: "applicantName", Checks: []Check{
		required(func(a *models.Application) string { return a.ApplicantName }, "Applicant name is required"),
		lengthBetween(func(a *models.Application) string { return a.ApplicantName }, 4, 100, "Applicant name must be between 4 and 100 characters"),
	}},
	{Field: "dob", Checks: []Check{
		func(a *models.Application) string {
			if !notZeroTime(a) {
				return "Applicant date of birth is required"
			}
			return ""
		},
	}},
	{Field: "gender", Checks: []Check{
		oneOf(func(a *models.Application) string { return a.Gender }, Genders, enumMsg("Gender", Genders)),
	}},
	{Field: "nationality", Checks: []Check{
		required(func(a *models.Application) string { return a.Nationality }, "Nationality is required"),
	}},
	{Field: "aadharNumber", Checks: []Check{
		required(func(a *models.Application) string { return a.AadharNumber }, "Aadhar number is required"),
		pattern(func(a *models.Application) string { return a.AadharNumber }, aadharRe, "Aadhar number must be exactly 12 digits"),
	}},
	{Field: "panNumber", Checks: []Check{
		required(func(a *models.Application) string { return a.PANNumber }, "PAN number is required"),
		pattern(func(a *models.Application) string { return a.PANNumber }, panRe, "PAN number must be 5 letters, 4 digits and a letter"),
	}},
	{Field: "emailId", Checks: []Check{
		pattern(func(a *models.Application) string { return a.EmailID }, emailRe, "Enter a valid email address"),
	}},
	{Field: "phoneNumber", Checks: []Check{
		required(func(a *models.Application) string { return a.PhoneNumber }, "Phone number is required"),
		pattern(func(a *models.Application) string { return a.PhoneNumber }, phoneRe, "Phone number must be exactly 10 digits"),
	}},
	{Field: "residentialAddress", Checks: []Check{
		required(func(a *models.Application) string { return a.ResidentialAddress }, "Residential address is required"),
	}},
	{Field: "permanentAddress", Checks: []Check{
		required(func(a *models.Application) string { return a.PermanentAddress }, "Permanent address is required"),
	}},
	{Field: "employmentType", Checks: []Check{
		required(func(a *models.Application) string { return a.EmploymentType }, "Employment type is required"),
		oneOf(func(a *models.Application) string { return a.EmploymentType }, EmploymentTypes, enumMsg("Employment type", EmploymentTypes)),
	}},
	{Field: "income", Checks: []Check{
		minFloat(func(a *models.Application) float64 { return a.Income }, MinIncome, "Income must be at least 10000"),
	}},
	{Field: "bankName", Checks: []Check{
		required(func(a *models.Application) string { return a.BankName }, "Bank name is required"),
	}},
	{Field: "accountNumber", Checks: []Check{
		required(func(a *models.Application) string { return a.AccountNumber }, "Account number is required"),
		pattern(func(a *models.Application) string { return a.AccountNumber }, accountRe, "Account number must be 9 to 18 digits"),
	}},
	{Field: "ifscCode", Checks: []Check{
		required(func(a *models.Application) string { return a.IFSCCode }, "IFSC code is required"),
		pattern(func(a *models.Application) string { return a.IFSCCode }, ifscRe, "Enter a valid IFSC code"),
	}},
	{Field: "loanType", Checks: []Check{
		required(func(a *models.Application) string { return a.LoanType }, "Loan type is required"),
		oneOf(func(a *models.Application) string { return a.LoanType }, LoanTypes, enumMsg("Loan type", LoanTypes)),
	}},
	{Field: "loanAmount", Checks: []Check{
		minFloat(func(a *models.Application) float64 { return a.LoanAmount }, MinLoanAmount, "Loan amount must be at least 50000"),
	}},
	{Field: "loanTenure", Checks: []Check{
		intBetween(func(a *models.Application) int { return a.LoanTenure }, MinTenure, MaxTenure, "Loan tenure must be between 1 and 50 years"),
	}},
	{Field: "loanPurpose", Checks: []Check{
		requiredWhen(isPersonal, func(a *models.Application) string { return a.LoanPurpose }, "Loan purpose is required for personal loans"),
		oneOf(func(a *models.Application) string { return a.LoanPurpose }, LoanPurposes, enumMsg("Loan purpose", LoanPurposes)),
	}},
	{Field: "collateralType", Checks: []Check{
		requiredWhen(notPersonal, func(a *models.Application) string { return a.CollateralType }, "Collateral type is required for non-personal loans"),
	}},
	{Field: "collateralValue", Checks: []Check{
		positiveWhen(notPersonal, func(a *models.Application) float64 { return a.CollateralValue }, "Collateral value is required for non-personal loans"),
	}},
	{Field: "collateralDescription", Checks: []Check{
		requiredWhen(notPersonal, func(a *models.Application) string { return a.CollateralDescription }, "Collateral description is required for non-personal loans"),
	}},
	{Field: "incomeProof", Checks: []Check{
		required(func(a *models.Application) string { return a.IncomeProofPath }, "Income proof document is required"),
	}},
	{Field: "collateralDocument", Checks: []Check{
		requiredWhen(notPersonal, func(a *models.Application) string { return a.CollateralDocumentPath }, "Collateral document is required for non-personal loans"),
	}},
	{Field: "status", Checks: []Check{
		required(func(a *models.Application) string { return a.Status }, "Status is required"),
		oneOf(func(a *models.Application) string { return a.Status }, Statuses, enumMsg("Status", Statuses)),
	}},
}

// ValidateApplication validates a candidate application record against
// the declarative rule table, collecting every violation.
func ValidateApplication(a *models.Application) error {
	return Evaluate(applicationRules, a)
}

// ValidStatus reports whether s is a known application status.
func ValidStatus(s string) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}
