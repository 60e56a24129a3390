package models

import (
	"time"

	"loanapply/internal/pkg/upload"

	"gorm.io/gorm"
)

// ============================================================
// Auth tables
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'USER'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// User roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Application table
// ============================================================

// Application statuses
const (
	StatusPending     = "Pending"
	StatusUnderReview = "Under Review"
	StatusApproved    = "Approved"
	StatusRejected    = "Rejected"
	StatusWithdrawn   = "Withdrawn"
)

// Application represents a loan application record. Withdrawn
// applications are hard-deleted, so there is no DeletedAt column.
type Application struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ApplicationID string `gorm:"uniqueIndex;size:40;not null" json:"applicationId"`

	// Applicant
	ApplicantName      string    `gorm:"size:100;not null" json:"applicantName"`
	DOB                time.Time `gorm:"type:date" json:"dob"`
	Gender             string    `gorm:"size:10" json:"gender"`
	Nationality        string    `gorm:"size:50;default:'India'" json:"nationality"`
	AadharNumber       string    `gorm:"uniqueIndex;size:12;not null" json:"aadharNumber"`
	PANNumber          string    `gorm:"uniqueIndex;size:10;not null;column:pan_number" json:"panNumber"`
	EmailID            string    `gorm:"size:100;index;column:email_id" json:"emailId"`
	PhoneNumber        string    `gorm:"uniqueIndex;size:10;not null" json:"phoneNumber"`
	ResidentialAddress string    `gorm:"type:text" json:"residentialAddress"`
	PermanentAddress   string    `gorm:"type:text" json:"permanentAddress"`

	// Employment
	EmploymentType     string `gorm:"size:20" json:"employmentType"`
	CompanyName        string `gorm:"size:100" json:"companyName,omitempty"`
	SelfEmploymentType string `gorm:"size:100" json:"selfEmploymentType,omitempty"`
	BusinessType       string `gorm:"size:100" json:"businessType,omitempty"`

	// Financial
	Income        float64 `gorm:"type:decimal(15,2)" json:"income"`
	BankName      string  `gorm:"size:100" json:"bankName"`
	AccountNumber string  `gorm:"uniqueIndex;size:18;not null" json:"accountNumber"`
	IFSCCode      string  `gorm:"size:11;column:ifsc_code" json:"ifscCode"`

	// Loan
	LoanType              string  `gorm:"size:20" json:"loanType"`
	LoanAmount            float64 `gorm:"type:decimal(15,2)" json:"loanAmount"`
	LoanTenure            int     `json:"loanTenure"`
	LoanPurpose           string  `gorm:"size:50" json:"loanPurpose,omitempty"`
	CollateralType        string  `gorm:"size:100" json:"collateralType,omitempty"`
	CollateralValue       float64 `gorm:"type:decimal(15,2)" json:"collateralValue,omitempty"`
	CollateralDescription string  `gorm:"type:text" json:"collateralDescription,omitempty"`

	// Documents (normalized paths, forward slashes only)
	IncomeProofPath        string `gorm:"size:255;not null" json:"-"`
	CollateralDocumentPath string `gorm:"size:255" json:"-"`

	Status    string    `gorm:"size:20;default:'Pending'" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Application) TableName() string {
	return "applications"
}

// ApplicationResponse DTO. Document URLs are derived from the stored
// paths at serialization time and never persisted.
type ApplicationResponse struct {
	ApplicationID         string    `json:"applicationId"`
	ApplicantName         string    `json:"applicantName"`
	DOB                   time.Time `json:"dob"`
	Gender                string    `json:"gender,omitempty"`
	Nationality           string    `json:"nationality"`
	AadharNumber          string    `json:"aadharNumber"`
	PANNumber             string    `json:"panNumber"`
	EmailID               string    `json:"emailId,omitempty"`
	PhoneNumber           string    `json:"phoneNumber"`
	ResidentialAddress    string    `json:"residentialAddress"`
	PermanentAddress      string    `json:"permanentAddress"`
	EmploymentType        string    `json:"employmentType"`
	CompanyName           string    `json:"companyName,omitempty"`
	SelfEmploymentType    string    `json:"selfEmploymentType,omitempty"`
	BusinessType          string    `json:"businessType,omitempty"`
	Income                float64   `json:"income"`
	BankName              string    `json:"bankName"`
	AccountNumber         string    `json:"accountNumber"`
	IFSCCode              string    `json:"ifscCode"`
	LoanType              string    `json:"loanType"`
	LoanAmount            float64   `json:"loanAmount"`
	LoanTenure            int       `json:"loanTenure"`
	LoanPurpose           string    `json:"loanPurpose,omitempty"`
	CollateralType        string    `json:"collateralType,omitempty"`
	CollateralValue       float64   `json:"collateralValue,omitempty"`
	CollateralDescription string    `json:"collateralDescription,omitempty"`
	IncomeProofURL        string    `json:"incomeProofUrl"`
	CollateralDocumentURL string    `json:"collateralDocumentUrl,omitempty"`
	Status                string    `json:"status"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

func (a *Application) ToResponse() *ApplicationResponse {
	return &ApplicationResponse{
		ApplicationID:         a.ApplicationID,
		ApplicantName:         a.ApplicantName,
		DOB:                   a.DOB,
		Gender:                a.Gender,
		Nationality:           a.Nationality,
		AadharNumber:          a.AadharNumber,
		PANNumber:             a.PANNumber,
		EmailID:               a.EmailID,
		PhoneNumber:           a.PhoneNumber,
		ResidentialAddress:    a.ResidentialAddress,
		PermanentAddress:      a.PermanentAddress,
		EmploymentType:        a.EmploymentType,
		CompanyName:           a.CompanyName,
		SelfEmploymentType:    a.SelfEmploymentType,
		BusinessType:          a.BusinessType,
		Income:                a.Income,
		BankName:              a.BankName,
		AccountNumber:         a.AccountNumber,
		IFSCCode:              a.IFSCCode,
		LoanType:              a.LoanType,
		LoanAmount:            a.LoanAmount,
		LoanTenure:            a.LoanTenure,
		LoanPurpose:           a.LoanPurpose,
		CollateralType:        a.CollateralType,
		CollateralValue:       a.CollateralValue,
		CollateralDescription: a.CollateralDescription,
		IncomeProofURL:        upload.FileURL(a.IncomeProofPath),
		CollateralDocumentURL: upload.FileURL(a.CollateralDocumentPath),
		Status:                a.Status,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Application{},
	)
}
