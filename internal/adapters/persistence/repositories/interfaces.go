package repositories

import (
	"context"
	"time"

	"loanapply/internal/adapters/persistence/models"
	"loanapply/internal/pkg/apiquery"
)

// ApplicationRepository defines application data access
type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByApplicationID(ctx context.Context, applicationID string) (*models.Application, error)
	FindByEmail(ctx context.Context, email string) ([]*models.Application, error)
	List(ctx context.Context, opts *apiquery.Options) ([]*models.Application, error)
	Update(ctx context.Context, app *models.Application) error
	DeleteByApplicationID(ctx context.Context, applicationID string) (*models.Application, error)
	FindPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Application, error)
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}
