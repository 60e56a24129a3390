package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loanapply/internal/adapters/persistence/models"
	"loanapply/internal/core/domain"
	"loanapply/internal/pkg/apiquery"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// applicationRepository implements ApplicationRepository on GORM/MySQL
type applicationRepository struct {
	db          *gorm.DB
	emailUnique bool
}

// NewApplicationRepository creates a new application repository.
// emailUnique enables the optional uniqueness constraint on the
// submitter email; it is checked here rather than by a schema index so
// the flag can change without a migration.
func NewApplicationRepository(db *gorm.DB, emailUnique bool) ApplicationRepository {
	return &applicationRepository{db: db, emailUnique: emailUnique}
}

// Create persists a new application. Unique-index violations surface
// as the domain conflict error, distinct from validation failures.
func (r *applicationRepository) Create(ctx context.Context, app *models.Application) error {
	if r.emailUnique && app.EmailID != "" {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.Application{}).
			Where("email_id = ?", app.EmailID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: emailId", domain.ErrConflict)
		}
	}

	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return err
	}
	return nil
}

// GetByApplicationID gets an application by its public identifier
func (r *applicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

// FindByEmail gets applications submitted with the given email
func (r *applicationRepository) FindByEmail(ctx context.Context, email string) ([]*models.Application, error) {
	var apps []*models.Application
	err := r.db.WithContext(ctx).
		Where("email_id = ?", email).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

// List executes a parsed query description against the store
func (r *applicationRepository) List(ctx context.Context, opts *apiquery.Options) ([]*models.Application, error) {
	var apps []*models.Application
	q := opts.Apply(r.db.WithContext(ctx).Model(&models.Application{}))
	err := q.Find(&apps).Error
	return apps, err
}

// Update saves the full record, re-triggering autoUpdateTime
func (r *applicationRepository) Update(ctx context.Context, app *models.Application) error {
	if err := r.db.WithContext(ctx).Save(app).Error; err != nil {
		if isDuplicateEntry(err) {
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return err
	}
	return nil
}

// DeleteByApplicationID hard-deletes the matching record and returns
// its snapshot. The Application model carries no DeletedAt, so Delete
// removes the row permanently.
func (r *applicationRepository) DeleteByApplicationID(ctx context.Context, applicationID string) (*models.Application, error) {
	app, err := r.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Delete(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

// FindPendingOlderThan lists Pending applications created before cutoff
func (r *applicationRepository) FindPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Application, error) {
	var apps []*models.Application
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Where("created_at < ?", cutoff).
		Find(&apps).Error
	return apps, err
}

// isDuplicateEntry reports whether err is a MySQL unique-index
// violation (error 1062).
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
