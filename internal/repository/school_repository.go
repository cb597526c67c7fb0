package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/phishwise/phishwise-api/internal/models"
)

// SchoolRepository provides database access for schools.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository creates a new instance of SchoolRepository.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

const schoolColumns = `id, name, invite_code, created_by, created_at`

// CreateWithManager inserts the school and promotes its creator to MANAGER
// in one transaction: either both writes land or neither does.
func (r *SchoolRepository) CreateWithManager(ctx context.Context, school *models.School) error {
	if school.ID == "" {
		school.ID = uuid.NewString()
	}
	if school.CreatedAt.IsZero() {
		school.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create school: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertSchool = `INSERT INTO schools (id, name, invite_code, created_by, created_at) VALUES (:id, :name, :invite_code, :created_by, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertSchool, school); err != nil {
		return fmt.Errorf("insert school: %w", err)
	}

	const promote = `UPDATE users SET role = $2, school_id = $3, updated_at = $4 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, promote, school.CreatedBy, models.RoleManager, school.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("promote school creator: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create school: %w", err)
	}
	return nil
}

// FindByID returns a school by identifier.
func (r *SchoolRepository) FindByID(ctx context.Context, id string) (*models.School, error) {
	query := fmt.Sprintf(`SELECT %s FROM schools WHERE id = $1 LIMIT 1`, schoolColumns)
	var school models.School
	if err := r.db.GetContext(ctx, &school, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find school by id: %w", err)
	}
	return &school, nil
}

// FindByInviteCode returns the school owning the given (normalized) code.
func (r *SchoolRepository) FindByInviteCode(ctx context.Context, code string) (*models.School, error) {
	query := fmt.Sprintf(`SELECT %s FROM schools WHERE invite_code = $1 LIMIT 1`, schoolColumns)
	var school models.School
	if err := r.db.GetContext(ctx, &school, query, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find school by invite code: %w", err)
	}
	return &school, nil
}
