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

// SimulationRepository provides database access for the simulation ledger
// and the metrics counters it drives.
type SimulationRepository struct {
	db *sqlx.DB
}

// NewSimulationRepository creates a new instance of SimulationRepository.
func NewSimulationRepository(db *sqlx.DB) *SimulationRepository {
	return &SimulationRepository{db: db}
}

// ListByUser returns the caller's simulations newest first, joined with
// template and campaign summaries, plus the total count for pagination.
func (r *SimulationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.SimulationRow, int, error) {
	const query = `SELECT s.id, s.user_id, s.template_id, s.campaign_id, s.sent_at, s.clicked, s.completed_at,
		t.name AS template_name, t.subject AS template_subject, t.difficulty AS template_difficulty,
		c.name AS campaign_name
	FROM simulation_emails s
	JOIN email_templates t ON t.id = s.template_id
	LEFT JOIN campaigns c ON c.id = s.campaign_id
	WHERE s.user_id = $1
	ORDER BY s.sent_at DESC
	LIMIT $2 OFFSET $3`

	var rows []models.SimulationRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list simulations: %w", err)
	}

	const countQuery = `SELECT COUNT(*) FROM simulation_emails WHERE user_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("count simulations: %w", err)
	}

	return rows, total, nil
}

// FindByID returns a single ledger entry.
func (r *SimulationRepository) FindByID(ctx context.Context, id string) (*models.SimulationEmail, error) {
	const query = `SELECT id, user_id, template_id, campaign_id, sent_at, clicked, completed_at FROM simulation_emails WHERE id = $1 LIMIT 1`
	var sim models.SimulationEmail
	if err := r.db.GetContext(ctx, &sim, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find simulation by id: %w", err)
	}
	return &sim, nil
}

// RecordClick marks the simulation clicked and bumps the owner's metrics in
// one transaction. The clicked flag is flipped with a conditional update so
// repeated clicks on the same simulation never double-count: the metrics
// upsert only runs when the flag actually transitioned false -> true.
// It reports whether the transition happened.
func (r *SimulationRepository) RecordClick(ctx context.Context, sim *models.SimulationEmail) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin record click: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const mark = `UPDATE simulation_emails SET clicked = TRUE WHERE id = $1 AND clicked = FALSE`
	res, err := tx.ExecContext(ctx, mark, sim.ID)
	if err != nil {
		return false, fmt.Errorf("mark clicked: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark clicked rows affected: %w", err)
	}
	if affected == 0 {
		// Already clicked; nothing left to do.
		return false, tx.Commit()
	}

	now := time.Now().UTC()
	const upsert = `INSERT INTO user_metrics (id, user_id, total_sent, total_clicked, total_completed, last_activity)
	VALUES ($1, $2, 1, 1, 0, $3)
	ON CONFLICT (user_id) DO UPDATE SET total_clicked = user_metrics.total_clicked + 1, last_activity = EXCLUDED.last_activity`
	if _, err := tx.ExecContext(ctx, upsert, uuid.NewString(), sim.UserID, now); err != nil {
		return false, fmt.Errorf("upsert click metrics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit record click: %w", err)
	}
	return true, nil
}

// MarkCompleted records training completion for a clicked simulation. The
// completion pathway requires a prior click, which preserves the
// total_completed <= total_clicked invariant. Reports whether the row
// transitioned.
func (r *SimulationRepository) MarkCompleted(ctx context.Context, sim *models.SimulationEmail) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin mark completed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	const mark = `UPDATE simulation_emails SET completed_at = $2 WHERE id = $1 AND clicked = TRUE AND completed_at IS NULL`
	res, err := tx.ExecContext(ctx, mark, sim.ID, now)
	if err != nil {
		return false, fmt.Errorf("mark completed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark completed rows affected: %w", err)
	}
	if affected == 0 {
		return false, tx.Commit()
	}

	const bump = `UPDATE user_metrics SET total_completed = total_completed + 1, last_activity = $2 WHERE user_id = $1`
	if _, err := tx.ExecContext(ctx, bump, sim.UserID, now); err != nil {
		return false, fmt.Errorf("bump completed metrics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit mark completed: %w", err)
	}
	return true, nil
}

// CreateBatch inserts the dispatched ledger rows and increments each
// recipient's total_sent counter, all in one transaction.
func (r *SimulationRepository) CreateBatch(ctx context.Context, sims []models.SimulationEmail) error {
	if len(sims) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insert = `INSERT INTO simulation_emails (id, user_id, template_id, campaign_id, sent_at, clicked, completed_at) VALUES (:id, :user_id, :template_id, :campaign_id, :sent_at, :clicked, :completed_at)`
	const upsert = `INSERT INTO user_metrics (id, user_id, total_sent, total_clicked, total_completed, last_activity)
	VALUES ($1, $2, 1, 0, 0, $3)
	ON CONFLICT (user_id) DO UPDATE SET total_sent = user_metrics.total_sent + 1, last_activity = EXCLUDED.last_activity`

	for i := range sims {
		sim := &sims[i]
		if sim.ID == "" {
			sim.ID = uuid.NewString()
		}
		if sim.SentAt.IsZero() {
			sim.SentAt = time.Now().UTC()
		}
		if _, err := tx.NamedExecContext(ctx, insert, sim); err != nil {
			return fmt.Errorf("insert simulation: %w", err)
		}
		if _, err := tx.ExecContext(ctx, upsert, uuid.NewString(), sim.UserID, sim.SentAt); err != nil {
			return fmt.Errorf("upsert sent metrics: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create batch: %w", err)
	}
	return nil
}
