package draft

import (
	"context"
	"encoding/json"
	"time"

	"empanadas/internal/combo"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, sessionID string, comboID int) (*combo.Draft, error) {
	var (
		d   combo.Draft
		raw []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT session_id, combo_id, current_step, selections, updated_at
		FROM combo_drafts
		WHERE session_id = $1 AND combo_id = $2
	`, sessionID, comboID).Scan(&d.SessionID, &d.ComboID, &d.CurrentStep, &raw, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get draft")
	}

	if err := json.Unmarshal(raw, &d.Selections); err != nil {
		return nil, errors.Wrap(err, "decode draft selections")
	}
	return &d, nil
}

// Save upserts the (session, combo) row.
func (r *PostgresRepository) Save(ctx context.Context, d *combo.Draft) error {
	raw, err := json.Marshal(d.Selections)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO combo_drafts (session_id, combo_id, current_step, selections, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, combo_id)
		DO UPDATE SET
			current_step = EXCLUDED.current_step,
			selections = EXCLUDED.selections,
			updated_at = EXCLUDED.updated_at
	`, d.SessionID, d.ComboID, d.CurrentStep, raw, d.UpdatedAt)
	return errors.Wrap(err, "save draft")
}

func (r *PostgresRepository) Delete(ctx context.Context, sessionID string, comboID int) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM combo_drafts
		WHERE session_id = $1 AND combo_id = $2
	`, sessionID, comboID)
	return errors.Wrap(err, "delete draft")
}

func (r *PostgresRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM combo_drafts WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "purge drafts")
	}
	return tag.RowsAffected(), nil
}
