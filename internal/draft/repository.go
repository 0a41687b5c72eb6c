package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"empanadas/internal/combo"
)

var ErrNotFound = errors.New("draft not found")

// Repository persists builder drafts keyed by (sessionID, comboID).
type Repository interface {
	Get(ctx context.Context, sessionID string, comboID int) (*combo.Draft, error)
	Save(ctx context.Context, d *combo.Draft) error
	Delete(ctx context.Context, sessionID string, comboID int) error
	// PurgeOlderThan deletes drafts last written before cutoff.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

func key(sessionID string, comboID int) string {
	return fmt.Sprintf("combo-draft:%s:%d", sessionID, comboID)
}
