package draft

import (
	"context"
	"time"

	"empanadas/internal/combo"

	"github.com/patrickmn/go-cache"
)

// InMemoryRepository keeps drafts in a go-cache with a per-entry TTL.
type InMemoryRepository struct {
	cache *cache.Cache
}

func NewInMemoryRepository(ttl time.Duration) *InMemoryRepository {
	return &InMemoryRepository{
		cache: cache.New(ttl, ttl/2),
	}
}

func (r *InMemoryRepository) Get(ctx context.Context, sessionID string, comboID int) (*combo.Draft, error) {
	v, ok := r.cache.Get(key(sessionID, comboID))
	if !ok {
		return nil, ErrNotFound
	}
	d := v.(combo.Draft)
	d.Selections = d.Selections.Clone()
	return &d, nil
}

func (r *InMemoryRepository) Save(ctx context.Context, d *combo.Draft) error {
	stored := *d
	stored.Selections = d.Selections.Clone()
	r.cache.SetDefault(key(d.SessionID, d.ComboID), stored)
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, sessionID string, comboID int) error {
	r.cache.Delete(key(sessionID, comboID))
	return nil
}

func (r *InMemoryRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var purged int64
	for k, item := range r.cache.Items() {
		d, ok := item.Object.(combo.Draft)
		if ok && d.UpdatedAt.Before(cutoff) {
			r.cache.Delete(k)
			purged++
		}
	}
	return purged, nil
}
