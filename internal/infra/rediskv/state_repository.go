// Package rediskv is the Redis-backed notification state store, for
// deployments without a Postgres instance to hand.
package rediskv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bin_collection_notifier/internal/domain/notification"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "binday:state:"

// stateRecord is the stored JSON shape. LastNotified travels as a plain
// calendar date; the zone is reapplied by the caller's comparisons, which
// only ever look at year/month/day.
type stateRecord struct {
	LastNotified string `json:"last_notified,omitempty"`
	Snapshot     string `json:"snapshot,omitempty"`
}

// StateRepository implements notification.Repository on go-redis.
type StateRepository struct {
	client *redis.Client
}

func NewStateRepository(client *redis.Client) *StateRepository {
	return &StateRepository{client: client}
}

func (r *StateRepository) Get(ctx context.Context, addressKey string) (*notification.State, error) {
	raw, err := r.client.Get(ctx, keyPrefix+addressKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, notification.ErrStateNotFound
		}
		return nil, fmt.Errorf("error getting notification state: %w", err)
	}
	var rec stateRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("error decoding notification state: %w", err)
	}
	st := &notification.State{AddressKey: addressKey, Snapshot: rec.Snapshot}
	if rec.LastNotified != "" {
		t, err := time.Parse("2006-01-02", rec.LastNotified)
		if err != nil {
			return nil, fmt.Errorf("error parsing stored last_notified: %w", err)
		}
		st.LastNotified = t
	}
	return st, nil
}

func (r *StateRepository) Put(ctx context.Context, state *notification.State) error {
	rec := stateRecord{Snapshot: state.Snapshot}
	if !state.LastNotified.IsZero() {
		rec.LastNotified = state.LastNotified.Format("2006-01-02")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("error encoding notification state: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+state.AddressKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("error setting notification state: %w", err)
	}
	return nil
}
