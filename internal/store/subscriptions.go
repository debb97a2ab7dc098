package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// GetSubscription retrieves an owner's subscription row.
// Returns (nil, nil) when the owner has no row, which callers treat as free.
func (s *SQLiteStore) GetSubscription(ctx context.Context, ownerID string) (*Subscription, error) {
	sub := &Subscription{}
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT owner_id, plan, status, updated_at FROM subscriptions WHERE owner_id = ?`,
		ownerID,
	).Scan(&sub.OwnerID, &sub.Plan, &sub.Status, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting subscription for %s: %w", ownerID, err)
	}
	sub.UpdatedAt = parseTime(updatedAt)
	return sub, nil
}

// SetSubscription upserts an owner's plan row.
func (s *SQLiteStore) SetSubscription(ctx context.Context, ownerID, plan, status string) error {
	if plan != PlanFree && plan != PlanPremium {
		return fmt.Errorf("unknown plan %q", plan)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (owner_id, plan, status, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner_id) DO UPDATE SET plan = excluded.plan, status = excluded.status, updated_at = excluded.updated_at`,
		ownerID, plan, status, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("setting subscription for %s: %w", ownerID, err)
	}
	return nil
}
