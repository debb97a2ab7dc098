package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AddTarget inserts a new target row. The caller supplies the id.
func (s *SQLiteStore) AddTarget(ctx context.Context, t *Target) error {
	if t.ID == "" {
		return fmt.Errorf("target id is required")
	}
	if t.OwnerID == "" {
		return fmt.Errorf("target owner id is required")
	}
	if t.Status == "" {
		t.Status = StatusActive
	}

	var targetDate interface{}
	if t.TargetDate != nil {
		targetDate = formatTime(*t.TargetDate)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO targets (id, owner_id, title, description, target_amount, current_amount,
		                      currency, target_date, status, target_type, category, priority, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Title, t.Description, t.TargetAmount.String(), t.CurrentAmount.String(),
		t.Currency, targetDate, t.Status, t.TargetType, t.Category, t.Priority,
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("inserting target: %w", err)
	}
	return nil
}

// GetTarget retrieves one target by id, scoped to its owner.
// Returns (nil, nil) when no row matches.
func (s *SQLiteStore) GetTarget(ctx context.Context, ownerID, id string) (*Target, error) {
	t := &Target{}
	var targetAmount, currentAmount string
	var targetDate sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, description, target_amount, current_amount,
		        currency, target_date, status, target_type, category, priority
		 FROM targets WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &targetAmount, &currentAmount,
		&t.Currency, &targetDate, &t.Status, &t.TargetType, &t.Category, &t.Priority)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting target %s: %w", id, err)
	}

	if t.TargetAmount, err = decimal.NewFromString(targetAmount); err != nil {
		return nil, fmt.Errorf("parsing target amount of %s: %w", id, err)
	}
	if t.CurrentAmount, err = decimal.NewFromString(currentAmount); err != nil {
		return nil, fmt.Errorf("parsing current amount of %s: %w", id, err)
	}
	if targetDate.Valid {
		d := parseTime(targetDate.String)
		t.TargetDate = &d
	}
	return t, nil
}

// ListTargets returns an owner's active targets, highest priority first.
func (s *SQLiteStore) ListTargets(ctx context.Context, ownerID string) ([]*Target, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, title, description, target_amount, current_amount,
		        currency, target_date, status, target_type, category, priority
		 FROM targets WHERE owner_id = ? AND status = ?
		 ORDER BY priority DESC, created_at DESC`,
		ownerID, StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("listing targets: %w", err)
	}
	defer rows.Close()

	var out []*Target
	for rows.Next() {
		t := &Target{}
		var targetAmount, currentAmount string
		var targetDate sql.NullString
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &targetAmount, &currentAmount,
			&t.Currency, &targetDate, &t.Status, &t.TargetType, &t.Category, &t.Priority); err != nil {
			return nil, fmt.Errorf("scanning target: %w", err)
		}
		if t.TargetAmount, err = decimal.NewFromString(targetAmount); err != nil {
			return nil, fmt.Errorf("parsing target amount of %s: %w", t.ID, err)
		}
		if t.CurrentAmount, err = decimal.NewFromString(currentAmount); err != nil {
			return nil, fmt.Errorf("parsing current amount of %s: %w", t.ID, err)
		}
		if targetDate.Valid {
			d := parseTime(targetDate.String)
			t.TargetDate = &d
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTarget removes one target, scoped to its owner.
func (s *SQLiteStore) DeleteTarget(ctx context.Context, ownerID, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM targets WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting target %s: %w", id, err)
	}
	return nil
}
