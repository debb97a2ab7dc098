package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// AddTransaction inserts a new transaction row. The caller supplies the id.
func (s *SQLiteStore) AddTransaction(ctx context.Context, t *Transaction) error {
	if t.ID == "" {
		return fmt.Errorf("transaction id is required")
	}
	if t.OwnerID == "" {
		return fmt.Errorf("transaction owner id is required")
	}
	now := time.Now().UTC()
	if t.OccurredAt.IsZero() {
		t.OccurredAt = now
	}
	t.CreatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, owner_id, kind, amount, category, description, occurred_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Kind, t.Amount.String(), t.Category, t.Description,
		formatTime(t.OccurredAt), formatTime(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves one transaction by id, scoped to its owner.
// Returns (nil, nil) when no row matches.
func (s *SQLiteStore) GetTransaction(ctx context.Context, ownerID, id string) (*Transaction, error) {
	t := &Transaction{}
	var amount, occurredAt, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, kind, amount, category, description, occurred_at, created_at
		 FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&t.ID, &t.OwnerID, &t.Kind, &amount, &t.Category, &t.Description, &occurredAt, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting transaction %s: %w", id, err)
	}

	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parsing amount of transaction %s: %w", id, err)
	}
	t.OccurredAt = parseTime(occurredAt)
	t.CreatedAt = parseTime(createdAt)
	return t, nil
}

// ListTransactions returns an owner's transactions, newest first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, ownerID string, opts ListOpts) ([]*Transaction, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, kind, amount, category, description, occurred_at, created_at
		 FROM transactions WHERE owner_id = ?
		 ORDER BY occurred_at DESC LIMIT ? OFFSET ?`,
		ownerID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var out []*Transaction
	for rows.Next() {
		t := &Transaction{}
		var amount, occurredAt, createdAt string
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Kind, &amount, &t.Category, &t.Description, &occurredAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		t.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parsing amount of transaction %s: %w", t.ID, err)
		}
		t.OccurredAt = parseTime(occurredAt)
		t.CreatedAt = parseTime(createdAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTransaction removes one transaction, scoped to its owner.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting transaction %s: %w", id, err)
	}
	return nil
}

// CategoryTotals sums an owner's expenses per category since the given time,
// largest first. Income and transfers are excluded.
func (s *SQLiteStore) CategoryTotals(ctx context.Context, ownerID string, since time.Time) ([]CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, amount FROM transactions
		 WHERE owner_id = ? AND kind = 'expense' AND occurred_at >= ?`,
		ownerID, formatTime(since),
	)
	if err != nil {
		return nil, fmt.Errorf("querying category totals: %w", err)
	}
	defer rows.Close()

	// Sum in Go: amounts are stored as decimal strings, and SQLite SUM on
	// text would fall back to float arithmetic.
	totals := map[string]decimal.Decimal{}
	for rows.Next() {
		var cat, amount string
		if err := rows.Scan(&cat, &amount); err != nil {
			return nil, fmt.Errorf("scanning category total: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parsing amount for %s: %w", cat, err)
		}
		totals[cat] = totals[cat].Add(d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]CategoryTotal, 0, len(totals))
	for cat, total := range totals {
		out = append(out, CategoryTotal{Category: cat, Total: total})
	}
	// Largest total first; name as tiebreak for stable output.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}
