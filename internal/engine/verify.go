package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pocketfin/pocketfin/internal/extract"
	"github.com/pocketfin/pocketfin/internal/store"
)

// WriteResult reports a verified persistence attempt. OK means the write
// call succeeded; Verified means an owner-scoped re-read returned the same
// record. A record is only ever confirmed to the user when both hold.
type WriteResult struct {
	OK       bool
	Verified bool
	ID       string
}

func (w WriteResult) Confirmed() bool { return w.OK && w.Verified }

// persistTransaction writes an extracted transaction under a fresh ID and
// re-reads it scoped to the owner before it may be confirmed.
func (e *Engine) persistTransaction(ctx context.Context, userID string, c *extract.Transaction) WriteResult {
	row := &store.Transaction{
		ID:          uuid.NewString(),
		OwnerID:     userID,
		Kind:        c.Kind,
		Amount:      c.Amount,
		Category:    c.Category.Name,
		Description: c.Description,
		OccurredAt:  time.Now().UTC(),
	}
	if err := e.store.AddTransaction(ctx, row); err != nil {
		e.log.Error("transaction write failed", "user", userID, "error", err)
		return WriteResult{}
	}
	got, err := e.store.GetTransaction(ctx, userID, row.ID)
	if err != nil || got == nil {
		e.log.Error("transaction verify read failed", "user", userID, "id", row.ID, "error", err)
		return WriteResult{OK: true, ID: row.ID}
	}
	verified := got.Kind == row.Kind &&
		got.Amount.Equal(row.Amount) &&
		got.Category == row.Category &&
		got.Description == row.Description
	if !verified {
		e.log.Error("transaction verify mismatch", "user", userID, "id", row.ID)
	}
	return WriteResult{OK: true, Verified: verified, ID: row.ID}
}

// persistTarget writes an extracted savings target and verifies it the same
// way.
func (e *Engine) persistTarget(ctx context.Context, userID string, c *extract.Target) WriteResult {
	currency := c.Currency
	if currency == "" {
		currency = e.opts.DefaultCurrency
	}
	row := &store.Target{
		ID:           uuid.NewString(),
		OwnerID:      userID,
		Title:        c.Title,
		TargetAmount: c.Amount,
		Currency:     currency,
		TargetType:   store.TargetSavings,
		Status:       store.StatusActive,
	}
	if err := e.store.AddTarget(ctx, row); err != nil {
		e.log.Error("target write failed", "user", userID, "error", err)
		return WriteResult{}
	}
	got, err := e.store.GetTarget(ctx, userID, row.ID)
	if err != nil || got == nil {
		e.log.Error("target verify read failed", "user", userID, "id", row.ID, "error", err)
		return WriteResult{OK: true, ID: row.ID}
	}
	verified := got.Title == row.Title &&
		got.TargetAmount.Equal(row.TargetAmount) &&
		got.TargetType == row.TargetType
	if !verified {
		e.log.Error("target verify mismatch", "user", userID, "id", row.ID)
	}
	return WriteResult{OK: true, Verified: verified, ID: row.ID}
}

// persistLimit stores a spending limit as a budget-type target bound to its
// variable-cost category.
func (e *Engine) persistLimit(ctx context.Context, userID string, c *extract.Limit) WriteResult {
	row := &store.Target{
		ID:           uuid.NewString(),
		OwnerID:      userID,
		Title:        c.Category.Name + " Limit",
		TargetAmount: c.Amount,
		Currency:     e.opts.DefaultCurrency,
		TargetType:   store.TargetBudget,
		Category:     c.Category.Name,
		Status:       store.StatusActive,
	}
	if err := e.store.AddTarget(ctx, row); err != nil {
		e.log.Error("limit write failed", "user", userID, "category", c.Category.Name, "error", err)
		return WriteResult{}
	}
	got, err := e.store.GetTarget(ctx, userID, row.ID)
	if err != nil || got == nil {
		e.log.Error("limit verify read failed", "user", userID, "id", row.ID, "error", err)
		return WriteResult{OK: true, ID: row.ID}
	}
	verified := got.Category == row.Category &&
		got.TargetAmount.Equal(row.TargetAmount) &&
		got.TargetType == store.TargetBudget
	if !verified {
		e.log.Error("limit verify mismatch", "user", userID, "id", row.ID)
	}
	return WriteResult{OK: true, Verified: verified, ID: row.ID}
}
