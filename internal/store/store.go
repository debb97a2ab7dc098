// Package store provides the SQLite storage layer for pocketfin.
//
// All user data lives in a single SQLite database file:
// - transactions (income/expense/transfer rows)
// - targets (savings goals and budget limits)
// - subscriptions (free/premium plan per owner)
//
// Every read and write is scoped by an owner-id equality filter supplied by
// the caller; the store never queries across owners.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.pocketfin/pocketfin.db"

// Transaction kinds.
const (
	KindIncome   = "income"
	KindExpense  = "expense"
	KindTransfer = "transfer"
)

// Target types.
const (
	TargetSavings = "savings"
	TargetBudget  = "budget"
)

// Target statuses.
const (
	StatusActive   = "active"
	StatusAchieved = "achieved"
	StatusArchived = "archived"
)

// Subscription plans.
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// Transaction is a single financial record.
type Transaction struct {
	ID          string
	OwnerID     string
	Kind        string // income | expense | transfer
	Amount      decimal.Decimal
	Category    string
	Description string
	OccurredAt  time.Time
	CreatedAt   time.Time
}

// Target is a savings goal or a budget (spending limit).
type Target struct {
	ID            string
	OwnerID       string
	Title         string
	Description   string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Currency      string
	TargetDate    *time.Time
	Status        string // active | achieved | archived
	TargetType    string // savings | budget
	Category      string // set iff budget
	Priority      int
}

// Subscription is an owner's plan row.
type Subscription struct {
	OwnerID   string
	Plan      string // free | premium
	Status    string // active | cancelled | past_due
	UpdatedAt time.Time
}

// CategoryTotal is one row of a per-category expense summary.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// ListOpts controls pagination for List operations.
type ListOpts struct {
	Limit  int
	Offset int
}

// Store defines the storage interface consumed by the engine.
type Store interface {
	// Transactions
	AddTransaction(ctx context.Context, t *Transaction) error
	GetTransaction(ctx context.Context, ownerID, id string) (*Transaction, error)
	ListTransactions(ctx context.Context, ownerID string, opts ListOpts) ([]*Transaction, error)
	DeleteTransaction(ctx context.Context, ownerID, id string) error
	CategoryTotals(ctx context.Context, ownerID string, since time.Time) ([]CategoryTotal, error)

	// Targets
	AddTarget(ctx context.Context, t *Target) error
	GetTarget(ctx context.Context, ownerID, id string) (*Target, error)
	ListTargets(ctx context.Context, ownerID string) ([]*Target, error)
	DeleteTarget(ctx context.Context, ownerID, id string) error

	// Subscriptions
	GetSubscription(ctx context.Context, ownerID string) (*Subscription, error)
	SetSubscription(ctx context.Context, ownerID, plan, status string) error

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// StoreConfig holds configuration for NewStore.
type StoreConfig struct {
	DBPath string
}

// NewStore creates a new SQLite-backed Store.
// Pass ":memory:" for in-memory databases (testing).
func NewStore(cfg StoreConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = expandPath(DefaultDBPath)
	}

	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, dbPath: cfg.DBPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// timeFormat is how timestamps are stored (RFC3339, UTC).
const timeFormat = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
