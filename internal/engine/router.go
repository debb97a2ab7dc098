// Package engine routes conversation turns: it classifies intent over the
// full history, gates premium capabilities, extracts records
// deterministically from text, persists them with verification, and
// sanitizes the reply. The model writes prose; this package writes rows.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pocketfin/pocketfin/internal/extract"
	"github.com/pocketfin/pocketfin/internal/llm"
	"github.com/pocketfin/pocketfin/internal/store"
)

// Record types reported in TurnResult.CreatedRecordType.
const (
	RecordTransaction = "transaction"
	RecordTarget      = "target"
	RecordLimit       = "limit"
)

var (
	ErrNoMessages = errors.New("engine: turn has no messages")
	ErrNoUser     = errors.New("engine: turn has no user id")
)

// Options configure turn handling.
type Options struct {
	Model             string
	CompletionTimeout time.Duration
	DefaultCurrency   string
}

// Engine coordinates the per-turn pipeline over a store and a completion
// provider.
type Engine struct {
	store store.Store
	llm   llm.Provider
	log   *slog.Logger
	opts  Options
}

func New(st store.Store, provider llm.Provider, log *slog.Logger, opts Options) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if opts.CompletionTimeout <= 0 {
		opts.CompletionTimeout = 30 * time.Second
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "USD"
	}
	return &Engine{store: st, llm: provider, log: log, opts: opts}
}

// TurnRequest is one conversation turn: the full message history plus the
// caller's identity and entitlement hint.
type TurnRequest struct {
	Messages        []llm.Message
	UserID          string
	ConversationID  string
	Currency        string
	EntitlementHint string
}

// TurnResult is what a turn produced: the reply text and, when a record was
// persisted and verified, its identity.
type TurnResult struct {
	ReplyText         string
	RequiresUpgrade   bool
	Intent            string
	CreatedRecordID   string
	CreatedRecordType string
}

// turnState accumulates what each stage of a turn has established. It is
// created per turn and threaded through the stages in order; no stage
// re-derives what an earlier stage already decided.
type turnState struct {
	req         TurnRequest
	premium     bool
	intent      Intent
	persisted   bool
	saveFailed  bool
	partialSave bool
	preTx       *extract.Transaction
	recordID    string
	recordType  string
	reply       string
}

// HandleTurn runs the full pipeline for one turn:
// entitlement, classification, gate, pre-call extraction, prompt assembly,
// completion, reply re-gate, post-call extraction, sanitization.
func (e *Engine) HandleTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	if len(req.Messages) == 0 {
		return nil, ErrNoMessages
	}
	if req.UserID == "" {
		return nil, ErrNoUser
	}
	st := &turnState{req: req}

	premium, err := e.resolveEntitlement(ctx, req.UserID, req.EntitlementHint)
	if err != nil {
		return nil, fmt.Errorf("resolve entitlement: %w", err)
	}
	st.premium = premium

	st.intent = Classify(req.Messages)

	if !st.premium && requiresPremium(st.intent, req.Messages) {
		e.log.Info("turn gated", "user", req.UserID, "intent", st.intent.String())
		return &TurnResult{
			ReplyText:       Sanitize(e.paywallReply(ctx, req.Messages)),
			RequiresUpgrade: true,
			Intent:          st.intent.String(),
		}, nil
	}

	e.preExtract(ctx, st)
	if st.saveFailed {
		// The confirmation would be a lie; skip the model entirely.
		return st.result(failureReply), nil
	}

	// Entitlement is re-read immediately before the call so a mid-turn
	// change in either direction lands on the right prompt.
	premium, err = e.resolveEntitlement(ctx, req.UserID, req.EntitlementHint)
	if err != nil {
		return nil, fmt.Errorf("resolve entitlement: %w", err)
	}
	st.premium = premium

	reply, err := e.complete(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}
	st.reply = reply

	if !st.premium && replyIndicatesPaidContent(st.reply) {
		e.log.Warn("premium content in free-tier reply discarded", "user", req.UserID)
		reply := e.paywallReply(ctx, req.Messages)
		if st.persisted {
			// A record was written and verified before the call; the
			// discarded reply must not take its acknowledgment with it.
			reply = savedAcknowledgment(st.preTx) + " " + reply
		}
		return &TurnResult{
			ReplyText:         Sanitize(reply),
			RequiresUpgrade:   true,
			Intent:            st.intent.String(),
			CreatedRecordID:   st.recordID,
			CreatedRecordType: st.recordType,
		}, nil
	}

	e.postExtract(ctx, st)
	if st.saveFailed {
		return st.result(failureReply), nil
	}
	if st.partialSave {
		return st.result(st.reply + "\n\n" + partialSaveReply), nil
	}
	return st.result(st.reply), nil
}

// preExtract persists an unambiguous record command before the model is
// called, so the confirming reply describes a write that already happened.
func (e *Engine) preExtract(ctx context.Context, st *turnState) {
	tx, ok := extract.UserTransaction(lastUserText(st.req.Messages))
	if !ok {
		return
	}
	wr := e.persistTransaction(ctx, st.req.UserID, tx)
	if !wr.Confirmed() {
		st.saveFailed = true
		return
	}
	st.persisted = true
	st.preTx = tx
	st.recordID = wr.ID
	st.recordType = RecordTransaction
	e.log.Info("record persisted pre-call", "user", st.req.UserID, "id", wr.ID,
		"kind", tx.Kind, "category", tx.Category.Name)
}

// savedAcknowledgment confirms a pre-call write when the model's own
// confirmation could not be used.
func savedAcknowledgment(tx *extract.Transaction) string {
	noun := "expense"
	if tx.Kind == extract.KindIncome {
		noun = "income"
	}
	return fmt.Sprintf("Your %s of %s under %s is saved.", noun, tx.Amount.StringFixed(2), tx.Category.Name)
}

// complete assembles the tier-scoped system prompt and calls the provider.
func (e *Engine) complete(ctx context.Context, st *turnState) (string, error) {
	system := freeSystemPrompt
	if st.premium {
		system = premiumSystemPrompt + e.financialSummary(ctx, st.req.UserID)
	}
	if st.persisted {
		system += savedDirective
	}
	return e.llm.Complete(ctx, st.req.Messages, llm.CompletionOpts{
		Model:       e.opts.Model,
		System:      system,
		Temperature: 0.4,
		Timeout:     e.opts.CompletionTimeout,
	})
}

// postExtract inspects the reply for confirmations the pre-call pass could
// not see. At most one extractor fires per turn; a turn that already
// persisted pre-call is skipped entirely.
func (e *Engine) postExtract(ctx context.Context, st *turnState) {
	if st.persisted {
		return
	}

	if tx, ok := extract.ReplyTransaction(st.req.Messages, st.reply); ok {
		wr := e.persistTransaction(ctx, st.req.UserID, tx)
		if !wr.Confirmed() {
			st.saveFailed = true
			return
		}
		st.persisted = true
		st.recordID = wr.ID
		st.recordType = RecordTransaction
		e.log.Info("record persisted post-call", "user", st.req.UserID, "id", wr.ID, "kind", tx.Kind)
		return
	}

	if !st.premium {
		return
	}

	if tg, ok := extract.ReplyTarget(st.req.Messages, st.reply); ok {
		if tg.Currency == "" {
			tg.Currency = st.req.Currency
		}
		wr := e.persistTarget(ctx, st.req.UserID, tg)
		if !wr.Confirmed() {
			st.saveFailed = true
			return
		}
		st.persisted = true
		st.recordID = wr.ID
		st.recordType = RecordTarget
		e.log.Info("target persisted", "user", st.req.UserID, "id", wr.ID, "title", tg.Title)
		return
	}

	limits := extract.ReplyLimits(st.req.Messages, st.reply)
	var saved int
	for i := range limits {
		wr := e.persistLimit(ctx, st.req.UserID, &limits[i])
		if !wr.Confirmed() {
			e.log.Warn("limit not confirmed", "user", st.req.UserID, "category", limits[i].Category.Name)
			continue
		}
		saved++
		if !st.persisted {
			// The first confirmed limit is the one the result names.
			st.recordID = wr.ID
			st.recordType = RecordLimit
		}
		st.persisted = true
		e.log.Info("limit persisted", "user", st.req.UserID, "id", wr.ID, "category", limits[i].Category.Name)
	}
	switch {
	case len(limits) == 0 || saved == len(limits):
	case saved == 0:
		st.saveFailed = true
	default:
		// Some limits landed and some did not; the reply stands for the
		// ones that did, with a correction appended for the rest.
		st.partialSave = true
	}
}

func (st *turnState) result(reply string) *TurnResult {
	return &TurnResult{
		ReplyText:         Sanitize(reply),
		Intent:            st.intent.String(),
		CreatedRecordID:   st.recordID,
		CreatedRecordType: st.recordType,
	}
}
