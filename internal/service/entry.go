// Package service implements the interactive flows that sit between a
// presentation layer and the ledger core: the log → finalize entry flow
// and the transaction edit flow.
package service

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"pocketflow/internal/calculator"
	"pocketflow/internal/ledger"
	"pocketflow/internal/metrics"
	"pocketflow/internal/models"
	"pocketflow/internal/store"
)

var (
	// ErrFlowState reports an operation invoked in the wrong flow state,
	// e.g. finalizing when no entry is open.
	ErrFlowState = errors.New("no entry in progress")
	// ErrCategoryRequired blocks finalization of a non-split expense that
	// still carries the category sentinel. The caller re-prompts.
	ErrCategoryRequired = errors.New("category required")
	// ErrInvalidAmount rejects a non-positive entry amount.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// State is the entry flow's position in the log → finalize lifecycle.
type State int

const (
	// StateIdle means no entry is in progress.
	StateIdle State = iota
	// StateOpen means an amount was submitted and a placeholder
	// transaction exists in the store.
	StateOpen
	// StateDetailing means category, note or split editing has begun.
	StateDetailing
)

// ReminderScheduler is the optional external collaborator that nudges the
// user about pending descriptions. The flow stores the returned id on the
// transaction as an opaque string and hands it back on cancellation; it
// never interprets it.
type ReminderScheduler interface {
	Schedule(amount float64) (id string)
	Cancel(id string)
}

type nopReminders struct{}

func (nopReminders) Schedule(float64) string { return "" }
func (nopReminders) Cancel(string)           {}

// EntryFlow drives a single log → finalize transaction flow.
//
// The placeholder transaction becomes visible in the store the moment the
// amount is submitted; cancelling is the only path that removes it again.
// One flow instance handles one entry at a time, matching the one-at-a-time
// editing model of the app.
type EntryFlow struct {
	store     *store.Store
	ledger    *ledger.DebtLedger
	reminders ReminderScheduler

	mu        sync.Mutex
	state     State
	txID      string
	amount    float64
	isCredit  bool
	category  string
	note      string
	splitMode bool
	shares    []models.SplitShare
	lastTouch time.Time
}

// NewEntryFlow creates an idle flow. reminders may be nil.
func NewEntryFlow(s *store.Store, l *ledger.DebtLedger, reminders ReminderScheduler) *EntryFlow {
	if reminders == nil {
		reminders = nopReminders{}
	}
	return &EntryFlow{store: s, ledger: l, reminders: reminders}
}

// State returns the current flow state.
func (e *EntryFlow) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// TransactionID returns the id of the in-progress placeholder, if any.
func (e *EntryFlow) TransactionID() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.txID, e.state != StateIdle
}

// Start opens a new entry: the placeholder transaction is created
// immediately so every aggregate query already sees it. Credits start
// pre-categorized as income with a stock note; expenses start on the
// category sentinel.
func (e *EntryFlow) Start(amount float64, isCredit bool) (models.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateIdle {
		return models.Transaction{}, ErrFlowState
	}
	if amount <= 0 {
		return models.Transaction{}, ErrInvalidAmount
	}

	category := models.CategoryNone
	note := ""
	if isCredit {
		category = models.CategoryIncome
		note = "Pocket Money"
	}
	tx := e.store.AddTransaction(models.Transaction{
		Category: category,
		Amount:   amount,
		Date:     time.Now(),
		IsCredit: isCredit,
	})

	e.state = StateOpen
	e.txID = tx.ID
	e.amount = amount
	e.isCredit = isCredit
	e.category = category
	e.note = note
	e.splitMode = false
	e.shares = nil
	e.lastTouch = time.Now()
	kind := "expense"
	if isCredit {
		kind = "credit"
	}
	metrics.TransactionsCreated.WithLabelValues(kind).Inc()
	slog.Info("entry opened", "tx_id", tx.ID, "amount", amount, "credit", isCredit)
	return tx, nil
}

// SetCategory records the chosen category for finalization.
func (e *EntryFlow) SetCategory(category string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateIdle {
		return ErrFlowState
	}
	if e.splitMode {
		// Split mode pins the category; the toggle owns it.
		return nil
	}
	e.category = category
	e.detailing()
	return nil
}

// SetNote records the description for finalization.
func (e *EntryFlow) SetNote(note string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateIdle {
		return ErrFlowState
	}
	e.note = note
	e.detailing()
	return nil
}

// EnableSplit switches the entry into split mode: the category is pinned
// to Contri and a single unlocked share is seeded, which the allocator
// values at half the total (one participant plus the implicit payer slot).
// Credits never enter split mode.
func (e *EntryFlow) EnableSplit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateIdle || e.isCredit {
		return ErrFlowState
	}
	if e.splitMode {
		return nil
	}
	e.splitMode = true
	e.category = models.CategoryContri
	e.shares, _ = calculator.AddShare(e.amount, nil)
	e.detailing()
	return nil
}

// DisableSplit leaves split mode, dropping all shares and restoring the
// category sentinel.
func (e *EntryFlow) DisableSplit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateIdle {
		return ErrFlowState
	}
	if !e.splitMode {
		return nil
	}
	e.splitMode = false
	e.category = models.CategoryNone
	e.shares = nil
	e.detailing()
	return nil
}

// AddShare appends a fresh unlocked participant row and redistributes,
// returning the new row's id.
func (e *EntryFlow) AddShare() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateIdle || !e.splitMode {
		return "", ErrFlowState
	}
	var id string
	e.shares, id = calculator.AddShare(e.amount, e.shares)
	e.detailing()
	return id, nil
}

// SetShareName names a participant row. Unknown ids are a silent no-op,
// consistent with stale references from an interactive editor.
func (e *EntryFlow) SetShareName(id, name, phoneNumber string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateIdle || !e.splitMode {
		return ErrFlowState
	}
	for i := range e.shares {
		if e.shares[i].ID == id {
			e.shares[i].Name = name
			e.shares[i].PhoneNumber = phoneNumber
			break
		}
	}
	e.detailing()
	return nil
}

// SetShareAmount records a manual edit: the share locks at the given
// amount and the remainder redistributes over the unlocked rest.
func (e *EntryFlow) SetShareAmount(id string, amount float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateIdle || !e.splitMode {
		return ErrFlowState
	}
	calculator.LockShare(e.amount, e.shares, id, amount)
	e.detailing()
	return nil
}

// Shares returns a snapshot of the current participant rows.
func (e *EntryFlow) Shares() []models.SplitShare {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]models.SplitShare(nil), e.shares...)
}

// Cancel rolls the entry back: the placeholder transaction is removed
// from the store — the only supported delete path — and the flow returns
// to idle.
func (e *EntryFlow) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateIdle {
		return ErrFlowState
	}
	e.store.RemoveTransaction(e.txID)
	metrics.TransactionsCancelled.Inc()
	slog.Info("entry cancelled", "tx_id", e.txID)
	e.reset()
	return nil
}

// Finalize commits the entry. A non-credit, non-split entry still on the
// category sentinel is rejected with ErrCategoryRequired and the flow
// stays where it is so the caller can correct and retry. On success the
// placeholder is updated in place, split shares are fed to the debt
// ledger, and a description-pending entry gets a reminder scheduled.
func (e *EntryFlow) Finalize() (models.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateIdle {
		return models.Transaction{}, ErrFlowState
	}
	if !e.isCredit && !e.splitMode && e.category == models.CategoryNone {
		return models.Transaction{}, ErrCategoryRequired
	}

	var shares []models.SplitShare
	if !e.isCredit && e.splitMode {
		shares = e.shares
	}
	e.store.UpdateTransaction(e.txID, e.category, e.note, shares)
	if len(shares) > 0 {
		e.ledger.ApplySplits(shares, time.Now(), e.note)
	}
	if e.note == "" {
		if id := e.reminders.Schedule(e.amount); id != "" {
			e.store.SetNotificationID(e.txID, id)
		}
	}

	tx, _ := e.store.Transaction(e.txID)
	slog.Info("entry finalized", "tx_id", e.txID, "category", e.category, "splits", len(shares))
	e.reset()
	return tx, nil
}

// ResetIfStale abandons an in-progress entry that has seen no activity for
// at least threshold. The placeholder transaction stays in the store with
// its sentinel category — only the flow state is discarded, matching the
// background-timeout behavior of the app. Returns true when a reset
// happened.
func (e *EntryFlow) ResetIfStale(threshold time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateIdle || time.Since(e.lastTouch) <= threshold {
		return false
	}
	slog.Info("stale entry abandoned", "tx_id", e.txID, "idle", time.Since(e.lastTouch))
	e.reset()
	return true
}

// detailing advances Open to Detailing and refreshes the activity clock.
// Callers hold the lock.
func (e *EntryFlow) detailing() {
	if e.state == StateOpen {
		e.state = StateDetailing
	}
	e.lastTouch = time.Now()
}

func (e *EntryFlow) reset() {
	e.state = StateIdle
	e.txID = ""
	e.amount = 0
	e.isCredit = false
	e.category = models.CategoryNone
	e.note = ""
	e.splitMode = false
	e.shares = nil
}
