package service

import (
	"errors"
	"log/slog"

	"pocketflow/internal/calculator"
	"pocketflow/internal/ledger"
	"pocketflow/internal/models"
	"pocketflow/internal/store"
)

// ErrTransactionNotFound reports an edit against an unknown transaction
// id. The store itself stays silent on misses; the edit flow surfaces the
// condition so callers can tell a stale reference from a saved edit.
var ErrTransactionNotFound = errors.New("transaction not found")

// Editor implements the edit sheet flow for already-finalized
// transactions: category/note fixes and after-the-fact split conversion.
type Editor struct {
	store     *store.Store
	ledger    *ledger.DebtLedger
	reminders ReminderScheduler
}

// NewEditor creates an Editor. reminders may be nil.
func NewEditor(s *store.Store, l *ledger.DebtLedger, reminders ReminderScheduler) *Editor {
	if reminders == nil {
		reminders = nopReminders{}
	}
	return &Editor{store: s, ledger: l, reminders: reminders}
}

// SeedShares returns the single starter share for converting an existing
// expense into a split: one unlocked participant valued at half the
// transaction amount.
func (ed *Editor) SeedShares(id string) ([]models.SplitShare, error) {
	tx, ok := ed.store.Transaction(id)
	if !ok {
		return nil, ErrTransactionNotFound
	}
	shares, _ := calculator.AddShare(tx.Amount, nil)
	return shares, nil
}

// Update applies an edit to a finalized transaction. splitMode substitutes
// the fixed Contri category and feeds every share into the debt ledger,
// dated at the transaction's original date. A non-credit, non-split edit
// still on the category sentinel is rejected. Filling in a previously
// pending description cancels any outstanding reminder.
func (ed *Editor) Update(id, category, note string, splitMode bool, shares []models.SplitShare) error {
	tx, ok := ed.store.Transaction(id)
	if !ok {
		return ErrTransactionNotFound
	}

	if !tx.IsCredit && !splitMode && category == models.CategoryNone {
		return ErrCategoryRequired
	}
	if tx.IsCredit {
		splitMode = false
		shares = nil
	}
	if splitMode {
		category = models.CategoryContri
	} else {
		shares = nil
	}

	ed.store.UpdateTransaction(id, category, note, shares)
	if splitMode {
		ed.ledger.ApplySplits(shares, tx.Date, note)
	}
	if note != "" && tx.NotificationID != "" {
		ed.reminders.Cancel(tx.NotificationID)
		ed.store.SetNotificationID(id, "")
	}
	slog.Info("transaction updated", "tx_id", id, "category", category, "splits", len(shares))
	return nil
}
