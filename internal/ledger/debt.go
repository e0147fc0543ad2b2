// Package ledger translates finalized split expenses into per-friend debt
// entries and records payments that reduce them.
package ledger

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"pocketflow/internal/metrics"
	"pocketflow/internal/models"
	"pocketflow/internal/store"
)

var (
	// ErrInvalidAmount rejects non-positive debt or payment amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrBlankName rejects blank or whitespace-only participant names.
	ErrBlankName = errors.New("participant name is blank")
	// ErrFriendNotFound reports a payment against an unknown friend id.
	ErrFriendNotFound = errors.New("friend not found")
)

// Fallback notes applied when a debt or payment arrives without one.
const (
	defaultSplitNote   = "Split Expense"
	defaultPaymentNote = "Paid Back"
)

// DebtLedger applies debts and payments to friend balances, keeping
// TotalOwed in lockstep with each friend's append-only history.
type DebtLedger struct {
	store *store.Store
}

// New creates a DebtLedger over the given store.
func New(s *store.Store) *DebtLedger {
	return &DebtLedger{store: s}
}

// AddFriendDebt records a debt against the named friend, matching
// case-insensitively. An existing friend gets a history entry, an
// increased balance, and a phone number backfill if theirs is still
// unset. An unknown name creates the friend, with a palette color chosen
// by the current friend count so the first few friends stay visually
// distinct.
//
// Non-positive amounts and blank names are rejected without touching any
// state.
func (l *DebtLedger) AddFriendDebt(name, phoneNumber string, amount float64, date time.Time, note string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(name) == "" {
		return ErrBlankName
	}

	entry := models.FriendTransaction{
		ID:     uuid.New().String(),
		Date:   date,
		Amount: amount,
		Type:   models.EntryDebt,
		Note:   note,
	}

	if friend, ok := l.store.FindFriend(name); ok {
		l.store.MutateFriend(friend.ID, func(f *models.Friend) {
			f.History = append(f.History, entry)
			f.TotalOwed += amount
			if f.PhoneNumber == "" {
				f.PhoneNumber = phoneNumber
			}
		})
		metrics.DebtsRecorded.Inc()
		slog.Debug("debt added", "friend", friend.Name, "amount", amount)
		return nil
	}

	color := models.FriendColors[l.store.FriendCount()%len(models.FriendColors)]
	created := l.store.AddFriend(models.Friend{
		Name:        name,
		TotalOwed:   amount,
		Color:       color,
		History:     []models.FriendTransaction{entry},
		PhoneNumber: phoneNumber,
	})
	metrics.DebtsRecorded.Inc()
	slog.Debug("friend created with debt", "friend", created.Name, "amount", amount)
	return nil
}

// RecordPayment appends a payment entry and decreases the friend's
// balance by amount. The balance is not clamped; an overpayment goes
// negative. Non-positive amounts and unknown ids leave all state
// untouched.
func (l *DebtLedger) RecordPayment(friendID string, amount float64, note string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	friend, ok := l.store.Friend(friendID)
	if !ok {
		return ErrFriendNotFound
	}
	if note == "" {
		note = defaultPaymentNote
	}

	entry := models.FriendTransaction{
		ID:     uuid.New().String(),
		Date:   time.Now(),
		Amount: amount,
		Type:   models.EntryPayment,
		Note:   note,
	}
	l.store.MutateFriend(friend.ID, func(f *models.Friend) {
		f.History = append(f.History, entry)
		f.TotalOwed -= amount
	})
	metrics.PaymentsRecorded.Inc()
	slog.Debug("payment recorded", "friend", friend.Name, "amount", amount)
	return nil
}

// ApplySplits feeds every share of a finalized split expense into the
// ledger, locked and unlocked alike. Shares that fail validation (blank
// name rows, zero amounts) are skipped the way an interactive flow skips
// half-filled rows. The transaction note is reused for each debt entry,
// with a fixed fallback when it is empty.
func (l *DebtLedger) ApplySplits(shares []models.SplitShare, date time.Time, note string) {
	if note == "" {
		note = defaultSplitNote
	}
	for _, share := range shares {
		if err := l.AddFriendDebt(share.Name, share.PhoneNumber, share.Amount, date, note); err != nil {
			slog.Debug("split share skipped", "name", share.Name, "error", err)
		}
	}
}
