package models

import "time"

// Category sentinels. CategoryNone marks a transaction whose category has
// not been chosen yet; it is a valid, visible state while an entry is being
// detailed. CategoryContri is the fixed category assigned to shared
// expenses with active splits.
const (
	CategoryNone   = "Select Category"
	CategoryContri = "Contri"
	CategoryIncome = "Income"
)

// Transaction represents a single logged expense or income entry.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	// Assigned at creation, immutable afterwards.
	ID string

	// Category is a free-form category name. CategoryNone means
	// "not yet categorized".
	Category string

	// Amount is the non-negative transaction value.
	Amount float64

	// Date is when the transaction occurred.
	Date time.Time

	// IsCredit is true for income, false for expenses.
	IsCredit bool

	// Note is a free-form description. Empty means the description is
	// still pending.
	Note string

	// NotificationID is an opaque reminder identifier handed back by an
	// external scheduler. The core stores it for later cancellation and
	// never interprets it.
	NotificationID string

	// Splits holds the participant shares when this transaction is a
	// shared expense. Empty otherwise. A credit transaction never
	// carries splits.
	Splits []SplitShare
}

// IsDescriptionPending reports whether the transaction still needs a
// description.
func (t Transaction) IsDescriptionPending() bool {
	return t.Note == ""
}

// SplitShare is one participant's portion of a shared expense.
type SplitShare struct {
	// ID is the unique identifier for the share (UUID format).
	ID string

	// Name is the participant's display name. It may match an existing
	// Friend case-insensitively.
	Name string

	// PhoneNumber is an optional contact reference, informational only.
	PhoneNumber string

	// Amount is this participant's allocated share.
	Amount float64

	// IsLocked is true once the share was manually edited. Locked shares
	// are excluded from auto-redistribution.
	IsLocked bool
}
