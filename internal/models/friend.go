package models

import "time"

// FriendColors is the fixed palette cycled through when new friends are
// created, indexed by the current friend count. Cosmetic only, but the
// cycling guarantees distinct colors for the first len(FriendColors)
// friends.
var FriendColors = []string{
	"orange", "blue", "purple", "pink", "teal", "indigo", "mint", "yellow",
}

// Friend is a named contact with a running debt balance.
type Friend struct {
	// ID is the unique identifier for the friend (UUID format).
	ID string

	// Name is the display name. It acts as the natural key for
	// case-insensitive merge-on-insert matching.
	Name string

	// TotalOwed is the running signed balance. It increases when debt is
	// added and decreases when a payment is recorded. Not clamped: an
	// overpayment leaves it negative.
	TotalOwed float64

	// Color is the display color assigned at creation from FriendColors.
	Color string

	// History is the append-only log of debt and payment entries.
	// TotalOwed always equals the signed sum over this log.
	History []FriendTransaction

	// PhoneNumber is optional. It is set once from the first debt entry
	// that carries one and never overwritten afterwards.
	PhoneNumber string
}

// EntryType distinguishes debt entries from payments in a friend's history.
type EntryType int

const (
	// EntryDebt increases the friend's balance.
	EntryDebt EntryType = iota
	// EntryPayment decreases the friend's balance.
	EntryPayment
)

// String returns the entry type's wire/display name.
func (t EntryType) String() string {
	if t == EntryPayment {
		return "payment"
	}
	return "debt"
}

// FriendTransaction is one immutable entry in a friend's ledger history.
type FriendTransaction struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	// Date is when the entry was recorded.
	Date time.Time

	// Amount is always positive; Type determines the sign applied to the
	// friend's balance.
	Amount float64

	// Type is EntryDebt or EntryPayment.
	Type EntryType

	// Note is a free-form description of the entry.
	Note string
}
