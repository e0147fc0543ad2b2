// Package calculator holds the pure ledger math: the even-split allocator
// and the derived aggregate views. Nothing here touches the store;
// functions take snapshots in and hand results out.
package calculator

import (
	"github.com/google/uuid"

	"pocketflow/internal/models"
)

// RecalculateSplits redistributes the unallocated remainder of total
// equally among the not-yet-locked shares, in place.
//
// One slot is always reserved for the payer, who has no share row of their
// own: the remainder is divided by unlockedCount+1. A single unlocked
// participant therefore gets total/2. Locked shares are untouched, and
// when locked amounts exceed the total the remainder floors at zero
// instead of erroring. The allocated shares may legitimately sum to less
// than total; the shortfall is the payer's own share.
func RecalculateSplits(total float64, shares []models.SplitShare) {
	lockedSum := 0.0
	unlockedCount := 0
	for i := range shares {
		if shares[i].IsLocked {
			lockedSum += shares[i].Amount
		} else {
			unlockedCount++
		}
	}
	if unlockedCount == 0 {
		return
	}

	remaining := total - lockedSum
	if remaining < 0 {
		remaining = 0
	}
	share := remaining / float64(unlockedCount+1)
	for i := range shares {
		if !shares[i].IsLocked {
			shares[i].Amount = share
		}
	}
}

// AddShare appends a fresh unlocked share row and redistributes. Returns
// the grown slice and the new row's id so the caller can move focus to it.
func AddShare(total float64, shares []models.SplitShare) ([]models.SplitShare, string) {
	row := models.SplitShare{ID: uuid.New().String()}
	shares = append(shares, row)
	RecalculateSplits(total, shares)
	return shares, row.ID
}

// LockShare records a manual edit: the share is pinned to amount, marked
// locked, and the remainder is redistributed over the rest. Unknown ids
// are a silent no-op.
func LockShare(total float64, shares []models.SplitShare, id string, amount float64) {
	for i := range shares {
		if shares[i].ID == id {
			shares[i].Amount = amount
			shares[i].IsLocked = true
			RecalculateSplits(total, shares)
			return
		}
	}
}
