// Package store provides the in-memory entity store that owns the
// canonical transaction and friend collections. All mutation goes through
// it; aggregate queries read snapshots of its current state.
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pocketflow/internal/models"
)

// Store is the single source of truth for transactions and friends.
//
// The logical owner is a single user driving one edit at a time, but the
// HTTP surface can deliver requests concurrently, so access is guarded by
// a RWMutex. There are no partial-failure windows: every operation is one
// synchronous step under the lock.
type Store struct {
	mu           sync.RWMutex
	transactions []models.Transaction
	friends      []models.Friend
	subscribers  []func()
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Subscribe registers a callback invoked after every mutation. Callbacks
// run synchronously outside the lock, so a subscriber reading the store
// back always observes the mutation that triggered it.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := append(([]func())(nil), s.subscribers...)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}

// AddTransaction appends tx to the transaction collection and returns it
// with its assigned ID. A zero ID or date is filled in; no further
// validation happens here, the caller guarantees a positive amount.
func (s *Store) AddTransaction(tx models.Transaction) models.Transaction {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now()
	}
	s.mu.Lock()
	s.transactions = append(s.transactions, tx)
	s.mu.Unlock()
	s.notify()
	return tx
}

// RemoveTransaction removes a transaction by id. It exists to roll back an
// abandoned entry before finalization and is a silent no-op when the id is
// unknown.
func (s *Store) RemoveTransaction(id string) {
	s.mu.Lock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// UpdateTransaction updates category, note and splits in place. Silent
// no-op when the id is unknown. Friend debts are never touched here; that
// is the debt ledger's job, invoked separately by the caller.
func (s *Store) UpdateTransaction(id, category, note string, splits []models.SplitShare) {
	s.mu.Lock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions[i].Category = category
			s.transactions[i].Note = note
			s.transactions[i].Splits = copyShares(splits)
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// SetNotificationID stores the opaque reminder identifier on a
// transaction. Silent no-op when the id is unknown.
func (s *Store) SetNotificationID(id, notificationID string) {
	s.mu.Lock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions[i].NotificationID = notificationID
			break
		}
	}
	s.mu.Unlock()
}

// Transaction returns a copy of the transaction with the given id.
func (s *Store) Transaction(id string) (models.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			return copyTransaction(s.transactions[i]), true
		}
	}
	return models.Transaction{}, false
}

// Transactions returns a snapshot copy of all transactions in insertion
// order.
func (s *Store) Transactions() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Transaction, len(s.transactions))
	for i := range s.transactions {
		out[i] = copyTransaction(s.transactions[i])
	}
	return out
}

// FindFriend looks a friend up by case-insensitive exact name and returns
// a copy. Names are a soft natural key: two friends differing only in case
// collapse to the first match.
func (s *Store) FindFriend(name string) (models.Friend, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.friends {
		if strings.EqualFold(s.friends[i].Name, name) {
			return copyFriend(s.friends[i]), true
		}
	}
	return models.Friend{}, false
}

// Friend returns a copy of the friend with the given id.
func (s *Store) Friend(id string) (models.Friend, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.friends {
		if s.friends[i].ID == id {
			return copyFriend(s.friends[i]), true
		}
	}
	return models.Friend{}, false
}

// Friends returns a snapshot copy of all friends in insertion order.
func (s *Store) Friends() []models.Friend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Friend, len(s.friends))
	for i := range s.friends {
		out[i] = copyFriend(s.friends[i])
	}
	return out
}

// FriendCount returns the current number of friends.
func (s *Store) FriendCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.friends)
}

// AddFriend appends a new friend and returns it with its assigned ID.
func (s *Store) AddFriend(f models.Friend) models.Friend {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	s.mu.Lock()
	s.friends = append(s.friends, f)
	s.mu.Unlock()
	s.notify()
	return f
}

// MutateFriend runs fn against the live friend record under the write
// lock. Silent no-op when the id is unknown. The ledger uses this to keep
// TotalOwed and History in lockstep within a single step.
func (s *Store) MutateFriend(id string, fn func(*models.Friend)) {
	s.mu.Lock()
	for i := range s.friends {
		if s.friends[i].ID == id {
			fn(&s.friends[i])
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

func copyTransaction(tx models.Transaction) models.Transaction {
	tx.Splits = copyShares(tx.Splits)
	return tx
}

func copyShares(in []models.SplitShare) []models.SplitShare {
	if in == nil {
		return nil
	}
	return append([]models.SplitShare(nil), in...)
}

func copyFriend(f models.Friend) models.Friend {
	f.History = append([]models.FriendTransaction(nil), f.History...)
	return f
}
