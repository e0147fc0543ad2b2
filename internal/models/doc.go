// Package models defines the core domain models for the PocketFlow ledger.
//
// # Models
//
//   - Transaction: a single logged expense or income entry
//   - SplitShare: one participant's portion of a shared expense
//   - Friend: a named contact with a running debt balance
//   - FriendTransaction: one append-only entry in a friend's ledger history
//
// # Design Principles
//
// 1. **In-memory only**: all state lives in process memory; there is no
// serialization contract on any of these types.
//
// 2. **Names as soft keys**: friends are matched case-insensitively by name
// on insert, while the UUID remains the stable reference for lookups.
//
// 3. **Ledger never drifts**: Friend.TotalOwed always equals the sum over
// History of debt amounts minus payment amounts. All mutation goes through
// the store and ledger packages, which maintain that invariant.
package models
