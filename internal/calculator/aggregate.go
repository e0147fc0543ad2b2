package calculator

import (
	"sort"
	"time"

	"pocketflow/internal/models"
)

// Window selects the time range for expense filtering. Ranges are rolling
// ("now minus duration") except WindowDay, which aligns to local midnight.
type Window int

const (
	// WindowAll places the cutoff in the distant past.
	WindowAll Window = iota
	// WindowDay starts at local midnight today.
	WindowDay
	// WindowWeek covers the last 7 days.
	WindowWeek
	// WindowMonth covers the last 30 days.
	WindowMonth
	// WindowYear covers the last 12 months.
	WindowYear
)

// ParseWindow maps a query value to a Window. Unknown values fall back to
// WindowAll.
func ParseWindow(s string) Window {
	switch s {
	case "1d", "day":
		return WindowDay
	case "7d", "week":
		return WindowWeek
	case "30d", "month":
		return WindowMonth
	case "12m", "year":
		return WindowYear
	default:
		return WindowAll
	}
}

// Cutoff returns the window's start relative to now.
func (w Window) Cutoff(now time.Time) time.Time {
	switch w {
	case WindowDay:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case WindowWeek:
		return now.AddDate(0, 0, -7)
	case WindowMonth:
		return now.AddDate(0, 0, -30)
	case WindowYear:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

// Balance returns income minus expenses over all transactions.
func Balance(txs []models.Transaction) float64 {
	income, expense := 0.0, 0.0
	for _, tx := range txs {
		if tx.IsCredit {
			income += tx.Amount
		} else {
			expense += tx.Amount
		}
	}
	return income - expense
}

// ContriTotal sums TotalOwed over all friends. Overpaid friends contribute
// negative amounts.
func ContriTotal(friends []models.Friend) float64 {
	total := 0.0
	for _, f := range friends {
		total += f.TotalOwed
	}
	return total
}

// FilterByWindow returns expense-only transactions dated at or after the
// window's cutoff, newest first.
func FilterByWindow(txs []models.Transaction, now time.Time, w Window) []models.Transaction {
	cutoff := w.Cutoff(now)
	var out []models.Transaction
	for _, tx := range txs {
		if !tx.IsCredit && !tx.Date.Before(cutoff) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// CategorySlice is one entry in a category breakdown.
type CategorySlice struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// CategoryBreakdown groups the given transactions by category, sums each
// group, and appends one synthetic Contri bucket equal to the friends'
// total owed — present even when zero. The result is sorted descending by
// amount; tie order between equal amounts is unspecified and callers must
// not rely on it.
func CategoryBreakdown(txs []models.Transaction, friends []models.Friend) []CategorySlice {
	sums := make(map[string]float64)
	var order []string
	for _, tx := range txs {
		if _, seen := sums[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		sums[tx.Category] += tx.Amount
	}

	out := make([]CategorySlice, 0, len(order)+1)
	for _, cat := range order {
		out = append(out, CategorySlice{Category: cat, Amount: sums[cat]})
	}
	out = append(out, CategorySlice{Category: models.CategoryContri, Amount: ContriTotal(friends)})

	sort.Slice(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	return out
}

// ResolveSliceHit maps a scalar cursor in [0, sum(amounts)) onto the
// breakdown entry whose cumulative interval contains it, walking the
// entries in their sorted order. Both interval edges are inclusive, so a
// cursor landing exactly on a shared boundary resolves to the earlier
// entry. This edge policy is load-bearing for hit-testing and must not
// change.
func ResolveSliceHit(breakdown []CategorySlice, cursor float64) (CategorySlice, bool) {
	accumulated := 0.0
	for _, slice := range breakdown {
		if cursor >= accumulated && cursor <= accumulated+slice.Amount {
			return slice, true
		}
		accumulated += slice.Amount
	}
	return CategorySlice{}, false
}

// TopFriends returns the n friends with the highest balances, descending.
func TopFriends(friends []models.Friend, n int) []models.Friend {
	sorted := append([]models.Friend(nil), friends...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TotalOwed > sorted[j].TotalOwed })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ResolveFriendHit is ResolveSliceHit for a friends donut: it maps a
// cursor onto the friend whose cumulative TotalOwed interval contains it,
// with the same inclusive boundary policy.
func ResolveFriendHit(friends []models.Friend, cursor float64) (models.Friend, bool) {
	accumulated := 0.0
	for _, f := range friends {
		end := accumulated + f.TotalOwed
		if cursor >= accumulated && cursor <= end {
			return f, true
		}
		accumulated = end
	}
	return models.Friend{}, false
}
