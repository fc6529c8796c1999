package expense

import "time"

// Expense is an append-only record of money spent against a budget item,
// optionally attributed to one of its sub-items. Expenses are never updated or
// deleted; the item's spent total is always re-derived from the full set of
// rows after every insert.
type Expense struct {
	Id         int
	ItemId     int
	SubItemId  *int
	Amount     float64
	RecordedAt time.Time
}
