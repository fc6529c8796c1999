package budget_item

import "time"

// Tag values offered by the UI palette. Tag on items and sub-items is free text,
// so anything outside this list is a custom tag.
const (
	TagEssentials = "essentials"
	TagLifestyle  = "lifestyle"
	TagSavings    = "savings"
	TagDebt       = "debt"
)

// BudgetItem is a named allocation (category) within a budget.
// Spent is derived by the database from expense rows and is never computed
// client-side; see Repository.RecalculateSpent.
type BudgetItem struct {
	Id       int
	BudgetId int
	Name     string
	Amount   float64
	Spent    float64
	Deadline *time.Time
	Note     *string
	Tag      *string
	// Impulse marks a category created ad hoc from an expense entry flow.
	Impulse bool
	// Continuous items carry their remaining balance into the next period.
	Continuous bool
	// Recurring items reset to their full amount in the next period.
	Recurring bool
	SubItems  []SubBudgetItem
}

// SetContinuous sets the continuous flag. Continuous and recurring are mutually
// exclusive; enabling one disables the other.
func (i *BudgetItem) SetContinuous(continuous bool) {
	i.Continuous = continuous
	if continuous {
		i.Recurring = false
	}
}

// SetRecurring sets the recurring flag, forcing continuous off when enabled.
func (i *BudgetItem) SetRecurring(recurring bool) {
	i.Recurring = recurring
	if recurring {
		i.Continuous = false
	}
}

// Remaining is the unspent part of the allocation. Negative when over budget.
func (i BudgetItem) Remaining() float64 {
	return i.Amount - i.Spent
}

// SubBudgetItem is a named sub-allocation within a budget item.
// Tracked is derived: true iff at least one expense row references it.
type SubBudgetItem struct {
	Id      int
	ItemId  int
	Name    string
	Amount  float64
	Note    *string
	Tag     *string
	Tracked bool
}
