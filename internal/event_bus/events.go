package event_bus

import "time"

// ExpenseRecorded is published after expense rows were written and the owning
// item's spent total was recomputed by the database.
type ExpenseRecorded struct {
	BudgetItemId int
	Amount       float64
	SubItemIds   []int
	RecordedAt   time.Time
}

// ItemMutated is published after a budget item or one of its sub-items was
// created, updated, or deleted, so cached views of the item collection can be
// refreshed.
type ItemMutated struct {
	BudgetItemId int
	Action       string
}

// BudgetPeriodInitialized is published when a new budget period is created,
// after carry-over items were recreated under the new budget.
type BudgetPeriodInitialized struct {
	BudgetId     int
	Period       string
	Amount       float64
	CarriedItems int
}
