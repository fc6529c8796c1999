package budget_item

// TotalAllocated sums the allocated amounts of all items. 0 for an empty slice.
func TotalAllocated(items []BudgetItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Amount
	}
	return total
}

// TotalSpent sums the spent amounts of all items. 0 for an empty slice.
func TotalSpent(items []BudgetItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Spent
	}
	return total
}

// Remaining is the unspent part of the whole budget. It may be negative; a
// negative value signals over-budget and is deliberately not clamped.
func Remaining(totalBudget float64, items []BudgetItem) float64 {
	return totalBudget - TotalSpent(items)
}

// PercentUsed returns spent/amount as a percentage, 0 when amount is not positive.
func PercentUsed(amount, spent float64) float64 {
	if amount <= 0 {
		return 0
	}
	return spent / amount * 100
}
