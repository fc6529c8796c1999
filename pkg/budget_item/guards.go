package budget_item

// The guards are advisory: they tell the caller that a prospective expense
// deserves a confirmation prompt, but they never block the write. The two
// predicates share the same inequality; the repeat-overage one additionally
// requires that the target has already been spent against, so the UI can show
// different copy for "first overage" and "overage on an already-tracked item".

// WouldExceedBudget reports whether candidate would push spent above the allocation.
func WouldExceedBudget(amount, spent, candidate float64) bool {
	return candidate > amount-spent
}

// IsRepeatOverage reports whether candidate exceeds the remaining allocation of a
// target that already recorded at least one expense.
func IsRepeatOverage(amount, spent, candidate float64) bool {
	return spent > 0 && WouldExceedBudget(amount, spent, candidate)
}

// GuardResult carries both verdicts for a prospective amount against one target.
type GuardResult struct {
	ExceedsBudget bool
	RepeatOverage bool
	Remaining     float64
}

// CheckGuards evaluates both guards for a prospective amount.
func CheckGuards(amount, spent, candidate float64) GuardResult {
	return GuardResult{
		ExceedsBudget: WouldExceedBudget(amount, spent, candidate),
		RepeatOverage: IsRepeatOverage(amount, spent, candidate),
		Remaining:     amount - spent,
	}
}
