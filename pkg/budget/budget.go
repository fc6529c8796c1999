package budget

import (
	"time"

	"github.com/pennyplan/pennyplan/pkg/budget_item"
)

// Period determines how a budget's date range is derived from its start.
type Period string

const (
	PeriodDaily        Period = "daily"
	PeriodWeekly       Period = "weekly"
	PeriodBiWeekly     Period = "bi-weekly"
	PeriodMonthly      Period = "monthly"
	PeriodQuarterly    Period = "quarterly"
	PeriodSemiAnnually Period = "semi-annually"
	PeriodAnnually     Period = "annually"
	PeriodCustom       Period = "custom"
)

// Budget is one funded, period-bounded plan. CreatedAt defines the period start.
// A budget is never mutated after creation; a new period supersedes it.
type Budget struct {
	Id        int
	Uid       string
	Period    Period
	Amount    float64
	CreatedAt time.Time
}

type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// PeriodDateRange computes the date range covered by a budget starting at start.
// Calendar-based periods use calendar arithmetic (a monthly budget starting
// Jan 15 ends Feb 15). Custom and unknown periods fall back to 30 days.
func PeriodDateRange(start time.Time, period Period) DateRange {
	var end time.Time
	switch period {
	case PeriodDaily:
		end = start.AddDate(0, 0, 1)
	case PeriodWeekly:
		end = start.AddDate(0, 0, 7)
	case PeriodBiWeekly:
		end = start.AddDate(0, 0, 14)
	case PeriodMonthly:
		end = start.AddDate(0, 1, 0)
	case PeriodQuarterly:
		end = start.AddDate(0, 3, 0)
	case PeriodSemiAnnually:
		end = start.AddDate(0, 6, 0)
	case PeriodAnnually:
		end = start.AddDate(1, 0, 0)
	default:
		end = start.AddDate(0, 0, 30)
	}
	return DateRange{Start: start, End: end}
}

// Snapshot is the in-memory view of a user's current budget: the budget row,
// its items with sub-items, the computed date range, and the derived expired
// flag. It is replaced wholesale on every successful load.
type Snapshot struct {
	Exists    bool
	Budget    Budget
	Items     []budget_item.BudgetItem
	DateRange DateRange
	Expired   bool
}

// Rollover is the staged carry-over data captured from an expiring budget.
// Continuous items carry their remaining balance, recurring items their full
// amount; Leftover is the expiring budget's unspent total, which the caller may
// add into the next period's starting amount.
type Rollover struct {
	ContinuousItems []budget_item.BudgetItem
	RecurringItems  []budget_item.BudgetItem
	Leftover        float64
}
