package income

import "time"

// IncomeEntry is a named amount of income, independent of any budget. The sum
// of entries suggests (but never constrains) a budget's total amount.
type IncomeEntry struct {
	Id         int
	Name       string
	Amount     float64
	ReceivedAt time.Time
}
