package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodDateRange(t *testing.T) {
	start := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		period   Period
		expected time.Time
	}{
		{"daily period ends next day", PeriodDaily, start.AddDate(0, 0, 1)},
		{"weekly period ends after 7 days", PeriodWeekly, start.AddDate(0, 0, 7)},
		{"bi-weekly period ends after 14 days", PeriodBiWeekly, start.AddDate(0, 0, 14)},
		{"monthly period uses calendar month", PeriodMonthly, time.Date(2024, 2, 15, 10, 30, 0, 0, time.UTC)},
		{"quarterly period adds three months", PeriodQuarterly, time.Date(2024, 4, 15, 10, 30, 0, 0, time.UTC)},
		{"semi-annual period adds six months", PeriodSemiAnnually, time.Date(2024, 7, 15, 10, 30, 0, 0, time.UTC)},
		{"annual period adds one year", PeriodAnnually, time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"custom period falls back to 30 days", PeriodCustom, start.AddDate(0, 0, 30)},
		{"unknown period falls back to 30 days", Period("lunar"), start.AddDate(0, 0, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := PeriodDateRange(start, tt.period)

			assert.Equal(t, start, r.Start)
			assert.Equal(t, tt.expected, r.End)
		})
	}
}

func TestPeriodDateRange_MonthlyOverflow(t *testing.T) {
	// Jan 31 + 1 month normalizes past the end of February.
	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	r := PeriodDateRange(start, PeriodMonthly)

	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), r.End)
}

func TestDateRange_Contains(t *testing.T) {
	r := DateRange{
		Start: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, r.Contains(r.Start))
	assert.True(t, r.Contains(r.End))
	assert.True(t, r.Contains(time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(r.Start.Add(-time.Second)))
	assert.False(t, r.Contains(r.End.Add(time.Second)))
}
