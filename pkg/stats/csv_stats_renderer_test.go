package stats

import (
	"testing"

	"github.com/pennyplan/pennyplan/pkg/budget_item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCsvStatsRendererImpl_RenderStats(t *testing.T) {
	// given
	renderer := NewCsvStatsRenderer()
	summary := StatsSummary{
		Items: []ItemStats{
			{
				Item:        budget_item.BudgetItem{Name: "Groceries", Amount: 400, Spent: 150},
				Remaining:   250,
				PercentUsed: 37.5,
			},
			{
				Item:        budget_item.BudgetItem{Name: "Dining", Amount: 100, Spent: 130},
				Remaining:   -30,
				PercentUsed: 130,
				OverBudget:  true,
			},
		},
		TotalBudget:    2000,
		TotalAllocated: 500,
		TotalSpent:     280,
		TotalRemaining: 1720,
	}

	// when
	csv, err := renderer.RenderStats(summary)

	// then
	require.NoError(t, err)
	expected := "Name,Budgeted,Spent,Remaining,Used %,Over budget\n" +
		"Groceries,400.00,150.00,250.00,37.5,\n" +
		"Dining,100.00,130.00,-30.00,130.0,yes\n" +
		"SUM,500.00,280.00,1720.00,,\n" +
		"Total budget,2000.00,,,,\n"
	assert.Equal(t, expected, csv)
}

func TestCsvStatsRendererImpl_RenderStats_Empty(t *testing.T) {
	// given
	renderer := NewCsvStatsRenderer()

	// when
	csv, err := renderer.RenderStats(StatsSummary{TotalBudget: 100, TotalRemaining: 100})

	// then
	require.NoError(t, err)
	assert.Equal(t, "Name,Budgeted,Spent,Remaining,Used %,Over budget\n"+
		"SUM,0.00,0.00,100.00,,\n"+
		"Total budget,100.00,,,,\n", csv)
}
