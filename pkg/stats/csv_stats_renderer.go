package stats

import (
	"bytes"
	"encoding/csv"
	"strconv"

	log "github.com/sirupsen/logrus"
)

type CsvStatsRendererImpl struct {
}

func NewCsvStatsRenderer() *CsvStatsRendererImpl {
	return &CsvStatsRendererImpl{}
}

func (t *CsvStatsRendererImpl) RenderStats(stats StatsSummary) (string, error) {

	data := make([][]string, 0, len(stats.Items)+3)
	data = append(data, []string{"Name", "Budgeted", "Spent", "Remaining", "Used %", "Over budget"})

	for _, itemStats := range stats.Items {
		overBudget := ""
		if itemStats.OverBudget {
			overBudget = "yes"
		}
		data = append(data, []string{
			itemStats.Item.Name,
			amountToString(itemStats.Item.Amount),
			amountToString(itemStats.Item.Spent),
			amountToString(itemStats.Remaining),
			percentToString(itemStats.PercentUsed),
			overBudget,
		})
	}

	data = append(data, []string{
		"SUM",
		amountToString(stats.TotalAllocated),
		amountToString(stats.TotalSpent),
		amountToString(stats.TotalRemaining),
		"",
		"",
	})
	data = append(data, []string{"Total budget", amountToString(stats.TotalBudget), "", "", "", ""})

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		err := writer.Write(row)
		if err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}

	return b.String(), nil
}

func amountToString(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

func percentToString(percent float64) string {
	return strconv.FormatFloat(percent, 'f', 1, 64)
}
