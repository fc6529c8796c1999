package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/pennyplan/pennyplan/pkg/stats"
	"github.com/pennyplan/pennyplan/pkg/user"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var ErrUnauthenticated = errors.New("user is not authenticated with Google")

// Service exports the current budget summary to a new Google Sheets
// spreadsheet owned by the user.
type Service interface {
	ExportSummary(ctx context.Context) (string, error)
}

type ServiceImpl struct {
	auth         *GoogleAuth
	statsService stats.StatsService
}

func NewService(auth *GoogleAuth, statsService stats.StatsService) *ServiceImpl {
	return &ServiceImpl{
		auth:         auth,
		statsService: statsService,
	}
}

func (s *ServiceImpl) ExportSummary(ctx context.Context) (string, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}

	summary, err := s.statsService.GetSummary(ctx)
	if err != nil {
		return "", err
	}

	service, err := s.prepareGoogleService(ctx, userId)
	if err != nil {
		return "", err
	}

	title := fmt.Sprintf("Budget summary %s - %s",
		summary.StartDate.Format("2006-01-02"), summary.EndDate.Format("2006-01-02"))
	spreadsheet, err := service.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to create spreadsheet: %v", err)
		log.Error(err)
		return "", err
	}

	values := summaryToRows(summary)
	_, err = service.Spreadsheets.Values.Update(spreadsheet.SpreadsheetId, "A1", &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to write summary to spreadsheet: %v", err)
		log.Error(err)
		return "", err
	}

	log.Debugf("Exported budget summary for user %d to spreadsheet %s", userId, spreadsheet.SpreadsheetId)
	return spreadsheet.SpreadsheetUrl, nil
}

func summaryToRows(summary stats.StatsSummary) [][]interface{} {
	rows := make([][]interface{}, 0, len(summary.Items)+3)
	rows = append(rows, []interface{}{"Name", "Budgeted", "Spent", "Remaining", "Used %", "Over budget"})
	for _, itemStats := range summary.Items {
		overBudget := ""
		if itemStats.OverBudget {
			overBudget = "yes"
		}
		rows = append(rows, []interface{}{
			itemStats.Item.Name,
			itemStats.Item.Amount,
			itemStats.Item.Spent,
			itemStats.Remaining,
			itemStats.PercentUsed,
			overBudget,
		})
	}
	rows = append(rows, []interface{}{"SUM", summary.TotalAllocated, summary.TotalSpent, summary.TotalRemaining, "", ""})
	rows = append(rows, []interface{}{"Total budget", summary.TotalBudget, "", "", "", ""})
	return rows
}

func (s *ServiceImpl) prepareGoogleService(ctx context.Context, userId int) (*sheets.Service, error) {

	client, err := s.auth.getClient(ctx, userId)
	if err != nil {
		err := fmt.Errorf("unable to retrieve Google auth client: %v", err)
		log.Error(err)
		return nil, err
	}
	if client == nil {
		log.Debug("user is unauthenticated, authentication is required")
		return nil, ErrUnauthenticated
	}
	service, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		err := fmt.Errorf("unable to retrieve Sheets client: %v", err)
		log.Error(err)
		return nil, err
	}

	return service, nil
}
