package app

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pennyplan/pennyplan/internal/config"
	"github.com/pennyplan/pennyplan/internal/event_bus"
	"github.com/pennyplan/pennyplan/internal/utils"
	"github.com/pennyplan/pennyplan/pkg/budget"
	"github.com/pennyplan/pennyplan/pkg/budget_item"
	"github.com/pennyplan/pennyplan/pkg/expense"
	"github.com/pennyplan/pennyplan/pkg/google"
	"github.com/pennyplan/pennyplan/pkg/income"
	"github.com/pennyplan/pennyplan/pkg/stats"
	"github.com/pennyplan/pennyplan/pkg/user"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	UserService user.Service
	UserHandler *user.Handler

	BudgetRepo    budget.BudgetRepo
	BudgetService *budget.BudgetServiceImpl
	BudgetHandler *budget.BudgetHandler

	ItemRepo    budget_item.Repository
	ItemService budget_item.Service
	ItemHandler *budget_item.Handler

	ExpenseRepo    expense.Repository
	ExpenseService expense.Service
	ExpenseHandler *expense.Handler

	IncomeRepo    income.Repository
	IncomeService income.Service
	IncomeHandler *income.Handler

	StatsService     *stats.StatsServiceImpl
	CsvStatsRenderer *stats.CsvStatsRendererImpl
	StatsHandler     *stats.StatsHandler

	GoogleAuth    *google.GoogleAuth
	GoogleService google.Service
	GoogleHandler *google.Handler

	EventBus *event_bus.EventBus
	Clock    utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.ItemRepo = budget_item.NewRepository(db)
	deps.ItemService = budget_item.NewService(deps.ItemRepo, deps.EventBus)
	deps.ItemHandler = budget_item.NewHandler(deps.ItemService)

	debounce := time.Duration(cfg.Budget.LoadDebounceMillis) * time.Millisecond
	deps.BudgetRepo = budget.NewBudgetRepo(db)
	deps.BudgetService = budget.NewBudgetService(deps.BudgetRepo, deps.ItemRepo, deps.EventBus, deps.Clock, debounce)
	deps.BudgetHandler = budget.NewBudgetHandler(deps.BudgetService)

	deps.ExpenseRepo = expense.NewRepository(db)
	deps.ExpenseService = expense.NewService(deps.ExpenseRepo, deps.ItemRepo, deps.BudgetService, deps.EventBus, deps.Clock)
	deps.ExpenseHandler = expense.NewHandler(deps.ExpenseService)

	deps.IncomeRepo = income.NewRepository(db)
	deps.IncomeService = income.NewService(deps.IncomeRepo, deps.Clock)
	deps.IncomeHandler = income.NewHandler(deps.IncomeService)

	deps.StatsService = stats.NewStatsServiceImpl(deps.BudgetService)
	deps.CsvStatsRenderer = stats.NewCsvStatsRenderer()
	deps.StatsHandler = stats.NewStatsHandler(deps.StatsService, deps.CsvStatsRenderer)

	deps.GoogleAuth = google.NewGoogleAuth(db, deps.UserService, cfg)
	deps.GoogleService = google.NewService(deps.GoogleAuth, deps.StatsService)
	deps.GoogleHandler = google.NewHandler(deps.GoogleService)

	registerSubscriptions(deps)

	return deps
}

// registerSubscriptions wires cross-package reactions to domain events.
func registerSubscriptions(deps *Dependencies) {
	// A recorded expense changes spent totals, so the cached snapshot of the
	// user who recorded it must be reloaded on the next read.
	event_bus.SubscribeTyped(deps.EventBus, "expense.recorded", func(e event_bus.EventT[event_bus.ExpenseRecorded]) error {
		deps.BudgetService.Invalidate(e.Context())
		return nil
	})

	// Item and sub-item writes change the item collection itself, so the
	// snapshot must be re-read just like after a recorded expense.
	event_bus.SubscribeTyped(deps.EventBus, "item.mutated", func(e event_bus.EventT[event_bus.ItemMutated]) error {
		deps.BudgetService.Invalidate(e.Context())
		return nil
	})

	event_bus.SubscribeTyped(deps.EventBus, "budget.period.initialized", func(e event_bus.EventT[event_bus.BudgetPeriodInitialized]) error {
		log.Infof("budget period initialized: budget=%d period=%s amount=%.2f carried=%d",
			e.Data.BudgetId, e.Data.Period, e.Data.Amount, e.Data.CarriedItems)
		return nil
	})
}
