package expense

import (
	"context"
	"testing"
	"time"

	"github.com/pennyplan/pennyplan/internal/event_bus"
	"github.com/pennyplan/pennyplan/internal/utils"
	"github.com/pennyplan/pennyplan/pkg/budget"
	"github.com/pennyplan/pennyplan/pkg/budget_item"
	"github.com/pennyplan/pennyplan/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1, Uid: "test-uid", Username: "tester"})

// linkedRepoStub feeds appended rows into the item repository stub so that
// RecalculateSpent derives spent from them, the way the SQL repositories do.
type linkedRepoStub struct {
	*RepositoryStub
	items *budget_item.RepositoryStub
}

func (s *linkedRepoStub) Append(ctx context.Context, userId int, expense Expense) (int, error) {
	id, err := s.RepositoryStub.Append(ctx, userId, expense)
	if err == nil {
		s.items.AddExpenseAmount(expense.ItemId, expense.Amount, expense.SubItemId)
	}
	return id, err
}

var itemRepoStub = budget_item.NewRepositoryStub()
var expenseRepoStub = &linkedRepoStub{RepositoryStub: NewRepositoryStub(), items: itemRepoStub}
var budgetRepoStub = budget.NewStubBudgetRepo()
var clock = &utils.MockClock{}

var budgetService budget.BudgetService
var service Service

func setup(t *testing.T) func() {
	clock.SetNow(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))
	eventBus := event_bus.NewEventBus()
	budgetService = budget.NewBudgetService(budgetRepoStub, itemRepoStub, eventBus, clock, time.Second)
	service = NewService(expenseRepoStub, itemRepoStub, budgetService, eventBus, clock)
	return func() {
		t.Log("Teardown after test")
		itemRepoStub.Cleanup()
		expenseRepoStub.Cleanup()
		budgetRepoStub.Cleanup()
	}
}

func initializeBudget(t *testing.T) budget.Snapshot {
	snapshot, err := budgetService.Initialize(ctx, budget.PeriodMonthly, 2000)
	require.NoError(t, err)
	return snapshot
}

func TestServiceImpl_Record(t *testing.T) {
	t.Run("should record an expense and re-derive spent", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		snapshot := initializeBudget(t)
		itemId, err := itemRepoStub.StoreItem(ctx, 1, budget_item.BudgetItem{BudgetId: snapshot.Budget.Id, Name: "Groceries", Amount: 400})
		require.NoError(t, err)

		// when
		item, err := service.Record(ctx, itemId, 120.50, nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, 120.50, item.Spent)

		expenses, err := service.ListForItem(ctx, itemId)
		require.NoError(t, err)
		require.Len(t, expenses, 1)
		assert.Equal(t, 120.50, expenses[0].Amount)
		assert.Equal(t, clock.Now(), expenses[0].RecordedAt)
	})

	t.Run("should accumulate spent across expenses", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		snapshot := initializeBudget(t)
		itemId, err := itemRepoStub.StoreItem(ctx, 1, budget_item.BudgetItem{BudgetId: snapshot.Budget.Id, Name: "Groceries", Amount: 400})
		require.NoError(t, err)

		// when
		_, err = service.Record(ctx, itemId, 40, nil)
		require.NoError(t, err)
		item, err := service.Record(ctx, itemId, 30, nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, 70.0, item.Spent)
	})

	t.Run("should split across sub-items proportionally to their amounts", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		snapshot := initializeBudget(t)
		itemId, err := itemRepoStub.StoreItem(ctx, 1, budget_item.BudgetItem{BudgetId: snapshot.Budget.Id, Name: "Groceries", Amount: 400})
		require.NoError(t, err)
		produceId, err := itemRepoStub.StoreSubItem(ctx, 1, budget_item.SubBudgetItem{ItemId: itemId, Name: "Produce", Amount: 30})
		require.NoError(t, err)
		meatId, err := itemRepoStub.StoreSubItem(ctx, 1, budget_item.SubBudgetItem{ItemId: itemId, Name: "Meat", Amount: 70})
		require.NoError(t, err)

		// when
		item, err := service.Record(ctx, itemId, 50, []int{produceId, meatId})

		// then
		require.NoError(t, err)
		assert.Equal(t, 50.0, item.Spent)

		expenses, err := service.ListForItem(ctx, itemId)
		require.NoError(t, err)
		require.Len(t, expenses, 2)
		assert.Equal(t, 15.0, expenses[0].Amount)
		assert.Equal(t, 35.0, expenses[1].Amount)
		require.NotNil(t, expenses[0].SubItemId)
		assert.Equal(t, produceId, *expenses[0].SubItemId)

		// the touched sub-items become tracked
		for _, sub := range item.SubItems {
			assert.True(t, sub.Tracked)
		}
	})

	t.Run("should split equally when sub-item amounts sum to zero", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given - sub-items stored directly, bypassing service validation
		snapshot := initializeBudget(t)
		itemId, err := itemRepoStub.StoreItem(ctx, 1, budget_item.BudgetItem{BudgetId: snapshot.Budget.Id, Name: "Misc", Amount: 100})
		require.NoError(t, err)
		firstId, err := itemRepoStub.StoreSubItem(ctx, 1, budget_item.SubBudgetItem{ItemId: itemId, Name: "A", Amount: 0})
		require.NoError(t, err)
		secondId, err := itemRepoStub.StoreSubItem(ctx, 1, budget_item.SubBudgetItem{ItemId: itemId, Name: "B", Amount: 0})
		require.NoError(t, err)

		// when
		_, err = service.Record(ctx, itemId, 50, []int{firstId, secondId})

		// then
		require.NoError(t, err)
		expenses, err := service.ListForItem(ctx, itemId)
		require.NoError(t, err)
		require.Len(t, expenses, 2)
		assert.Equal(t, 25.0, expenses[0].Amount)
		assert.Equal(t, 25.0, expenses[1].Amount)
	})

	t.Run("should reject a sub-item of another item", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		snapshot := initializeBudget(t)
		itemId, err := itemRepoStub.StoreItem(ctx, 1, budget_item.BudgetItem{BudgetId: snapshot.Budget.Id, Name: "Groceries", Amount: 400})
		require.NoError(t, err)
		otherId, err := itemRepoStub.StoreItem(ctx, 1, budget_item.BudgetItem{BudgetId: snapshot.Budget.Id, Name: "Fun", Amount: 100})
		require.NoError(t, err)
		foreignSubId, err := itemRepoStub.StoreSubItem(ctx, 1, budget_item.SubBudgetItem{ItemId: otherId, Name: "Cinema", Amount: 50})
		require.NoError(t, err)

		// when
		_, err = service.Record(ctx, itemId, 50, []int{foreignSubId})

		// then
		assert.ErrorIs(t, err, ErrUnknownSubItem)
	})

	t.Run("should reject a non-positive amount", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Record(ctx, 1, 0, nil)

		// then
		assert.ErrorIs(t, err, ErrNonPositiveAmount)
	})

	t.Run("should reject recording without a current budget", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Record(ctx, 1, 50, nil)

		// then
		assert.ErrorIs(t, err, budget.ErrNoCurrentBudget)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Record(context.Background(), 1, 50, nil)

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}
