package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pennyplan/pennyplan/internal/event_bus"
	"github.com/pennyplan/pennyplan/internal/utils"
	"github.com/pennyplan/pennyplan/pkg/budget_item"
	"github.com/pennyplan/pennyplan/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1, Uid: "test-uid", Username: "tester"})

var budgetRepoStub = NewStubBudgetRepo()
var itemRepoStub = budget_item.NewRepositoryStub()
var clock = &utils.MockClock{}

var service *BudgetServiceImpl

func setup(t *testing.T) func() {
	clock.SetNow(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))
	service = NewBudgetService(budgetRepoStub, itemRepoStub, event_bus.NewEventBus(), clock, time.Second)
	return func() {
		t.Log("Teardown after test")
		budgetRepoStub.Cleanup()
		itemRepoStub.Cleanup()
	}
}

func TestBudgetServiceImpl_Initialize(t *testing.T) {
	t.Run("should create a budget with a derived date range", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		snapshot, err := service.Initialize(ctx, PeriodMonthly, 2000)

		// then
		require.NoError(t, err)
		assert.True(t, snapshot.Exists)
		assert.NotZero(t, snapshot.Budget.Id)
		assert.NotEmpty(t, snapshot.Budget.Uid)
		assert.Equal(t, 2000.0, snapshot.Budget.Amount)
		assert.Equal(t, clock.Now(), snapshot.DateRange.Start)
		assert.Equal(t, clock.Now().AddDate(0, 1, 0), snapshot.DateRange.End)
		assert.False(t, snapshot.Expired)
	})

	t.Run("should reject an unknown period", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Initialize(ctx, Period("lunar"), 2000)

		// then
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("should reject a non-positive amount", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Initialize(ctx, PeriodMonthly, 0)

		// then
		assert.ErrorIs(t, err, ErrNonPositiveAmount)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Initialize(context.Background(), PeriodMonthly, 2000)

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}

func TestBudgetServiceImpl_Current(t *testing.T) {
	t.Run("should report a non-existing budget for a new user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		snapshot, err := service.Current(ctx)

		// then
		require.NoError(t, err)
		assert.False(t, snapshot.Exists)
	})

	t.Run("should recompute the expired flag against the clock", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Initialize(ctx, PeriodWeekly, 500)
		require.NoError(t, err)

		// when
		before, err := service.Current(ctx)
		require.NoError(t, err)
		clock.Advance(8 * 24 * time.Hour)
		after, err := service.Current(ctx)
		require.NoError(t, err)

		// then
		assert.False(t, before.Expired)
		assert.True(t, after.Expired)
	})
}

func TestBudgetServiceImpl_Load(t *testing.T) {
	t.Run("should suppress loads inside the debounce window", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Initialize(ctx, PeriodMonthly, 2000)
		require.NoError(t, err)

		// when - Initialize just refreshed the snapshot
		loaded, err := service.Load(ctx)

		// then
		assert.NoError(t, err)
		assert.False(t, loaded)
	})

	t.Run("should load again once the debounce window has passed", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Initialize(ctx, PeriodMonthly, 2000)
		require.NoError(t, err)
		clock.Advance(2 * time.Second)

		// when
		first, err1 := service.Load(ctx)
		second, err2 := service.Load(ctx)

		// then - only the first call inside the new window actually loads
		assert.NoError(t, err1)
		assert.True(t, first)
		assert.NoError(t, err2)
		assert.False(t, second)
	})

	t.Run("should keep the last snapshot when a load fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		initial, err := service.Initialize(ctx, PeriodMonthly, 2000)
		require.NoError(t, err)
		clock.Advance(2 * time.Second)
		budgetRepoStub.FailNext = errors.New("connection reset")

		// when
		loaded, err := service.Load(ctx)

		// then
		assert.Error(t, err)
		assert.False(t, loaded)

		snapshot, err := service.Current(ctx)
		require.NoError(t, err)
		assert.True(t, snapshot.Exists)
		assert.Equal(t, initial.Budget.Id, snapshot.Budget.Id)
	})

	t.Run("should keep sessions of different users separate", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		otherCtx := user.WithUser(context.Background(), user.User{Id: 2, Uid: "other-uid", Username: "other"})
		_, err := service.Initialize(ctx, PeriodMonthly, 2000)
		require.NoError(t, err)

		// when - the other user's first load is not debounced by user 1's
		loaded, err := service.Load(otherCtx)

		// then
		assert.NoError(t, err)
		assert.True(t, loaded)
	})
}

func TestBudgetServiceImpl_Invalidate(t *testing.T) {
	t.Run("should force a fresh read on the next Current call", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Initialize(ctx, PeriodMonthly, 2000)
		require.NoError(t, err)
		newerId, err := budgetRepoStub.Store(ctx, 1, Budget{Uid: "newer", Period: PeriodMonthly, Amount: 3000, CreatedAt: clock.Now().Add(time.Minute)})
		require.NoError(t, err)

		// when
		stale, err := service.Current(ctx)
		require.NoError(t, err)
		service.Invalidate(ctx)
		fresh, err := service.Current(ctx)
		require.NoError(t, err)

		// then
		assert.NotEqual(t, newerId, stale.Budget.Id)
		assert.Equal(t, newerId, fresh.Budget.Id)
	})

	t.Run("should serve a fresh item collection after an item write", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given - the item service shares a bus whose mutation events
		// invalidate the snapshot, matching the application wiring
		bus := event_bus.NewEventBus()
		itemService := budget_item.NewService(itemRepoStub, bus)
		event_bus.SubscribeTyped(bus, "item.mutated", func(e event_bus.EventT[event_bus.ItemMutated]) error {
			service.Invalidate(e.Context())
			return nil
		})

		snapshot, err := service.Initialize(ctx, PeriodMonthly, 2000)
		require.NoError(t, err)
		require.Empty(t, snapshot.Items)

		// when - still inside the debounce window after Initialize
		created, err := itemService.CreateItem(ctx, budget_item.BudgetItem{BudgetId: snapshot.Budget.Id, Name: "Groceries", Amount: 400})
		require.NoError(t, err)
		current, err := service.Current(ctx)
		require.NoError(t, err)

		// then
		require.Len(t, current.Items, 1)
		assert.Equal(t, created.Id, current.Items[0].Id)

		// and a delete disappears from the snapshot the same way
		_, err = itemService.DeleteItem(ctx, created.Id)
		require.NoError(t, err)
		current, err = service.Current(ctx)
		require.NoError(t, err)
		assert.Empty(t, current.Items)
	})
}

func TestBudgetServiceImpl_PrepareRollover(t *testing.T) {
	t.Run("should return error when there is no budget", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.PrepareRollover(ctx)

		// then
		assert.ErrorIs(t, err, ErrNoCurrentBudget)
	})

	t.Run("should stage continuous and recurring items with the leftover", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		snapshot, err := service.Initialize(ctx, PeriodMonthly, 2000)
		require.NoError(t, err)
		budgetId := snapshot.Budget.Id

		_, err = itemRepoStub.StoreItem(ctx, 1, budget_item.BudgetItem{BudgetId: budgetId, Name: "Groceries", Amount: 100, Spent: 60, Continuous: true})
		require.NoError(t, err)
		_, err = itemRepoStub.StoreItem(ctx, 1, budget_item.BudgetItem{BudgetId: budgetId, Name: "Rent", Amount: 800, Spent: 800, Recurring: true})
		require.NoError(t, err)
		_, err = itemRepoStub.StoreItem(ctx, 1, budget_item.BudgetItem{BudgetId: budgetId, Name: "One-off", Amount: 50, Spent: 10})
		require.NoError(t, err)

		// when
		rollover, err := service.PrepareRollover(ctx)

		// then
		require.NoError(t, err)
		require.Len(t, rollover.ContinuousItems, 1)
		assert.Equal(t, "Groceries", rollover.ContinuousItems[0].Name)
		require.Len(t, rollover.RecurringItems, 1)
		assert.Equal(t, "Rent", rollover.RecurringItems[0].Name)
		assert.Equal(t, 2000.0-870.0, rollover.Leftover)
	})

	t.Run("should carry staged items into the next Initialize", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		snapshot, err := service.Initialize(ctx, PeriodMonthly, 2000)
		require.NoError(t, err)
		budgetId := snapshot.Budget.Id

		_, err = itemRepoStub.StoreItem(ctx, 1, budget_item.BudgetItem{BudgetId: budgetId, Name: "Groceries", Amount: 100, Spent: 60, Continuous: true})
		require.NoError(t, err)
		_, err = itemRepoStub.StoreItem(ctx, 1, budget_item.BudgetItem{BudgetId: budgetId, Name: "Rent", Amount: 800, Spent: 800, Recurring: true})
		require.NoError(t, err)
		_, err = service.PrepareRollover(ctx)
		require.NoError(t, err)

		// when
		next, err := service.Initialize(ctx, PeriodMonthly, 2500)

		// then
		require.NoError(t, err)
		require.Len(t, next.Items, 2)

		byName := map[string]budget_item.BudgetItem{}
		for _, item := range next.Items {
			byName[item.Name] = item
		}

		// continuous carries its remaining balance, recurring its full amount
		assert.Equal(t, 40.0, byName["Groceries"].Amount)
		assert.Equal(t, 800.0, byName["Rent"].Amount)
		assert.Zero(t, byName["Groceries"].Spent)
		assert.Zero(t, byName["Rent"].Spent)
		assert.True(t, byName["Groceries"].Continuous)
		assert.True(t, byName["Rent"].Recurring)
	})

	t.Run("should never carry a negative amount for an overspent continuous item", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		snapshot, err := service.Initialize(ctx, PeriodMonthly, 2000)
		require.NoError(t, err)
		_, err = itemRepoStub.StoreItem(ctx, 1, budget_item.BudgetItem{BudgetId: snapshot.Budget.Id, Name: "Dining", Amount: 100, Spent: 130, Continuous: true})
		require.NoError(t, err)
		_, err = service.PrepareRollover(ctx)
		require.NoError(t, err)

		// when
		next, err := service.Initialize(ctx, PeriodMonthly, 2000)

		// then
		require.NoError(t, err)
		require.Len(t, next.Items, 1)
		assert.Equal(t, 0.0, next.Items[0].Amount)
	})

	t.Run("should consume the staged rollover only once", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		snapshot, err := service.Initialize(ctx, PeriodMonthly, 2000)
		require.NoError(t, err)
		_, err = itemRepoStub.StoreItem(ctx, 1, budget_item.BudgetItem{BudgetId: snapshot.Budget.Id, Name: "Rent", Amount: 800, Recurring: true})
		require.NoError(t, err)
		_, err = service.PrepareRollover(ctx)
		require.NoError(t, err)
		_, err = service.Initialize(ctx, PeriodMonthly, 2000)
		require.NoError(t, err)

		// when - a second Initialize without a new PrepareRollover
		next, err := service.Initialize(ctx, PeriodMonthly, 2000)

		// then
		require.NoError(t, err)
		assert.Empty(t, next.Items)
	})
}
