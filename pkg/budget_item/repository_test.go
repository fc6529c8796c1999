package budget_item

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pennyplan/pennyplan/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	container, getPool := test_utils.TestWithDB()
	db = getPool()
	code := m.Run()
	db.Close()
	_ = container.Terminate(context.Background())
	os.Exit(code)
}

var userSeq int

func setupTestRepository(t *testing.T) (context.Context, Repository, int, int) {
	ctx := context.Background()
	repository := NewRepository(db)

	userSeq++
	var userId int
	err := db.QueryRow(ctx,
		`INSERT INTO users (uid, username, display_name, currency) VALUES ($1, $2, $3, 'USD') RETURNING id`,
		fmt.Sprintf("uid-%d", userSeq), fmt.Sprintf("user%d", userSeq), "Test User",
	).Scan(&userId)
	require.NoError(t, err)

	var budgetId int
	err = db.QueryRow(ctx,
		`INSERT INTO budget (uid, period, amount, created_at, user_id) VALUES ($1, 'monthly', 2000, $2, $3) RETURNING id`,
		fmt.Sprintf("budget-uid-%d", userSeq), time.Now().UTC(), userId,
	).Scan(&budgetId)
	require.NoError(t, err)

	return ctx, repository, userId, budgetId
}

func TestRepositoryImpl_StoreItem(t *testing.T) {
	// given
	ctx, repo, userId, budgetId := setupTestRepository(t)
	note := "weekly shop"
	tag := TagEssentials
	deadline := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// when
	id, err := repo.StoreItem(ctx, userId, BudgetItem{
		BudgetId:   budgetId,
		Name:       "Groceries",
		Amount:     400,
		Deadline:   &deadline,
		Note:       &note,
		Tag:        &tag,
		Continuous: true,
	})
	require.NoError(t, err)

	// then
	item, err := repo.GetItem(ctx, userId, id)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", item.Name)
	assert.Equal(t, 400.0, item.Amount)
	assert.Zero(t, item.Spent)
	require.NotNil(t, item.Deadline)
	assert.True(t, deadline.Equal(*item.Deadline))
	require.NotNil(t, item.Note)
	assert.Equal(t, note, *item.Note)
	require.NotNil(t, item.Tag)
	assert.Equal(t, tag, *item.Tag)
	assert.True(t, item.Continuous)
	assert.False(t, item.Recurring)
}

func TestRepositoryImpl_GetItem_NotFound(t *testing.T) {
	// given
	ctx, repo, userId, _ := setupTestRepository(t)

	// when
	_, err := repo.GetItem(ctx, userId, 999999)

	// then
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRepositoryImpl_GetItem_OtherUsersItemIsInvisible(t *testing.T) {
	// given
	ctx, repo, ownerId, budgetId := setupTestRepository(t)
	id, err := repo.StoreItem(ctx, ownerId, BudgetItem{BudgetId: budgetId, Name: "Private", Amount: 10})
	require.NoError(t, err)

	_, _, otherId, _ := setupTestRepository(t)

	// when
	_, err = repo.GetItem(ctx, otherId, id)

	// then
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRepositoryImpl_RecalculateSpent(t *testing.T) {
	// given
	ctx, repo, userId, budgetId := setupTestRepository(t)
	itemId, err := repo.StoreItem(ctx, userId, BudgetItem{BudgetId: budgetId, Name: "Groceries", Amount: 400})
	require.NoError(t, err)

	for _, amount := range []float64{120.50, 30, 9.50} {
		_, err := db.Exec(ctx,
			`INSERT INTO expense (budget_item_id, amount, recorded_at, user_id) VALUES ($1, $2, $3, $4)`,
			itemId, amount, time.Now().UTC(), userId)
		require.NoError(t, err)
	}

	// when
	spent, err := repo.RecalculateSpent(ctx, userId, itemId)

	// then
	require.NoError(t, err)
	assert.Equal(t, 160.0, spent)

	item, err := repo.GetItem(ctx, userId, itemId)
	require.NoError(t, err)
	assert.Equal(t, 160.0, item.Spent)
}

func TestRepositoryImpl_GetSubItems_TrackedFlag(t *testing.T) {
	// given
	ctx, repo, userId, budgetId := setupTestRepository(t)
	itemId, err := repo.StoreItem(ctx, userId, BudgetItem{BudgetId: budgetId, Name: "Groceries", Amount: 400})
	require.NoError(t, err)

	trackedId, err := repo.StoreSubItem(ctx, userId, SubBudgetItem{ItemId: itemId, Name: "Produce", Amount: 100})
	require.NoError(t, err)
	_, err = repo.StoreSubItem(ctx, userId, SubBudgetItem{ItemId: itemId, Name: "Meat", Amount: 100})
	require.NoError(t, err)

	_, err = db.Exec(ctx,
		`INSERT INTO expense (budget_item_id, sub_budget_item_id, amount, recorded_at, user_id) VALUES ($1, $2, 25, $3, $4)`,
		itemId, trackedId, time.Now().UTC(), userId)
	require.NoError(t, err)

	// when
	subItems, err := repo.GetSubItems(ctx, userId, itemId)

	// then
	require.NoError(t, err)
	require.Len(t, subItems, 2)
	byName := map[string]SubBudgetItem{}
	for _, sub := range subItems {
		byName[sub.Name] = sub
	}
	assert.True(t, byName["Produce"].Tracked)
	assert.False(t, byName["Meat"].Tracked)
}

func TestRepositoryImpl_DeleteItem_CascadesToSubItems(t *testing.T) {
	// given
	ctx, repo, userId, budgetId := setupTestRepository(t)
	itemId, err := repo.StoreItem(ctx, userId, BudgetItem{BudgetId: budgetId, Name: "Groceries", Amount: 400})
	require.NoError(t, err)
	_, err = repo.StoreSubItem(ctx, userId, SubBudgetItem{ItemId: itemId, Name: "Produce", Amount: 100})
	require.NoError(t, err)

	// when
	deleted, err := repo.DeleteItem(ctx, userId, itemId)

	// then
	require.NoError(t, err)
	assert.True(t, deleted)

	var count int
	err = db.QueryRow(ctx, `SELECT COUNT(*) FROM sub_budget_item WHERE budget_item_id = $1`, itemId).Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}
