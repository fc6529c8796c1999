package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrBudgetNotFound = errors.New("budget not found")

type BudgetRepo interface {
	Store(ctx context.Context, userId int, budget Budget) (int, error)
	// FindLatest returns the most recently created budget for the user.
	FindLatest(ctx context.Context, userId int) (Budget, error)
}

type BudgetRepoImpl struct {
	db *pgxpool.Pool
}

func NewBudgetRepo(db *pgxpool.Pool) *BudgetRepoImpl {
	return &BudgetRepoImpl{db: db}
}

func (r *BudgetRepoImpl) Store(ctx context.Context, userId int, budget Budget) (int, error) {
	query := `INSERT INTO budget (uid, period, amount, created_at, user_id)
				VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query,
		budget.Uid,
		string(budget.Period),
		budget.Amount,
		budget.CreatedAt,
		userId,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store budget: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *BudgetRepoImpl) FindLatest(ctx context.Context, userId int) (Budget, error) {
	query := `SELECT id, uid, period, amount, created_at FROM budget
				WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`
	var budget Budget
	var period string
	err := r.db.QueryRow(ctx, query, userId).
		Scan(&budget.Id, &budget.Uid, &period, &budget.Amount, &budget.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Budget{}, ErrBudgetNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not query latest budget: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	budget.Period = Period(period)
	return budget, nil
}
