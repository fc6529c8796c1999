package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// Append inserts one expense row. There is no update or delete.
	Append(ctx context.Context, userId int, expense Expense) (int, error)
	ListForItem(ctx context.Context, userId int, itemId int) ([]Expense, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Append(ctx context.Context, userId int, expense Expense) (int, error) {
	query := `INSERT INTO expense (budget_item_id, sub_budget_item_id, amount, recorded_at, user_id)
				VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query,
		expense.ItemId,
		expense.SubItemId,
		expense.Amount,
		expense.RecordedAt,
		userId,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not append expense: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) ListForItem(ctx context.Context, userId int, itemId int) ([]Expense, error) {
	query := `SELECT id, budget_item_id, sub_budget_item_id, amount, recorded_at
				FROM expense WHERE user_id = $1 AND budget_item_id = $2 ORDER BY recorded_at, id`
	rows, err := r.db.Query(ctx, query, userId, itemId)
	if err != nil {
		err := fmt.Errorf("could not query expenses: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var e Expense
		var subItemId sql.NullInt64
		if err := rows.Scan(&e.Id, &e.ItemId, &subItemId, &e.Amount, &e.RecordedAt); err != nil {
			err := fmt.Errorf("could not scan expense: %w", err)
			log.Error(err)
			return nil, err
		}
		if subItemId.Valid {
			id := int(subItemId.Int64)
			e.SubItemId = &id
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over expenses: %w", err)
		log.Error(err)
		return nil, err
	}
	return expenses, nil
}
