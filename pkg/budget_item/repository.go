package budget_item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrItemNotFound = errors.New("budget item not found")
var ErrSubItemNotFound = errors.New("sub budget item not found")

type Repository interface {
	StoreItem(ctx context.Context, userId int, item BudgetItem) (int, error)
	GetItem(ctx context.Context, userId int, itemId int) (BudgetItem, error)
	GetItems(ctx context.Context, userId int, budgetId int) ([]BudgetItem, error)
	UpdateItem(ctx context.Context, userId int, item BudgetItem) (bool, error)
	UpdateItemFlags(ctx context.Context, userId int, itemId int, continuous, recurring bool) (bool, error)
	UpdateItemDeadline(ctx context.Context, userId int, itemId int, deadline *time.Time) (bool, error)
	DeleteItem(ctx context.Context, userId int, itemId int) (bool, error)
	StoreSubItem(ctx context.Context, userId int, subItem SubBudgetItem) (int, error)
	GetSubItems(ctx context.Context, userId int, itemId int) ([]SubBudgetItem, error)
	UpdateSubItem(ctx context.Context, userId int, subItem SubBudgetItem) (bool, error)
	DeleteSubItem(ctx context.Context, userId int, itemId int, subItemId int) (bool, error)
	// RecalculateSpent re-derives the item's spent amount from its expense rows
	// and writes it back. This is the only way spent ever changes.
	RecalculateSpent(ctx context.Context, userId int, itemId int) (float64, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) StoreItem(ctx context.Context, userId int, item BudgetItem) (int, error) {
	query := `INSERT INTO budget_item (
					budget_id,
					name,
					amount,
					spent,
					deadline,
					note,
					tag,
					is_impulse,
					is_continuous,
					is_recurring,
					user_id
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`

	var id int
	err := r.db.QueryRow(ctx, query,
		item.BudgetId,
		item.Name,
		item.Amount,
		item.Spent,
		item.Deadline,
		item.Note,
		item.Tag,
		item.Impulse,
		item.Continuous,
		item.Recurring,
		userId,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store budget item: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) GetItem(ctx context.Context, userId int, itemId int) (BudgetItem, error) {
	query := `SELECT id, budget_id, name, amount, spent, deadline, note, tag, is_impulse, is_continuous, is_recurring
				FROM budget_item WHERE user_id = $1 AND id = $2`
	item, err := scanItem(r.db.QueryRow(ctx, query, userId, itemId))
	if errors.Is(err, pgx.ErrNoRows) {
		return BudgetItem{}, ErrItemNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not query budget item: %w", err)
		log.Error(err)
		return BudgetItem{}, err
	}

	subItems, err := r.GetSubItems(ctx, userId, item.Id)
	if err != nil {
		return BudgetItem{}, err
	}
	item.SubItems = subItems
	return item, nil
}

func (r *RepositoryImpl) GetItems(ctx context.Context, userId int, budgetId int) ([]BudgetItem, error) {
	query := `SELECT id, budget_id, name, amount, spent, deadline, note, tag, is_impulse, is_continuous, is_recurring
				FROM budget_item WHERE user_id = $1 AND budget_id = $2 ORDER BY id`
	rows, err := r.db.Query(ctx, query, userId, budgetId)
	if err != nil {
		err := fmt.Errorf("could not query budget items: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var items []BudgetItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			err := fmt.Errorf("could not scan budget item: %w", err)
			log.Error(err)
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over budget items: %w", err)
		log.Error(err)
		return nil, err
	}

	for i := range items {
		subItems, err := r.GetSubItems(ctx, userId, items[i].Id)
		if err != nil {
			return nil, err
		}
		items[i].SubItems = subItems
	}
	return items, nil
}

func (r *RepositoryImpl) UpdateItem(ctx context.Context, userId int, item BudgetItem) (bool, error) {
	query := `UPDATE budget_item SET
					name = $1,
					amount = $2,
					deadline = $3,
					note = $4,
					tag = $5
				WHERE id = $6 AND user_id = $7`
	result, err := r.db.Exec(ctx, query,
		item.Name,
		item.Amount,
		item.Deadline,
		item.Note,
		item.Tag,
		item.Id,
		userId,
	)
	if err != nil {
		err := fmt.Errorf("could not update budget item: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) UpdateItemFlags(ctx context.Context, userId int, itemId int, continuous, recurring bool) (bool, error) {
	query := `UPDATE budget_item SET is_continuous = $1, is_recurring = $2 WHERE id = $3 AND user_id = $4`
	result, err := r.db.Exec(ctx, query, continuous, recurring, itemId, userId)
	if err != nil {
		err := fmt.Errorf("could not update budget item flags: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) UpdateItemDeadline(ctx context.Context, userId int, itemId int, deadline *time.Time) (bool, error) {
	query := `UPDATE budget_item SET deadline = $1 WHERE id = $2 AND user_id = $3`
	result, err := r.db.Exec(ctx, query, deadline, itemId, userId)
	if err != nil {
		err := fmt.Errorf("could not update budget item deadline: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeleteItem(ctx context.Context, userId int, itemId int) (bool, error) {
	query := `DELETE FROM budget_item WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(ctx, query, itemId, userId)
	if err != nil {
		err := fmt.Errorf("could not delete budget item: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) StoreSubItem(ctx context.Context, userId int, subItem SubBudgetItem) (int, error) {
	query := `INSERT INTO sub_budget_item (budget_item_id, name, amount, note, tag, user_id)
				VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query,
		subItem.ItemId,
		subItem.Name,
		subItem.Amount,
		subItem.Note,
		subItem.Tag,
		userId,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store sub budget item: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) GetSubItems(ctx context.Context, userId int, itemId int) ([]SubBudgetItem, error) {
	query := `SELECT sub.id, sub.budget_item_id, sub.name, sub.amount, sub.note, sub.tag,
					EXISTS(SELECT 1 FROM expense e WHERE e.sub_budget_item_id = sub.id) AS tracked
				FROM sub_budget_item sub
				WHERE sub.user_id = $1 AND sub.budget_item_id = $2 ORDER BY sub.id`
	rows, err := r.db.Query(ctx, query, userId, itemId)
	if err != nil {
		err := fmt.Errorf("could not query sub budget items: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var subItems []SubBudgetItem
	for rows.Next() {
		var sub SubBudgetItem
		var note, tag sql.NullString
		if err := rows.Scan(&sub.Id, &sub.ItemId, &sub.Name, &sub.Amount, &note, &tag, &sub.Tracked); err != nil {
			err := fmt.Errorf("could not scan sub budget item: %w", err)
			log.Error(err)
			return nil, err
		}
		if note.Valid {
			sub.Note = &note.String
		}
		if tag.Valid {
			sub.Tag = &tag.String
		}
		subItems = append(subItems, sub)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over sub budget items: %w", err)
		log.Error(err)
		return nil, err
	}
	return subItems, nil
}

func (r *RepositoryImpl) UpdateSubItem(ctx context.Context, userId int, subItem SubBudgetItem) (bool, error) {
	query := `UPDATE sub_budget_item SET name = $1, amount = $2, note = $3, tag = $4
				WHERE id = $5 AND budget_item_id = $6 AND user_id = $7`
	result, err := r.db.Exec(ctx, query,
		subItem.Name,
		subItem.Amount,
		subItem.Note,
		subItem.Tag,
		subItem.Id,
		subItem.ItemId,
		userId,
	)
	if err != nil {
		err := fmt.Errorf("could not update sub budget item: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeleteSubItem(ctx context.Context, userId int, itemId int, subItemId int) (bool, error) {
	query := `DELETE FROM sub_budget_item WHERE id = $1 AND budget_item_id = $2 AND user_id = $3`
	result, err := r.db.Exec(ctx, query, subItemId, itemId, userId)
	if err != nil {
		err := fmt.Errorf("could not delete sub budget item: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) RecalculateSpent(ctx context.Context, userId int, itemId int) (float64, error) {
	query := `UPDATE budget_item
				SET spent = (SELECT COALESCE(SUM(amount), 0) FROM expense WHERE budget_item_id = $1)
				WHERE id = $1 AND user_id = $2
				RETURNING spent`
	var spent sql.NullFloat64
	err := r.db.QueryRow(ctx, query, itemId, userId).Scan(&spent)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrItemNotFound
	}
	if err != nil {
		err := fmt.Errorf("could not recalculate spent for item %d: %w", itemId, err)
		log.Error(err)
		return 0, err
	}
	return spent.Float64, nil
}

// scanItem reads one budget_item row. Spent is parsed defensively: a NULL value
// in the column becomes 0 rather than an error.
func scanItem(row pgx.Row) (BudgetItem, error) {
	var item BudgetItem
	var spent sql.NullFloat64
	var deadline sql.NullTime
	var note, tag sql.NullString
	if err := row.Scan(
		&item.Id,
		&item.BudgetId,
		&item.Name,
		&item.Amount,
		&spent,
		&deadline,
		&note,
		&tag,
		&item.Impulse,
		&item.Continuous,
		&item.Recurring,
	); err != nil {
		return BudgetItem{}, err
	}
	if spent.Valid {
		item.Spent = spent.Float64
	}
	if deadline.Valid {
		d := deadline.Time
		item.Deadline = &d
	}
	if note.Valid {
		item.Note = &note.String
	}
	if tag.Valid {
		item.Tag = &tag.String
	}
	return item, nil
}
