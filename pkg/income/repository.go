package income

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Store(ctx context.Context, userId int, entry IncomeEntry) (int, error)
	GetAll(ctx context.Context, userId int) ([]IncomeEntry, error)
	Delete(ctx context.Context, userId int, entryId int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, userId int, entry IncomeEntry) (int, error) {
	query := `INSERT INTO income_entry (name, amount, received_at, user_id) VALUES ($1, $2, $3, $4) RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query, entry.Name, entry.Amount, entry.ReceivedAt, userId).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store income entry: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) GetAll(ctx context.Context, userId int) ([]IncomeEntry, error) {
	query := `SELECT id, name, amount, received_at FROM income_entry WHERE user_id = $1 ORDER BY received_at, id`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query income entries: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var entries []IncomeEntry
	for rows.Next() {
		var e IncomeEntry
		if err := rows.Scan(&e.Id, &e.Name, &e.Amount, &e.ReceivedAt); err != nil {
			err := fmt.Errorf("could not scan income entry: %w", err)
			log.Error(err)
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over income entries: %w", err)
		log.Error(err)
		return nil, err
	}
	return entries, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, entryId int) (bool, error) {
	query := `DELETE FROM income_entry WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(ctx, query, entryId, userId)
	if err != nil {
		err := fmt.Errorf("could not delete income entry: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}
