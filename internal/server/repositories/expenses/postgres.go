package expenses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hisabkitab/internal/common"
	"github.com/dmitrijs2005/hisabkitab/internal/dbx"
	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
)

const columns = `id, user_id, category, amount, item_name, friends, amount_per_person, date`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanExpense(row interface{ Scan(...any) error }) (*models.Expense, error) {
	var (
		e       models.Expense
		friends []byte
	)
	if err := row.Scan(&e.ID, &e.UserID, &e.Category, &e.Amount, &e.ItemName, &friends, &e.AmountPerPerson, &e.Date); err != nil {
		return nil, err
	}
	e.Friends = []string{}
	if len(friends) > 0 {
		if err := json.Unmarshal(friends, &e.Friends); err != nil {
			return nil, fmt.Errorf("decode friends: %w", err)
		}
	}
	return &e, nil
}

func encodeFriends(friends []string) (string, error) {
	if friends == nil {
		friends = []string{}
	}
	b, err := json.Marshal(friends)
	if err != nil {
		return "", fmt.Errorf("encode friends: %w", err)
	}
	return string(b), nil
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	friends, err := encodeFriends(e.Friends)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO expenses (user_id, category, amount, item_name, friends, amount_per_person, date)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)
		 RETURNING ` + columns

	created, err := scanExpense(r.db.QueryRowContext(ctx, query,
		e.UserID, e.Category, e.Amount, e.ItemName, friends, e.AmountPerPerson, e.Date))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id string) (*models.Expense, error) {
	query := `SELECT ` + columns + ` FROM expenses WHERE id = $1 AND user_id = $2`

	e, err := scanExpense(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	query := `SELECT ` + columns + ` FROM expenses WHERE user_id = $1 ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, e *models.Expense) (*models.Expense, error) {
	friends, err := encodeFriends(e.Friends)
	if err != nil {
		return nil, err
	}

	query :=
		`UPDATE expenses
		 SET category = $3, amount = $4, item_name = $5, friends = $6::jsonb, amount_per_person = $7, date = $8
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + columns

	updated, err := scanExpense(r.db.QueryRowContext(ctx, query,
		e.ID, e.UserID, e.Category, e.Amount, e.ItemName, friends, e.AmountPerPerson, e.Date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) (*models.Expense, error) {
	query := `DELETE FROM expenses WHERE id = $1 AND user_id = $2 RETURNING ` + columns

	deleted, err := scanExpense(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return deleted, nil
}
