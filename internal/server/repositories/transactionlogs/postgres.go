package transactionlogs

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/hisabkitab/internal/dbx"
	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
)

const columns = `id, action, transaction_id, user_id, changes, recorded_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, entry *models.TransactionLog) (*models.TransactionLog, error) {
	query :=
		`INSERT INTO transaction_logs (action, transaction_id, user_id, changes)
		 VALUES ($1, $2, $3, $4::jsonb)
		 RETURNING id, recorded_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		entry.Action, entry.TransactionID, entry.UserID, string(entry.Changes)).
		Scan(&entry.ID, &entry.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.TransactionLog, error) {
	query := `SELECT ` + columns + ` FROM transaction_logs WHERE user_id = $1 ORDER BY recorded_at DESC`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) ListByTransaction(ctx context.Context, userID, transactionID string) ([]*models.TransactionLog, error) {
	query := `SELECT ` + columns + ` FROM transaction_logs WHERE user_id = $1 AND transaction_id = $2 ORDER BY recorded_at DESC`
	return r.list(ctx, query, userID, transactionID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.TransactionLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.TransactionLog{}
	for rows.Next() {
		var (
			item    models.TransactionLog
			changes []byte
		)
		if err := rows.Scan(&item.ID, &item.Action, &item.TransactionID, &item.UserID, &changes, &item.Timestamp); err != nil {
			return nil, err
		}
		item.Changes = changes
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
