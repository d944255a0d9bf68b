// Package transactionlogs is the append-only store of transaction change
// records. There is deliberately no update or delete.
package transactionlogs

import (
	"context"

	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.TransactionLog) (*models.TransactionLog, error)
	// ListByUser and ListByTransaction return entries newest first.
	ListByUser(ctx context.Context, userID string) ([]*models.TransactionLog, error)
	ListByTransaction(ctx context.Context, userID, transactionID string) ([]*models.TransactionLog, error)
}
