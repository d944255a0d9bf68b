// Package transactions stores ledger transactions. Every lookup and
// mutation is scoped by the owning user.
package transactions

import (
	"context"

	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
	GetByID(ctx context.Context, userID, id string) (*models.Transaction, error)
	// ListByUser returns the user's transactions, newest date first.
	ListByUser(ctx context.Context, userID string) ([]*models.Transaction, error)
	// Update writes all mutable fields of tx, matched by tx.ID and tx.UserID.
	Update(ctx context.Context, tx *models.Transaction) (*models.Transaction, error)
	Delete(ctx context.Context, userID, id string) error
}
