// Package expenses stores shared expenses, scoped by owner like
// transactions.
package expenses

import (
	"context"

	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.Expense) (*models.Expense, error)
	GetByID(ctx context.Context, userID, id string) (*models.Expense, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Expense, error)
	Update(ctx context.Context, e *models.Expense) (*models.Expense, error)
	// Delete returns the removed expense.
	Delete(ctx context.Context, userID, id string) (*models.Expense, error)
}
