package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/hisabkitab/internal/common"
	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/repomanager"
	"github.com/shopspring/decimal"
)

type ExpenseInput struct {
	Category        *string          `json:"category"`
	Amount          *decimal.Decimal `json:"amount"`
	ItemName        *string          `json:"itemName"`
	Friends         []string         `json:"friends"`
	AmountPerPerson *decimal.Decimal `json:"amountPerPerson"`
	Date            *models.Date     `json:"date"`
}

func (in ExpenseInput) apply(e *models.Expense) {
	if in.Category != nil {
		e.Category = strings.TrimSpace(*in.Category)
	}
	if in.Amount != nil {
		e.Amount = *in.Amount
	}
	if in.ItemName != nil {
		e.ItemName = strings.TrimSpace(*in.ItemName)
	}
	if in.Friends != nil {
		e.Friends = in.Friends
	}
	if in.AmountPerPerson != nil {
		e.AmountPerPerson = *in.AmountPerPerson
	}
	if in.Date != nil {
		e.Date = *in.Date
	}
}

func validateExpense(e *models.Expense) error {
	switch {
	case e.ItemName == "":
		return fmt.Errorf("%w: itemName is required", common.ErrorValidation)
	case e.Amount.IsNegative():
		return fmt.Errorf("%w: amount must not be negative", common.ErrorValidation)
	case e.AmountPerPerson.IsNegative():
		return fmt.Errorf("%w: amountPerPerson must not be negative", common.ErrorValidation)
	case !inRange(e.Amount), !inRange(e.AmountPerPerson):
		return fmt.Errorf("%w: amount out of range", common.ErrorValidation)
	}
	return nil
}

type ExpenseService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewExpenseService(db *sql.DB, m repomanager.RepositoryManager) *ExpenseService {
	return &ExpenseService{db: db, repomanager: m}
}

func (s *ExpenseService) List(ctx context.Context, userID string) ([]*models.Expense, error) {
	return s.repomanager.Expenses(s.db).ListByUser(ctx, userID)
}

func (s *ExpenseService) Create(ctx context.Context, userID string, in ExpenseInput) (*models.Expense, error) {
	if in.Amount == nil {
		return nil, fmt.Errorf("%w: amount is required", common.ErrorValidation)
	}

	e := &models.Expense{UserID: userID, Friends: []string{}}
	in.apply(e)
	if e.Date.IsZero() {
		e.Date = models.Today()
	}
	if err := validateExpense(e); err != nil {
		return nil, err
	}

	return s.repomanager.Expenses(s.db).Create(ctx, e)
}

// Update applies in on top of the stored expense.
func (s *ExpenseService) Update(ctx context.Context, userID, id string, in ExpenseInput) (*models.Expense, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	repo := s.repomanager.Expenses(s.db)

	current, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	next := *current
	in.apply(&next)
	if err := validateExpense(&next); err != nil {
		return nil, err
	}

	return repo.Update(ctx, &next)
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id string) (*models.Expense, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Expenses(s.db).Delete(ctx, userID, id)
}
