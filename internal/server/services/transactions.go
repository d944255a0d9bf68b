package services

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/hisabkitab/internal/common"
	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionInput carries client-supplied fields. On update, nil fields
// keep their stored value.
type TransactionInput struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Date        *models.Date     `json:"date"`
	Description *string          `json:"description"`
	Category    *models.Category `json:"category"`
}

func (in TransactionInput) apply(tx *models.Transaction) {
	if in.Name != nil {
		tx.Name = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		tx.Price = *in.Price
	}
	if in.Date != nil {
		tx.Date = *in.Date
	}
	if in.Description != nil {
		tx.Description = *in.Description
	}
	if in.Category != nil {
		tx.Category = *in.Category
	}
}

// maxAmount bounds money columns, which are NUMERIC(14,2).
var maxAmount = decimal.New(1, 12)

// inRange reports whether v fits a money column once rounded to cents.
func inRange(v decimal.Decimal) bool {
	return v.Round(2).Abs().LessThan(maxAmount)
}

func validateTransaction(tx *models.Transaction) error {
	switch {
	case tx.Name == "":
		return fmt.Errorf("%w: name is required", common.ErrorValidation)
	case !inRange(tx.Price):
		return fmt.Errorf("%w: price out of range", common.ErrorValidation)
	case tx.Date.IsZero():
		return fmt.Errorf("%w: date is required", common.ErrorValidation)
	case !tx.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", common.ErrorValidation, tx.Category)
	}
	return nil
}

// validID treats anything that is not a UUID as an id nobody owns.
func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	return nil
}

// TransactionService is the single entry point for transaction mutations,
// so every create, update and delete is recorded in the change log.
//
// Mutations return their result together with an error wrapping
// common.ErrChangeLogNotRecorded when the audit entry could not be
// written; the mutation itself has succeeded in that case.
type TransactionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	changelog   *ChangeLogRecorder
}

func NewTransactionService(db *sql.DB, m repomanager.RepositoryManager, changelog *ChangeLogRecorder) *TransactionService {
	return &TransactionService{db: db, repomanager: m, changelog: changelog}
}

func (s *TransactionService) List(ctx context.Context, userID string) ([]*models.Transaction, error) {
	return s.repomanager.Transactions(s.db).ListByUser(ctx, userID)
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (*models.Transaction, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Transactions(s.db).GetByID(ctx, userID, id)
}

func (s *TransactionService) Create(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	if in.Price == nil {
		return nil, fmt.Errorf("%w: price is required", common.ErrorValidation)
	}

	tx := &models.Transaction{UserID: userID}
	in.apply(tx)
	if err := validateTransaction(tx); err != nil {
		return nil, err
	}

	created, err := s.repomanager.Transactions(s.db).Create(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("error creating transaction: %w", err)
	}

	return created, s.changelog.Record(ctx, models.ActionCreated, created.ID, userID, created.Snapshot())
}

func (s *TransactionService) Update(ctx context.Context, userID, id string, in TransactionInput) (*models.Transaction, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	repo := s.repomanager.Transactions(s.db)

	original, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	next := *original
	in.apply(&next)
	if err := validateTransaction(&next); err != nil {
		return nil, err
	}

	updated, err := repo.Update(ctx, &next)
	if err != nil {
		return nil, err
	}

	change := models.TransactionChange{Before: original.Snapshot(), After: updated.Snapshot()}
	return updated, s.changelog.Record(ctx, models.ActionUpdated, updated.ID, userID, change)
}

// Delete removes the transaction and returns it as it was.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) (*models.Transaction, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	repo := s.repomanager.Transactions(s.db)

	existing, err := repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := repo.Delete(ctx, userID, id); err != nil {
		return nil, err
	}

	return existing, s.changelog.Record(ctx, models.ActionDeleted, existing.ID, userID, existing.Snapshot())
}

type summaryKey struct {
	month    int
	category models.Category
	name     string
}

// MonthlySummary totals the user's transactions per (month, category,
// name). Months of different years fold together.
func (s *TransactionService) MonthlySummary(ctx context.Context, userID string) ([]models.MonthlySummary, error) {
	txs, err := s.repomanager.Transactions(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Summarize(txs), nil
}

func Summarize(txs []*models.Transaction) []models.MonthlySummary {
	totals := map[summaryKey]decimal.Decimal{}
	for _, tx := range txs {
		k := summaryKey{month: int(tx.Date.Month()), category: tx.Category, name: tx.Name}
		totals[k] = totals[k].Add(tx.Price)
	}

	out := make([]models.MonthlySummary, 0, len(totals))
	for k, total := range totals {
		out = append(out, models.MonthlySummary{Month: k.month, Category: k.category, Name: k.name, Total: total})
	}

	slices.SortFunc(out, func(a, b models.MonthlySummary) int {
		return cmp.Or(
			cmp.Compare(a.Month, b.Month),
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.Name, b.Name),
		)
	})
	return out
}
