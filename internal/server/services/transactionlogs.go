package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/hisabkitab/internal/common"
	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/repomanager"
)

// TransactionLogService reads the change log of the acting user, newest
// entry first.
type TransactionLogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTransactionLogService(db *sql.DB, m repomanager.RepositoryManager) *TransactionLogService {
	return &TransactionLogService{db: db, repomanager: m}
}

func (s *TransactionLogService) ListForUser(ctx context.Context, userID string) ([]*models.TransactionLog, error) {
	return s.repomanager.TransactionLogs(s.db).ListByUser(ctx, userID)
}

// ListForTransaction returns common.ErrorNotFound when the user has no
// entries for transactionID, which covers transactions owned by others.
// Entries outlive the transaction they describe.
func (s *TransactionLogService) ListForTransaction(ctx context.Context, userID, transactionID string) ([]*models.TransactionLog, error) {
	if err := validID(transactionID); err != nil {
		return nil, err
	}

	entries, err := s.repomanager.TransactionLogs(s.db).ListByTransaction(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, common.ErrorNotFound
	}
	return entries, nil
}
