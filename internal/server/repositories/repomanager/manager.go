package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/hisabkitab/internal/dbx"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/expenses"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/transactionlogs"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/transactions"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a DBTX, so services can
// pick either the pool or an open transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Transactions(db dbx.DBTX) transactions.Repository
	TransactionLogs(db dbx.DBTX) transactionlogs.Repository
	Expenses(db dbx.DBTX) expenses.Repository
}
