package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/hisabkitab/internal/common"
	"github.com/dmitrijs2005/hisabkitab/internal/logging"
	"github.com/dmitrijs2005/hisabkitab/internal/server/metrics"
	"github.com/dmitrijs2005/hisabkitab/internal/server/models"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/repomanager"
	"github.com/prometheus/client_golang/prometheus"
)

// ChangeLogRecorder appends one audit entry per transaction mutation. It
// runs after the mutation has been applied and never undoes it.
type ChangeLogRecorder struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	failures    *prometheus.CounterVec
}

func NewChangeLogRecorder(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger, mt *metrics.Metrics) *ChangeLogRecorder {
	r := &ChangeLogRecorder{
		db:          db,
		repomanager: m,
		log:         log.With("module", "changelog"),
	}
	if mt != nil {
		r.failures = mt.AuditFailures
	}
	return r
}

// Record writes the entry. On failure it logs, counts and returns an error
// wrapping common.ErrChangeLogNotRecorded.
func (r *ChangeLogRecorder) Record(ctx context.Context, action models.Action, transactionID, userID string, payload any) error {
	err := r.record(ctx, action, transactionID, userID, payload)
	if err == nil {
		return nil
	}

	if r.failures != nil {
		r.failures.WithLabelValues(string(action)).Inc()
	}
	r.log.Warn(ctx, "change log entry not recorded",
		"action", action, "transaction_id", transactionID, "user_id", userID, "error", err)
	return fmt.Errorf("%w: %v", common.ErrChangeLogNotRecorded, err)
}

func (r *ChangeLogRecorder) record(ctx context.Context, action models.Action, transactionID, userID string, payload any) error {
	changes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode changes: %w", err)
	}

	_, err = r.repomanager.TransactionLogs(r.db).Create(ctx, &models.TransactionLog{
		Action:        action,
		TransactionID: transactionID,
		UserID:        userID,
		Changes:       changes,
	})
	return err
}
