package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bracula/campus/internal/metrics"
	appErr "github.com/bracula/campus/pkg/errors"
	"github.com/bracula/campus/pkg/logger"
)

// Step is one dependent write or read executed on the transaction handle.
// Steps communicate through closure variables; the last step usually
// re-reads the enriched view of what the earlier steps wrote.
type Step func(ctx context.Context, tx *gorm.DB) error

// TxExecutor runs a sequence of steps as one all-or-nothing unit.
type TxExecutor interface {
	// Run begins a transaction, executes the steps in order and commits.
	// If any step fails the transaction is rolled back and the step's error
	// is returned wrapped in a rolled_back AppError.
	Run(ctx context.Context, name string, steps ...Step) error
}

type txExecutor struct {
	db *gorm.DB
}

func NewTxExecutor(db *gorm.DB) TxExecutor {
	return &txExecutor{db: db}
}

func (e *txExecutor) Run(ctx context.Context, name string, steps ...Step) (err error) {
	tx := e.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return appErr.Wrap(tx.Error, appErr.CodeInternal, "begin transaction failed")
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			metrics.RecordTxRollback(name)
			panic(p)
		}
	}()

	for i, step := range steps {
		if stepErr := step(ctx, tx); stepErr != nil {
			if rbErr := tx.Rollback().Error; rbErr != nil {
				logger.L().Error("transaction rollback failed",
					zap.String("tx", name), zap.Int("step", i+1), zap.Error(rbErr))
			}
			metrics.RecordTxRollback(name)
			logger.L().Warn("transaction rolled back",
				zap.String("tx", name), zap.Int("step", i+1), zap.Error(stepErr))
			return appErr.Wrap(stepErr, appErr.CodeRolledBack, fmt.Sprintf("%s: step %d failed", name, i+1))
		}
	}

	if err := tx.Commit().Error; err != nil {
		metrics.RecordTxRollback(name)
		return appErr.Wrap(err, appErr.CodeInternal, "commit transaction failed")
	}
	metrics.RecordTxCommit(name)
	return nil
}
