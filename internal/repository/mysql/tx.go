package mysql

import (
	"database/sql"
	"fmt"

	"synacoding-backend/internal/util"

	"go.uber.org/zap"
)

// TxRunner 基于 *sql.DB 的事务执行器
type TxRunner struct {
	db *sql.DB
}

func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db}
}

// RunInTx 在单个事务中执行 fn，fn 返回错误则回滚
func (r *TxRunner) RunInTx(fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		util.Logger.Error("开始事务失败", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		util.Logger.Error("提交事务失败", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
