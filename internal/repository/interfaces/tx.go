package interfaces

import "database/sql"

// TxRunner 在单个数据库事务中执行 fn
// 每个核心操作对应一个事务边界：fn 返回错误则整体回滚
type TxRunner interface {
	RunInTx(fn func(tx *sql.Tx) error) error
}
