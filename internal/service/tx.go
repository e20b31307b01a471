package service

import "gorm.io/gorm"

// runInTx 在数据库事务内执行 fn
// db 为空时直接裸跑 fn，供纯逻辑路径使用
func runInTx(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.Transaction(fn)
}
