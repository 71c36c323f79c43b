package database

import (
	"context"

	"gorm.io/gorm"
)

// ReconcileLockKey names the advisory lock held while stats reconciliation runs.
const ReconcileLockKey int64 = 0x636f646578

// AdvisoryLock serialises a job across every process sharing one Postgres database.
type AdvisoryLock struct {
	db  *gorm.DB
	key int64
}

func NewAdvisoryLock(db *gorm.DB, key int64) *AdvisoryLock {
	return &AdvisoryLock{db: db, key: key}
}

// TryRun runs fn while holding the lock. It returns false without calling fn when
// another session holds the lock. Dialects without advisory locks run fn directly.
func (l *AdvisoryLock) TryRun(ctx context.Context, fn func(ctx context.Context) error) (bool, error) {
	if l.db.Dialector.Name() != "postgres" {
		return true, fn(ctx)
	}

	ran := false
	err := l.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		var acquired bool
		if err := conn.Raw("SELECT pg_try_advisory_lock(?)", l.key).Scan(&acquired).Error; err != nil {
			return err
		}
		if !acquired {
			return nil
		}
		// the lock belongs to this session, so release it on the same connection
		// even when ctx is already cancelled
		defer conn.WithContext(context.Background()).Exec("SELECT pg_advisory_unlock(?)", l.key)

		ran = true
		return fn(ctx)
	})
	return ran, err
}
