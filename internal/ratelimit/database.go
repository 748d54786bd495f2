package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbutil "github.com/router-for-me/DynamicUIGenerator/internal/db"
	"github.com/router-for-me/DynamicUIGenerator/internal/models"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
)

// DefaultDatabaseConcurrency bounds concurrent transactions issued by a DatabaseStore.
const DefaultDatabaseConcurrency = 16

// errQuotaExceeded rolls the window transaction back without inserting.
var errQuotaExceeded = errors.New("rate limit database: quota exceeded")

// DatabaseStore implements a trailing-window limiter backed by the rate_limits table.
type DatabaseStore struct {
	db     *gorm.DB
	policy Policy
	sem    *semaphore.Weighted
}

// NewDatabaseStore constructs a DatabaseStore. concurrency <= 0 uses DefaultDatabaseConcurrency.
func NewDatabaseStore(db *gorm.DB, policy Policy, concurrency int) *DatabaseStore {
	if concurrency <= 0 {
		concurrency = DefaultDatabaseConcurrency
	}
	return &DatabaseStore{
		db:     db,
		policy: policy,
		sem:    semaphore.NewWeighted(int64(concurrency)),
	}
}

// Backend reports BackendDatabase.
func (s *DatabaseStore) Backend() Backend { return BackendDatabase }

// Allow cleans, counts and inserts inside one transaction.
func (s *DatabaseStore) Allow(ctx context.Context, key string, now time.Time) (bool, error) {
	if s == nil || s.db == nil {
		return false, unavailable(BackendDatabase, errors.New("nil db"))
	}
	if errAcquire := s.sem.Acquire(ctx, 1); errAcquire != nil {
		return false, unavailable(BackendDatabase, fmt.Errorf("acquire slot: %w", errAcquire))
	}
	defer s.sem.Release(1)

	ts := unixSeconds(now)
	cutoff := s.policy.cutoff(ts)
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dbutil.IsPostgres(tx) {
			if errLock := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; errLock != nil {
				return fmt.Errorf("lock key: %w", errLock)
			}
		}
		if errDelete := tx.Where("client_ip = ? AND timestamp < ?", key, cutoff).
			Delete(&models.RateLimitRecord{}).Error; errDelete != nil {
			return fmt.Errorf("delete expired: %w", errDelete)
		}
		var count int64
		if errCount := tx.Model(&models.RateLimitRecord{}).
			Where("client_ip = ?", key).
			Count(&count).Error; errCount != nil {
			return fmt.Errorf("count: %w", errCount)
		}
		if count >= int64(s.policy.Requests) {
			return errQuotaExceeded
		}
		if errCreate := tx.Create(&models.RateLimitRecord{ClientIP: key, Timestamp: ts}).Error; errCreate != nil {
			return fmt.Errorf("insert: %w", errCreate)
		}
		return nil
	})
	switch {
	case errTx == nil:
		return true, nil
	case errors.Is(errTx, errQuotaExceeded):
		return false, nil
	default:
		return false, unavailable(BackendDatabase, errTx)
	}
}

// Ping checks that the database answers.
func (s *DatabaseStore) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("rate limit database: nil db")
	}
	sqlDB, errDB := s.db.DB()
	if errDB != nil {
		return errDB
	}
	return sqlDB.PingContext(ctx)
}
