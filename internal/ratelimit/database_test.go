package ratelimit

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	dbutil "github.com/router-for-me/DynamicUIGenerator/internal/db"
	"github.com/router-for-me/DynamicUIGenerator/internal/models"
	"gorm.io/gorm"
)

func newTestDatabaseStore(t *testing.T, policy Policy) (*DatabaseStore, *gorm.DB) {
	t.Helper()
	conn, err := OpenDatabase("file:" + filepath.Join(t.TempDir(), "ratelimit.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = dbutil.Close(conn) })
	return NewDatabaseStore(conn, policy, 0), conn
}

func countRows(t *testing.T, conn *gorm.DB, key string) int64 {
	t.Helper()
	var count int64
	if errCount := conn.Model(&models.RateLimitRecord{}).Where("client_ip = ?", key).Count(&count).Error; errCount != nil {
		t.Fatalf("count rows: %v", errCount)
	}
	return count
}

func TestDatabaseStore_WindowScenario(t *testing.T) {
	store, _ := newTestDatabaseStore(t, scenarioPolicy())
	assertWindowScenario(t, store)
}

func TestDatabaseStore_RejectionRecordsNothing(t *testing.T) {
	store, conn := newTestDatabaseStore(t, scenarioPolicy())
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if allowed, err := store.Allow(ctx, "k", at(float64(i))); err != nil || !allowed {
			t.Fatalf("call %d: expected admission, got allowed=%v err=%v", i, allowed, err)
		}
	}
	for i := 0; i < 3; i++ {
		if allowed, err := store.Allow(ctx, "k", at(4)); err != nil || allowed {
			t.Fatalf("expected rejection, got allowed=%v err=%v", allowed, err)
		}
	}
	if got := countRows(t, conn, "k"); got != 3 {
		t.Fatalf("expected 3 rows, got %d", got)
	}
}

func TestDatabaseStore_AdmissionDeletesExpiredRows(t *testing.T) {
	store, conn := newTestDatabaseStore(t, scenarioPolicy())
	ctx := context.Background()
	_, _ = store.Allow(ctx, "k", at(0))
	_, _ = store.Allow(ctx, "k", at(1))
	_, _ = store.Allow(ctx, "other", at(0))

	if allowed, err := store.Allow(ctx, "k", at(30)); err != nil || !allowed {
		t.Fatalf("expected admission, got allowed=%v err=%v", allowed, err)
	}
	if got := countRows(t, conn, "k"); got != 1 {
		t.Fatalf("expected expired rows removed, got %d rows", got)
	}
	if got := countRows(t, conn, "other"); got != 1 {
		t.Fatalf("expected other key untouched, got %d rows", got)
	}
}

func TestDatabaseStore_ConcurrentAdmissionsNeverExceedLimit(t *testing.T) {
	const limit = 3
	store, conn := newTestDatabaseStore(t, Policy{Requests: limit, Window: time.Minute})

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, err := store.Allow(context.Background(), "shared", at(0)); err == nil && allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	if got := admitted.Load(); got != limit {
		t.Fatalf("expected exactly %d admissions, got %d", limit, got)
	}
	if got := countRows(t, conn, "shared"); got != limit {
		t.Fatalf("expected %d rows, got %d", limit, got)
	}
}

func TestDatabaseStore_ClosedConnectionIsBackendUnavailable(t *testing.T) {
	store, conn := newTestDatabaseStore(t, scenarioPolicy())
	if errClose := dbutil.Close(conn); errClose != nil {
		t.Fatalf("close: %v", errClose)
	}
	if _, err := store.Allow(context.Background(), "k", at(0)); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	if errPing := store.Ping(context.Background()); errPing == nil {
		t.Fatalf("expected ping failure on closed connection")
	}
}

func TestDatabaseStore_SlotWaitHonorsDeadline(t *testing.T) {
	store, _ := newTestDatabaseStore(t, scenarioPolicy())
	store.sem.TryAcquire(int64(DefaultDatabaseConcurrency))
	defer store.sem.Release(int64(DefaultDatabaseConcurrency))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := store.Allow(ctx, "k", at(0)); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable when no slot frees up, got %v", err)
	}
}

func TestOpenDatabase_InvalidDSN(t *testing.T) {
	for _, dsn := range []string{"mysql://root@localhost/db", "not a url"} {
		if _, err := OpenDatabase(dsn); !errors.Is(err, ErrConfigurationInvalid) {
			t.Fatalf("expected ErrConfigurationInvalid for %q, got %v", dsn, err)
		}
	}
}
