package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	dbutil "github.com/router-for-me/DynamicUIGenerator/internal/db"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrConfigurationInvalid marks a backend URL that cannot be used. The backend
// is skipped rather than failing startup.
var ErrConfigurationInvalid = errors.New("rate limit: configuration invalid")

// Settings captures everything needed to assemble a Manager.
type Settings struct {
	Requests            int
	Window              time.Duration
	BackendTimeout      time.Duration
	RedisURL            string
	RedisPrefix         string
	DatabaseURL         string
	DatabaseConcurrency int
	RepromoteInterval   time.Duration
}

// Policy returns the quota described by the settings.
func (s Settings) Policy() Policy {
	return Policy{Requests: s.Requests, Window: s.Window}
}

// NewRedisClient parses rawURL into a client without connecting.
func NewRedisClient(rawURL string) (redis.UniversalClient, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty redis url", ErrConfigurationInvalid)
	}
	opts, errParse := redis.ParseURL(rawURL)
	if errParse != nil {
		return nil, fmt.Errorf("%w: redis url: %w", ErrConfigurationInvalid, errParse)
	}
	return redis.NewClient(opts), nil
}

// OpenDatabase opens and migrates the relational store. A DSN that cannot be
// parsed is reported as ErrConfigurationInvalid.
func OpenDatabase(dsn string) (*gorm.DB, error) {
	conn, errOpen := dbutil.Open(dsn)
	if errOpen != nil {
		if errors.Is(errOpen, dbutil.ErrInvalidDSN) {
			return nil, fmt.Errorf("%w: %w", ErrConfigurationInvalid, errOpen)
		}
		return nil, errOpen
	}
	if errMigrate := dbutil.Migrate(conn); errMigrate != nil {
		_ = dbutil.Close(conn)
		return nil, errMigrate
	}
	return conn, nil
}

// Build connects the configured backends, probes them and returns a Manager
// with its initial selection made. Backends that cannot be configured or
// reached at startup are logged and left out; the memory store is always
// available. The returned closer releases every connection Build opened.
func Build(ctx context.Context, s Settings) (*Manager, func() error) {
	policy := s.Policy()
	opts := []Option{
		WithTimeout(s.BackendTimeout),
		WithRepromoteInterval(s.RepromoteInterval),
	}
	var closers []func() error

	if strings.TrimSpace(s.RedisURL) != "" {
		client, errClient := NewRedisClient(s.RedisURL)
		if errClient != nil {
			log.WithError(errClient).Warn("rate limit: skipping redis backend")
		} else {
			opts = append(opts, WithRedis(NewRedisStore(client, s.RedisPrefix, policy)))
			closers = append(closers, client.Close)
		}
	} else {
		log.Warn("rate limit: REDIS_URL not set, using database or in-memory rate limiting")
	}

	if strings.TrimSpace(s.DatabaseURL) != "" {
		conn, errOpen := OpenDatabase(s.DatabaseURL)
		if errOpen != nil {
			log.WithError(errOpen).Warn("rate limit: skipping database backend")
		} else {
			log.Info("rate limit: connected to database")
			opts = append(opts, WithDatabase(NewDatabaseStore(conn, policy, s.DatabaseConcurrency)))
			closers = append(closers, func() error { return dbutil.Close(conn) })
		}
	}

	manager := NewManager(policy, opts...)
	manager.SelectInitial(ctx)

	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if errClose := closers[i](); errClose != nil {
				errs = append(errs, errClose)
			}
		}
		return errors.Join(errs...)
	}
	return manager, closeAll
}
