// Package postgres stores reference content, characters, parties and battle
// effects in PostgreSQL through pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/charasheet/internal/config"
)

// ErrUnavailable is returned when the database does not answer a health check.
var ErrUnavailable = errors.New("database unavailable")

// DefaultHealthTimeout bounds a health check when the configuration sets none.
const DefaultHealthTimeout = 5 * time.Second

const applicationName = "charasheet"

// Pool is an open connection pool to the sheet database.
type Pool struct {
	db            *pgxpool.Pool
	healthTimeout time.Duration
}

// NewPool opens a pool for cfg and checks the database answers within
// cfg.HealthTimeout before returning it.
//
// Postcondition: Returns a Pool whose database passed Health, or an error
// wrapping ErrUnavailable when it did not answer.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	p := &Pool{db: db, healthTimeout: cfg.HealthTimeout}
	if p.healthTimeout <= 0 {
		p.healthTimeout = DefaultHealthTimeout
	}
	if err := p.Health(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

// Health pings the database, giving up after the pool's health timeout.
func (p *Pool) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.healthTimeout)
	defer cancel()
	start := time.Now()
	if err := p.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w after %s: %w", ErrUnavailable, time.Since(start).Round(time.Millisecond), err)
	}
	return nil
}

// Store returns the sheet store running on the pool.
func (p *Pool) Store() *Store {
	return NewStore(p.db)
}

// DB returns the underlying pgx pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.db
}

// Close releases every connection; the pool is unusable afterwards.
func (p *Pool) Close() {
	p.db.Close()
}
