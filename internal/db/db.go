// Package db opens the PostgreSQL pool and applies the pbx schema.
package db

import (
	"cmp"
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions tunes the connection pool. Zero fields keep the defaults.
type PoolOptions struct {
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
}

var DefaultPoolOptions = PoolOptions{
	MaxConns:        20,
	MinConns:        2,
	MaxConnLifetime: 30 * time.Minute,
}

func (o PoolOptions) apply(cfg *pgxpool.Config) {
	d := DefaultPoolOptions
	cfg.MaxConns = cmp.Or(o.MaxConns, d.MaxConns)
	cfg.MinConns = min(cmp.Or(o.MinConns, d.MinConns), cfg.MaxConns)
	cfg.MaxConnLifetime = cmp.Or(o.MaxConnLifetime, d.MaxConnLifetime)
	cfg.MaxConnIdleTime = 5 * time.Minute
}

// NewPool connects to PostgreSQL and pings it before returning.
func NewPool(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	opts.apply(cfg)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
