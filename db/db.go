package db

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"lunch-telegram/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the shared Postgres pool. It is nil until Init succeeds.
var Pool *pgxpool.Pool

// ConnString builds a postgres URL from cfg with the credentials escaped.
func ConnString(cfg config.DBConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Database,
	}
	return u.String()
}

// Init opens Pool and checks the server answers.
func Init(ctx context.Context, cfg config.DBConfig) error {
	pool, err := pgxpool.New(ctx, ConnString(cfg))
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping postgres %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	Pool = pool
	return nil
}

func Close() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}
