package store

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// applicationName tags the project store's sessions in pg_stat_activity.
const applicationName = "dev_feasibility"

var (
	pool *pgxpool.Pool
	once sync.Once
)

// PGOptions configures the shared project-store pool. An empty URL falls
// back to DATABASE_URL; zero MaxConns and ConnectTimeout keep pgx defaults.
type PGOptions struct {
	URL            string
	MaxConns       int32
	ConnectTimeout time.Duration
}

func (o PGOptions) url() string {
	if o.URL != "" {
		return o.URL
	}
	return os.Getenv("DATABASE_URL")
}

// poolConfig parses the DSN and applies the options without connecting.
func (o PGOptions) poolConfig() (*pgxpool.Config, error) {
	dsn := o.url()
	if dsn == "" {
		return nil, fmt.Errorf("no postgres URL: set storage.postgres_url or DATABASE_URL")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if o.MaxConns > 0 {
		cfg.MaxConns = o.MaxConns
	}
	if o.ConnectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = o.ConnectTimeout
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}
	return cfg, nil
}

// InitDB opens the shared Postgres pool and verifies the connection. Later
// calls return the first result.
func InitDB(ctx context.Context, opts PGOptions) error {
	var err error
	once.Do(func() {
		config, cfgErr := opts.poolConfig()
		if cfgErr != nil {
			err = cfgErr
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return
		}
		if pingErr := pool.Ping(ctx); pingErr != nil {
			err = fmt.Errorf("failed to reach database: %w", pingErr)
			pool.Close()
			pool = nil
			return
		}
		fmt.Printf("[STORE] Postgres pool ready for dd_projects (max conns %d)\n", config.MaxConns)
	})
	return err
}

func GetPool() *pgxpool.Pool {
	return pool
}

// Close releases the shared pool, if one was opened.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
