package db

import (
	"context"
	"database/sql"
	"sync"

	"exam-feedback/config"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var duckDB *sql.DB
var duckDBOnce sync.Once

// OpenDuckDB opens and pings a DuckDB database. An empty path is in-memory.
func OpenDuckDB(ctx context.Context, cfg *config.DuckDBConfig) (*sql.DB, error) {
	conn, err := sql.Open("duckdb", cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "open duckdb")
	}
	if err = conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "ping duckdb")
	}
	return conn, nil
}

// InitDuckDB opens the process-wide DuckDB connection once.
func InitDuckDB(ctx context.Context, cfg *config.DuckDBConfig) error {
	var err error
	duckDBOnce.Do(func() {
		duckDB, err = OpenDuckDB(ctx, cfg)
		if err != nil {
			zap.S().Errorf("connect duckdb failed: %v", err)
			return
		}
		zap.S().Debugf("duckdb initialized at %q", cfg.DSN())
	})
	return err
}

// GetDuckDB returns the connection set up by InitDuckDB.
func GetDuckDB() *sql.DB {
	return duckDB
}
