// Package executor runs generated DDL against a live database.
package executor

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/schemadiff/schemadiff/internal/logger"
)

// Execer is implemented by *sql.DB, *sql.Conn and *sql.Tx
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Run executes the statements one by one and stops at the first failure.
// Statements that already ran are not rolled back: DDL is not transactional
// on every platform.
func Run(ctx context.Context, db Execer, statements []string) error {
	for i, stmt := range statements {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("migration interrupted after %d of %d statements: %w", i, len(statements), err)
		}

		start := time.Now()
		logger.Get().Debug("Executing SQL", "index", i+1, "sql", stmt)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.Get().Debug("SQL execution failed", "index", i+1, "error", err)
			return fmt.Errorf("failed to apply statement %d of %d '%s': %w", i+1, len(statements), stmt, err)
		}
		logger.Get().Debug("SQL execution succeeded", "index", i+1, "duration", time.Since(start))
	}
	return nil
}
