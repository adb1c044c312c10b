// Package store provides focused, single-concern data access stores for the
// change-capture engine.
//
// Each store owns one table set (transactions, entity snapshots, change
// records) and embeds shared helpers via the Base struct. Stores never
// import each other; cross-store reads happen at the service layer.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/chroniclehq/chronicle/internal/dbpool"
	"github.com/chroniclehq/chronicle/internal/models"
)

const defaultQueryTimeout = 30 * time.Second

// maxListLimit is a defense-in-depth cap on limit values for list queries.
const maxListLimit = 1000

// Base contains shared dependencies for all stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// beginTx starts a read-write transaction.
func (b *Base) beginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.Begin(ctx)
	if err != nil {
		return nil, storageErr("beginning transaction", err)
	}

	return tx, nil
}

// beginReadTx starts a read-only transaction.
func (b *Base) beginReadTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, storageErr("beginning read transaction", err)
	}

	return tx, nil
}

// storageErr wraps infrastructure failures as retryable ErrUnavailable.
// Sentinel errors from the models taxonomy pass through untouched so
// callers can still branch on them with errors.Is.
func storageErr(op string, err error) error {
	for _, sentinel := range []error{
		models.ErrTransactionNotFound,
		models.ErrEntityNotFound,
		models.ErrInvalidState,
		models.ErrEntityExists,
		models.ErrInvalidArgument,
	} {
		if errors.Is(err, sentinel) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return fmt.Errorf("%s: %w: %w", op, models.ErrUnavailable, err)
}

// clampLimit normalizes a caller-supplied limit to (0, maxListLimit].
func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}

	if limit > maxListLimit {
		return maxListLimit
	}

	return limit
}
