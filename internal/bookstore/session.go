package bookstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// OpenFunc acquires a Store.
type OpenFunc func(ctx context.Context) (Store, error)

// closeTimeout bounds the disconnect, which must run even after ctx is done.
const closeTimeout = 10 * time.Second

// WithSession opens a Store, runs fn with it and closes it on every exit path,
// including a panic inside fn. A close failure is logged, and returned only
// when fn itself succeeded.
func WithSession(ctx context.Context, open OpenFunc, logger *slog.Logger, fn func(context.Context, Store) error) (err error) {
	store, err := open(ctx)
	if err != nil {
		logger.Error("connection failed", "error", err)
		return err
	}
	logger.Info("connected to MongoDB")

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()

		if cerr := store.Close(closeCtx); cerr != nil {
			logger.Warn("closing connection", "error", cerr)
			if err == nil {
				err = fmt.Errorf("closing connection: %w", cerr)
			}
			return
		}
		logger.Info("connection closed")
	}()

	if err := fn(ctx, store); err != nil {
		attrs := []any{"error", err}
		var qe *QueryError
		if errors.As(err, &qe) {
			attrs = append(attrs, "op", qe.Op, "params", FormatParams(qe.Params))
		}
		logger.Error("operation failed", attrs...)
		return err
	}
	return nil
}
