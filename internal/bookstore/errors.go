package bookstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ErrConnection marks failures to reach the server: refused connections,
// server selection timeouts and network errors in the middle of an operation.
// They are fatal for the current run and never retried.
var ErrConnection = errors.New("mongodb unreachable")

// QueryError is a server-side rejection of an operation, such as a malformed
// filter or pipeline. It carries the parameters the operation was issued with.
type QueryError struct {
	Op     string
	Params any
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, FormatParams(e.Params), e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsConnectionError reports whether err is (or wraps) ErrConnection.
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnection)
}

// FormatParams renders operation parameters as relaxed extended JSON.
func FormatParams(params any) string {
	if params == nil {
		return "{}"
	}
	data, err := bson.MarshalExtJSON(params, false, false)
	if err != nil {
		return fmt.Sprintf("%v", params)
	}
	return string(data)
}

// classify wraps a driver error into the toolkit's taxonomy.
func classify(op string, params any, err error) error {
	if err == nil {
		return nil
	}
	if isConnectivity(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrConnection, err)
	}
	return &QueryError{Op: op, Params: params, Err: err}
}

func isConnectivity(err error) bool {
	return mongo.IsNetworkError(err) ||
		mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		errors.Is(err, context.DeadlineExceeded)
}
