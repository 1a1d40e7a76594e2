package helper

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"
)

// Retry runs operation with exponential backoff until it succeeds, returns a
// non-transient error, or the backoff budget (bounded by ctx) is exhausted.
// It is the single retry decorator applied to every storage-touching call.
func Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 10 * time.Second

	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx))
}

// IsTransient reports whether err looks like a temporary storage failure
// (timeout, dropped connection, server shutting down) that a retry may fix.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 08: connection exceptions, class 57: operator intervention
		// (e.g. server shutdown), 40001/40P01: serialization and deadlock
		// failures that are safe to rerun.
		class := pqErr.Code.Class()
		return class == "08" || class == "57" || pqErr.Code == "40001" || pqErr.Code == "40P01"
	}

	return false
}
