package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Sureshraksha7/next-webi-webmap/helper"
	"github.com/Sureshraksha7/next-webi-webmap/model"
	"github.com/lib/pq"
)

// storageError translates raw storage failures into the domain taxonomy:
// missing rows and broken node references become model.ErrNotFound, unique
// violations model.ErrAlreadyExists and exhausted transient failures
// model.ErrUnavailable. Everything else is wrapped unchanged.
func storageError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return helper.NewError(operation, model.ErrNotFound)
	case errors.As(err, &pqErr) && (pqErr.Code == "P0002" || pqErr.Code == "23503"):
		return helper.NewError(operation, fmt.Errorf("%v: %w", pqErr.Message, model.ErrNotFound))
	case errors.As(err, &pqErr) && pqErr.Code == "23505":
		return helper.NewError(operation, fmt.Errorf("%v: %w", pqErr.Message, model.ErrAlreadyExists))
	case helper.IsTransient(err):
		return helper.NewError(operation, fmt.Errorf("%v: %w", err, model.ErrUnavailable))
	}

	return helper.NewError(operation, err)
}

// ResetAll clears nodes, relationships and clicks in one atomic statement.
// Administrative/test operation.
func ResetAll(db *helper.Database) error {
	if db == nil {
		return helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	ctx, cancel := db.QueryContext()
	defer cancel()

	err := helper.Retry(ctx, func() error {
		_, err := db.Instance.ExecContext(ctx, `SELECT reset_all()`)
		return err
	})
	if err != nil {
		return storageError("reset all", err)
	}

	db.Logger.Info("Reset all tables")

	return nil
}
