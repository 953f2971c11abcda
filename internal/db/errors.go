package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/khanrumi/location-picker/internal/model"
)

// SQLSTATE codes the store distinguishes.
const (
	codeForeignKeyViolation = "23503"
)

// Classify tags a pgx error with its model error kind. Context errors are
// returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
		return model.Classify(model.ErrReferential, err)
	}
	return model.Classify(model.ErrStore, err)
}
