// Package location implements the location picker's use cases: browsing and
// extending the state/city/neighborhood hierarchy, saving addresses, and
// seeding the hierarchy from a geocoding query.
package location

import (
	"errors"

	"github.com/khanrumi/location-picker/internal/model"
	"go.uber.org/zap"
)

// Result is the outcome of a service operation. Operations never return a Go
// error; failures are reported through Success and Error.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`

	err error
}

// Err returns the classified error behind a failed result, or nil.
func (r Result[T]) Err() error { return r.err }

func ok[T any](v T) Result[T] {
	return Result[T]{Success: true, Data: v}
}

// fail logs err and converts it into a failed Result. Validation failures
// are expected input errors and are logged at debug level.
func fail[T any](op string, err error) Result[T] {
	if errors.Is(err, model.ErrValidation) {
		zap.L().Debug("location: rejected input", zap.String("op", op), zap.Error(err))
	} else {
		zap.L().Error("location: operation failed", zap.String("op", op), zap.Error(err))
	}
	return Result[T]{Error: model.PublicMessage(err), err: err}
}
