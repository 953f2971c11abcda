package model

import (
	"context"
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestValidationError_UnwrapsToKind(t *testing.T) {
	err := eris.Wrap(NewValidationError("name", "State name cannot be empty"), "service: add state")

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "State name cannot be empty", PublicMessage(err))
}

func TestClassify_KeepsCause(t *testing.T) {
	cause := errors.New("FOREIGN KEY constraint failed")
	err := eris.Wrap(Classify(ErrReferential, cause), "sqlite: insert address")

	assert.ErrorIs(t, err, ErrReferential)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrStore)
}

func TestClassify_Idempotent(t *testing.T) {
	err := Classify(ErrStore, errors.New("boom"))
	again := Classify(ErrStore, err)
	assert.Same(t, err, again)
	assert.Nil(t, Classify(ErrStore, nil))
}

func TestPublicMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"not found", ErrNotFound, "Location not found"},
		{"incomplete", Classify(ErrIncompleteData, errors.New("missing city")), "Incomplete location data"},
		{"referential", Classify(ErrReferential, errors.New("fk")), "referenced record does not exist"},
		{"provider", Classify(ErrProvider, errors.New("status 503")), "geocoding provider unavailable"},
		{"store", Classify(ErrStore, errors.New("disk I/O error")), "internal error"},
		{"context", context.Canceled, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicMessage(tt.err))
		})
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Springfield", NormalizeName("  Springfield \t"))
	// "São" spelled with a combining tilde collapses to the precomposed form.
	assert.Equal(t, "S\u00e3o Paulo", NormalizeName("Sa\u0303o Paulo"))
	assert.Equal(t, "", NormalizeName("   "))
}
