package model

import (
	"testing"

	"ragbot-be/internal/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDimensionAcceptsColumnDimension(t *testing.T) {
	require.NoError(t, ValidateDimension(EmbeddingDimension))
}

func TestValidateDimensionRejectsMismatch(t *testing.T) {
	err := ValidateDimension(1024)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
}
