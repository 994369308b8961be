package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestWrapNotFound(t *testing.T) {
	assert.NoError(t, WrapNotFound(nil))

	err := WrapNotFound(pgx.ErrNoRows)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))

	err = WrapNotFound(fmt.Errorf("query: %w", pgx.ErrNoRows))
	assert.ErrorIs(t, err, ErrNotFound)

	err = WrapNotFound(errors.New("connection refused"))
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "connection refused")
}
