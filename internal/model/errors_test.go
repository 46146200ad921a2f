package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: customers.email")
	err := fmt.Errorf("create customer: %w", Constraint("email already in use", cause))

	assert.ErrorIs(t, err, ErrConstraintViolation)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, cause)

	msg, ok := UserMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "email already in use", msg)

	_, ok = UserMessage(errors.New("disk I/O error"))
	assert.False(t, ok)
}

func TestInsufficientStockMessage(t *testing.T) {
	err := InsufficientStock(7, 10, 11)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "available 10")
	assert.Contains(t, err.Error(), "requested 11")
}

func TestUpdateColumns(t *testing.T) {
	city := "Lyon"
	assert.Equal(t, map[string]any{"city": city}, CustomerUpdate{City: &city}.Columns())
	assert.Empty(t, ProductUpdate{}.Columns())

	blank := ""
	assert.Equal(t, map[string]any{"city": nil, "phone": nil}, CustomerUpdate{City: &blank, Phone: &blank}.Columns())
	assert.Equal(t, map[string]any{"description": nil, "category": nil}, ProductUpdate{Description: &blank, Category: &blank}.Columns())
}
