package validation_test

import (
	"errors"
	"testing"

	"userrecords/internal/models"
	"userrecords/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidInput(t *testing.T) {
	v := validation.New()
	err := v.Struct(models.UserInput{Name: "Ana", Email: "ana@example.com", Password: "secret"})
	assert.NoError(t, err)
}

func TestValidator_CollectsEveryViolation(t *testing.T) {
	v := validation.New()

	err := v.Struct(models.UserInput{Name: "", Email: "not-an-email", Password: ""})
	require.Error(t, err)

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{
		"name is required",
		"email must be a valid email address",
		"password is required",
	}, verr.Messages)
}

func TestValidator_EmptyEmailReportsRequiredOnly(t *testing.T) {
	v := validation.New()

	err := v.Struct(models.UserInput{Name: "Ana", Password: "secret"})

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"email is required"}, verr.Messages)
	assert.Contains(t, verr.Error(), "email is required")
}

func TestValidator_NonStructArgument(t *testing.T) {
	v := validation.New()

	err := v.Struct("not a struct")
	require.Error(t, err)

	var verr *validation.Error
	assert.False(t, errors.As(err, &verr))
}
