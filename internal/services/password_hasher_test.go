package services_test

import (
	"testing"

	"userrecords/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_DefaultCost(t *testing.T) {
	hasher := services.NewBcryptHasher(services.DefaultBcryptCost)

	hash, err := hasher.Hash("password123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
	assert.True(t, hasher.Compare(hash, "password123"))
	assert.False(t, hasher.Compare(hash, "password124"))
}

func TestBcryptHasher_InvalidCostFallsBack(t *testing.T) {
	hash, err := services.NewBcryptHasher(1).Hash("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, services.DefaultBcryptCost, cost)
}

func TestBcryptHasher_SaltsEachHash(t *testing.T) {
	hasher := services.NewBcryptHasher(bcrypt.MinCost)

	first, err := hasher.Hash("same")
	require.NoError(t, err)
	second, err := hasher.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, "same", first)
}
