package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_Hash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("12345678")
	require.NoError(t, err)
	assert.NotEqual(t, "12345678", hash)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), preHash("12345678")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), preHash("87654321")))
}

func TestBcryptHasher_LongPasswords(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	// 80 bytes of UTF-8, past bcrypt's 72 byte input limit.
	emoji := strings.Repeat("😀", 20)
	hash, err := h.Hash(emoji)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), preHash(emoji)))

	// Passwords sharing a 72 byte prefix must not collide.
	prefix := strings.Repeat("a", 72)
	hash, err = h.Hash(prefix + "x")
	require.NoError(t, err)
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), preHash(prefix+"y")))
}

func TestBcryptHasher_SaltsEachHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestNewBcryptHasher_CostBounds(t *testing.T) {
	tests := []struct {
		name   string
		cost   int
		expect int
	}{
		{name: "zero falls back", cost: 0, expect: bcrypt.DefaultCost},
		{name: "too high falls back", cost: bcrypt.MaxCost + 1, expect: bcrypt.DefaultCost},
		{name: "min kept", cost: bcrypt.MinCost, expect: bcrypt.MinCost},
		{name: "custom kept", cost: 6, expect: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, NewBcryptHasher(tt.cost).cost)
		})
	}
}

func TestBcryptHasher_UsesConfiguredCost(t *testing.T) {
	hash, err := NewBcryptHasher(bcrypt.MinCost).Hash("12345678")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}
