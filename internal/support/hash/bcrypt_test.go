package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)

	hashed, err := h.Hash("flour-and-butter")
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hashed, "flour-and-butter"))
	assert.ErrorIs(t, h.Compare(hashed, "wrong"), ErrPasswordMismatch)
	assert.ErrorIs(t, h.Compare("", "wrong"), ErrPasswordMismatch)
	assert.False(t, h.NeedsRehash(hashed))

	stronger, err := NewBcryptHasher(bcrypt.MinCost + 1)
	require.NoError(t, err)
	assert.True(t, stronger.NeedsRehash(hashed))

	_, err = NewBcryptHasher(99)
	assert.Error(t, err)
}
