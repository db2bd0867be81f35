package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	sealer, err := NewSealer("a-config-encryption-key")
	require.NoError(t, err)

	sealed, err := sealer.Seal("super-secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, sealedPrefix))
	assert.NotContains(t, sealed, "super-secret")

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "super-secret", opened)
}

func TestSealerWithoutKeyIsPassthrough(t *testing.T) {
	sealer, err := NewSealer("")
	require.NoError(t, err)
	assert.False(t, sealer.Enabled())

	sealed, err := sealer.Seal("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", sealed)

	_, err = sealer.Open(sealedPrefix + "AAAA")
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	a, err := NewSealer("first-key-material")
	require.NoError(t, err)
	b, err := NewSealer("second-key-material")
	require.NoError(t, err)

	sealed, err := a.Seal("value")
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.Error(t, err)
}
