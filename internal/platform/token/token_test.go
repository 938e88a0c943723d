package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("test-key", time.Hour)

	tok, err := m.Issue("acc1", false)
	require.NoError(t, err)

	claims, err := m.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "acc1", claims.CallerID)
	assert.False(t, claims.Admin)
}

func TestManager_AdminClaim(t *testing.T) {
	m := NewManager("test-key", time.Hour)

	tok, err := m.Issue("ops", true)
	require.NoError(t, err)

	claims, err := m.ValidateToken(tok)
	require.NoError(t, err)
	assert.True(t, claims.Admin)
}

func TestManager_RejectsWrongKey(t *testing.T) {
	issuer := NewManager("key-a", time.Hour)
	verifier := NewManager("key-b", time.Hour)

	tok, err := issuer.Issue("acc1", false)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(tok)
	require.Error(t, err)
}

func TestManager_RejectsExpired(t *testing.T) {
	m := NewManager("test-key", -time.Minute)

	tok, err := m.Issue("acc1", false)
	require.NoError(t, err)

	_, err = m.ValidateToken(tok)
	require.Error(t, err)
}

func TestManager_RejectsGarbage(t *testing.T) {
	m := NewManager("test-key", time.Hour)
	_, err := m.ValidateToken("not.a.token")
	require.Error(t, err)
}
