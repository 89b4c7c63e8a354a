package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret")
	for _, fileID := range []uint{1, 42, 99999} {
		tok, err := svc.Issue(fileID)
		require.NoError(t, err)

		got, err := svc.Verify(tok, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, fileID, got)
	}
}

func TestTokenExpiry(t *testing.T) {
	svc := NewTokenService("test-secret")
	tok, err := svc.issueAt(7, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = svc.Verify(tok, time.Hour)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The same token is still fine under a longer age limit.
	got, err := svc.Verify(tok, 3*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, uint(7), got)
}

func TestTokenTamperAndGarbageCollapseToOneError(t *testing.T) {
	svc := NewTokenService("test-secret")
	tok, err := svc.Issue(7)
	require.NoError(t, err)

	// Signed with a different secret.
	other := NewTokenService("other-secret")
	otherTok, err := other.Issue(7)
	require.NoError(t, err)

	for _, bad := range []string{
		"",
		"not-a-token",
		tok + "x",
		otherTok,
	} {
		_, err := svc.Verify(bad, time.Hour)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestTokenIsReusableWithinWindow(t *testing.T) {
	svc := NewTokenService("test-secret")
	tok, err := svc.Issue(3)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := svc.Verify(tok, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, uint(3), got)
	}
}
