package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func newTestIssuer(t *testing.T, clock *fakeClock) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		SecretKey:       "test-secret",
		Issuer:          "HavirKesht",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}, WithClock(clock.now))
	require.NoError(t, err)
	return issuer
}

// 1
func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	clock := &fakeClock{current: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(t, clock)

	access, err := issuer.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	claims, err := issuer.Verify(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, TokenKindAccess, claims.Type)
	assert.Equal(t, "HavirKesht", claims.Issuer)
	assert.True(t, clock.current.Add(30*time.Minute).Equal(claims.ExpiresAt.Time))
	assert.NotEmpty(t, claims.ID)

	refresh, err := issuer.IssueRefresh("user-1", "alice")
	require.NoError(t, err)
	refreshClaims, err := issuer.Verify(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenKindRefresh, refreshClaims.Type)
	assert.True(t, clock.current.Add(7*24*time.Hour).Equal(refreshClaims.ExpiresAt.Time))
}

// 2
func TestTokenIssuer_TokensInSameSecondDiffer(t *testing.T) {
	clock := &fakeClock{current: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(t, clock)

	first, err := issuer.IssueAccess("user-1", "alice")
	require.NoError(t, err)
	second, err := issuer.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

// 3
func TestTokenIssuer_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{current: issuedAt}
	issuer := newTestIssuer(t, clock)

	access, err := issuer.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	clock.current = issuedAt.Add(30*time.Minute - time.Second)
	_, err = issuer.Verify(access)
	assert.NoError(t, err)

	clock.current = issuedAt.Add(30*time.Minute + time.Second)
	_, err = issuer.Verify(access)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

// 4
func TestTokenIssuer_TamperedToken(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	issuer := newTestIssuer(t, clock)

	access, err := issuer.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	parts := strings.Split(access, ".")
	require.Len(t, parts, 3)
	signature := []byte(parts[2])
	if signature[0] == 'A' {
		signature[0] = 'B'
	} else {
		signature[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(signature)

	_, err = issuer.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = issuer.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

// 5
func TestTokenIssuer_WrongKeyAndAlgorithm(t *testing.T) {
	clock := &fakeClock{current: time.Now()}
	issuer := newTestIssuer(t, clock)

	other, err := NewTokenIssuer(TokenIssuerConfig{
		SecretKey: "another-secret", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour,
	})
	require.NoError(t, err)
	foreign, err := other.IssueAccess("user-1", "alice")
	require.NoError(t, err)

	_, err = issuer.Verify(foreign)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Type: TokenKindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = issuer.Verify(hs256)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

// 6
func TestNewTokenIssuer_InvalidConfig(t *testing.T) {
	_, err := NewTokenIssuer(TokenIssuerConfig{AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	assert.Error(t, err)

	_, err = NewTokenIssuer(TokenIssuerConfig{SecretKey: "k", AccessTokenTTL: 0, RefreshTokenTTL: time.Hour})
	assert.Error(t, err)
}
