package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWTer() *JWTer {
	return &JWTer{Secret: []byte("super-secret"), Issuer: "user-account-service", TTL: DefaultTTL}
}

func TestIssueAndParse_Success(t *testing.T) {
	t.Parallel()
	j := newJWTer()

	tok, err := j.Issue("user-123")
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", c.UID)
	assert.Equal(t, "user-account-service", c.Issuer)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), c.ExpiresAt.Time, 5*time.Second)
}

func TestIssue_ZeroTTLUsesSevenDays(t *testing.T) {
	t.Parallel()
	j := &JWTer{Secret: []byte("k")}

	tok, err := j.Issue("u1")
	require.NoError(t, err)
	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, c.ExpiresAt.Sub(c.IssuedAt.Time))
}

func TestIssue_MissingSecret(t *testing.T) {
	t.Parallel()
	j := &JWTer{}

	_, err := j.Issue("u1")
	assert.ErrorIs(t, err, ErrSigningKey)
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()
	j := newJWTer()
	j.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	tok, err := j.Issue("u1")
	require.NoError(t, err)

	j.now = nil
	_, err = j.Parse(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()
	tok, err := newJWTer().Issue("u2")
	require.NoError(t, err)

	other := newJWTer()
	other.Secret = []byte("wrong-secret")
	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestParse_WrongIssuer(t *testing.T) {
	t.Parallel()
	tok, err := newJWTer().Issue("u3")
	require.NoError(t, err)

	other := newJWTer()
	other.Issuer = "someone-else"
	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()
	_, err := newJWTer().Parse("not.a.jwt")
	assert.Error(t, err)
}

func TestIssue_SameSecondTokensDiffer(t *testing.T) {
	t.Parallel()
	fixed := time.Now()
	j := newJWTer()
	j.now = func() time.Time { return fixed }

	a, err := j.Issue("user-123")
	require.NoError(t, err)
	b, err := j.Issue("user-123")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	c, err := j.Parse(a)
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
}
