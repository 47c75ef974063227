package auth

import (
	"testing"
	"time"

	"rrhh/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	user := &model.User{ID: 42, Role: model.RoleHR}

	token, expiresAt, err := m.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, model.RoleHR, claims.Role)
	assert.NotEmpty(t, claims.ID)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestParseExpired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	issuer := NewTokenManager("test-secret", time.Minute).WithClock(func() time.Time { return past })

	token, _, err := issuer.Issue(&model.User{ID: 1, Role: model.RoleAdmin})
	require.NoError(t, err)

	_, err = NewTokenManager("test-secret", time.Minute).Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseRejectsForeignTokens(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	other, _, err := NewTokenManager("other-secret", time.Hour).Issue(&model.User{ID: 1})
	require.NoError(t, err)
	_, err = m.Parse(other)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = m.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// HS512 with the right secret is still refused
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// tokens without expiry are refused
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = m.Parse(noExp)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secreto123")
	require.NoError(t, err)
	assert.NotEqual(t, "secreto123", hash)
	assert.True(t, CheckPassword(hash, "secreto123"))
	assert.False(t, CheckPassword(hash, "otra"))

	again, err := HashPassword("secreto123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)

	_, err = HashPassword("123")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}
