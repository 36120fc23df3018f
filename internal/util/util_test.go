package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	token, err := IssueJWT(42, "s3cret", time.Hour, time.Now())
	require.NoError(t, err)

	claims, err := ValidateJWT(token, "s3cret")
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := IssueJWT(1, "right", time.Hour, time.Now())
	require.NoError(t, err)

	_, err = ValidateJWT(token, "wrong")
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	token, err := IssueJWT(1, "s", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = ValidateJWT(token, "s")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateRejectsNoneAlg(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "s")
	assert.Error(t, err)
}

func TestClaimsUserIDRejectsGarbage(t *testing.T) {
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "abc"}}
	_, err := c.UserID()
	assert.Error(t, err)
}
