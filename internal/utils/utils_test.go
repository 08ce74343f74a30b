package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"

    "github.com/hostellog/hostel-admin/internal/model"
)

func TestAccessTokenRoundTrip(t *testing.T) {
    hostel := uint64(7)
    at, err := NewAccessToken("s3cret", 42, model.RoleStaff, &hostel, 15)
    require.NoError(t, err)
    assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), at.Exp, 5*time.Second)

    claims, err := ParseAccessToken("s3cret", at.Token)
    require.NoError(t, err)
    id, err := claims.UserID()
    require.NoError(t, err)
    assert.Equal(t, uint64(42), id)
    assert.Equal(t, model.RoleStaff, claims.Role)
    require.NotNil(t, claims.HostelID)
    assert.Equal(t, uint64(7), *claims.HostelID)
}

func TestAccessTokenAdminHasNoHostel(t *testing.T) {
    at, err := NewAccessToken("s3cret", 1, model.RoleAdmin, nil, 5)
    require.NoError(t, err)
    claims, err := ParseAccessToken("s3cret", at.Token)
    require.NoError(t, err)
    assert.Nil(t, claims.HostelID)
}

func TestParseAccessTokenRejects(t *testing.T) {
    at, err := NewAccessToken("s3cret", 1, model.RoleAdmin, nil, 5)
    require.NoError(t, err)

    _, err = ParseAccessToken("other", at.Token)
    assert.ErrorIs(t, err, ErrInvalidToken)

    expired, err := NewAccessToken("s3cret", 1, model.RoleAdmin, nil, -5)
    require.NoError(t, err)
    _, err = ParseAccessToken("s3cret", expired.Token)
    assert.ErrorIs(t, err, ErrInvalidToken)

    none := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
        Role:             model.RoleAdmin,
        RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
    })
    raw, err := none.SignedString([]byte("s3cret"))
    require.NoError(t, err)
    _, err = ParseAccessToken("s3cret", raw)
    assert.ErrorIs(t, err, ErrInvalidToken, "only HS256 is accepted")

    badRole := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
        Role:             "root",
        RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
    })
    raw, err = badRole.SignedString([]byte("s3cret"))
    require.NoError(t, err)
    _, err = ParseAccessToken("s3cret", raw)
    assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken(t *testing.T) {
    rt, err := NewRefreshToken(7)
    require.NoError(t, err)
    assert.Len(t, rt.Raw, 96)
    assert.Len(t, HashRefreshRaw(rt.Raw), 64)
    assert.Equal(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(rt.Raw))

    other, err := NewRefreshToken(7)
    require.NoError(t, err)
    assert.NotEqual(t, rt.Raw, other.Raw)
}

func TestPassword(t *testing.T) {
    hash, err := HashPassword("hunter22", bcrypt.MinCost)
    require.NoError(t, err)
    assert.True(t, VerifyPassword(hash, "hunter22"))
    assert.False(t, VerifyPassword(hash, "hunter23"))
}
