package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("kitchen"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := NewAuthService(string(hash), "secret")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err = svc.Login(context.Background(), "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	signed, err := svc.Login(context.Background(), "kitchen")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, claims["role"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, now.Add(12*time.Hour).Unix(), exp.Unix())
}

func TestAuthService_LoginWithoutConfiguredPassword(t *testing.T) {
	svc := NewAuthService("", "secret")
	_, err := svc.Login(context.Background(), "anything")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("kitchen")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("kitchen")))
}
