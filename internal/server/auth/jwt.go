// Package auth implements the stateless credential primitives of the
// service: the JWT token codec and the password hasher.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/viewtube/internal/common"
)

// TokenKind discriminates access tokens from refresh tokens. A token signed
// as one kind never verifies as the other, even before checking secrets.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims includes the standard registered claims plus the subject account ID
// and the token kind.
type Claims struct {
	jwt.RegisteredClaims
	UserID string    `json:"uid"`
	Kind   TokenKind `json:"kind"`
}

// TokenCodec signs and verifies access and refresh tokens. Each kind uses
// its own secret and its own validity window. The codec is stateless; token
// validity is determined purely by signature and expiry.
type TokenCodec struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessValidity  time.Duration
	refreshValidity time.Duration
}

func NewTokenCodec(accessSecret, refreshSecret []byte, accessValidity, refreshValidity time.Duration) *TokenCodec {
	return &TokenCodec{
		accessSecret:    accessSecret,
		refreshSecret:   refreshSecret,
		accessValidity:  accessValidity,
		refreshValidity: refreshValidity,
	}
}

// SignAccess mints a short-lived access token for the given account.
func (c *TokenCodec) SignAccess(userID string) (string, error) {
	return c.sign(userID, KindAccess, c.accessSecret, c.accessValidity)
}

// SignRefresh mints a long-lived refresh token for the given account.
func (c *TokenCodec) SignRefresh(userID string) (string, error) {
	return c.sign(userID, KindRefresh, c.refreshSecret, c.refreshValidity)
}

func (c *TokenCodec) sign(userID string, kind TokenKind, secret []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique jti: timestamps have second precision, so without it two
			// tokens minted back-to-back for the same account would be equal,
			// and rotation would hand back the token it just consumed.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		UserID: userID,
		Kind:   kind,
	})
	return token.SignedString(secret)
}

// Verify checks signature integrity, expiry, and kind, and returns the
// subject account ID. Expired tokens fail with common.ErrTokenExpired;
// any structural, signature, or kind problem fails with
// common.ErrInvalidToken.
func (c *TokenCodec) Verify(tokenString string, kind TokenKind) (string, error) {
	secret := c.accessSecret
	if kind == KindRefresh {
		secret = c.refreshSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Kind != kind || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
