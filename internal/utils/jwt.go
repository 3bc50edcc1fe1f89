package utils

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoSecret = errors.New("session secret is not configured")

// SessionClaims wraps a persisted session envelope so that tampering with the
// stored blob is detectable.
type SessionClaims struct {
	Session json.RawMessage `json:"session"`
	jwt.RegisteredClaims
}

// SignSession wraps payload into an HS256 token.
func SignSession(secret, payload []byte) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoSecret
	}
	claims := &SessionClaims{
		Session: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   "mediflow",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifySession validates a token produced by SignSession and returns the
// wrapped payload.
func VerifySession(secret []byte, tokenStr string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer("mediflow"))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims.Session, nil
}
