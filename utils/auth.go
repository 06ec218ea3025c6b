package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// ErrInvalidToken is returned for any credential that fails verification
var ErrInvalidToken = errors.New("invalid token")

// Identity is the verified content of a bearer credential
type Identity struct {
	Email  string
	Claims jwt.MapClaims
}

// TokenSigner issues and verifies HS256 access tokens
type TokenSigner struct {
	key []byte
	ttl time.Duration
}

// NewTokenSigner creates a signer for the shared secret; tokens live for ttl
func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	return &TokenSigner{key: []byte(secret), ttl: ttl}
}

// Issue signs an arbitrary identity payload. Any exp/iat in the payload is replaced.
func (s *TokenSigner) Issue(payload map[string]interface{}) (string, error) {
	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	now := time.Now()
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(s.ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks signature and expiry and returns the decoded identity
func (s *TokenSigner) Verify(tokenString string) (*Identity, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	// tokens without an expiry were not issued by us
	if !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		return nil, ErrInvalidToken
	}

	email, _ := claims["email"].(string)
	return &Identity{Email: email, Claims: claims}, nil
}
