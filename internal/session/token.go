package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims carried by a session token. ID (jti) is the session id and Subject
// the admin account id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies session tokens.
type Tokens struct {
	secretKey []byte
	nowFunc   func() time.Time
}

// NewTokens returns a token service using an HMAC secret.
func NewTokens(secretKey string) (*Tokens, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("empty session secret")
	}
	return &Tokens{secretKey: []byte(secretKey), nowFunc: time.Now}, nil
}

// Issue signs a token for sess that expires with it.
func (t *Tokens) Issue(sess Session) (string, error) {
	claims := Claims{
		Email: sess.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.AccountID,
			IssuedAt:  jwt.NewNumericDate(t.nowFunc()),
			ExpiresAt: jwt.NewNumericDate(time.Unix(sess.ExpiresAt, 0)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its claims.
func (t *Tokens) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secretKey, nil
	}, jwt.WithTimeFunc(t.nowFunc), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
