package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// NewToken issues a signed session token carrying the user id in the
// "sub" claim.
func NewToken(userID int64, secret string, ttl time.Duration) (string, error) {
	const op = "lib.jwt.NewToken"

	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// ParseToken verifies the signature and expiry and returns the user id.
// An expired-but-otherwise-valid token is reported as ErrTokenExpired so
// callers can tell the client to re-authenticate rather than reject it as
// forged.
func ParseToken(tokenStr, secret string) (int64, error) {
	const op = "lib.jwt.ParseToken"

	claims := jwt.MapClaims{}

	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%s: unexpected signing method", op)
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}

	if !parsed.Valid {
		return 0, ErrTokenInvalid
	}

	subFloat, ok := claims["sub"].(float64)
	if !ok {
		return 0, ErrTokenInvalid
	}

	return int64(subFloat), nil
}
