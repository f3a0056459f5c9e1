package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a token fails signature or claims
// validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the custom session claims embedded in every token.
type Claims struct {
	AccountUID           string `json:"uid"`
	Role                 string `json:"role"`
	Plan                 string `json:"plan"`
	jwt.RegisteredClaims        // carries jti, iat and exp
}

// GenerateToken issues an HS256-signed token with a fresh jti and an
// expiry of tokenTTL from now.
func (m *MakerImpl) GenerateToken(accountUID, role, plan string) (string, error) {
	const op = "jwt.GenerateToken"
	claims := Claims{
		AccountUID: accountUID,
		Role:       role,
		Plan:       plan,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken verifies the signature and the standard claims (including
// expiry) and returns the embedded claims.
func (m *MakerImpl) ParseToken(tokenStr string) (*Claims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, errors.Join(ErrInvalidToken, err))
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}

// ParseTokenAllowExpired verifies the signature but skips claims
// validation, so expired tokens are accepted as long as they are
// authentic. Tampered tokens still fail.
func (m *MakerImpl) ParseTokenAllowExpired(tokenStr string) (*Claims, error) {
	const op = "jwt.ParseTokenAllowExpired"
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, errors.Join(ErrInvalidToken, err))
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}

// RemainingLife returns how long the token stays valid from now, or
// zero when it is already expired. Used to size the revocation TTL.
func (c *Claims) RemainingLife(now time.Time) time.Duration {
	if c.ExpiresAt == nil || !c.ExpiresAt.After(now) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
