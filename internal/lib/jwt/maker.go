// Package jwt implements generation and parsing of the signed session
// tokens. A token is a self-contained credential carrying the account
// UID, role and plan, a unique token id (jti) used for revocation, and
// a seven-day expiry.
package jwt

import (
	"time"
)

// Maker describes issuing and verifying session tokens.
type Maker interface {
	// GenerateToken issues a signed token for the account.
	GenerateToken(accountUID, role, plan string) (string, error)
	// ParseToken verifies the signature and the expiry and returns
	// the embedded claims.
	ParseToken(tokenStr string) (*Claims, error)
	// ParseTokenAllowExpired verifies only the signature, so an
	// expired-but-authentic token can still be refreshed.
	ParseTokenAllowExpired(tokenStr string) (*Claims, error)
}

// MakerImpl implements Maker with an HMAC secret and a token TTL.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewMaker creates a MakerImpl from the signing secret and TTL.
func NewMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
