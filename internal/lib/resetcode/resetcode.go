// Package resetcode generates and hashes the one-time password-reset
// codes. Only the SHA-256 hash of a code is ever persisted; the
// plaintext goes out once via the notification queue.
package resetcode

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// TTL is the lifetime of a reset ticket.
const TTL = 10 * time.Minute

// Generate returns a random 6-digit numeric code.
func Generate() (string, error) {
	const op = "resetcode.Generate"
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Hash returns the hex-encoded SHA-256 digest of a code, the form in
// which tickets are stored and looked up.
func Hash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
