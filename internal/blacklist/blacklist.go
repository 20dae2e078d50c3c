// Package blacklist keeps revoked access tokens until they would have expired anyway.
package blacklist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Blacklist records logged-out tokens.
type Blacklist interface {
	Add(ctx context.Context, token string, expiresAt time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
