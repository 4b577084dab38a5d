package alerts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// DedupKey computes the natural dedup key of an alert using SHA256.
// Formula: SHA256(alert_type|subject|condition|bucket) where bucket is the
// trigger time truncated to the cooldown window. Two fires for the same
// crossing within one window collapse to the same key.
// Returns hex-encoded hash (64 characters).
func DedupKey(alertType, subject, condition string, at time.Time, cooldown time.Duration) string {
	bucket := at.Truncate(cooldown).Unix()
	data := fmt.Sprintf("%s|%s|%s|%d", alertType, subject, condition, bucket)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// CooldownKeeper remembers recently fired dedup keys so the same crossing is
// not alerted twice within its cooldown window. In-memory only: after a
// restart the bucketed key still collapses refires within the same window.
type CooldownKeeper struct {
	mu       sync.Mutex
	cooldown time.Duration
	seen     map[string]time.Time // key -> expiry
}

// NewCooldownKeeper creates a keeper with the given window.
func NewCooldownKeeper(cooldown time.Duration) *CooldownKeeper {
	return &CooldownKeeper{
		cooldown: cooldown,
		seen:     make(map[string]time.Time),
	}
}

// Cooldown returns the keeper's window.
func (k *CooldownKeeper) Cooldown() time.Duration {
	return k.cooldown
}

// Allow reports whether an alert with this key may fire at the given time,
// and records it if so. Expired entries are pruned opportunistically.
func (k *CooldownKeeper) Allow(key string, at time.Time) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	if exp, ok := k.seen[key]; ok && at.Before(exp) {
		return false
	}

	if len(k.seen) > 10_000 {
		for stale, exp := range k.seen {
			if !at.Before(exp) {
				delete(k.seen, stale)
			}
		}
	}

	k.seen[key] = at.Add(k.cooldown)
	return true
}
