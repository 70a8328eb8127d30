package webhook

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/vensus137/coreness-go/internal/cache"
)

// secretTTL is the "cached permanently" TTL spec.md §6 calls out for
// webhook secret tokens: ten years, chosen over zero because this
// cache's Set replaces a zero ttl with the cache's default TTL.
const secretTTL = 10 * 365 * 24 * time.Hour

func secretCacheKey(token string) string { return "webhook_secret:" + token }

// secretToken derives the per-bot webhook secret token: MD5 of the
// bot_id concatenated with the process-start timestamp, so a restart
// rotates every tenant's token at once (spec.md §6).
func secretToken(botID string, processStart time.Time) string {
	sum := md5.Sum([]byte(botID + fmt.Sprintf("%d", processStart.Unix())))
	return hex.EncodeToString(sum[:])
}

// SecretRegistry issues and resolves per-bot webhook secret tokens.
type SecretRegistry struct {
	cache        *cache.Cache
	processStart time.Time
}

// NewSecretRegistry builds a registry stamped with the current
// process's start time, used to derive every bot's token.
func NewSecretRegistry(c *cache.Cache) *SecretRegistry {
	return &SecretRegistry{cache: c, processStart: time.Now()}
}

// IssueFor computes botID's token and caches the token -> bot_id
// mapping, returning the token to hand to the chat vendor as the
// webhook's secret header value.
func (r *SecretRegistry) IssueFor(botID string) string {
	token := secretToken(botID, r.processStart)
	r.cache.Set(secretCacheKey(token), botID, secretTTL)
	return token
}

// Resolve looks up the bot_id a secret token was issued for.
func (r *SecretRegistry) Resolve(token string) (string, bool) {
	v, ok := r.cache.Get(secretCacheKey(token))
	if !ok {
		return "", false
	}
	botID, ok := v.(string)
	return botID, ok
}
