package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key hashes the parts into a fixed-length key. Parts are joined with a
// separator that cannot be confused with part content boundaries.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	// 16 bytes keeps keys short and still collision-safe
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// NamespacedKey returns "<namespace>:<hash of parts>" so a namespace can
// be inspected in redis-cli
func NamespacedKey(namespace string, parts ...string) string {
	return strings.TrimSuffix(namespace, ":") + ":" + Key(parts...)
}
