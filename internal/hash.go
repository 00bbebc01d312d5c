package decor

import (
	"encoding/base32"
	"hash/fnv"
	"strings"
)

// ScopeTokenFromSource computes the short, deterministic scope token used
// to qualify CSS selectors and the `data-scope` attribute (spec §4.4).
// The teacher derives its equivalent `.astro-XXXXXX` suffix from xxhash
// over the printed-back source tree (internal/hash.go's HashFromDoc); no
// third-party short-hash package appears anywhere in the retrieved pack to
// ground a substitute, so this is the one place Decorous falls back to
// the standard library (hash/fnv) rather than a pack dependency — see
// DESIGN.md.
func ScopeTokenFromSource(source string) string {
	trimmed := strings.TrimSpace(source)
	h := fnv.New64a()
	_, _ = h.Write([]byte(trimmed))
	sum := h.Sum(nil)
	return strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum))[:8]
}
