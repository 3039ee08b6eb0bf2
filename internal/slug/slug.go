// Package slug derives unique, URL-safe public identifiers from display
// names. It owns no storage: existence checks are delegated to the caller
// through ExistsFunc, and the final word on uniqueness is the store's unique
// index on (namespace table, slug). The allocator is a check-then-act probe
// and is not atomic against concurrent writers; callers commit
// under the unique constraint and retry allocation on violation.
package slug

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MaxLen caps slug length. Numbered candidates shorten the base so the
	// suffix still fits.
	MaxLen = 50

	// Fallback is substituted when normalization yields an empty string
	// (e.g. a display name made entirely of symbols or emoji).
	Fallback = "untitled"
)

// Namespace is a logical uniqueness domain for slugs, one per entity kind.
// Within a namespace no two live entities share a slug; the same slug may
// exist in different namespaces.
type Namespace string

const (
	NamespaceShop    Namespace = "shops"
	NamespaceProduct Namespace = "products"
)

// asciiFold strips combining marks after NFD decomposition, which maps most
// Latin-script accents to their ASCII base letter ("Café" → "Cafe").
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make normalizes a display name into slug form: ASCII-folded, lowercase,
// restricted to [a-z0-9-], whitespace and hyphen runs collapsed to single
// hyphens, trimmed, and capped at MaxLen runes. An empty result falls back
// to the Fallback token, so Make never returns "".
func Make(name string) string {
	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		// Fold failures are theoretical for valid UTF-8; degrade to the raw input.
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastHyphen := true // swallow leading separators
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == '-' || r == '_' || unicode.IsSpace(r):
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	s := strings.TrimRight(b.String(), "-")
	if s == "" {
		return Fallback
	}
	return truncate(s, MaxLen)
}

// truncate cuts s to at most n bytes (slug bytes are ASCII at this point)
// without leaving a trailing hyphen.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-")
}

// ExistsFunc answers whether candidate is already taken in the namespace.
// When excludeID is non-empty, a row owned by that entity must be reported
// as available (the update-in-place case). Implementations hit the store and
// must honor ctx.
type ExistsFunc func(ctx context.Context, ns Namespace, candidate, excludeID string) (bool, error)

// Allocator produces collision-free slugs by probing a namespace through
// Exists. It has no side effects of its own: it is a pure function over the
// observed existence state plus the supplied display name.
type Allocator struct {
	Exists ExistsFunc
}

// Allocate returns the first free candidate for displayName in ns, probing
// base, base-1, base-2, … in strictly increasing order. The result is always
// non-empty and well-formed; the only error source is the existence probe.
//
// Allocate cannot close the race between probing and the eventual write: two
// concurrent allocators may both observe a candidate as free. The committing
// write must be guarded by the store's unique index, and the caller re-runs
// Allocate (bounded attempts) on a constraint violation.
func (a Allocator) Allocate(ctx context.Context, ns Namespace, displayName, excludeID string) (string, error) {
	base := Make(displayName)

	candidate := base
	for n := 1; ; n++ {
		taken, err := a.Exists(ctx, ns, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix := fmt.Sprintf("-%d", n)
		candidate = truncate(base, MaxLen-len(suffix)) + suffix
	}
}
