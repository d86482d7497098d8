package naturalkey

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/unicode/runenames"

	"github.com/nautobot/nautobot-sub011/internal/common/uuid"
	"github.com/nautobot/nautobot-sub011/pkg/types"
)

// ShortIDLength is the number of primary key characters appended to a natural slug.
const ShortIDLength = 4

// NaturalSlugSeparator joins slugified values.
const NaturalSlugSeparator = "_"

var (
	reQuotes     = regexp.MustCompile(`['\x{2018}\x{2019}]+`)
	reDisallowed = regexp.MustCompile(`[^a-z0-9-]+`)
	reDashes     = regexp.MustCompile(`-{2,}`)
)

// BuildNaturalSlug converts a natural key into a lossy, human-readable, URL-safe string.
// When shortID is set, its first ShortIDLength characters (hyphens removed for UUIDs)
// are appended as a final token.
func BuildNaturalSlug(values []types.NullableString, shortID string) string {
	tokens := make([]string, 0, len(values)+1)
	for _, v := range values {
		if v.IsNil() {
			tokens = append(tokens, slugify(NullMarker))
			continue
		}
		tokens = append(tokens, slugify(v.Value))
	}
	if shortID != "" {
		id := []rune(uuid.Compact(shortID))
		if len(id) > ShortIDLength {
			id = id[:ShortIDLength]
		}
		tokens = append(tokens, slugify(string(id)))
	}
	return strings.Join(tokens, NaturalSlugSeparator)
}

func slugify(s string) string {
	s = replaceEmoji(s)
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	s = unidecode.Unidecode(s)
	s = strings.ToLower(s)
	s = reQuotes.ReplaceAllString(s, "")
	s = reDisallowed.ReplaceAllString(s, "-")
	s = reDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// replaceEmoji substitutes each emoji code point with its Unicode character name.
// Joiners and variation selectors are dropped.
func replaceEmoji(s string) string {
	if !hasEmoji(s) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == 0x200D || (r >= 0xFE00 && r <= 0xFE0F):
		case isEmoji(r):
			name := runenames.Name(r)
			if name == "" {
				continue
			}
			b.WriteByte(' ')
			b.WriteString(name)
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hasEmoji(s string) bool {
	for _, r := range s {
		if isEmoji(r) {
			return true
		}
	}
	return false
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r >= 0x2B00 && r <= 0x2BFF:
		return true
	case r >= 0x23E9 && r <= 0x23F3:
		return true
	}
	switch r {
	case 0x00A9, 0x00AE, 0x231A, 0x231B, 0x203C, 0x2049, 0x2122, 0x2139, 0x24C2, 0x3030, 0x303D, 0x3297, 0x3299:
		return true
	}
	return false
}
