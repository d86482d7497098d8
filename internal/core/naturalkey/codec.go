package naturalkey

import (
	"net/url"
	"strings"

	"github.com/nautobot/nautobot-sub011/pkg/types"
)

// The composite key wire format. Every previously issued composite key depends on these
// values; changing any of them breaks decoding of existing URLs.
const (
	CompositeKeyFormatVersion = 1

	// CompositeKeySeparator joins encoded values. It is always escaped inside a value.
	CompositeKeySeparator = ";"

	// CompositeKeySafeChars are left unescaped in addition to ASCII letters, digits and "-_~".
	CompositeKeySafeChars = ".:"

	// NullMarker stands in for a null value before escaping; it encodes as "%00".
	NullMarker = "\x00"
)

const upperhex = "0123456789ABCDEF"

func shouldEscape(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return false
	case c == '-' || c == '_' || c == '~':
		return false
	}
	return strings.IndexByte(CompositeKeySafeChars, c) < 0
}

// escapeValue percent-encodes s byte-wise (UTF-8), uppercase hex.
func escapeValue(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// EncodeCompositeKey converts a natural key into a reversible, URL-path-safe string.
func EncodeCompositeKey(values []types.NullableString) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if v.IsNil() {
			parts[i] = escapeValue(NullMarker)
			continue
		}
		parts[i] = escapeValue(v.Value)
	}
	return strings.Join(parts, CompositeKeySeparator)
}

// DecodeCompositeKey reverses EncodeCompositeKey. Malformed percent-encoding yields
// ErrInvalidCompositeKey. An empty string decodes to a single empty value.
func DecodeCompositeKey(key string) ([]types.NullableString, error) {
	tokens := strings.Split(key, CompositeKeySeparator)
	values := make([]types.NullableString, len(tokens))
	for i, tok := range tokens {
		v, err := url.PathUnescape(tok)
		if err != nil {
			return nil, ErrInvalidCompositeKey.MsgErr("invalid composite key "+quote(key), err)
		}
		if v == NullMarker {
			values[i] = types.NullString()
			continue
		}
		values[i] = types.NullableStringFrom(v)
	}
	return values, nil
}

func quote(s string) string {
	return "\"" + s + "\""
}
