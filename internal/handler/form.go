package handler

import "strings"

// formValues holds a decoded application/x-www-form-urlencoded payload.
// A repeated key keeps its last value.
type formValues map[string]string

// parseForm decodes a form body or query string. It never fails: pairs are
// split on '&' only and a malformed escape stays as literal text.
func parseForm(raw string) formValues {
	values := make(formValues)
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		values[decodeComponent(key)] = decodeComponent(value)
	}
	return values
}

func (v formValues) get(key string) (string, bool) {
	value, ok := v[key]
	return value, ok
}

// decodeComponent turns '+' into a space and %XX into its byte. Invalid
// UTF-8 in the result is replaced with U+FFFD.
func decodeComponent(s string) string {
	if !strings.ContainsAny(s, "%+") {
		return strings.ToValidUTF8(s, "\uFFFD")
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return strings.ToValidUTF8(b.String(), "\uFFFD")
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c <= '9':
		return c - '0'
	case c <= 'F':
		return c - 'A' + 10
	default:
		return c - 'a' + 10
	}
}
