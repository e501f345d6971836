package cache

import "strings"

// Slugify converts the directory portion of an address into a single
// filesystem-safe path component. Alphanumerics, dot, underscore and
// hyphen pass through; every other byte (slashes, colons, query
// punctuation) becomes a hyphen. The mapping is stable so the same
// address always lands in the same cache directory.
func Slugify(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			sb.WriteByte(c)
		case c == '.' || c == '_' || c == '-':
			sb.WriteByte(c)
		default:
			sb.WriteByte('-')
		}
	}
	return sb.String()
}
