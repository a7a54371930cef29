// Package utf8text decodes byte buffers as UTF-8 text, replacing invalid
// sequences with U+FFFD.
package utf8text

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Decode returns b as a UTF-8 string. Invalid byte sequences are replaced
// with the Unicode replacement character; a leading byte order mark is kept.
func Decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		// The UTF-8 decoder replaces instead of failing; keep the raw
		// conversion as a last resort.
		return string(b)
	}
	return string(out)
}
