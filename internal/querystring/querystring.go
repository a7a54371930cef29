// Package querystring decodes application/x-www-form-urlencoded strings,
// the format shared by URL query strings and form bodies.
//
// Decoding is lenient: pairs are separated by '&', keys and values by the
// first '=', '+' decodes to a space and malformed percent escapes are kept
// literally. Empty segments are skipped and a segment without '=' yields a
// key with an empty value.
package querystring

import (
	"fmt"
	"strings"

	"github.com/shapestone/shape-httpreq/internal/tokenizer"
	"github.com/shapestone/shape-httpreq/internal/utf8text"
)

// DefaultMaxKeys bounds the number of '&'-separated segments considered.
const DefaultMaxKeys = 1000

// Pair is one decoded key/value pair in input order.
type Pair struct {
	Key   string
	Value string
}

// Parse decodes s into pairs in input order. At most maxKeys segments are
// considered; maxKeys <= 0 means no limit.
func Parse(s string, maxKeys int) ([]Pair, error) {
	if s == "" {
		return nil, nil
	}

	tok := tokenizer.NewTokenizer()
	tok.Initialize(s)
	tokens, eos := tok.Tokenize()
	if !eos {
		return nil, fmt.Errorf("querystring: unexpected input after %d tokens", len(tokens))
	}

	var (
		pairs    []Pair
		key, val strings.Builder
		hasEq    bool
		segments int
	)

	// flush ends the current segment; it reports false once the segment
	// limit is reached.
	flush := func() bool {
		if key.Len() > 0 || val.Len() > 0 || hasEq {
			pairs = append(pairs, Pair{Key: Unescape(key.String()), Value: Unescape(val.String())})
		}
		key.Reset()
		val.Reset()
		hasEq = false
		segments++
		return maxKeys <= 0 || segments < maxKeys
	}

	for _, t := range tokens {
		switch t.Kind() {
		case tokenizer.TokenSeparator:
			if !flush() {
				return pairs, nil
			}
		case tokenizer.TokenEquals:
			if hasEq {
				val.WriteByte('=')
			}
			hasEq = true
		default:
			if hasEq {
				val.WriteString(t.ValueString())
			} else {
				key.WriteString(t.ValueString())
			}
		}
	}
	flush()

	return pairs, nil
}

// Unescape decodes '+' as a space and valid %XX escapes as bytes, leaving
// malformed escapes untouched. The result is decoded as UTF-8.
func Unescape(s string) string {
	if strings.IndexByte(s, '%') < 0 && strings.IndexByte(s, '+') < 0 {
		return s
	}

	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '+':
			buf = append(buf, ' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			buf = append(buf, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
		default:
			buf = append(buf, c)
		}
	}
	return utf8text.Decode(buf)
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
