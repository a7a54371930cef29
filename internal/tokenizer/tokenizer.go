package tokenizer

import (
	"github.com/shapestone/shape-core/pkg/tokenizer"
)

// NewTokenizer creates a tokenizer for form-encoded strings.
// Matchers are tried in order:
// 1. & (pair separator)
// 2. = (key/value separator)
// 3. Generic text (everything else until & or =)
//
// Whitespace is literal in form data, so the default whitespace skipper is
// not used.
func NewTokenizer() tokenizer.Tokenizer {
	return tokenizer.NewTokenizerWithoutWhitespace(
		tokenizer.StringMatcherFunc(TokenSeparator, "&"),
		tokenizer.StringMatcherFunc(TokenEquals, "="),
		TextMatcher(),
	)
}

// NewTokenizerWithStream creates a form tokenizer using a pre-configured stream.
func NewTokenizerWithStream(stream tokenizer.Stream) tokenizer.Tokenizer {
	tok := NewTokenizer()
	tok.InitializeFromStream(stream)
	return tok
}

// TextMatcher matches any sequence of characters until &, = or EOS.
func TextMatcher() tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		var value []rune

		for {
			r, ok := stream.PeekChar()
			if !ok {
				break
			}
			if r == '&' || r == '=' {
				break
			}
			stream.NextChar()
			value = append(value, r)
		}

		if len(value) == 0 {
			return nil
		}

		return tokenizer.NewToken(TokenText, value)
	}
}
