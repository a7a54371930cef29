// Package tokenizer provides form-encoded string tokenization using Shape's
// tokenizer framework.
package tokenizer

// Token type constants for application/x-www-form-urlencoded input.
// The format is flat, so tokens are either separators or runs of text.
const (
	TokenSeparator = "Separator" // & between pairs
	TokenEquals    = "Equals"    // = between key and value
	TokenText      = "Text"      // raw (still percent-encoded) key or value text
)
