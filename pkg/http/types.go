// Package http normalizes raw inbound HTTP requests into simplified request
// records suitable for API display, logging and matching by a mock engine.
//
// # Stages
//
// A request is processed in two stages:
//
//   - Collector.CreateFrom reads the request body stream to EOF, decodes it
//     (gzip when Content-Encoding is exactly "gzip", raw UTF-8 otherwise),
//     attaches the result to the request and runs the Transformer.
//   - Transformer.Transform is a pure function from a RawRequest with its
//     body attached to a SimplifiedRequest: URL decomposition, query parsing,
//     header mapping and, for application/x-www-form-urlencoded bodies, form
//     parsing.
//
// The package-level CreateFrom and Transform use default collaborators.
//
// # Thread Safety
//
// Collectors and Transformers are immutable after construction and safe for
// concurrent use. A RawRequest belongs to a single call.
//
// # Decode failures
//
// A body that claims gzip encoding but fails to decompress is dropped: the
// request is still simplified, with an absent body. The failure is visible
// through DecodedBody.Err, the debug log and the Observer, never as an error
// from CreateFrom.
package http

import (
	"io"
	"strconv"
	"strings"
)

// RawRequest is an inbound request as delivered by the hosting server layer.
type RawRequest struct {
	Method  string    // "GET", "POST", etc.
	URL     string    // request-target "/api/users?q=foo", no scheme or host
	Headers Headers   // raw headers in arrival order
	Stream  io.Reader // body byte stream (nil if none)
	Conn    ConnInfo  // peer of the underlying connection

	// Body is attached by Collector.CreateFrom once Stream is exhausted.
	// Callers holding an already-buffered body may set it directly and call
	// Transform.
	Body DecodedBody
}

// DecodedBody is the outcome of decoding a collected body.
type DecodedBody struct {
	Text    string // UTF-8 text of the body
	Present bool   // false when decoding failed and the body was dropped
	Err     error  // decode failure, nil otherwise
}

// TextBody returns a present body holding s.
func TextBody(s string) DecodedBody {
	return DecodedBody{Text: s, Present: true}
}

// IsEmpty reports whether the body is absent or has no text.
func (b DecodedBody) IsEmpty() bool {
	return !b.Present || b.Text == ""
}

// SimplifiedRequest is the normalized record produced for every RawRequest.
// Its JSON form uses the field names of the request API.
type SimplifiedRequest struct {
	RequestFrom string    `json:"requestFrom"` // peer name, "ip:port"
	Method      string    `json:"method"`
	Path        string    `json:"path"`
	Query       Values    `json:"query"`
	Headers     HeaderMap `json:"headers"`
	Body        string    `json:"body"` // empty when the body was dropped
	IP          string    `json:"ip"`
	Form        *Values   `json:"form,omitempty"` // nil unless a form body was parsed
}

// Header represents a single HTTP header key-value pair.
type Header struct {
	Key   string
	Value string
}

// Headers is an ordered, repeatable list of HTTP headers.
// Names keep the case they were received in; lookups ignore case.
type Headers []Header

// Get returns the first header value for the given key (case-insensitive).
// Returns empty string if not found.
func (h Headers) Get(key string) string {
	for _, hdr := range h {
		if strings.EqualFold(hdr.Key, key) {
			return hdr.Value
		}
	}
	return ""
}

// Values returns all header values for the given key (case-insensitive).
func (h Headers) Values(key string) []string {
	var vals []string
	for _, hdr := range h {
		if strings.EqualFold(hdr.Key, key) {
			vals = append(vals, hdr.Value)
		}
	}
	return vals
}

// Add appends a header without replacing existing ones.
func (h *Headers) Add(key, value string) {
	*h = append(*h, Header{Key: key, Value: value})
}

// ContentLength returns the Content-Length header value, or -1 if absent or invalid.
func (h Headers) ContentLength() int64 {
	v := h.Get("Content-Length")
	if v == "" {
		return -1
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// IsChunked returns true if Transfer-Encoding contains "chunked".
func (h Headers) IsChunked() bool {
	for _, v := range h.Values("Transfer-Encoding") {
		if strings.Contains(strings.ToLower(v), "chunked") {
			return true
		}
	}
	return false
}
