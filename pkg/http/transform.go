package http

import (
	"strings"

	"github.com/shapestone/shape-httpreq/internal/querystring"
)

// FormMediaType is the media type whose bodies are parsed into Form.
const FormMediaType = "application/x-www-form-urlencoded"

// Transformer turns RawRequests with an attached body into SimplifiedRequests.
type Transformer struct {
	headers    HeaderLookup
	socketName SocketNamer
	maxKeys    int
}

// NewTransformer returns a Transformer. Collection-only options are ignored.
func NewTransformer(opts ...Option) *Transformer {
	o := newOptions(opts)
	return newTransformer(o)
}

func newTransformer(o options) *Transformer {
	return &Transformer{
		headers:    o.headers,
		socketName: o.socketName,
		maxKeys:    o.maxKeys,
	}
}

var defaultTransformer = NewTransformer()

// Transform simplifies raw using the default collaborators.
// raw.Body must already be attached; raw.Stream is not read.
func Transform(raw *RawRequest) (*SimplifiedRequest, error) {
	return defaultTransformer.Transform(raw)
}

// Transform builds the SimplifiedRequest of raw. It performs no I/O and does
// not modify raw. The only failure is a request URL that does not parse.
func (t *Transformer) Transform(raw *RawRequest) (*SimplifiedRequest, error) {
	if raw == nil {
		return nil, ErrNilRequest
	}

	path, search, err := splitURL(raw.URL)
	if err != nil {
		return nil, err
	}
	query, err := t.parseForm(search)
	if err != nil {
		return nil, err
	}

	headers := t.headers.HeadersFor(raw.Headers)
	contentType, _ := t.headers.GetHeader("Content-Type", headers)

	out := &SimplifiedRequest{
		RequestFrom: t.socketName(raw.Conn),
		Method:      raw.Method,
		Path:        path,
		Query:       query,
		Headers:     headers,
		Body:        raw.Body.Text,
		IP:          raw.Conn.RemoteAddress,
	}
	if !raw.Body.Present {
		out.Body = ""
	}

	if !raw.Body.IsEmpty() && IsURLEncodedForm(contentType) {
		form, err := t.parseForm(raw.Body.Text)
		if err != nil {
			return nil, err
		}
		out.Form = &form
	}

	return out, nil
}

// IsURLEncodedForm reports whether the media type of a Content-Type value,
// the part before any ';' parameters with surrounding space trimmed, is
// exactly application/x-www-form-urlencoded. The comparison is
// case-sensitive.
func IsURLEncodedForm(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType := contentType
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		mediaType = contentType[:idx]
	}
	return strings.TrimSpace(mediaType) == FormMediaType
}

// ParseQuery decodes a form-encoded string into Values with the default key
// bound.
func ParseQuery(s string) (Values, error) {
	return defaultTransformer.parseForm(s)
}

func (t *Transformer) parseForm(s string) (Values, error) {
	var v Values
	pairs, err := querystring.Parse(s, t.maxKeys)
	if err != nil {
		return v, err
	}
	for _, p := range pairs {
		v.Add(p.Key, p.Value)
	}
	return v, nil
}
