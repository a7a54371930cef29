package http

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/chainguard-dev/clog"
	"github.com/klauspost/compress/gzip"

	"github.com/shapestone/shape-httpreq/internal/utf8text"
)

// Observer is notified once per collected body, after decoding.
// Implementations must be safe for concurrent use.
type Observer interface {
	// ObserveBody reports the Content-Encoding value, the number of bytes
	// read from the stream and whether a body was produced.
	ObserveBody(encoding string, size int, decoded bool)
}

type nopObserver struct{}

func (nopObserver) ObserveBody(string, int, bool) {}

// Collector reads request bodies and hands the request to a Transformer.
type Collector struct {
	transformer *Transformer
	headers     HeaderLookup
	readSize    int
	observer    Observer
}

// NewCollector returns a Collector. Options are shared with the Transformer
// it builds.
func NewCollector(opts ...Option) *Collector {
	o := newOptions(opts)
	return &Collector{
		transformer: newTransformer(o),
		headers:     o.headers,
		readSize:    o.readSize,
		observer:    o.observer,
	}
}

var defaultCollector = NewCollector()

// CreateFrom collects and simplifies raw using the default collaborators.
func CreateFrom(ctx context.Context, raw *RawRequest) (*SimplifiedRequest, error) {
	return defaultCollector.CreateFrom(ctx, raw)
}

// CreateFrom reads raw.Stream to EOF, decodes the body, attaches it as
// raw.Body and returns the transformed request.
//
// A body that fails to decode is dropped rather than reported. Errors are
// returned only for a failing stream (ErrBodyRead) or an unparseable URL
// (ErrInvalidURL). ctx supplies the logger; it does not cancel the read,
// so a stream that never ends blocks CreateFrom.
func (c *Collector) CreateFrom(ctx context.Context, raw *RawRequest) (*SimplifiedRequest, error) {
	if raw == nil {
		return nil, ErrNilRequest
	}

	buf, err := c.collect(raw.Stream)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBodyRead, err)
	}

	headers := c.headers.HeadersFor(raw.Headers)
	encoding, _ := c.headers.GetHeader("Content-Encoding", headers)

	raw.Body = DecodeBody(buf, encoding)
	if raw.Body.Err != nil {
		clog.FromContext(ctx).Debugf("dropping %d byte body of %s %s: %v", len(buf), raw.Method, raw.URL, raw.Body.Err)
	}
	c.observer.ObserveBody(encoding, len(buf), raw.Body.Present)

	return c.transformer.Transform(raw)
}

// collect reads r to EOF one chunk at a time and concatenates the chunks.
func (c *Collector) collect(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, nil
	}

	var chunks [][]byte
	buf := make([]byte, c.readSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			chunks = append(chunks, chunk)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return bytes.Join(chunks, nil), nil
}

// DecodeBody decodes collected body bytes according to a Content-Encoding
// value. Only the exact value "gzip" triggers decompression; any other
// encoding is passed through as text. A gzip failure yields an absent body
// with Err set.
func DecodeBody(buf []byte, contentEncoding string) DecodedBody {
	if contentEncoding != "gzip" {
		return TextBody(utf8text.Decode(buf))
	}

	plain, err := gunzip(buf)
	if err != nil {
		return DecodedBody{Err: fmt.Errorf("%w: gzip: %w", ErrBodyDecode, err)}
	}
	return TextBody(utf8text.Decode(plain))
}

func gunzip(buf []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
