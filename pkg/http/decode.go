package http

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/shapestone/shape-httpreq/internal/chunked"
)

// Decoder reads HTTP/1.1 requests in wire format from an input stream and
// yields RawRequests whose Stream is the message body.
// A single Decoder is not safe for concurrent use; create one per goroutine
// or serialize access externally.
type Decoder struct {
	r    *bufio.Reader
	line int       // lines consumed, for error reporting
	body io.Reader // body of the last decoded request
	conn ConnInfo
}

// NewDecoder returns a new decoder that reads from r.
// The decoder uses buffered reading for efficient parsing.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// SetConnInfo sets the peer reported in the Conn of every request decoded
// afterwards.
func (dec *Decoder) SetConnInfo(c ConnInfo) {
	dec.conn = c
}

// DecodeRequest reads the next request from the stream. Any unread part of
// the previous request's body is discarded first. Empty lines before the
// request line are skipped. It returns io.EOF when the input holds no
// further request.
//
// The body is framed by Transfer-Encoding: chunked (decoded) or
// Content-Length; a request with neither has an empty body.
func (dec *Decoder) DecodeRequest() (*RawRequest, error) {
	if err := dec.drain(); err != nil {
		return nil, err
	}

	line, err := dec.readRequestLine()
	if err != nil {
		return nil, err
	}

	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, newParseError(fmt.Sprintf("malformed request line: %q", line), dec.line)
	}

	headers, err := dec.readHeaders()
	if err != nil {
		return nil, err
	}

	body, err := dec.bodyReader(headers)
	if err != nil {
		return nil, err
	}
	dec.body = body

	return &RawRequest{
		Method:  parts[0],
		URL:     parts[1],
		Headers: headers,
		Stream:  body,
		Conn:    dec.conn,
	}, nil
}

// drain discards what is left of the previous body.
func (dec *Decoder) drain() error {
	if dec.body == nil {
		return nil
	}
	body := dec.body
	dec.body = nil
	if _, err := io.Copy(io.Discard, body); err != nil {
		return fmt.Errorf("http: decode: discarding body: %w", err)
	}
	return nil
}

// readRequestLine skips leading empty lines and returns the request line.
func (dec *Decoder) readRequestLine() (string, error) {
	for {
		line, err := dec.readLine()
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
	}
}

// readLine reads a line from the buffered reader, stripping CRLF or LF.
// A final line without a line ending is returned as is.
func (dec *Decoder) readLine() (string, error) {
	line, err := dec.r.ReadString('\n')
	if err != nil && len(line) == 0 {
		return "", err
	}
	dec.line++
	return strings.TrimRight(line, "\r\n"), nil
}

// readHeaders reads header lines until an empty line.
func (dec *Decoder) readHeaders() (Headers, error) {
	var headers Headers

	for {
		line, err := dec.readLine()
		if err == io.EOF {
			return nil, newParseError("unexpected end of input in headers", dec.line)
		}
		if err != nil {
			return nil, fmt.Errorf("http: decode headers: %w", err)
		}

		// Empty line = end of headers
		if line == "" {
			return headers, nil
		}

		h, ok := parseHeaderLine(line)
		if !ok {
			return nil, newParseError(fmt.Sprintf("malformed header line: %q", line), dec.line)
		}
		headers = append(headers, h)
	}
}

// bodyReader frames the body that follows the headers.
func (dec *Decoder) bodyReader(headers Headers) (io.Reader, error) {
	if headers.IsChunked() {
		return chunked.NewReader(dec.r), nil
	}

	if v := headers.Get("Content-Length"); v != "" {
		cl := headers.ContentLength()
		if cl < 0 {
			return nil, newParseError(fmt.Sprintf("invalid Content-Length: %q", v), dec.line)
		}
		return &lengthReader{r: dec.r, n: cl}, nil
	}

	return bytes.NewReader(nil), nil
}

// lengthReader reads exactly n bytes, reporting io.ErrUnexpectedEOF when the
// input ends early.
type lengthReader struct {
	r io.Reader
	n int64
}

func (lr *lengthReader) Read(p []byte) (int, error) {
	if lr.n <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > lr.n {
		p = p[:lr.n]
	}
	n, err := lr.r.Read(p)
	lr.n -= int64(n)
	if err == io.EOF && lr.n > 0 {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

// ParseHeaderBlock parses a raw header section, one "Key: Value" field per
// line, into Headers in arrival order. Empty lines, and lines that are not
// header fields (such as a leading request line), are skipped.
func ParseHeaderBlock(block []byte) Headers {
	var headers Headers
	for _, line := range strings.Split(string(block), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if h, ok := parseHeaderLine(line); ok {
			headers = append(headers, h)
		}
	}
	return headers
}

// parseHeaderLine parses "Key: Value". Keys may not be empty or contain
// spaces.
func parseHeaderLine(line string) (Header, bool) {
	colon := strings.IndexByte(line, ':')
	if colon <= 0 {
		return Header{}, false
	}
	key := line[:colon]
	if strings.ContainsAny(key, " \t") {
		return Header{}, false
	}
	return Header{Key: key, Value: strings.TrimSpace(line[colon+1:])}, true
}
