// Package chunked decodes HTTP/1.1 chunked transfer coding as a stream.
//
// Format: hex-size CRLF data CRLF ... 0 CRLF [trailers] CRLF
// Chunk extensions after ';' are ignored, bare LF is accepted in place of
// CRLF and trailer fields are read and discarded.
package chunked

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformed is wrapped by every framing error returned from Read.
var ErrMalformed = errors.New("http: chunked encoding: malformed")

// Reader yields the de-chunked body bytes of a chunked message.
// It reads exactly up to the end of the last chunk's trailer section, so the
// underlying reader is positioned at the next message afterwards.
type Reader struct {
	r        *bufio.Reader
	n        int64 // bytes left in the current chunk
	needCRLF bool  // chunk data was consumed, its CRLF was not
	err      error
}

// NewReader returns a Reader decoding the chunked body at the head of r.
func NewReader(r *bufio.Reader) *Reader {
	return &Reader{r: r}
}

// Read implements io.Reader.
func (cr *Reader) Read(p []byte) (int, error) {
	if cr.err != nil {
		return 0, cr.err
	}
	if len(p) == 0 {
		return 0, nil
	}

	if cr.n == 0 {
		if cr.needCRLF {
			if err := cr.readChunkEnd(); err != nil {
				cr.err = err
				return 0, err
			}
			cr.needCRLF = false
		}
		size, err := cr.readSize()
		if err != nil {
			cr.err = err
			return 0, err
		}
		if size == 0 {
			if err := cr.readTrailers(); err != nil {
				cr.err = err
				return 0, err
			}
			cr.err = io.EOF
			return 0, io.EOF
		}
		cr.n = size
	}

	if int64(len(p)) > cr.n {
		p = p[:cr.n]
	}
	n, err := cr.r.Read(p)
	cr.n -= int64(n)
	if cr.n == 0 {
		cr.needCRLF = true
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		cr.err = err
	}
	return n, err
}

// readSize reads a chunk size line.
func (cr *Reader) readSize() (int64, error) {
	line, err := cr.readLine()
	if err != nil {
		return 0, err
	}

	// Strip chunk extension
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)

	size, err := strconv.ParseInt(line, 16, 64)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("%w: invalid chunk size %q", ErrMalformed, line)
	}
	return size, nil
}

// readChunkEnd consumes the CRLF that terminates chunk data.
func (cr *Reader) readChunkEnd() error {
	line, err := cr.readLine()
	if err != nil {
		return err
	}
	if line != "" {
		return fmt.Errorf("%w: expected CRLF after chunk data, got %q", ErrMalformed, line)
	}
	return nil
}

// readTrailers discards trailer fields up to the terminating empty line.
func (cr *Reader) readTrailers() error {
	for {
		line, err := cr.readLine()
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
	}
}

// readLine reads a line, stripping CRLF or LF. A missing line ending is an
// unexpected EOF.
func (cr *Reader) readLine() (string, error) {
	line, err := cr.r.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
