package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func readBody(t *testing.T, req *RawRequest) string {
	t.Helper()
	b, err := io.ReadAll(req.Stream)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return string(b)
}

func TestDecoder_Request(t *testing.T) {
	data := "GET /api?q=1 HTTP/1.1\r\nHost: example.com\r\nAccept: */*\r\n\r\n"
	dec := NewDecoder(strings.NewReader(data))

	req, err := dec.DecodeRequest()
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}

	if req.Method != "GET" {
		t.Errorf("Method = %q, want GET", req.Method)
	}
	if req.URL != "/api?q=1" {
		t.Errorf("URL = %q, want /api?q=1", req.URL)
	}
	want := Headers{{Key: "Host", Value: "example.com"}, {Key: "Accept", Value: "*/*"}}
	if diff := cmp.Diff(want, req.Headers); diff != "" {
		t.Errorf("Headers mismatch (-want +got):\n%s", diff)
	}
	if body := readBody(t, req); body != "" {
		t.Errorf("Body = %q, want empty", body)
	}
}

func TestDecoder_RequestWithBody(t *testing.T) {
	data := "POST /api HTTP/1.1\r\nHost: example.com\r\nContent-Length: 11\r\n\r\nhello world"
	dec := NewDecoder(strings.NewReader(data))

	req, err := dec.DecodeRequest()
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}
	if body := readBody(t, req); body != "hello world" {
		t.Errorf("Body = %q, want hello world", body)
	}
}

func TestDecoder_RequestChunkedBody(t *testing.T) {
	data := "POST /upload HTTP/1.1\r\nTransfer-Encoding: chunked\r\nContent-Length: 3\r\n\r\n5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"
	dec := NewDecoder(strings.NewReader(data))

	req, err := dec.DecodeRequest()
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}
	if body := readBody(t, req); body != "hello world" {
		t.Errorf("Body = %q, want hello world", body)
	}
}

func TestDecoder_MultipleRequests(t *testing.T) {
	data := "POST /a HTTP/1.1\r\nContent-Length: 3\r\n\r\nabc" +
		"\r\n" +
		"GET /b HTTP/1.1\r\n\r\n" +
		"POST /c HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n2\r\nhi\r\n0\r\n\r\n"
	dec := NewDecoder(strings.NewReader(data))

	var urls []string
	for {
		req, err := dec.DecodeRequest()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("DecodeRequest() error = %v", err)
		}
		urls = append(urls, req.URL)
	}

	if diff := cmp.Diff([]string{"/a", "/b", "/c"}, urls); diff != "" {
		t.Errorf("URLs mismatch (-want +got):\n%s", diff)
	}
}

func TestDecoder_DrainsUnreadBody(t *testing.T) {
	data := "POST /a HTTP/1.1\r\nContent-Length: 10\r\n\r\n0123456789GET /b HTTP/1.1\r\n\r\n"
	dec := NewDecoder(strings.NewReader(data))

	first, err := dec.DecodeRequest()
	if err != nil {
		t.Fatalf("first DecodeRequest() error = %v", err)
	}
	buf := make([]byte, 4)
	if _, err := io.ReadFull(first.Stream, buf); err != nil {
		t.Fatalf("partial read: %v", err)
	}

	second, err := dec.DecodeRequest()
	if err != nil {
		t.Fatalf("second DecodeRequest() error = %v", err)
	}
	if second.URL != "/b" {
		t.Errorf("URL = %q, want /b", second.URL)
	}
}

func TestDecoder_BareLF(t *testing.T) {
	data := "PUT /x HTTP/1.1\nContent-Length: 2\n\nok"
	req, err := NewDecoder(strings.NewReader(data)).DecodeRequest()
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}
	if body := readBody(t, req); body != "ok" {
		t.Errorf("Body = %q, want ok", body)
	}
}

func TestDecoder_ConnInfo(t *testing.T) {
	dec := NewDecoder(strings.NewReader("GET / HTTP/1.1\r\n\r\n"))
	dec.SetConnInfo(ConnInfo{RemoteAddress: "10.0.0.5", RemotePort: 4000})

	req, err := dec.DecodeRequest()
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}
	if want := (ConnInfo{RemoteAddress: "10.0.0.5", RemotePort: 4000}); req.Conn != want {
		t.Errorf("Conn = %+v, want %+v", req.Conn, want)
	}
}

func TestDecoder_EmptyReader(t *testing.T) {
	for _, data := range []string{"", "\r\n\r\n"} {
		_, err := NewDecoder(strings.NewReader(data)).DecodeRequest()
		if err != io.EOF {
			t.Errorf("DecodeRequest(%q) error = %v, want io.EOF", data, err)
		}
	}
}

func TestDecoder_ParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantLine int
	}{
		{"request line without target", "GET\r\n\r\n", 1},
		{"malformed header", "GET / HTTP/1.1\r\nHost example.com\r\n\r\n", 2},
		{"space in header name", "GET / HTTP/1.1\r\nBad Name: x\r\n\r\n", 2},
		{"headers end early", "GET / HTTP/1.1\r\nHost: a\r\n", 2},
		{"invalid content length", "POST / HTTP/1.1\r\nContent-Length: abc\r\n\r\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(strings.NewReader(tt.data)).DecodeRequest()
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if pe.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", pe.Line, tt.wantLine)
			}
		})
	}
}

func TestDecoder_TruncatedBodies(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"content length", "POST / HTTP/1.1\r\nContent-Length: 100\r\n\r\nshort"},
		{"chunked", "POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhel"},
		{"chunked no terminator", "POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewDecoder(strings.NewReader(tt.data)).DecodeRequest()
			if err != nil {
				t.Fatalf("DecodeRequest() error = %v", err)
			}
			if _, err := io.ReadAll(req.Stream); !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Errorf("reading body error = %v, want io.ErrUnexpectedEOF", err)
			}
		})
	}
}

func TestDecoder_TruncatedBodyFailsCollection(t *testing.T) {
	req, err := NewDecoder(strings.NewReader("POST / HTTP/1.1\r\nContent-Length: 9\r\n\r\nabc")).DecodeRequest()
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}
	if _, err := CreateFrom(context.Background(), req); !errors.Is(err, ErrBodyRead) {
		t.Errorf("CreateFrom() error = %v, want ErrBodyRead", err)
	}
}

// immediateErrorReader always returns an error immediately on Read.
type immediateErrorReader struct{}

func (r *immediateErrorReader) Read(_ []byte) (int, error) {
	return 0, errImmediateFail
}

var errImmediateFail = fmt.Errorf("immediate read failure")

func TestDecodeRequest_ReadLineError(t *testing.T) {
	_, err := NewDecoder(&immediateErrorReader{}).DecodeRequest()
	if !errors.Is(err, errImmediateFail) {
		t.Errorf("DecodeRequest() error = %v, want errImmediateFail", err)
	}
}

func TestDecoder_RequestWithLargeBody(t *testing.T) {
	body := bytes.Repeat([]byte("x"), 100000)
	data := fmt.Sprintf("POST / HTTP/1.1\r\nContent-Length: %d\r\n\r\n%s", len(body), body)

	req, err := NewDecoder(strings.NewReader(data)).DecodeRequest()
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}
	got, err := CreateFrom(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateFrom() error = %v", err)
	}
	if len(got.Body) != len(body) {
		t.Errorf("len(Body) = %d, want %d", len(got.Body), len(body))
	}
}

func TestParseHeaderBlock(t *testing.T) {
	block := []byte("POST /x HTTP/1.1\r\nHost: a\r\nX-Tag: 1\r\nx-tag:2\r\n\r\n")
	want := Headers{{Key: "Host", Value: "a"}, {Key: "X-Tag", Value: "1"}, {Key: "x-tag", Value: "2"}}
	if diff := cmp.Diff(want, ParseHeaderBlock(block)); diff != "" {
		t.Errorf("ParseHeaderBlock mismatch (-want +got):\n%s", diff)
	}
	if got := ParseHeaderBlock(nil); got != nil {
		t.Errorf("ParseHeaderBlock(nil) = %v, want nil", got)
	}
}
