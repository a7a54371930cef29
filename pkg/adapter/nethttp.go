package adapter

import (
	nethttp "net/http"
	"sort"

	httpreq "github.com/shapestone/shape-httpreq/pkg/http"
)

// FromHTTPRequest converts a net/http server request. Host is reported
// first, followed by the remaining header names in sorted order; net/http
// canonicalizes names, so their received case is lost. The body is left
// unread as the Stream.
func FromHTTPRequest(r *nethttp.Request) *httpreq.RawRequest {
	target := r.RequestURI
	if target == "" {
		target = r.URL.RequestURI()
	}

	var headers httpreq.Headers
	if r.Host != "" {
		headers.Add("Host", r.Host)
	}
	keys := make([]string, 0, len(r.Header))
	for k := range r.Header {
		if k == "Host" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range r.Header[k] {
			headers.Add(k, v)
		}
	}

	raw := &httpreq.RawRequest{
		Method:  r.Method,
		URL:     target,
		Headers: headers,
		Conn:    httpreq.ParseConnInfo(r.RemoteAddr),
	}
	if r.Body != nil && r.Body != nethttp.NoBody {
		raw.Stream = r.Body
	}
	return raw
}
