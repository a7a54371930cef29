package adapter

import (
	"bytes"

	"github.com/valyala/fasthttp"

	httpreq "github.com/shapestone/shape-httpreq/pkg/http"
)

// FromFastHTTP converts a fasthttp request. Headers are taken from the raw
// header block when fasthttp kept one, preserving received order and case;
// otherwise from the parsed header, in fasthttp's visiting order.
//
// fasthttp has already read and de-chunked the body. The Stream reads a copy
// of it, so the result stays valid after the handler returns.
func FromFastHTTP(ctx *fasthttp.RequestCtx) *httpreq.RawRequest {
	headers := httpreq.ParseHeaderBlock(ctx.Request.Header.RawHeaders())
	if len(headers) == 0 {
		ctx.Request.Header.VisitAll(func(k, v []byte) {
			headers.Add(string(k), string(v))
		})
	}

	body := append([]byte(nil), ctx.PostBody()...)

	return &httpreq.RawRequest{
		Method:  string(ctx.Method()),
		URL:     string(ctx.RequestURI()),
		Headers: headers,
		Stream:  bytes.NewReader(body),
		Conn:    httpreq.ConnInfoFromAddr(ctx.RemoteAddr()),
	}
}
