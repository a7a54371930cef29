package http

import "github.com/shapestone/shape-httpreq/internal/querystring"

// DefaultReadSize is the size of each read from a body stream.
const DefaultReadSize = 32 << 10

// DefaultMaxKeys bounds the pairs decoded from a query string or form body.
const DefaultMaxKeys = querystring.DefaultMaxKeys

// Option configures a Collector or Transformer.
type Option func(*options)

type options struct {
	headers    HeaderLookup
	socketName SocketNamer
	maxKeys    int
	readSize   int
	observer   Observer
}

func newOptions(opts []Option) options {
	o := options{
		headers:    DefaultHeaderLookup{},
		socketName: SocketName,
		maxKeys:    DefaultMaxKeys,
		readSize:   DefaultReadSize,
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithHeaderLookup replaces the collaborator that builds and queries header
// maps. A nil lookup is ignored.
func WithHeaderLookup(l HeaderLookup) Option {
	return func(o *options) {
		if l != nil {
			o.headers = l
		}
	}
}

// WithSocketNamer replaces the resolver that renders requestFrom.
// A nil namer is ignored.
func WithSocketNamer(fn SocketNamer) Option {
	return func(o *options) {
		if fn != nil {
			o.socketName = fn
		}
	}
}

// WithMaxKeys bounds the pairs decoded from a query string or form body.
// n <= 0 removes the bound.
func WithMaxKeys(n int) Option {
	return func(o *options) { o.maxKeys = n }
}

// WithReadSize sets the size of each read from a body stream.
// Non-positive sizes are ignored.
func WithReadSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.readSize = n
		}
	}
}

// WithObserver registers an Observer for collected bodies.
// A nil observer is ignored.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}
