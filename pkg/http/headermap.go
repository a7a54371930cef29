package http

import (
	"net"
	"strconv"
	"strings"
)

// HeaderMap maps header names, as received, to their values. Entries with the
// exact same name are collected under one key; names differing only in case
// stay distinct. Lookup is case-insensitive.
type HeaderMap struct {
	Values
}

// Lookup returns the values of the first name matching name
// case-insensitively.
func (h HeaderMap) Lookup(name string) ([]string, bool) {
	for _, k := range h.keys {
		if strings.EqualFold(k, name) {
			return h.All(k), true
		}
	}
	return nil, false
}

// HeaderLookup builds header maps from raw headers and queries them.
// Collectors and Transformers take one as a collaborator; see
// WithHeaderLookup.
type HeaderLookup interface {
	// HeadersFor builds the header map of a raw header list.
	HeadersFor(raw Headers) HeaderMap

	// GetHeader returns the value of the named header and whether it is
	// present. name matches case-insensitively.
	GetHeader(name string, headers HeaderMap) (string, bool)
}

// DefaultHeaderLookup is the HeaderLookup used unless another is configured.
// GetHeader combines repeated values into one comma-separated field value,
// so a repeated Content-Encoding never equals "gzip".
type DefaultHeaderLookup struct{}

// HeadersFor implements HeaderLookup.
func (DefaultHeaderLookup) HeadersFor(raw Headers) HeaderMap {
	var m HeaderMap
	for _, h := range raw {
		m.Add(h.Key, h.Value)
	}
	return m
}

// GetHeader implements HeaderLookup.
func (DefaultHeaderLookup) GetHeader(name string, headers HeaderMap) (string, bool) {
	vals, ok := headers.Lookup(name)
	if !ok {
		return "", false
	}
	return strings.Join(vals, ", "), true
}

// ConnInfo describes the peer of the connection a request arrived on.
type ConnInfo struct {
	RemoteAddress string // IP address, without port
	RemotePort    int    // 0 if unknown
}

// SocketNamer renders a connection as a human-readable peer name.
type SocketNamer func(ConnInfo) string

// SocketName is the default SocketNamer: the remote address, followed by
// ":port" when the port is known.
func SocketName(c ConnInfo) string {
	if c.RemotePort > 0 {
		return c.RemoteAddress + ":" + strconv.Itoa(c.RemotePort)
	}
	return c.RemoteAddress
}

// ParseConnInfo builds a ConnInfo from a "host:port" string. Input that
// does not split is kept whole as the address.
func ParseConnInfo(hostport string) ConnInfo {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return ConnInfo{RemoteAddress: hostport}
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return ConnInfo{RemoteAddress: host}
	}
	return ConnInfo{RemoteAddress: host, RemotePort: n}
}

// ConnInfoFromAddr builds a ConnInfo from a network address.
func ConnInfoFromAddr(addr net.Addr) ConnInfo {
	switch a := addr.(type) {
	case nil:
		return ConnInfo{}
	case *net.TCPAddr:
		if a == nil {
			return ConnInfo{}
		}
		return ConnInfo{RemoteAddress: a.IP.String(), RemotePort: a.Port}
	default:
		return ParseConnInfo(addr.String())
	}
}
