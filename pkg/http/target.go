package http

import (
	"errors"
	"net/url"
	"strings"
)

// Request targets are resolved against http://localhost/ the way browsers
// and URL-standard parsers do: existing escapes are kept as received, only
// the path percent-encode set is escaped, '\' counts as '/' and dot segments
// are removed. The host of an absolute target is checked but never reported.

// specialSchemes have an authority and a hierarchical path.
var specialSchemes = map[string]bool{
	"http": true, "https": true, "ws": true, "wss": true, "ftp": true, "file": true,
}

var errMissingHost = errors.New("missing host")

// splitURL returns the pathname of a request target and its query without
// the leading '?'. The fragment is dropped.
func splitURL(raw string) (path, search string, err error) {
	s := strings.Trim(raw, "\x00\x01\x02\x03\x04\x05\x06\x07\x08\x09\x0a\x0b\x0c\x0d\x0e\x0f"+
		"\x10\x11\x12\x13\x14\x15\x16\x17\x18\x19\x1a\x1b\x1c\x1d\x1e\x1f ")
	s = strings.NewReplacer("\t", "", "\n", "", "\r", "").Replace(s)

	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s, search = s[:i], s[i+1:]
	}

	scheme, rest, ok := cutScheme(s)
	switch {
	case !ok:
		path, err = resolveRelative(s)
	case scheme == "http" && !strings.HasPrefix(strings.ReplaceAll(rest, `\`, "/"), "//"):
		// Same scheme as the base without "//" is a relative reference.
		path, err = resolveRelative(rest)
	case specialSchemes[scheme]:
		path, err = splitAuthority(strings.TrimLeft(strings.ReplaceAll(rest, `\`, "/"), "/"), scheme == "file")
	case strings.HasPrefix(rest, "//"):
		path, err = opaqueAuthority(rest[2:])
	default:
		path = percentEncode(rest, false)
	}
	if err != nil {
		return "", "", &URLError{URL: raw, Err: err}
	}
	return path, search, nil
}

// cutScheme splits "scheme:rest". The scheme is returned lower-cased.
func cutScheme(s string) (scheme, rest string, ok bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		case i > 0 && c == ':':
			return strings.ToLower(s[:i]), s[i+1:], true
		default:
			return "", s, false
		}
	}
	return "", s, false
}

// resolveRelative resolves a reference without scheme against "/".
func resolveRelative(ref string) (string, error) {
	ref = strings.ReplaceAll(ref, `\`, "/")
	switch {
	case strings.HasPrefix(ref, "//"):
		return splitAuthority(strings.TrimLeft(ref, "/"), false)
	case strings.HasPrefix(ref, "/"):
		return normalizePath(ref), nil
	default:
		return normalizePath("/" + ref), nil
	}
}

// splitAuthority validates the authority at the head of s and returns the
// normalized path that follows it.
func splitAuthority(s string, allowEmpty bool) (string, error) {
	authority, path := s, ""
	if i := strings.IndexByte(s, '/'); i >= 0 {
		authority, path = s[:i], s[i:]
	}
	if err := checkAuthority(authority, allowEmpty); err != nil {
		return "", err
	}
	if path == "" {
		return "/", nil
	}
	return normalizePath(path), nil
}

// opaqueAuthority handles "//authority/path" under a non-special scheme,
// where an empty path stays empty.
func opaqueAuthority(s string) (string, error) {
	authority, path := s, ""
	if i := strings.IndexByte(s, '/'); i >= 0 {
		authority, path = s[:i], s[i:]
	}
	if err := checkAuthority(authority, true); err != nil {
		return "", err
	}
	if path == "" {
		return "", nil
	}
	return normalizePath(path), nil
}

func checkAuthority(authority string, allowEmpty bool) error {
	if authority == "" {
		if allowEmpty {
			return nil
		}
		return errMissingHost
	}
	u, err := url.Parse("http://" + authority)
	if err != nil {
		return err
	}
	if u.Host == "" && !allowEmpty {
		return errMissingHost
	}
	return nil
}

// normalizePath removes dot segments from p, which starts with '/', and
// escapes each segment.
func normalizePath(p string) string {
	segments := strings.Split(p[1:], "/")
	out := make([]string, 0, len(segments))
	for i, seg := range segments {
		last := i == len(segments)-1
		switch {
		case isDoubleDot(seg):
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			if last {
				out = append(out, "")
			}
		case isSingleDot(seg):
			if last {
				out = append(out, "")
			}
		default:
			out = append(out, percentEncode(seg, true))
		}
	}
	return "/" + strings.Join(out, "/")
}

func isSingleDot(seg string) bool {
	return seg == "." || strings.EqualFold(seg, "%2e")
}

func isDoubleDot(seg string) bool {
	switch strings.ToLower(seg) {
	case "..", ".%2e", "%2e.", "%2e%2e":
		return true
	}
	return false
}

const upperhex = "0123456789ABCDEF"

// percentEncode escapes bytes of the path percent-encode set, or only of
// the C0 control set when path is false. '%' is never escaped, so
// escapes already present, valid or not, are kept.
func percentEncode(s string, path bool) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i], path) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c, path) {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func shouldEscape(c byte, path bool) bool {
	if c < 0x20 || c > 0x7e {
		return true
	}
	if !path {
		return false
	}
	switch c {
	case ' ', '"', '#', '<', '>', '?', '`', '{', '}':
		return true
	}
	return false
}
