// Package adapter builds RawRequests from the request types of HTTP servers,
// so that their requests can be simplified by pkg/http.
//
// Header order follows what each server preserves: fasthttp keeps the raw
// header block as received, while net/http only keeps a canonicalized map.
package adapter
