package http

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// Values is an ordered multi-map from key to one or more string values.
// Keys are listed in object order: canonical integer keys below 2^32-1
// first, ascending, then the rest in first-insertion order. A key added
// once renders as a string, a repeated key as an array.
//
// The zero value is an empty Values ready to use.
type Values struct {
	keys []string
	vals map[string][]string
}

// Add appends value under key.
func (v *Values) Add(key, value string) {
	if v.vals == nil {
		v.vals = make(map[string][]string)
	}
	if _, ok := v.vals[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.vals[key] = append(v.vals[key], value)
}

// Get returns the first value for key, or "" if absent.
func (v Values) Get(key string) string {
	if vals := v.vals[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// All returns a copy of every value stored under key.
func (v Values) All(key string) []string {
	vals := v.vals[key]
	if vals == nil {
		return nil
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// Has reports whether key is present.
func (v Values) Has(key string) bool {
	_, ok := v.vals[key]
	return ok
}

// Keys returns the keys in object order.
func (v Values) Keys() []string {
	return v.ordered()
}

// ordered returns a copy of the keys with integer keys moved to the front
// in ascending order.
func (v Values) ordered() []string {
	var ints, rest []string
	for _, k := range v.keys {
		if isArrayIndex(k) {
			ints = append(ints, k)
		} else {
			rest = append(rest, k)
		}
	}
	sort.Slice(ints, func(i, j int) bool {
		a, _ := strconv.ParseUint(ints[i], 10, 64)
		b, _ := strconv.ParseUint(ints[j], 10, 64)
		return a < b
	})
	return append(append(make([]string, 0, len(v.keys)), ints...), rest...)
}

// isArrayIndex reports whether k is a canonical non-negative integer below
// 2^32-1.
func isArrayIndex(k string) bool {
	if k == "" || len(k) > 10 || (len(k) > 1 && k[0] == '0') {
		return false
	}
	n, err := strconv.ParseUint(k, 10, 64)
	return err == nil && n < 1<<32-1
}

// Len returns the number of distinct keys.
func (v Values) Len() int { return len(v.keys) }

// Map converts v to native Go values: string for single values, []string for
// repeated keys. It never returns nil.
func (v Values) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(v.keys))
	for _, k := range v.keys {
		m[k] = v.value(k)
	}
	return m
}

// Clone returns a deep copy of v.
func (v Values) Clone() Values {
	var c Values
	for _, k := range v.keys {
		for _, val := range v.vals[k] {
			c.Add(k, val)
		}
	}
	return c
}

func (v Values) value(key string) interface{} {
	vals := v.vals[key]
	if len(vals) == 1 {
		return vals[0]
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// MarshalJSON renders v as a JSON object in object order.
func (v Values) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range v.ordered() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v.value(k))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
