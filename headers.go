package relay

import "strings"

// Headers is a case-insensitive HTTP header map, list-valued so that
// repeated headers (e.g. "Vary") survive intact. Keys are canonicalized
// with `strings.ToLower()`; use `Get`/`Set`/`Append`/`Values` rather than
// indexing the map directly.
type Headers map[string][]string

// NewHeaders returns an empty `Headers` map.
func NewHeaders() Headers {
	return Headers{}
}

// Get returns the first value associated with the key, or "" if there are
// none. This is the accessor the state machine and handlers use for
// single-valued headers such as "Content-Type" or "If-None-Match".
func (hs Headers) Get(key string) string {
	if vs := hs.Values(key); len(vs) > 0 {
		return vs[0]
	}

	return ""
}

// Values returns every value associated with the key, in the order they
// were appended.
func (hs Headers) Values(key string) []string {
	return hs[strings.ToLower(key)]
}

// Set replaces the values associated with the key.
func (hs Headers) Set(key string, value string) {
	hs[strings.ToLower(key)] = []string{value}
}

// SetValues replaces the values associated with the key.
func (hs Headers) SetValues(key string, values []string) {
	hs[strings.ToLower(key)] = values
}

// Append appends a value to the entries already associated with the key.
func (hs Headers) Append(key string, value string) {
	k := strings.ToLower(key)
	hs[k] = append(hs[k], value)
}

// Has reports whether the key has at least one value.
func (hs Headers) Has(key string) bool {
	return len(hs.Values(key)) > 0
}

// Delete removes every value associated with the key.
func (hs Headers) Delete(key string) {
	delete(hs, strings.ToLower(key))
}

// Clone returns a deep copy of hs.
func (hs Headers) Clone() Headers {
	out := make(Headers, len(hs))
	for k, vs := range hs {
		cp := make([]string, len(vs))
		copy(cp, vs)
		out[k] = cp
	}

	return out
}
