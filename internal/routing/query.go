package routing

import (
	"net/url"
	"sort"
	"strings"
)

type pair struct {
	key, value string
}

// Query is an ordered query string. Unlike url.Values it keeps insertion
// order and duplicate keys. Encode normalizes escaping, so callers that need
// the original text must keep it themselves.
type Query struct {
	pairs []pair
}

// ParseQuery parses s, with or without a leading '?'. Malformed escapes are
// kept literally.
func ParseQuery(s string) *Query {
	q := &Query{}
	s = strings.TrimPrefix(s, "?")
	for _, part := range strings.Split(s, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		q.pairs = append(q.pairs, pair{key: unescape(k), value: unescape(v)})
	}
	return q
}

// QueryFromMap builds a Query from m with keys in sorted order.
func QueryFromMap(m map[string]string) *Query {
	q := &Query{}
	for k, v := range m {
		q.pairs = append(q.pairs, pair{key: k, value: v})
	}
	q.Sort()
	return q
}

func unescape(s string) string {
	u, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return u
}

// Get returns the first value for key.
func (q *Query) Get(key string) (string, bool) {
	for _, p := range q.pairs {
		if p.key == key {
			return p.value, true
		}
	}
	return "", false
}

// Set replaces the first occurrence of key and drops the rest, or appends
// key when absent.
func (q *Query) Set(key, value string) {
	out := q.pairs[:0]
	found := false
	for _, p := range q.pairs {
		if p.key != key {
			out = append(out, p)
			continue
		}
		if !found {
			out = append(out, pair{key: key, value: value})
			found = true
		}
	}
	q.pairs = out
	if !found {
		q.pairs = append(q.pairs, pair{key: key, value: value})
	}
}

// Delete removes every occurrence of key.
func (q *Query) Delete(key string) {
	out := q.pairs[:0]
	for _, p := range q.pairs {
		if p.key != key {
			out = append(out, p)
		}
	}
	q.pairs = out
}

// Sort orders pairs by key, keeping the relative order of equal keys.
func (q *Query) Sort() {
	sort.SliceStable(q.pairs, func(i, j int) bool { return q.pairs[i].key < q.pairs[j].key })
}

// Len returns the number of pairs.
func (q *Query) Len() int { return len(q.pairs) }

// Encode serializes the query in form encoding, without a leading '?'.
func (q *Query) Encode() string {
	var b strings.Builder
	for i, p := range q.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

func (q *Query) String() string { return q.Encode() }

// joinQuery joins path and an encoded query, omitting '?' when it is empty.
func joinQuery(path, query string) string {
	if query != "" {
		return path + "?" + query
	}
	return path
}
