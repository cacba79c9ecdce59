// Package runlength implements run-length compressed sequences.
//
// A Record is a list of (count, value) runs. Records built through Append
// or AppendRun never hold two adjacent runs with equal values, and the
// expanded length is the sum of the counts.
//
// The text form used by the decks writes a run of one as "v" and longer
// runs as "n*v".
package runlength

import (
	"fmt"
	"strconv"
	"strings"
)

// Run is a value repeated Count times.
type Run[T comparable] struct {
	Count int `json:"count"`
	Value T   `json:"value"`
}

// Record is a run-length compressed sequence.
type Record[T comparable] []Run[T]

// Encode compresses a sequence.
func Encode[T comparable](values []T) Record[T] {
	var rec Record[T]
	for _, v := range values {
		rec.Append(v)
	}
	return rec
}

// Append adds one value, extending the last run when the value matches.
func (r *Record[T]) Append(v T) {
	r.AppendRun(1, v)
}

// AppendRun adds count copies of v, merging with the last run when the
// value matches. Non-positive counts are ignored.
func (r *Record[T]) AppendRun(count int, v T) {
	if count <= 0 {
		return
	}
	rec := *r
	if n := len(rec); n > 0 && rec[n-1].Value == v {
		rec[n-1].Count += count
		return
	}
	*r = append(rec, Run[T]{Count: count, Value: v})
}

// Merge returns a copy with adjacent equal-valued runs combined and empty
// runs dropped.
func (r Record[T]) Merge() Record[T] {
	var out Record[T]
	for _, run := range r {
		out.AppendRun(run.Count, run.Value)
	}
	return out
}

// Len returns the expanded length.
func (r Record[T]) Len() int {
	n := 0
	for _, run := range r {
		n += run.Count
	}
	return n
}

// Expand returns the uncompressed sequence.
func (r Record[T]) Expand() []T {
	out := make([]T, 0, r.Len())
	for _, run := range r {
		for i := 0; i < run.Count; i++ {
			out = append(out, run.Value)
		}
	}
	return out
}

// Values returns the run values in order.
func (r Record[T]) Values() []T {
	out := make([]T, len(r))
	for i, run := range r {
		out[i] = run.Value
	}
	return out
}

// Tokens formats each run with format, as "v" or "n*v".
func (r Record[T]) Tokens(format func(T) string) []string {
	out := make([]string, len(r))
	for i, run := range r {
		if run.Count == 1 {
			out[i] = format(run.Value)
		} else {
			out[i] = strconv.Itoa(run.Count) + "*" + format(run.Value)
		}
	}
	return out
}

// Join formats the record as space separated tokens.
func (r Record[T]) Join(format func(T) string) string {
	return strings.Join(r.Tokens(format), " ")
}

// Parse decodes "v" and "n*v" tokens with parse. Adjacent equal runs are
// merged.
func Parse[T comparable](tokens []string, parse func(string) (T, error)) (Record[T], error) {
	var rec Record[T]
	for _, tok := range tokens {
		count := 1
		valueText := tok
		if i := strings.IndexByte(tok, '*'); i >= 0 {
			n, err := strconv.Atoi(tok[:i])
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid repeat count in %q", tok)
			}
			count = n
			valueText = tok[i+1:]
		}
		v, err := parse(valueText)
		if err != nil {
			return nil, fmt.Errorf("invalid value in %q: %w", tok, err)
		}
		rec.AppendRun(count, v)
	}
	return rec, nil
}

// ParseInts decodes integer tokens such as "3" or "4*7".
func ParseInts(tokens []string) (Record[int], error) {
	return Parse(tokens, strconv.Atoi)
}

// FormatInt is the token formatter for integer records.
func FormatInt(v int) string {
	return strconv.Itoa(v)
}

// ParseStrings decodes tokens whose values are kept verbatim, such as
// "2*1.0000".
func ParseStrings(tokens []string) (Record[string], error) {
	return Parse(tokens, func(s string) (string, error) {
		if s == "" {
			return "", fmt.Errorf("empty value")
		}
		return s, nil
	})
}
