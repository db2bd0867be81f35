// Package search parses the one-line object search syntax and formats byte sizes.
//
// A query is a whitespace separated list of tokens. Double quotes group words into a
// single token. Recognised operators:
//
//	type:image      category filter
//	size>1mb        minimum size
//	size<20kb       maximum size
//	after:2024-01-01
//	before:2024-12-31T00:00:00Z
//
// Anything else is a free term used both as key prefix and filename substring.
// Malformed operator values are dropped silently.
package search

import (
	"net/url"
	"strings"
	"time"
	"unicode"
)

// Filters is the structured form of a query. Size values keep the text the user
// typed; ParseSize converts them to bytes.
type Filters struct {
	Prefix   string
	Filename string
	Type     string
	MinSize  string
	MaxSize  string
	After    string
	Before   string
}

// IsZero reports whether no filter is set.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Values renders the filters as listing query parameters.
func (f Filters) Values() url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set("prefix", f.Prefix)
	set("filename", f.Filename)
	set("fileType", f.Type)
	set("minSize", f.MinSize)
	set("maxSize", f.MaxSize)
	set("dateFrom", f.After)
	set("dateTo", f.Before)
	return values
}

// Tokenize splits q on whitespace, keeping double-quoted runs together. Quotes are
// removed from the resulting tokens and empty tokens are skipped.
func Tokenize(q string) []string {
	var (
		tokens  []string
		current strings.Builder
		quoted  bool
		started bool
	)
	flush := func() {
		if started && current.Len() > 0 {
			tokens = append(tokens, current.String())
		}
		current.Reset()
		started = false
	}

	for _, r := range q {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case unicode.IsSpace(r) && !quoted:
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	flush()
	return tokens
}

// Parse converts a query into Filters.
func Parse(q string) Filters {
	var (
		filters Filters
		terms   []string
	)

	for _, token := range Tokenize(q) {
		lower := strings.ToLower(token)
		switch {
		case strings.HasPrefix(lower, "type:"):
			if value := strings.TrimSpace(lower[len("type:"):]); value != "" {
				filters.Type = value
			}
		case strings.HasPrefix(lower, "size>"):
			if value := sizeOperand(token[len("size>"):]); value != "" {
				filters.MinSize = value
			}
		case strings.HasPrefix(lower, "size<"):
			if value := sizeOperand(token[len("size<"):]); value != "" {
				filters.MaxSize = value
			}
		case strings.HasPrefix(lower, "after:"):
			if value := token[len("after:"):]; validDate(value) {
				filters.After = value
			}
		case strings.HasPrefix(lower, "before:"):
			if value := token[len("before:"):]; validDate(value) {
				filters.Before = value
			}
		default:
			terms = append(terms, token)
		}
	}

	if len(terms) > 0 {
		term := strings.Join(terms, " ")
		filters.Prefix = term
		filters.Filename = term
	}
	return filters
}

func sizeOperand(raw string) string {
	raw = strings.TrimPrefix(raw, "=")
	if _, ok := ParseSizeString(raw); !ok {
		return ""
	}
	return raw
}

func validDate(value string) bool {
	_, ok := ParseDate(value)
	return ok
}

// ParseDate accepts YYYY-MM-DD (midnight UTC) or RFC 3339.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	return time.Time{}, false
}
