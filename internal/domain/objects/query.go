package objects

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"r2-dashboard/internal/domain/search"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// RawQuery carries listing parameters as received from a client.
type RawQuery struct {
	Bucket            string
	Q                 string
	Prefix            string
	Delimiter         string
	Filename          string
	FileType          string
	MinSize           string
	MaxSize           string
	DateFrom          string
	DateTo            string
	ContinuationToken string
	MaxKeys           string
	SortBy            string
	SortOrder         string
}

// ListQuery is a validated listing request.
type ListQuery struct {
	Bucket            string
	Prefix            string
	Delimiter         string
	ContinuationToken string
	PageSize          int
	Criteria          Criteria
	Sort              SortSpec
}

// BuildListQuery merges the search string q with the explicit parameters, which win
// field by field. Malformed operators inside q are ignored, malformed explicit
// parameters are reported.
func BuildListQuery(raw RawQuery) (ListQuery, error) {
	parsed := search.Parse(raw.Q)
	merged := search.Filters{
		Prefix:   firstNonEmpty(raw.Prefix, parsed.Prefix),
		Filename: firstNonEmpty(raw.Filename, parsed.Filename),
		Type:     firstNonEmpty(raw.FileType, parsed.Type),
		MinSize:  firstNonEmpty(raw.MinSize, parsed.MinSize),
		MaxSize:  firstNonEmpty(raw.MaxSize, parsed.MaxSize),
		After:    firstNonEmpty(raw.DateFrom, parsed.After),
		Before:   firstNonEmpty(raw.DateTo, parsed.Before),
	}

	query := ListQuery{
		Bucket:            strings.TrimSpace(raw.Bucket),
		Prefix:            merged.Prefix,
		Delimiter:         raw.Delimiter,
		ContinuationToken: raw.ContinuationToken,
		PageSize:          DefaultPageSize,
		Criteria:          Criteria{Filename: merged.Filename},
	}
	if query.Bucket == "" {
		return query, fmt.Errorf("bucket is required")
	}

	if raw.MaxKeys != "" {
		n, err := strconv.Atoi(raw.MaxKeys)
		if err != nil || n <= 0 {
			return query, fmt.Errorf("maxKeys must be a positive integer")
		}
		query.PageSize = min(n, MaxPageSize)
	}

	if merged.Type != "" {
		category, ok := ParseCategory(merged.Type)
		switch {
		case ok:
			query.Criteria.Category = category
		case raw.FileType != "":
			return query, fmt.Errorf("unknown fileType %q", raw.FileType)
		}
	}

	var err error
	if query.Criteria.MinSize, err = sizeBound("minSize", merged.MinSize); err != nil {
		return query, err
	}
	if query.Criteria.MaxSize, err = sizeBound("maxSize", merged.MaxSize); err != nil {
		return query, err
	}
	if query.Criteria.From, err = dateBound("dateFrom", merged.After, false); err != nil {
		return query, err
	}
	if query.Criteria.To, err = dateBound("dateTo", merged.Before, true); err != nil {
		return query, err
	}

	if query.Sort, err = ParseSort(raw.SortBy, raw.SortOrder); err != nil {
		return query, err
	}
	return query, nil
}

func sizeBound(name, value string) (*int64, error) {
	if value == "" {
		return nil, nil
	}
	n, ok := search.ParseSize(value)
	if !ok {
		return nil, fmt.Errorf("%s %q is not a valid size", name, value)
	}
	return &n, nil
}

// dateBound parses a date bound. A date-only upper bound covers the whole day.
func dateBound(name, value string, upper bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, ok := search.ParseDate(value)
	if !ok {
		return nil, fmt.Errorf("%s %q is not a valid date", name, value)
	}
	if upper && len(strings.TrimSpace(value)) == len(time.DateOnly) {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
