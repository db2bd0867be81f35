package objects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListQueryMergesSearchString(t *testing.T) {
	q, err := BuildListQuery(RawQuery{
		Bucket: "media",
		Q:      `type:image size>1kb after:2024-01-01 "holiday"`,
	})
	require.NoError(t, err)

	assert.Equal(t, "holiday", q.Prefix)
	assert.Equal(t, "holiday", q.Criteria.Filename)
	assert.Equal(t, CategoryImage, q.Criteria.Category)
	require.NotNil(t, q.Criteria.MinSize)
	assert.Equal(t, int64(1024), *q.Criteria.MinSize)
	require.NotNil(t, q.Criteria.From)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *q.Criteria.From)
	assert.Equal(t, DefaultPageSize, q.PageSize)
}

func TestBuildListQueryExplicitParamsWin(t *testing.T) {
	q, err := BuildListQuery(RawQuery{
		Bucket:   "media",
		Q:        "type:image holiday",
		Prefix:   "2024/",
		FileType: "documents",
		MaxSize:  "2mb",
		DateTo:   "2024-06-30",
		MaxKeys:  "5000",
	})
	require.NoError(t, err)

	assert.Equal(t, "2024/", q.Prefix)
	assert.Equal(t, "holiday", q.Criteria.Filename)
	assert.Equal(t, CategoryDocument, q.Criteria.Category)
	require.NotNil(t, q.Criteria.MaxSize)
	assert.Equal(t, int64(2<<20), *q.Criteria.MaxSize)
	require.NotNil(t, q.Criteria.To)
	assert.Equal(t, time.Date(2024, 6, 30, 23, 59, 59, 999999999, time.UTC), *q.Criteria.To)
	assert.Equal(t, MaxPageSize, q.PageSize)
}

func TestBuildListQueryIgnoresUnknownTypeInSearch(t *testing.T) {
	q, err := BuildListQuery(RawQuery{Bucket: "media", Q: "type:spreadsheet"})
	require.NoError(t, err)
	assert.Equal(t, Category(""), q.Criteria.Category)
}

func TestBuildListQueryRejectsMalformedParams(t *testing.T) {
	tests := []RawQuery{
		{},
		{Bucket: "b", FileType: "spreadsheet"},
		{Bucket: "b", MinSize: "lots"},
		{Bucket: "b", DateFrom: "yesterday"},
		{Bucket: "b", MaxKeys: "-1"},
		{Bucket: "b", SortBy: "owner"},
	}
	for _, raw := range tests {
		_, err := BuildListQuery(raw)
		assert.Error(t, err, "%+v", raw)
	}
}
