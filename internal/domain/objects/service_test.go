package objects

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"r2-dashboard/internal/config"
	"r2-dashboard/internal/utils/platformerrors"
)

func newTestService(storage Storage, maxPages int) *Service {
	cfg := &config.Config{ListMaxUpstreamPages: maxPages, MaxUploadBytes: 1 << 20, PresignTTL: time.Minute}
	return NewService(cfg, storage, zerolog.Nop())
}

// sparseBucket holds 30 text files with a single image at position 25.
func sparseBucket() *memStorage {
	var objs []Object
	for i := 0; i < 30; i++ {
		key := fmt.Sprintf("logs/%02d.txt", i)
		if i == 25 {
			key = "logs/25.png"
		}
		objs = append(objs, NewObject(key, int64(100+i), day, ""))
	}
	return newMemStorage(objs...)
}

func TestListShortPagesWhenSingleUpstreamPage(t *testing.T) {
	storage := sparseBucket()
	svc := newTestService(storage, 1)
	ctx := context.Background()

	q := ListQuery{Bucket: "b", Prefix: "logs/", PageSize: 10, Criteria: Criteria{Category: CategoryImage}}

	first, err := svc.List(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, first.Objects)
	assert.Equal(t, 10, first.Scanned)
	assert.True(t, first.IsTruncated, "more matching results may exist upstream")
	assert.NotEmpty(t, first.NextContinuationToken)

	var found []string
	token := first.NextContinuationToken
	for token != "" {
		q.ContinuationToken = token
		page, err := svc.List(ctx, q)
		require.NoError(t, err)
		found = append(found, keys(page.Objects)...)
		token = page.NextContinuationToken
	}
	assert.Equal(t, []string{"logs/25.png"}, found)
	assert.Equal(t, 3, storage.listCalls)
}

func TestListFillsPageAcrossUpstreamPages(t *testing.T) {
	storage := sparseBucket()
	svc := newTestService(storage, 5)

	page, err := svc.List(context.Background(), ListQuery{
		Bucket: "b", Prefix: "logs/", PageSize: 10, Criteria: Criteria{Category: CategoryImage},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"logs/25.png"}, keys(page.Objects))
	assert.Equal(t, 30, page.Scanned)
	assert.Equal(t, 1, page.Count)
	assert.False(t, page.IsTruncated)
	assert.Empty(t, page.NextContinuationToken)
}

func TestListStopsWhenPageIsFull(t *testing.T) {
	storage := sparseBucket()
	svc := newTestService(storage, 5)

	page, err := svc.List(context.Background(), ListQuery{
		Bucket: "b", Prefix: "logs/", PageSize: 10, Criteria: Criteria{Category: CategoryDocument},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, page.Count)
	assert.Equal(t, 1, storage.listCalls)
	assert.True(t, page.IsTruncated)
	assert.Equal(t, "10", page.NextContinuationToken)
}

func TestListRespectsUpstreamPageCap(t *testing.T) {
	storage := sparseBucket()
	svc := newTestService(storage, 2)

	page, err := svc.List(context.Background(), ListQuery{
		Bucket: "b", PageSize: 10, Criteria: Criteria{Category: CategoryImage},
	})
	require.NoError(t, err)
	assert.Empty(t, page.Objects)
	assert.Equal(t, 2, storage.listCalls)
	assert.Equal(t, "20", page.NextContinuationToken)
}

func TestListSortsPage(t *testing.T) {
	storage := newMemStorage(
		NewObject("a.txt", 3, day, ""),
		NewObject("b.txt", 1, day, ""),
		NewObject("c.txt", 2, day, ""),
	)
	svc := newTestService(storage, 1)

	page, err := svc.List(context.Background(), ListQuery{Bucket: "b", Sort: SortSpec{Field: SortSize}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt", "c.txt", "a.txt"}, keys(page.Objects))
}

func TestListSkipsPrefixFolderMarker(t *testing.T) {
	storage := newMemStorage(
		NewObject("docs/", 0, day, ""),
		NewObject("docs/a.pdf", 3, day, ""),
	)
	svc := newTestService(storage, 1)

	page, err := svc.List(context.Background(), ListQuery{Bucket: "b", Prefix: "docs/"})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a.pdf"}, keys(page.Objects))
	assert.Equal(t, 2, page.Scanned)
}

func TestListMatchesFolderStyleSearchTerms(t *testing.T) {
	storage := newMemStorage(
		NewObject("archive/2024/report.pdf", 10, day, ""),
		NewObject("archive/2024/notes.txt", 20, day, ""),
		NewObject("inbox/archive.zip", 30, day, ""),
	)
	svc := newTestService(storage, 1)

	tests := []struct {
		q    string
		want []string
	}{
		{"archive", []string{"archive/2024/notes.txt", "archive/2024/report.pdf"}},
		{"archive/2024/", []string{"archive/2024/notes.txt", "archive/2024/report.pdf"}},
		{"archive/2024/rep", []string{"archive/2024/report.pdf"}},
		{"ARCHIVE/2024/REP", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			q, err := BuildListQuery(RawQuery{Bucket: "b", Q: tt.q})
			require.NoError(t, err)
			page, err := svc.List(context.Background(), q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys(page.Objects))
		})
	}
}

func TestUploadKey(t *testing.T) {
	assert.Equal(t, "report.pdf", UploadKey("", "report.pdf"))
	assert.Equal(t, "archive/2024/report.pdf", UploadKey("archive/2024/", "report.pdf"))
	assert.Equal(t, "archive/2024/renamed.pdf", UploadKey("archive/2024/renamed.pdf", "report.pdf"))
	assert.Equal(t, "x/report.pdf", UploadKey("/x/", `C:\tmp\report.pdf`))
}

func TestUploadListDeleteScenario(t *testing.T) {
	storage := newMemStorage()
	svc := newTestService(storage, 1)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{
		Bucket: "b", Path: "archive/2024/", Filename: "report.pdf",
		Size: 8, Body: strings.NewReader("%PDF-1.4"),
	})
	require.NoError(t, err)

	q := ListQuery{Bucket: "b", Prefix: "archive/2024/"}
	page, err := svc.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"archive/2024/report.pdf"}, keys(page.Objects))
	assert.Equal(t, "application/pdf", storage.putTypes["archive/2024/report.pdf"])

	require.NoError(t, svc.Delete(ctx, "b", "archive/2024/report.pdf"))
	page, err = svc.List(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, page.Objects)
}

func TestUploadKeepsDeclaredContentType(t *testing.T) {
	storage := newMemStorage()
	svc := newTestService(storage, 1)

	_, err := svc.Upload(context.Background(), UploadInput{
		Bucket: "b", Filename: "data.bin", ContentType: "application/x-custom", Size: 3, Body: strings.NewReader("abc"),
	})
	require.NoError(t, err)
	assert.Equal(t, "application/x-custom", storage.putTypes["data.bin"])
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc := newTestService(newMemStorage(), 1)

	_, err := svc.Upload(context.Background(), UploadInput{
		Bucket: "b", Filename: "big.bin", Size: 2 << 20, Body: strings.NewReader(""),
	})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeTooLarge))
}

func TestDeleteManyValidatesAndDeduplicates(t *testing.T) {
	storage := newMemStorage(NewObject("a", 1, day, ""), NewObject("b", 1, day, ""))
	svc := newTestService(storage, 1)
	ctx := context.Background()

	_, err := svc.DeleteMany(ctx, "bucket", []string{"", ""})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	result, err := svc.DeleteMany(ctx, "bucket", []string{"a", "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, result.Deleted)
}

func TestPresign(t *testing.T) {
	svc := newTestService(newMemStorage(), 1)

	url, err := svc.Presign(context.Background(), "b", "k.txt")
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/b/k.txt", url.URL)
	assert.WithinDuration(t, time.Now().Add(time.Minute), url.ExpiresAt, 5*time.Second)

	_, err = svc.Presign(context.Background(), "b", "")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}
