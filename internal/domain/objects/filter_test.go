package objects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func syntheticObjects() []Object {
	return []Object{
		NewObject("photos/cat.jpg", 2048, day, `"a"`),
		NewObject("photos/dog.PNG", 50, day.Add(24*time.Hour), `"b"`),
		NewObject("docs/report.pdf", 10_000, day.Add(48*time.Hour), `"c"`),
		NewObject("src/main.go", 900, day, `"d"`),
		NewObject("backup.tar.gz", 5_000_000, day, `"e"`),
		NewObject("music/song.mp3", 3_000, day, `"f"`),
		NewObject("README", 10, day, `"g"`),
	}
}

func keys(objs []Object) []string {
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		out = append(out, o.Key)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func TestCategoryFilterImages(t *testing.T) {
	category, ok := ParseCategory("images")
	assert.True(t, ok)

	got := Filter(syntheticObjects(), Criteria{Category: category})
	assert.Equal(t, []string{"photos/cat.jpg", "photos/dog.PNG"}, keys(got))
	for _, o := range got {
		assert.Contains(t, Extensions(CategoryImage), Extension(o.Key))
	}
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, CategoryArchive, CategoryOf("backup.tar.gz"))
	assert.Equal(t, CategoryCode, CategoryOf("src/main.go"))
	assert.Equal(t, CategoryOther, CategoryOf("README"))
	assert.Equal(t, CategoryOther, CategoryOf("folder.jpg/"))
}

func TestParseCategoryAliases(t *testing.T) {
	for input, want := range map[string]Category{
		"image": CategoryImage, "Documents": CategoryDocument, "video": CategoryMedia,
		"audio": CategoryMedia, "archives": CategoryArchive, "code": CategoryCode,
	} {
		got, ok := ParseCategory(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}
	_, ok := ParseCategory("spreadsheets")
	assert.False(t, ok)
}

func TestSizeFiltersComposeCommutatively(t *testing.T) {
	objs := syntheticObjects()
	lo, hi := ptr(int64(100)), ptr(int64(10_000))

	minThenMax := Filter(Filter(objs, Criteria{MinSize: lo}), Criteria{MaxSize: hi})
	maxThenMin := Filter(Filter(objs, Criteria{MaxSize: hi}), Criteria{MinSize: lo})
	rangeOnce := Filter(objs, Criteria{MinSize: lo, MaxSize: hi})
	predicate := Filter(objs, Criteria{})
	predicate = filterBy(predicate, SizeBetween(lo, hi))

	assert.Equal(t, keys(minThenMax), keys(maxThenMin))
	assert.Equal(t, keys(minThenMax), keys(rangeOnce))
	assert.Equal(t, keys(rangeOnce), keys(predicate))
	assert.Equal(t, []string{"photos/cat.jpg", "docs/report.pdf", "src/main.go", "music/song.mp3"}, keys(rangeOnce))
}

func filterBy(in []Object, p Predicate) []Object {
	var out []Object
	for _, o := range in {
		if p(o) {
			out = append(out, o)
		}
	}
	return out
}

func TestFilenameAndDateFilters(t *testing.T) {
	objs := syntheticObjects()

	got := Filter(objs, Criteria{Filename: "DOG"})
	assert.Equal(t, []string{"photos/dog.PNG"}, keys(got))

	from := day.Add(time.Hour)
	got = Filter(objs, Criteria{From: &from})
	assert.Equal(t, []string{"photos/dog.PNG", "docs/report.pdf"}, keys(got))

	to := day
	got = Filter(objs, Criteria{To: &to, Category: CategoryCode})
	assert.Equal(t, []string{"src/main.go"}, keys(got))
}

func TestEmptyCriteriaMatchesEverything(t *testing.T) {
	assert.True(t, Criteria{}.IsZero())
	assert.Len(t, Filter(syntheticObjects(), Criteria{}), len(syntheticObjects()))
}

func TestNewObjectDerivedFields(t *testing.T) {
	o := NewObject("a/b/report.pdf", 1024, day, `"abc123"`)
	assert.Equal(t, "report.pdf", o.Name)
	assert.Equal(t, "abc123", o.ETag)
	assert.Equal(t, "1.00 KB", o.SizeHuman)
	assert.Equal(t, CategoryDocument, o.Category)

	marker := NewObject("a/b/", 0, day, "")
	assert.Equal(t, "b", marker.Name)
	assert.True(t, marker.IsFolderMarker())
}
