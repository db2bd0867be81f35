package objects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSort(t *testing.T) {
	base := []Object{
		NewObject("b.txt", 30, day, ""),
		NewObject("a.png", 10, day.Add(2*time.Hour), ""),
		NewObject("c.go", 20, day.Add(time.Hour), ""),
		NewObject("d.txt", 20, day, ""),
	}

	tests := []struct {
		name string
		spec SortSpec
		want []string
	}{
		{name: "none keeps order", spec: SortSpec{}, want: []string{"b.txt", "a.png", "c.go", "d.txt"}},
		{name: "name asc", spec: SortSpec{Field: SortName}, want: []string{"a.png", "b.txt", "c.go", "d.txt"}},
		{name: "size desc is stable", spec: SortSpec{Field: SortSize, Descending: true}, want: []string{"b.txt", "c.go", "d.txt", "a.png"}},
		{name: "last modified", spec: SortSpec{Field: SortLastModified}, want: []string{"b.txt", "d.txt", "c.go", "a.png"}},
		{name: "type", spec: SortSpec{Field: SortType}, want: []string{"c.go", "a.png", "b.txt", "d.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objs := append([]Object(nil), base...)
			Sort(objs, tt.spec)
			assert.Equal(t, tt.want, keys(objs))
		})
	}
}

func TestParseSort(t *testing.T) {
	spec, err := ParseSort("size", "DESC")
	require.NoError(t, err)
	assert.Equal(t, SortSpec{Field: SortSize, Descending: true}, spec)

	_, err = ParseSort("owner", "")
	assert.Error(t, err)
	_, err = ParseSort("name", "sideways")
	assert.Error(t, err)
}
