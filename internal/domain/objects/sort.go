package objects

import (
	"fmt"
	"sort"
	"strings"
)

// SortField names a sortable object attribute.
type SortField string

const (
	SortNone         SortField = ""
	SortName         SortField = "name"
	SortSize         SortField = "size"
	SortLastModified SortField = "lastModified"
	SortType         SortField = "type"
)

// SortSpec orders a page of objects.
type SortSpec struct {
	Field      SortField
	Descending bool
}

// ParseSort validates the sortBy and sortOrder parameters.
func ParseSort(sortBy, sortOrder string) (SortSpec, error) {
	var spec SortSpec
	switch SortField(sortBy) {
	case SortNone, SortName, SortSize, SortLastModified, SortType:
		spec.Field = SortField(sortBy)
	default:
		return spec, fmt.Errorf("unsupported sortBy %q", sortBy)
	}

	switch strings.ToLower(sortOrder) {
	case "", "asc":
	case "desc":
		spec.Descending = true
	default:
		return spec, fmt.Errorf("unsupported sortOrder %q", sortOrder)
	}
	return spec, nil
}

// Sort orders objects in place. Equal elements keep their listing order.
func Sort(objects []Object, spec SortSpec) {
	less := lessFunc(spec.Field)
	if less == nil {
		return
	}
	sort.SliceStable(objects, func(i, j int) bool {
		if spec.Descending {
			return less(objects[j], objects[i])
		}
		return less(objects[i], objects[j])
	})
}

func lessFunc(field SortField) func(a, b Object) bool {
	switch field {
	case SortName:
		return func(a, b Object) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortSize:
		return func(a, b Object) bool { return a.Size < b.Size }
	case SortLastModified:
		return func(a, b Object) bool { return a.LastModified.Before(b.LastModified) }
	case SortType:
		return func(a, b Object) bool {
			if ea, eb := Extension(a.Key), Extension(b.Key); ea != eb {
				return ea < eb
			}
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	default:
		return nil
	}
}
