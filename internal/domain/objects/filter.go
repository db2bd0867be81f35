package objects

import (
	"strings"
	"time"
)

// Predicate decides whether an object belongs to a result page.
type Predicate func(Object) bool

// Criteria are the filters the storage API cannot evaluate itself. Each set field
// contributes one independent predicate.
type Criteria struct {
	Filename string
	Category Category
	MinSize  *int64
	MaxSize  *int64
	From     *time.Time
	To       *time.Time
}

// IsZero reports whether no predicate is active.
func (c Criteria) IsZero() bool {
	return len(c.Predicates()) == 0
}

// Predicates returns the active predicates of c.
func (c Criteria) Predicates() []Predicate {
	var predicates []Predicate
	if c.Filename != "" {
		predicates = append(predicates, FilenameContains(c.Filename))
	}
	if c.Category != "" {
		predicates = append(predicates, InCategory(c.Category))
	}
	if c.MinSize != nil || c.MaxSize != nil {
		predicates = append(predicates, SizeBetween(c.MinSize, c.MaxSize))
	}
	if c.From != nil || c.To != nil {
		predicates = append(predicates, ModifiedBetween(c.From, c.To))
	}
	return predicates
}

// Matches reports whether o satisfies every predicate.
func (c Criteria) Matches(o Object) bool {
	return All(c.Predicates()...)(o)
}

// All combines predicates with logical AND.
func All(predicates ...Predicate) Predicate {
	return func(o Object) bool {
		for _, p := range predicates {
			if !p(o) {
				return false
			}
		}
		return true
	}
}

// FilenameContains matches objects whose key contains term, case-insensitively.
// The full key is used so folder-style terms such as "archive/2024/" match too.
func FilenameContains(term string) Predicate {
	term = strings.ToLower(term)
	return func(o Object) bool {
		return strings.Contains(strings.ToLower(o.Key), term)
	}
}

// InCategory matches objects whose extension belongs to category.
func InCategory(category Category) Predicate {
	return func(o Object) bool {
		return CategoryOf(o.Key) == category
	}
}

// SizeBetween matches sizes in the inclusive range [lo, hi]; nil bounds are open.
func SizeBetween(lo, hi *int64) Predicate {
	return func(o Object) bool {
		if lo != nil && o.Size < *lo {
			return false
		}
		if hi != nil && o.Size > *hi {
			return false
		}
		return true
	}
}

// ModifiedBetween matches last-modified times in the inclusive range [from, to].
func ModifiedBetween(from, to *time.Time) Predicate {
	return func(o Object) bool {
		if from != nil && o.LastModified.Before(*from) {
			return false
		}
		if to != nil && o.LastModified.After(*to) {
			return false
		}
		return true
	}
}

// Filter returns the objects of in that satisfy c, in order.
func Filter(in []Object, c Criteria) []Object {
	match := c.Matches
	out := make([]Object, 0, len(in))
	for _, o := range in {
		if match(o) {
			out = append(out, o)
		}
	}
	return out
}
