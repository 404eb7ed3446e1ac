// Package listing holds the generic collection transforms shared by every
// list endpoint: predicate filtering, single-key sorting and 1-indexed
// pagination. The transforms operate on fetched slices, never on the
// database query itself, so every screen gets identical semantics.
package listing

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// All is the wildcard filter sentinel: a predicate built with it matches
// every record.
const All = "all"

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Key extracts the sort value from a record. Supported value kinds:
// strings, time.Time / *time.Time, and the native numeric types.
type Key[T any] func(T) interface{}

// Predicate reports whether a record passes one filter field.
type Predicate[T any] func(T) bool

// Sort orders records by the given key without mutating the input.
// nil values and nil *time.Time sort last regardless of direction; string
// values compare case-folded; times compare by instant. The sort is stable.
func Sort[T any](records []T, key Key[T], dir Direction) []T {
	out := make([]T, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		a, aNull := normalize(key(out[i]))
		b, bNull := normalize(key(out[j]))

		// Missing values go last whichever way the screen sorts.
		if aNull || bNull {
			return !aNull && bNull
		}

		cmp := compareValues(a, b)
		if dir == Descending {
			return cmp > 0
		}
		return cmp < 0
	})

	return out
}

// Paginate returns the 1-indexed page slice. Out-of-range pages and
// non-positive page sizes yield an empty slice, never an error.
func Paginate[T any](records []T, page, pageSize int) []T {
	if page < 1 || pageSize < 1 {
		return []T{}
	}

	start := (page - 1) * pageSize
	if start >= len(records) {
		return []T{}
	}

	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}

	return records[start:end]
}

// Filter keeps the records that satisfy every predicate.
func Filter[T any](records []T, predicates ...Predicate[T]) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		ok := true
		for _, p := range predicates {
			if !p(r) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

// Exact matches when the field equals want. The All sentinel and the empty
// string match everything.
func Exact[T any](key func(T) string, want string) Predicate[T] {
	return func(r T) bool {
		if want == "" || strings.EqualFold(want, All) {
			return true
		}
		return key(r) == want
	}
}

// Contains matches on a case-insensitive substring. The All sentinel and
// the empty string match everything.
func Contains[T any](key func(T) string, want string) Predicate[T] {
	lowered := strings.ToLower(want)
	return func(r T) bool {
		if want == "" || strings.EqualFold(want, All) {
			return true
		}
		return strings.Contains(strings.ToLower(key(r)), lowered)
	}
}

func normalize(v interface{}) (interface{}, bool) {
	if v == nil {
		return nil, true
	}
	if p, ok := v.(*time.Time); ok {
		if p == nil {
			return nil, true
		}
		return *p, false
	}
	return v, false
}

func compareValues(a, b interface{}) int {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			break
		}
		if c := strings.Compare(strings.ToLower(av), strings.ToLower(bv)); c != 0 {
			return c
		}
		return strings.Compare(av, bv)
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			break
		}
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		default:
			return 0
		}
	}

	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
