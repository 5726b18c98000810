// Package collection provides generic helpers for slices used by the
// in-memory repositories.
//
//	names := collection.Map(items, func(it models.Item) string { return it.Name })
//	cheap := collection.Filter(items, func(it models.Item) bool { return it.Price < 10 })
//	page := collection.Window(cheap, 20, 10)
//
// Every helper returns a non-nil slice so results encode as [] rather than
// null.
package collection

import "sort"

// Map transforms each element of slice s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns elements of s for which fn returns true.
func Filter[T any](s []T, fn func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// Reject returns elements of s for which fn returns false.
func Reject[T any](s []T, fn func(T) bool) []T {
	return Filter(s, func(v T) bool { return !fn(v) })
}

// Unique removes duplicates, keeping the first occurrence.
func Unique[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	out := make([]T, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// SortBy sorts s in place with a stable sort and returns it.
func SortBy[T any](s []T, less func(a, b T) bool) []T {
	sort.SliceStable(s, func(i, j int) bool { return less(s[i], s[j]) })
	return s
}

// Window returns at most limit elements of s after skipping skip of them.
// A limit of zero or less means no limit.
func Window[T any](s []T, skip, limit int64) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(s)) {
		return []T{}
	}
	s = s[skip:]
	if limit > 0 && int64(len(s)) > limit {
		s = s[:limit]
	}
	return s
}
