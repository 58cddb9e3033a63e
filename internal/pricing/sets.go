package pricing

import "sort"

// NormalizeIDs returns ids as a sorted set. The result is never nil so it
// serializes as an empty JSON array.
func NormalizeIDs(ids []int) []int {
	out := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Difference returns the members of a that are not in b, sorted.
func Difference(a, b []int) []int {
	exclude := toSet(b)
	out := make([]int, 0, len(a))
	for _, id := range NormalizeIDs(a) {
		if _, ok := exclude[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// Union returns the members of a and b, sorted.
func Union(a, b []int) []int {
	merged := make([]int, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	return NormalizeIDs(merged)
}

func toSet(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
