package analyzer

import "sort"

// groupCount groups records by a derived key and counts group sizes.
// Map iteration order is unspecified; use sortedKeys for deterministic output.
func groupCount[T any](records []T, key func(T) string) map[string]int {
	counts := make(map[string]int, len(records))
	for _, r := range records {
		counts[key(r)]++
	}
	return counts
}

// average returns the arithmetic mean of the derived values, or 0 for an
// empty input so detectors stay total functions.
func average[T any](records []T, value func(T) float64) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range records {
		sum += value(r)
	}
	return sum / float64(len(records))
}

// maxOf returns the maximum derived value. Undefined on empty input;
// callers must check that at least one record passed their filter.
func maxOf[T any](records []T, value func(T) float64) float64 {
	max := value(records[0])
	for _, r := range records[1:] {
		if v := value(r); v > max {
			max = v
		}
	}
	return max
}

// sortedKeys returns the map keys in ascending order. Detectors iterate
// groups through this so repeated runs over the same batch produce
// identical output.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// topCounts flattens a count map into name/count pairs ordered by count
// descending, ties broken by name, truncated to limit.
func topCounts(m map[string]int, limit int) []pair {
	pairs := make([]pair, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, pair{k, v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].name < pairs[j].name
	})
	if len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

type pair struct {
	name  string
	count int
}
