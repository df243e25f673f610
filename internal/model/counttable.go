package model

import (
	"cmp"
	"slices"
)

// Count is a single key/count pair of a CountTable.
type Count struct {
	Key   string
	Count int
}

// CountTable maps a derived key to its number of occurrences.
// Counts are never negative.
type CountTable map[string]int

// NewCountTable creates an empty CountTable.
func NewCountTable() CountTable {
	return make(CountTable)
}

// Inc increments the count for key by one.
func (t CountTable) Inc(key string) {
	t[key]++
}

// Add increments the count for key by n. Non-positive n is ignored.
func (t CountTable) Add(key string, n int) {
	if n <= 0 {
		return
	}
	t[key] += n
}

// Merge adds every count of other into t.
func (t CountTable) Merge(other CountTable) {
	for k, v := range other {
		t.Add(k, v)
	}
}

// Total returns the sum of all counts.
func (t CountTable) Total() int {
	total := 0
	for _, v := range t {
		total += v
	}
	return total
}

// SortedByKey returns the entries ordered alphabetically by key.
func (t CountTable) SortedByKey() []Count {
	out := t.entries()
	slices.SortFunc(out, func(a, b Count) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// SortedByCount returns the entries ordered by count, highest first.
// Equal counts are ordered by key so the output does not depend on
// map iteration or merge order.
func (t CountTable) SortedByCount() []Count {
	out := t.entries()
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

func (t CountTable) entries() []Count {
	out := make([]Count, 0, len(t))
	for k, v := range t {
		out = append(out, Count{Key: k, Count: v})
	}
	return out
}
