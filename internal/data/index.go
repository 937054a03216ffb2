package data

import (
	"cmp"
	"slices"
	"sort"
)

// RangeIndex is an immutable collection of range records sorted by lower
// bound. Ranges may overlap, so a query can match any number of records.
type RangeIndex struct {
	records []RangeRecord
	// maxUpper[i] is the highest upper bound among records[0..i].
	maxUpper []uint32
}

// BuildIndex stable-sorts a copy of records by lower bound. Records with equal
// lower bounds keep their input order.
func BuildIndex(records []RangeRecord) *RangeIndex {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b RangeRecord) int {
		return cmp.Compare(a.Lower, b.Lower)
	})

	maxUpper := make([]uint32, len(sorted))
	var hi uint32
	for i, r := range sorted {
		hi = max(hi, r.Upper)
		maxUpper[i] = hi
	}

	return &RangeIndex{records: sorted, maxUpper: maxUpper}
}

// Query returns every record with Lower <= id <= Upper in index order.
func (x *RangeIndex) Query(id uint32) []RangeRecord {
	// records[:end] all start at or below id
	end := sort.Search(len(x.records), func(i int) bool {
		return x.records[i].Lower > id
	})
	// no record before start reaches id
	start := sort.Search(end, func(i int) bool {
		return x.maxUpper[i] >= id
	})

	var matches []RangeRecord
	for _, r := range x.records[start:end] {
		if r.Upper >= id {
			matches = append(matches, r)
		}
	}
	return matches
}

// Len returns the number of indexed records.
func (x *RangeIndex) Len() int {
	return len(x.records)
}

// Span returns the lowest lower bound and highest upper bound in the index.
// ok is false for an empty index.
func (x *RangeIndex) Span() (lower, upper uint32, ok bool) {
	if len(x.records) == 0 {
		return 0, 0, false
	}
	return x.records[0].Lower, x.maxUpper[len(x.maxUpper)-1], true
}
