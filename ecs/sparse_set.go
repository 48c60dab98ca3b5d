package ecs

import "sort"

// SparseSet is a dense/sparse bidirectional map from a compact unsigned
// key (an entity index, the generation already stripped by the caller)
// to a packed position. It gives O(1) contains/position/insert/remove and
// cache-friendly dense iteration, at the cost of a sparse array that may
// grow larger than the number of live keys.
type SparseSet struct {
	packed []uint32
	sparse []uint32
}

// Contains reports whether k is currently present in the set. The triple
// check tolerates the zero-valued (uninitialized) entries Go slices start
// with — no sentinel fill is required.
func (s *SparseSet) Contains(k uint32) bool {
	if int(k) >= len(s.sparse) {
		return false
	}
	pos := s.sparse[k]
	return int(pos) < len(s.packed) && s.packed[pos] == k
}

// Position returns the dense index of k. Undefined if !Contains(k).
func (s *SparseSet) Position(k uint32) int {
	return int(s.sparse[k])
}

// Push inserts k. Requires !Contains(k).
func (s *SparseSet) Push(k uint32) {
	if int(k) >= len(s.sparse) {
		grown := make([]uint32, int(k)+1)
		copy(grown, s.sparse)
		s.sparse = grown
	}
	s.sparse[k] = uint32(len(s.packed))
	s.packed = append(s.packed, k)
}

// Pop removes k via swap-with-last. Requires Contains(k).
func (s *SparseSet) Pop(k uint32) {
	last := len(s.packed) - 1
	lastKey := s.packed[last]
	pos := s.sparse[k]
	s.packed[pos] = lastKey
	s.sparse[lastKey] = pos
	s.packed = s.packed[:last]
}

// Len returns the number of live keys.
func (s *SparseSet) Len() int { return len(s.packed) }

// Data returns the dense packed array, in insertion-minus-removals order.
func (s *SparseSet) Data() []uint32 { return s.packed }

// Sort reorders the dense array by less, rewriting the sparse map to match.
func (s *SparseSet) Sort(less func(a, b uint32) bool) {
	sort.Slice(s.packed, func(i, j int) bool { return less(s.packed[i], s.packed[j]) })
	for i, k := range s.packed {
		s.sparse[k] = uint32(i)
	}
}
