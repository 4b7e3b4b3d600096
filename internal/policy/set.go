package policy

import "slices"

// Set is an unordered collection of kind identifiers.
type Set[K ~string] map[K]struct{}

// NewSet builds a set from items; duplicates collapse.
func NewSet[K ~string](items ...K) Set[K] {
	s := make(Set[K], len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set[K]) Has(k K) bool {
	_, ok := s[k]
	return ok
}

// Union returns a new set holding the members of s and other.
func (s Set[K]) Union(other Set[K]) Set[K] {
	out := make(Set[K], len(s)+len(other))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range other {
		out[k] = struct{}{}
	}
	return out
}

// Without returns a new set holding the members of s not present in other.
func (s Set[K]) Without(other Set[K]) Set[K] {
	out := make(Set[K], len(s))
	for k := range s {
		if !other.Has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s Set[K]) Sorted() []K {
	out := make([]K, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
