package family

import (
	"math"
	"sort"
)

// Set is a set of persons keyed by identity.
type Set map[*Person]struct{}

// NewSet returns a set holding the given non-nil persons.
func NewSet(persons ...*Person) Set {
	s := make(Set, len(persons))
	for _, p := range persons {
		s.add(p)
	}
	return s
}

func (s Set) add(p *Person) {
	if p != nil {
		s[p] = struct{}{}
	}
}

func (s Set) remove(p *Person) {
	delete(s, p)
}

func (s Set) clone() Set {
	c := make(Set, len(s))
	for p := range s {
		c[p] = struct{}{}
	}
	return c
}

// Contains reports whether p is in the set.
func (s Set) Contains(p *Person) bool {
	_, ok := s[p]
	return ok
}

// Persons returns the members sorted by name.
func (s Set) Persons() []*Person {
	out := make([]*Person, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Names returns the member names, sorted.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for p := range s {
		names = append(names, p.name)
	}
	sort.Strings(names)
	return names
}

// Parents returns the mother and father that are set.
func (p *Person) Parents() Set {
	return NewSet(p.mother, p.father)
}

// Ancestors returns every ancestor whose generational distance from p lies in
// [minDepth, maxDepth]. Parents are at distance 1.
func (p *Person) Ancestors(minDepth, maxDepth int) (Set, error) {
	depths, err := p.AncestorDepths(minDepth, maxDepth)
	if err != nil {
		return nil, err
	}
	out := make(Set, len(depths))
	for a := range depths {
		out[a] = struct{}{}
	}
	return out, nil
}

// AncestorDepths is Ancestors with, for each ancestor, the smallest distance
// at which it was reached inside the range.
func (p *Person) AncestorDepths(minDepth, maxDepth int) (map[*Person]int, error) {
	if maxDepth < minDepth {
		return nil, relatedPersonErrorf("max_depth (%d) cannot be less than min_depth (%d)", maxDepth, minDepth)
	}
	depths := make(map[*Person]int)
	p.walkAncestors(maxDepth, func(a *Person, depth int) {
		if depth < minDepth {
			return
		}
		if _, seen := depths[a]; !seen {
			depths[a] = depth
		}
	})
	return depths, nil
}

// walkAncestors visits ancestors generation by generation up to maxDepth.
// A person reached along several paths of the same length is visited once
// for that generation; one reached at different lengths is visited at each.
func (p *Person) walkAncestors(maxDepth int, visit func(*Person, int)) {
	generation := []*Person{p}
	for depth := 1; depth <= maxDepth && len(generation) > 0; depth++ {
		seen := make(Set)
		var next []*Person
		for _, child := range generation {
			for _, parent := range [2]*Person{child.mother, child.father} {
				if parent == nil || seen.Contains(parent) {
					continue
				}
				seen.add(parent)
				next = append(next, parent)
				visit(parent, depth)
			}
		}
		generation = next
	}
}

// Grandparents returns the ancestors at distance exactly 2.
func (p *Person) Grandparents() Set {
	return p.ancestorsFrom(2, 2)
}

// GrandparentsAndEarlier returns every ancestor at distance 2 or more.
func (p *Person) GrandparentsAndEarlier() Set {
	return p.ancestorsFrom(2, math.MaxInt)
}

// AllAncestors returns every ancestor at any distance.
func (p *Person) AllAncestors() Set {
	return p.ancestorsFrom(1, math.MaxInt)
}

func (p *Person) ancestorsFrom(minDepth, maxDepth int) Set {
	s, _ := p.Ancestors(minDepth, maxDepth)
	return s
}
