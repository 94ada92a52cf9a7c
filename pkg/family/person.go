// Package family models a genealogical family tree: persons linked by
// mother, father and child edges, with gender-checked parent roles and
// generation-indexed ancestor queries.
//
// A Person graph has no central owner. Each edge is stored on both endpoints
// and every mutator updates both sides or neither. The graph is not safe for
// concurrent mutation; callers that share one must serialize access.
package family

import (
	"fmt"
	"strings"
)

// NotAvailable is the placeholder name for an unset relative.
const NotAvailable = "NA"

// Person is one node in a family graph.
type Person struct {
	name     string
	gender   Gender
	mother   *Person
	father   *Person
	children Set
}

// NewPerson creates a person with no relatives. gender may be a canonical
// Gender or any token accepted by GetGender.
func NewPerson(name string, gender Gender) (*Person, error) {
	g, err := GetGender(string(gender))
	if err != nil {
		return nil, err
	}
	return &Person{
		name:     name,
		gender:   g,
		children: Set{},
	}, nil
}

func (p *Person) Name() string    { return p.name }
func (p *Person) Gender() Gender  { return p.gender }
func (p *Person) Mother() *Person { return p.mother }
func (p *Person) Father() *Person { return p.father }

// Children returns a copy of the person's children.
func (p *Person) Children() Set {
	return p.children.clone()
}

// SetGenderUnknown records that the person's gender is no longer known.
// Existing edges are kept; AddChild is refused from now on.
func (p *Person) SetGenderUnknown() {
	p.gender = Unknown
}

// SetMother links mother as p's mother and adds p to mother's children.
func (p *Person) SetMother(mother *Person) error {
	return p.setParent(mother, "mother", Female, "female")
}

// SetFather links father as p's father and adds p to father's children.
func (p *Person) SetFather(father *Person) error {
	return p.setParent(father, "father", Male, "male")
}

func (p *Person) setParent(parent *Person, role string, want Gender, wantWord string) error {
	if parent == nil {
		return relatedPersonErrorf("cannot set %s of '%s' to an unset person", role, p.name)
	}
	if parent.gender != want {
		return relatedPersonErrorf("%s named '%s' is not %s", role, parent.name, wantWord)
	}
	if err := checkParentLink(p, parent); err != nil {
		return err
	}

	slot := &p.mother
	if want == Male {
		slot = &p.father
	}
	if *slot == parent {
		parent.children.add(p)
		return nil
	}
	if *slot != nil {
		(*slot).children.remove(p)
	}
	*slot = parent
	parent.children.add(p)
	return nil
}

// checkParentLink refuses a parent->child edge that would make child its own
// ancestor: the parent must not be child itself or one of child's descendants.
func checkParentLink(child, parent *Person) error {
	if parent == child || parent.AllAncestors().Contains(child) {
		return relatedPersonErrorf("making '%s' a parent of '%s' would create ancestor cycle",
			parent.name, child.name)
	}
	return nil
}

// AddChild records p as child's mother or father, depending on p's gender.
func (p *Person) AddChild(child *Person) error {
	if child == nil {
		return relatedPersonErrorf("cannot add an unset child to '%s'", p.name)
	}
	if p.gender == Unknown {
		return relatedPersonErrorf("cannot add child '%s' to '%s' with unknown gender", child.name, p.name)
	}
	if err := checkParentLink(child, p); err != nil {
		return err
	}
	if p.gender == Female {
		return child.SetMother(p)
	}
	return child.SetFather(p)
}

// RemoveMother unlinks p from its mother.
func (p *Person) RemoveMother() error {
	if p.mother == nil {
		return relatedPersonErrorf("cannot remove mother of '%s' as it is not set", p.name)
	}
	p.mother.children.remove(p)
	p.mother = nil
	return nil
}

// RemoveFather unlinks p from its father.
func (p *Person) RemoveFather() error {
	if p.father == nil {
		return relatedPersonErrorf("cannot remove father of '%s' as it is not set", p.name)
	}
	p.father.children.remove(p)
	p.father = nil
	return nil
}

// RelatedPersonName returns p's name, or NotAvailable when p is nil.
func RelatedPersonName(p *Person) string {
	if p == nil {
		return NotAvailable
	}
	return p.name
}

func (p *Person) String() string {
	return fmt.Sprintf("Person(name='%s', gender='%s', mother='%s', father='%s', children=[%s])",
		p.name, p.gender, RelatedPersonName(p.mother), RelatedPersonName(p.father),
		strings.Join(p.children.Names(), ", "))
}
