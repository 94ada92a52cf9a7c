package family

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Tree is a family graph built from PERSON.md records. It indexes persons
// by UUID; the edges themselves live on the persons.
type Tree struct {
	byUUID  map[string]*Person
	records map[*Person]LocatedRecord
}

// BuildTree creates one Person per record and links mothers and fathers by
// UUID. Records that cannot become a person, and links that are refused,
// are reported together in the returned error; the tree holds everything
// that was valid.
func BuildTree(records []LocatedRecord) (*Tree, error) {
	t := &Tree{
		byUUID:  make(map[string]*Person, len(records)),
		records: make(map[*Person]LocatedRecord, len(records)),
	}
	var errs []error

	for _, lr := range records {
		rec := lr.Record
		if rec.UUID == "" {
			errs = append(errs, errors.Newf("%s: missing uuid", lr.Path))
			continue
		}
		if _, dup := t.byUUID[rec.UUID]; dup {
			errs = append(errs, errors.Newf("%s: duplicate uuid %s", lr.Path, rec.UUID))
			continue
		}
		p, err := rec.Person()
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "%s", lr.Path))
			continue
		}
		t.byUUID[rec.UUID] = p
		t.records[p] = lr
	}

	for _, p := range t.Persons() {
		lr := t.records[p]
		if err := t.link(p, lr.Record.Mother, p.SetMother); err != nil {
			errs = append(errs, errors.Wrapf(err, "%s: mother", lr.Path))
		}
		if err := t.link(p, lr.Record.Father, p.SetFather); err != nil {
			errs = append(errs, errors.Wrapf(err, "%s: father", lr.Path))
		}
	}

	return t, errors.Join(errs...)
}

func (t *Tree) link(p *Person, parentUUID string, set func(*Person) error) error {
	if parentUUID == "" {
		return nil
	}
	parent, ok := t.byUUID[parentUUID]
	if !ok {
		return errors.Wrapf(ErrRecordNotFound, "%s", parentUUID)
	}
	return set(parent)
}

// Lookup returns the person whose UUID equals target or, failing that, the
// only person whose UUID starts with it.
func (t *Tree) Lookup(target string) (*Person, error) {
	if p, ok := t.byUUID[target]; ok {
		return p, nil
	}
	var match *Person
	if target != "" {
		for id, p := range t.byUUID {
			if !strings.HasPrefix(id, target) {
				continue
			}
			if match != nil {
				return nil, errors.Wrapf(ErrAmbiguousUUID, "%s", target)
			}
			match = p
		}
	}
	if match == nil {
		return nil, errors.Wrapf(ErrRecordNotFound, "%s", target)
	}
	return match, nil
}

// Record returns the record p was built from.
func (t *Tree) Record(p *Person) (LocatedRecord, bool) {
	lr, ok := t.records[p]
	return lr, ok
}

// UUID returns p's UUID, or "" when p is not part of the tree.
func (t *Tree) UUID(p *Person) string {
	return t.records[p].Record.UUID
}

// Persons returns every person, ordered by name then UUID.
func (t *Tree) Persons() []*Person {
	out := make([]*Person, 0, len(t.byUUID))
	for _, p := range t.byUUID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].name != out[j].name {
			return out[i].name < out[j].name
		}
		return t.UUID(out[i]) < t.UUID(out[j])
	})
	return out
}

// Len returns the number of persons in the tree.
func (t *Tree) Len() int {
	return len(t.byUUID)
}

// LoadTree scans root for PERSON.md files and builds a tree from them.
func LoadTree(root string) (*Tree, error) {
	records, err := FindAllWithPaths(root)
	if err != nil {
		return nil, err
	}
	return BuildTree(records)
}
