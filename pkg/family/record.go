package family

import (
	"time"

	"github.com/google/uuid"
)

// RecordFileName is the file holding one person's frontmatter.
const RecordFileName = "PERSON.md"

// Record is the on-disk description of a person: the PERSON.md YAML
// frontmatter. Relatives are referenced by UUID.
type Record struct {
	UUID   string `yaml:"uuid"`
	Name   string `yaml:"name"`
	Gender string `yaml:"gender"`

	// Lineage
	Mother string `yaml:"mother"`
	Father string `yaml:"father"`

	Born    string   `yaml:"born"`
	Aliases []string `yaml:"aliases,omitempty"`

	GeneratedBy string `yaml:"generated_by"`
}

// NewRecord creates a record with a fresh UUID, born today, gender unknown.
func NewRecord() Record {
	return Record{
		UUID:        uuid.New().String(),
		Gender:      string(Unknown),
		Born:        time.Now().Format("2006-01-02"),
		GeneratedBy: "kin",
	}
}

// Person builds an unlinked Person from the record.
func (r Record) Person() (*Person, error) {
	return NewPerson(r.Name, Gender(r.Gender))
}
