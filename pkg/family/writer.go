package family

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/cockroachdb/errors"
)

var personTemplate = template.Must(template.New("person").Funcs(template.FuncMap{
	"quote": func(s string) string { return fmt.Sprintf("%q", s) },
	"quoteAll": func(ss []string) string {
		quoted := make([]string, len(ss))
		for i, s := range ss {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return strings.Join(quoted, ", ")
	},
}).Parse(`---
# Person v1
uuid: {{ .UUID | quote }}
name: {{ .Name | quote }}
gender: {{ .Gender | quote }}

# Lineage
mother: {{ .Mother | quote }}
father: {{ .Father | quote }}

born: {{ .Born | quote }}
aliases: [{{ quoteAll .Aliases }}]
generated_by: {{ .GeneratedBy | quote }}
---

# {{ .Name }}

## Notes

<Sources, places, anything the frontmatter does not hold.>
`))

// WritePersonMD renders rec to a PERSON.md file at path, creating the
// parent directory if needed.
func WritePersonMD(rec Record, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "cannot create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %s", path)
	}
	defer f.Close()

	if err := personTemplate.Execute(f, rec); err != nil {
		return errors.Wrap(err, "template execution error")
	}
	return nil
}

// RecordDirName is the default directory name for a person's record,
// e.g. "ada-lovelace-1a2b3c4d".
func RecordDirName(rec Record) string {
	slug := strings.ToLower(strings.Join(strings.Fields(rec.Name), "-"))
	id := rec.UUID
	if len(id) > 8 {
		id = id[:8]
	}
	if slug == "" {
		return id
	}
	return slug + "-" + id
}
