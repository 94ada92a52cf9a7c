package server

import (
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/types/known/structpb"
)

// PersonEntry is one person as carried on the wire. Mother and Father are
// UUIDs, empty when unset.
type PersonEntry struct {
	UUID         string
	Name         string
	Gender       string
	Mother       string
	Father       string
	Born         string
	RelativePath string
}

// AncestorEntry is one ancestor and its generational distance.
type AncestorEntry struct {
	UUID   string
	Name   string
	Gender string
	Depth  int
}

// ShowResult is the ShowPerson response.
type ShowResult struct {
	Person     PersonEntry
	FilePath   string
	RawContent string
}

// CreateRequest is the CreatePerson request.
type CreateRequest struct {
	Name      string
	Gender    string
	Mother    string
	Father    string
	Born      string
	OutputDir string
}

// CreateResult is the CreatePerson response.
type CreateResult struct {
	Person   PersonEntry
	FilePath string
}

func (e PersonEntry) toMap() map[string]any {
	return map[string]any{
		"uuid":          e.UUID,
		"name":          e.Name,
		"gender":        e.Gender,
		"mother":        e.Mother,
		"father":        e.Father,
		"born":          e.Born,
		"relative_path": e.RelativePath,
	}
}

func personFromStruct(s *structpb.Struct) PersonEntry {
	return PersonEntry{
		UUID:         stringField(s, "uuid"),
		Name:         stringField(s, "name"),
		Gender:       stringField(s, "gender"),
		Mother:       stringField(s, "mother"),
		Father:       stringField(s, "father"),
		Born:         stringField(s, "born"),
		RelativePath: stringField(s, "relative_path"),
	}
}

func (e AncestorEntry) toMap() map[string]any {
	return map[string]any{
		"uuid":   e.UUID,
		"name":   e.Name,
		"gender": e.Gender,
		"depth":  e.Depth,
	}
}

func ancestorFromStruct(s *structpb.Struct) AncestorEntry {
	return AncestorEntry{
		UUID:   stringField(s, "uuid"),
		Name:   stringField(s, "name"),
		Gender: stringField(s, "gender"),
		Depth:  intField(s, "depth"),
	}
}

func (r CreateRequest) toMap() map[string]any {
	return map[string]any{
		"name":       r.Name,
		"gender":     r.Gender,
		"mother":     r.Mother,
		"father":     r.Father,
		"born":       r.Born,
		"output_dir": r.OutputDir,
	}
}

func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[key].GetStringValue()
}

func intField(s *structpb.Struct, key string) int {
	if s == nil {
		return 0
	}
	return int(s.GetFields()[key].GetNumberValue())
}

func structField(s *structpb.Struct, key string) *structpb.Struct {
	if s == nil {
		return nil
	}
	return s.GetFields()[key].GetStructValue()
}

func listField(s *structpb.Struct, key string) []*structpb.Struct {
	if s == nil {
		return nil
	}
	values := s.GetFields()[key].GetListValue().GetValues()
	out := make([]*structpb.Struct, 0, len(values))
	for _, v := range values {
		if st := v.GetStructValue(); st != nil {
			out = append(out, st)
		}
	}
	return out
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, errors.Wrap(err, "encode message")
	}
	return s, nil
}
