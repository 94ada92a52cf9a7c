// Package server implements the kin gRPC service.
package server

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpcReflection "google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/organic-programming/sophia-kin/internal/logging"
	"github.com/organic-programming/sophia-kin/internal/transport"
	"github.com/organic-programming/sophia-kin/pkg/family"
)

// Server implements KinServiceServer over the PERSON.md files under Root.
// Every request loads its own tree, so no graph is shared between calls.
type Server struct {
	Root string
}

var _ KinServiceServer = (*Server)(nil)

// New returns a Server reading records under root ("." when empty).
func New(root string) *Server {
	if root == "" {
		root = "."
	}
	return &Server{Root: root}
}

// ListPersons lists every record under root_dir (default: Root).
//
// Request: {root_dir}. Response: {entries: [person...]}.
func (s *Server) ListPersons(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	root := s.Root
	if dir := strings.TrimSpace(stringField(req, "root_dir")); dir != "" {
		root = dir
	}

	located, err := family.FindAllWithPaths(root)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "scan persons: %v", err)
	}
	sort.SliceStable(located, func(i, j int) bool {
		if located[i].Record.Name != located[j].Record.Name {
			return located[i].Record.Name < located[j].Record.Name
		}
		return located[i].Record.UUID < located[j].Record.UUID
	})

	entries := make([]any, 0, len(located))
	for _, lr := range located {
		entry := toEntry(lr.Record)
		entry.RelativePath = relativeRecordDir(root, lr.Path)
		entries = append(entries, entry.toMap())
	}
	return encode(map[string]any{"entries": entries})
}

// ShowPerson returns one record by UUID or prefix.
//
// Request: {uuid}. Response: {person, file_path, raw_content}.
func (s *Server) ShowPerson(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	target := strings.TrimSpace(stringField(req, "uuid"))
	if target == "" {
		return nil, status.Error(codes.InvalidArgument, "uuid is required")
	}

	path, err := family.FindByUUID(s.Root, target)
	if err != nil {
		return nil, toStatus(err, "resolve person by uuid")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "cannot read %s: %v", path, err)
	}
	rec, _, err := family.ParseFrontmatter(data)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "parse %s: %v", family.RecordFileName, err)
	}

	entry := toEntry(rec)
	entry.RelativePath = relativeRecordDir(s.Root, path)
	return encode(map[string]any{
		"person":      entry.toMap(),
		"file_path":   path,
		"raw_content": string(data),
	})
}

// CreatePerson validates a new person against the existing tree and writes
// its PERSON.md. Parents are given by UUID or unique prefix.
//
// Request: {name, gender, mother, father, born, output_dir}.
// Response: {person, file_path}.
func (s *Server) CreatePerson(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := strings.TrimSpace(stringField(req, "name"))
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "name is required")
	}
	genderToken := strings.TrimSpace(stringField(req, "gender"))
	if genderToken == "" {
		return nil, status.Error(codes.InvalidArgument, "gender is required")
	}

	rec := family.NewRecord()
	rec.Name = name
	if born := strings.TrimSpace(stringField(req, "born")); born != "" {
		rec.Born = born
	}

	person, err := family.NewPerson(name, family.Gender(genderToken))
	if err != nil {
		return nil, toStatus(err, "gender")
	}
	rec.Gender = string(person.Gender())

	tree, err := s.loadTree()
	if err != nil {
		return nil, toStatus(err, "load tree")
	}
	if rec.Mother, err = linkParent(tree, stringField(req, "mother"), person.SetMother); err != nil {
		return nil, toStatus(err, "mother")
	}
	if rec.Father, err = linkParent(tree, stringField(req, "father"), person.SetFather); err != nil {
		return nil, toStatus(err, "father")
	}

	outputDir := strings.TrimSpace(stringField(req, "output_dir"))
	if outputDir == "" {
		outputDir = filepath.Join(s.Root, "persons", family.RecordDirName(rec))
	}
	outputPath := filepath.Join(outputDir, family.RecordFileName)
	if err := family.WritePersonMD(rec, outputPath); err != nil {
		return nil, status.Errorf(codes.Internal, "write %s: %v", family.RecordFileName, err)
	}
	logging.Logger.Infow("person created", "uuid", rec.UUID, "name", rec.Name, "path", outputPath)

	return encode(map[string]any{
		"person":    toEntry(rec).toMap(),
		"file_path": outputPath,
	})
}

// Ancestors returns the ancestors of one person between min_depth and
// max_depth generations. min_depth defaults to 1; max_depth 0 is unbounded.
//
// Request: {uuid, min_depth, max_depth}. Response: {ancestors: [...]}.
func (s *Server) Ancestors(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	target := strings.TrimSpace(stringField(req, "uuid"))
	if target == "" {
		return nil, status.Error(codes.InvalidArgument, "uuid is required")
	}
	minDepth, maxDepth := intField(req, "min_depth"), intField(req, "max_depth")
	if minDepth <= 0 {
		minDepth = 1
	}
	if maxDepth <= 0 {
		maxDepth = math.MaxInt
	}

	tree, err := s.loadTree()
	if err != nil {
		return nil, toStatus(err, "load tree")
	}
	person, err := tree.Lookup(target)
	if err != nil {
		return nil, toStatus(err, "resolve person by uuid")
	}
	depths, err := person.AncestorDepths(minDepth, maxDepth)
	if err != nil {
		return nil, toStatus(err, "ancestors")
	}

	entries := make([]AncestorEntry, 0, len(depths))
	for a, d := range depths {
		entries = append(entries, AncestorEntry{
			UUID:   tree.UUID(a),
			Name:   a.Name(),
			Gender: string(a.Gender()),
			Depth:  d,
		})
	}
	sortAncestors(entries)

	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = e.toMap()
	}
	return encode(map[string]any{"ancestors": out})
}

// loadTree builds the tree under Root. Broken links are logged, not fatal:
// the tree keeps every valid edge.
func (s *Server) loadTree() (*family.Tree, error) {
	tree, err := family.LoadTree(s.Root)
	if tree == nil {
		return nil, err
	}
	if err != nil {
		logging.Logger.Warnw("family tree has invalid records", "root", s.Root, "error", err)
	}
	return tree, nil
}

func linkParent(tree *family.Tree, target string, set func(*family.Person) error) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", nil
	}
	parent, err := tree.Lookup(target)
	if err != nil {
		return "", err
	}
	if err := set(parent); err != nil {
		return "", err
	}
	return tree.UUID(parent), nil
}

// ListenAndServe serves the kin service on listenURI until ctx is done.
// Supported URIs are those of transport.Listen. When reflect is true, server
// reflection is enabled.
func ListenAndServe(ctx context.Context, listenURI, root string, reflect bool) error {
	lis, err := transport.Listen(listenURI)
	if err != nil {
		return errors.Wrapf(err, "listen %s", listenURI)
	}

	s := grpc.NewServer()
	RegisterKinServiceServer(s, New(root))
	if reflect {
		grpcReflection.Register(s)
	}

	stop := context.AfterFunc(ctx, s.GracefulStop)
	defer stop()

	logging.Logger.Infow("kin gRPC server listening", "listen", listenURI, "root", root, "reflection", reflect)
	if err := s.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func toEntry(rec family.Record) PersonEntry {
	return PersonEntry{
		UUID:   rec.UUID,
		Name:   rec.Name,
		Gender: rec.Gender,
		Mother: rec.Mother,
		Father: rec.Father,
		Born:   rec.Born,
	}
}

func sortAncestors(entries []AncestorEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Depth != entries[j].Depth {
			return entries[i].Depth < entries[j].Depth
		}
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].UUID < entries[j].UUID
	})
}

func encode(m map[string]any) (*structpb.Struct, error) {
	s, err := newStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return s, nil
}

// toStatus maps domain errors to gRPC codes.
func toStatus(err error, op string) error {
	switch {
	case family.IsRelatedPersonError(err), errors.Is(err, family.ErrAmbiguousUUID):
		return status.Errorf(codes.InvalidArgument, "%s: %v", op, err)
	case errors.Is(err, family.ErrRecordNotFound):
		return status.Errorf(codes.NotFound, "%s: %v", op, err)
	default:
		return status.Errorf(codes.Internal, "%s: %v", op, err)
	}
}

func relativeRecordDir(root, recordPath string) string {
	dir := filepath.Dir(recordPath)
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return filepath.Clean(dir)
	}
	return filepath.Clean(rel)
}
