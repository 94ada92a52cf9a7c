package family

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/organic-programming/sophia-kin/internal/logging"
)

// LocatedRecord pairs a parsed Record with the PERSON.md path it came from.
type LocatedRecord struct {
	Record Record
	Path   string
}

// ScanProgress reports how far a PERSON.md scan has got.
type ScanProgress struct {
	ScannedFiles int
	PersonsFound int
}

// FindAll returns every record under root.
func FindAll(root string) ([]Record, error) {
	located, err := FindAllWithPaths(root)
	if err != nil {
		return nil, err
	}
	records := make([]Record, len(located))
	for i, l := range located {
		records[i] = l.Record
	}
	return records, nil
}

// FindAllWithPaths returns every record under root with its file path.
func FindAllWithPaths(root string) ([]LocatedRecord, error) {
	var located []LocatedRecord
	err := ScanAllWithPaths(root, 0, func(l LocatedRecord) {
		located = append(located, l)
	}, nil)
	return located, err
}

// ScanAllWithPaths walks root and calls onFound for each PERSON.md that
// parses. Hidden directories are skipped. onProgress, when set, is called
// every progressEvery files and once at the end.
func ScanAllWithPaths(root string, progressEvery int, onFound func(LocatedRecord), onProgress func(ScanProgress)) error {
	var progress ScanProgress
	report := func(final bool) {
		if onProgress == nil {
			return
		}
		if final || (progressEvery > 0 && progress.ScannedFiles%progressEvery == 0) {
			onProgress(progress)
		}
	}

	err := walkRecords(root, func(path string) error {
		progress.ScannedFiles++
		report(false)
		if filepath.Base(path) != RecordFileName {
			return nil
		}
		rec, err := readRecord(path)
		if err != nil {
			logging.Logger.Debugw("skipping unreadable person record", "path", path, "error", err)
			return nil
		}
		progress.PersonsFound++
		if onFound != nil {
			onFound(LocatedRecord{Record: rec, Path: path})
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "scan %s", root)
	}
	report(true)
	return nil
}

// FindByUUID returns the path of the PERSON.md whose UUID equals target or
// starts with it.
func FindByUUID(root, target string) (string, error) {
	if strings.TrimSpace(target) == "" {
		return "", errors.Wrap(ErrRecordNotFound, "empty uuid")
	}
	var found string
	err := walkRecords(root, func(path string) error {
		if filepath.Base(path) != RecordFileName {
			return nil
		}
		rec, err := readRecord(path)
		if err != nil {
			return nil
		}
		if strings.HasPrefix(rec.UUID, target) {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "scan %s", root)
	}
	if found == "" {
		return "", errors.Wrapf(ErrRecordNotFound, "%s", target)
	}
	return found, nil
}

// walkRecords visits regular files below root, skipping hidden directories.
// Unreadable entries are ignored.
func walkRecords(root string, fn func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		return fn(path)
	})
}

func readRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, errors.Wrapf(err, "read %s", path)
	}
	rec, _, err := ParseFrontmatter(data)
	return rec, err
}

// ParseFrontmatter splits a PERSON.md into its Record and markdown body.
func ParseFrontmatter(data []byte) (Record, string, error) {
	const fence = "---"
	if !bytes.HasPrefix(data, []byte(fence)) {
		return Record{}, "", errors.New("no YAML frontmatter found")
	}
	rest := bytes.TrimPrefix(data[len(fence):], []byte("\n"))

	end := bytes.Index(rest, []byte("\n"+fence))
	if end < 0 {
		return Record{}, "", errors.New("unclosed YAML frontmatter")
	}

	var rec Record
	if err := yaml.Unmarshal(rest[:end], &rec); err != nil {
		return Record{}, "", errors.Wrap(err, "YAML parse error")
	}
	return rec, string(rest[end+len(fence)+1:]), nil
}
