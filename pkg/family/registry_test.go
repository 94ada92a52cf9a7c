package family

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// validFrontmatter is a minimal valid PERSON.md for testing.
const validFrontmatter = `---
uuid: "test-uuid-1234"
name: "Ada"
gender: "F"
mother: ""
father: "byron-uuid"
born: "1815-12-10"
generated_by: "test"
---

# Ada
`

func TestParseFrontmatter(t *testing.T) {
	rec, body, err := ParseFrontmatter([]byte(validFrontmatter))
	if err != nil {
		t.Fatalf("ParseFrontmatter failed: %v", err)
	}
	if rec.UUID != "test-uuid-1234" {
		t.Errorf("UUID = %q, want %q", rec.UUID, "test-uuid-1234")
	}
	if rec.Name != "Ada" {
		t.Errorf("Name = %q, want %q", rec.Name, "Ada")
	}
	if rec.Gender != "F" {
		t.Errorf("Gender = %q, want %q", rec.Gender, "F")
	}
	if rec.Father != "byron-uuid" {
		t.Errorf("Father = %q, want %q", rec.Father, "byron-uuid")
	}
	if rec.Mother != "" {
		t.Errorf("Mother = %q, want empty", rec.Mother)
	}
	if body == "" {
		t.Error("body must not be empty")
	}
}

func TestParseFrontmatterErrors(t *testing.T) {
	tests := map[string]string{
		"no frontmatter": "# Just markdown\nNo frontmatter here.",
		"unclosed":       "---\nuuid: \"abc\"\n",
		"invalid yaml":   "---\n: invalid yaml [[\n---\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, _, err := ParseFrontmatter([]byte(input)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func writeRecordFile(t *testing.T, dir, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, RecordFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// setupTestDir creates two person records and one hidden record.
func setupTestDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	for _, p := range []struct{ dir, uuid, name string }{
		{"person-a", "aaaa-1111", "Alpha"},
		{"person-b", "bbbb-2222", "Beta"},
	} {
		writeRecordFile(t, filepath.Join(root, p.dir),
			"---\nuuid: \""+p.uuid+"\"\nname: \""+p.name+"\"\ngender: \"m\"\n---\n")
	}
	writeRecordFile(t, filepath.Join(root, ".secret"),
		"---\nuuid: \"hidden-uuid\"\nname: \"Hidden\"\ngender: \"f\"\n---\n")

	return root
}

func TestFindAll(t *testing.T) {
	root := setupTestDir(t)

	records, err := FindAll(root)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("FindAll found %d records, want 2", len(records))
	}

	uuids := map[string]bool{}
	for _, r := range records {
		uuids[r.UUID] = true
	}
	if !uuids["aaaa-1111"] || !uuids["bbbb-2222"] {
		t.Errorf("FindAll returned unexpected UUIDs: %v", uuids)
	}
	if uuids["hidden-uuid"] {
		t.Error("FindAll should skip hidden directories")
	}
}

func TestFindAllEmptyDir(t *testing.T) {
	records, err := FindAll(t.TempDir())
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("FindAll found %d records in empty dir, want 0", len(records))
	}
}

func TestFindAllSkipsUnparseableAndForeignFiles(t *testing.T) {
	root := t.TempDir()
	writeRecordFile(t, filepath.Join(root, "bad"), "---\n: broken [[\n---\n")
	dir := filepath.Join(root, "mixed")
	writeRecordFile(t, dir, "---\nuuid: \"mixed-uuid\"\nname: \"Mixed\"\ngender: \"na\"\n---\n")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("# readme"), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := FindAll(root)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(records) != 1 || records[0].UUID != "mixed-uuid" {
		t.Errorf("FindAll = %+v, want only mixed-uuid", records)
	}
}

func TestFindAllSkipsUnreadableFiles(t *testing.T) {
	root := t.TempDir()
	path := writeRecordFile(t, filepath.Join(root, "unreadable"), "---\nuuid: \"x\"\n---\n")
	if err := os.Chmod(path, 0000); err != nil {
		t.Skip("cannot change file permissions on this OS")
	}
	defer os.Chmod(path, 0644) //nolint:errcheck
	if _, err := os.ReadFile(path); err == nil {
		t.Skip("running with permissions that ignore file modes")
	}

	records, err := FindAll(root)
	if err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("FindAll found %d records, want 0 (unreadable should be skipped)", len(records))
	}
}

func TestFindByUUID(t *testing.T) {
	root := setupTestDir(t)

	for _, target := range []string{"aaaa-1111", "bbbb"} {
		path, err := FindByUUID(root, target)
		if err != nil {
			t.Fatalf("FindByUUID(%q) failed: %v", target, err)
		}
		if filepath.Base(path) != RecordFileName {
			t.Errorf("FindByUUID(%q) = %q, want a %s path", target, path, RecordFileName)
		}
	}
}

func TestFindByUUIDNotFound(t *testing.T) {
	root := setupTestDir(t)

	for _, target := range []string{"nonexistent", "hidden-uuid", ""} {
		_, err := FindByUUID(root, target)
		if !errors.Is(err, ErrRecordNotFound) {
			t.Errorf("FindByUUID(%q) err = %v, want ErrRecordNotFound", target, err)
		}
	}
}

func TestScanAllWithPathsStreamsFoundAndProgress(t *testing.T) {
	root := setupTestDir(t)

	var found []LocatedRecord
	var progress []ScanProgress
	err := ScanAllWithPaths(root, 1, func(l LocatedRecord) {
		found = append(found, l)
	}, func(p ScanProgress) {
		progress = append(progress, p)
	})
	if err != nil {
		t.Fatalf("ScanAllWithPaths failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("ScanAllWithPaths found %d records, want 2", len(found))
	}
	for _, l := range found {
		if filepath.Base(l.Path) != RecordFileName {
			t.Errorf("unexpected path %q", l.Path)
		}
	}
	if len(progress) == 0 {
		t.Fatal("ScanAllWithPaths should emit progress updates")
	}
	last := progress[len(progress)-1]
	if last.PersonsFound != 2 {
		t.Fatalf("last progress persons found = %d, want 2", last.PersonsFound)
	}
	if last.ScannedFiles < 2 {
		t.Fatalf("last progress scanned files = %d, want >= 2", last.ScannedFiles)
	}
}
