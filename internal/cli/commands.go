// Package cli implements the kin command-line interface.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/organic-programming/sophia-kin/internal/logging"
	"github.com/organic-programming/sophia-kin/pkg/family"
)

// RunNew interactively records a new person under root. Mother and father
// are given by UUID (or unique prefix) and must already exist in the tree.
func RunNew(in io.Reader, out io.Writer, root string) error {
	p := prompter{scanner: bufio.NewScanner(in), out: out}
	rec := family.NewRecord()

	fmt.Fprintln(out, "─── kin: New Person ───")
	fmt.Fprintf(out, "UUID: %s (generated)\n\n", rec.UUID)

	name, err := p.ask("Name")
	if err != nil {
		return err
	}
	rec.Name = name

	for {
		answer, err := p.askDefault("Gender (m/f/na)", "na")
		if err != nil {
			return err
		}
		g, err := family.GetGender(answer)
		if err != nil {
			fmt.Fprintf(out, "  (%v)\n", err)
			continue
		}
		rec.Gender = string(g)
		break
	}

	person, err := rec.Person()
	if err != nil {
		return err
	}
	tree, err := loadTree(root)
	if err != nil {
		return err
	}
	if rec.Mother, err = p.askParent(tree, "Mother UUID (or empty)", person.SetMother); err != nil {
		return err
	}
	if rec.Father, err = p.askParent(tree, "Father UUID (or empty)", person.SetFather); err != nil {
		return err
	}

	aliases, err := p.askDefault("Aliases (comma-separated, or empty)", "")
	if err != nil {
		return err
	}
	for _, a := range strings.Split(aliases, ",") {
		if trimmed := strings.TrimSpace(a); trimmed != "" {
			rec.Aliases = append(rec.Aliases, trimmed)
		}
	}

	outputDir, err := p.askDefault("Output directory", filepath.Join(root, "persons", family.RecordDirName(rec)))
	if err != nil {
		return err
	}
	outputPath := filepath.Join(outputDir, family.RecordFileName)
	if err := family.WritePersonMD(rec, outputPath); err != nil {
		return err
	}
	logging.Logger.Infow("person recorded", "uuid", rec.UUID, "name", rec.Name, "path", outputPath)

	fmt.Fprintf(out, "\n✓ Recorded: %s\n", person)
	fmt.Fprintf(out, "  UUID: %s\n", rec.UUID)
	fmt.Fprintf(out, "  File: %s\n", outputPath)
	return nil
}

// RunShow prints the PERSON.md of the person matching target.
func RunShow(root, target string, out io.Writer) error {
	path, err := family.FindByUUID(root, target)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "cannot read %s", path)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

// RunList prints every person under root with their parents' names. Scan
// progress goes to progress, which is usually stderr.
func RunList(root string, out, progress io.Writer) error {
	if root == "" {
		root = "."
	}
	root = filepath.Clean(root)

	inline := isTerminal(progress)
	visible := false
	var records []family.LocatedRecord
	err := family.ScanAllWithPaths(root, 500, func(lr family.LocatedRecord) {
		records = append(records, lr)
	}, func(sp family.ScanProgress) {
		if sp.ScannedFiles == 0 {
			return
		}
		if !inline {
			fmt.Fprintf(progress, "[scan] %d files scanned\n", sp.ScannedFiles)
			return
		}
		fmt.Fprintf(progress, "\r\033[2K[scan] %d files scanned", sp.ScannedFiles)
		visible = true
	})
	if visible {
		fmt.Fprint(progress, "\r\033[2K")
	}
	if err != nil {
		return err
	}

	tree, err := family.BuildTree(records)
	if err != nil {
		logging.Logger.Warnw("family tree has invalid records", "root", root, "error", err)
	}
	if tree.Len() == 0 {
		fmt.Fprintln(out, "No persons found.")
		return nil
	}

	fmt.Fprintf(out, "%-38s %-25s %-6s %-25s %-25s %s\n", "UUID", "NAME", "GENDER", "MOTHER", "FATHER", "PATH")
	fmt.Fprintln(out, strings.Repeat("─", 150))
	for _, person := range tree.Persons() {
		lr, _ := tree.Record(person)
		fmt.Fprintf(out, "%-38s %-25s %-6s %-25s %-25s %s\n",
			lr.Record.UUID, person.Name(), person.Gender(),
			family.RelatedPersonName(person.Mother()), family.RelatedPersonName(person.Father()),
			relRecordDir(root, lr.Path))
	}
	return nil
}

// RunAncestors prints the ancestors of target between minDepth and maxDepth
// generations back. maxDepth 0 means no upper bound.
func RunAncestors(root, target string, minDepth, maxDepth int, out io.Writer) error {
	if maxDepth == 0 {
		maxDepth = math.MaxInt
	}
	tree, err := loadTree(root)
	if err != nil {
		return err
	}
	person, err := tree.Lookup(target)
	if err != nil {
		return err
	}
	depths, err := person.AncestorDepths(minDepth, maxDepth)
	if err != nil {
		return err
	}
	if len(depths) == 0 {
		fmt.Fprintf(out, "No ancestors found for %s.\n", person.Name())
		return nil
	}

	ancestors := make([]*family.Person, 0, len(depths))
	for a := range depths {
		ancestors = append(ancestors, a)
	}
	sort.Slice(ancestors, func(i, j int) bool {
		a, b := ancestors[i], ancestors[j]
		if depths[a] != depths[b] {
			return depths[a] < depths[b]
		}
		if a.Name() != b.Name() {
			return a.Name() < b.Name()
		}
		return tree.UUID(a) < tree.UUID(b)
	})

	fmt.Fprintf(out, "Ancestors of %s\n", person.Name())
	fmt.Fprintf(out, "%-6s %-25s %-6s %s\n", "DEPTH", "NAME", "GENDER", "UUID")
	for _, a := range ancestors {
		fmt.Fprintf(out, "%-6d %-25s %-6s %s\n", depths[a], a.Name(), a.Gender(), tree.UUID(a))
	}
	return nil
}

// loadTree builds the tree under root, logging records that could not be
// linked.
func loadTree(root string) (*family.Tree, error) {
	tree, err := family.LoadTree(root)
	if tree == nil {
		return nil, err
	}
	if err != nil {
		logging.Logger.Warnw("family tree has invalid records", "root", root, "error", err)
	}
	return tree, nil
}

func relRecordDir(root, recordPath string) string {
	dir := filepath.Dir(recordPath)
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return filepath.Clean(dir)
	}
	return filepath.Clean(rel)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

type prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (p prompter) readLine() (string, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", errors.Wrap(err, "read input")
		}
		return "", errors.Wrap(io.ErrUnexpectedEOF, "input ended")
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

func (p prompter) ask(prompt string) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s: ", prompt)
		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		fmt.Fprintln(p.out, "  (required)")
	}
}

func (p prompter) askDefault(prompt, defaultVal string) (string, error) {
	if defaultVal != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", prompt, defaultVal)
	} else {
		fmt.Fprintf(p.out, "%s: ", prompt)
	}
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return defaultVal, nil
	}
	return answer, nil
}

// askParent asks until the answer is empty or names a person in tree that
// set accepts. It returns the parent's full UUID.
func (p prompter) askParent(tree *family.Tree, prompt string, set func(*family.Person) error) (string, error) {
	for {
		answer, err := p.askDefault(prompt, "")
		if err != nil || answer == "" {
			return "", err
		}
		parent, err := tree.Lookup(answer)
		if err == nil {
			err = set(parent)
		}
		if err != nil {
			fmt.Fprintf(p.out, "  (%v)\n", err)
			continue
		}
		return tree.UUID(parent), nil
	}
}
