// Package output writes generated schema files and checks committed files
// against a fresh generation.
package output

import (
	"bufio"
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/zorsh-gen/errors"
	"github.com/teranos/zorsh-gen/typegen"
	"github.com/teranos/zorsh-gen/typegen/emit"
	"github.com/teranos/zorsh-gen/typegen/layout"
)

const (
	DirPermissions  = 0o755
	FilePermissions = 0o644
)

// Write writes every file below dir, creating directories as needed. Generated
// files left from modules that no longer exist are removed afterwards.
func Write(dir string, files []typegen.File) error {
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create output directory %s", dir)
	}
	for _, f := range files {
		p := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(p), DirPermissions); err != nil {
			return errors.Wrapf(err, "failed to create directory for %s", f.Path)
		}
		if err := os.WriteFile(p, []byte(f.Content), FilePermissions); err != nil {
			return errors.Wrapf(err, "failed to write %s", p)
		}
	}
	_, err := Prune(dir, files)
	return err
}

// Prune removes the generated files below dir that none of files produces,
// along with directories the removal leaves empty. Files without the generated
// header are never touched. Returns the removed paths.
func Prune(dir string, files []typegen.File) ([]string, error) {
	expected := make(map[string]bool, len(files))
	for _, f := range files {
		expected[f.Path] = true
	}
	generated, err := generatedFiles(dir)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, rel := range generated {
		if expected[rel] {
			continue
		}
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.Remove(p); err != nil {
			return removed, errors.Wrapf(err, "failed to remove stale %s", rel)
		}
		removed = append(removed, rel)
		removeEmptyParents(dir, filepath.Dir(p))
	}
	return removed, nil
}

// removeEmptyParents deletes empty directories from p up to, but not
// including, root.
func removeEmptyParents(root, p string) {
	root = filepath.Clean(root)
	for p = filepath.Clean(p); p != root && strings.HasPrefix(p, root); p = filepath.Dir(p) {
		if os.Remove(p) != nil {
			return
		}
	}
}

// CheckResult holds the result of comparing generated files with disk.
type CheckResult struct {
	// Missing files would be created by a generation
	Missing []string
	// Changed files exist with different content
	Changed []string
	// Orphaned files carry the generated header but no module produces them
	Orphaned []string
}

// UpToDate reports whether a generation would leave dir unchanged.
func (r *CheckResult) UpToDate() bool {
	return len(r.Missing) == 0 && len(r.Changed) == 0 && len(r.Orphaned) == 0
}

// Err returns ErrStaleOutput describing every difference, or nil.
func (r *CheckResult) Err() error {
	if r.UpToDate() {
		return nil
	}
	var parts []string
	for _, group := range []struct {
		label string
		paths []string
	}{
		{"missing", r.Missing},
		{"changed", r.Changed},
		{"orphaned", r.Orphaned},
	} {
		if len(group.paths) > 0 {
			parts = append(parts, group.label+": "+strings.Join(group.paths, ", "))
		}
	}
	return errors.WithHint(
		errors.Wrap(errors.ErrStaleOutput, strings.Join(parts, "; ")),
		"run zorsh-gen generate and commit the result")
}

// Check compares files with the contents of dir. Line endings are ignored so a
// checkout with CRLF conversion is not reported as stale.
func Check(dir string, files []typegen.File) (*CheckResult, error) {
	result := &CheckResult{}
	expected := make(map[string]bool, len(files))

	for _, f := range files {
		expected[f.Path] = true
		existing, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(f.Path)))
		if errors.Is(err, fs.ErrNotExist) {
			result.Missing = append(result.Missing, f.Path)
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", f.Path)
		}
		if normalizeLines(existing) != normalizeLines([]byte(f.Content)) {
			result.Changed = append(result.Changed, f.Path)
		}
	}

	orphaned, err := generatedFiles(dir)
	if err != nil {
		return nil, err
	}
	for _, p := range orphaned {
		if !expected[p] {
			result.Orphaned = append(result.Orphaned, p)
		}
	}

	sort.Strings(result.Missing)
	sort.Strings(result.Changed)
	return result, nil
}

// generatedFiles lists the schema files below dir that start with the
// generated header, as sorted slash-separated relative paths.
func generatedFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if errors.Is(err, fs.ErrNotExist) && p == dir {
			return filepath.SkipDir
		}
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != layout.Extension {
			return nil
		}
		ok, err := hasHeader(p)
		if err != nil {
			return err
		}
		if ok {
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan %s", dir)
	}
	sort.Strings(out)
	return out, nil
}

func hasHeader(p string) (bool, error) {
	f, err := os.Open(p)
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	return strings.TrimRight(scanner.Text(), "\r") == emit.Header, nil
}

// normalizeLines rewrites CRLF line endings to LF.
func normalizeLines(content []byte) string {
	return string(bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n")))
}
