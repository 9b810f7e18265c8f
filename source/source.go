// Package source finds and parses the Go files a generation run reads.
//
// Every directory with Go files becomes one module. Its module path is the
// slash-separated directory relative to the input root; the root directory
// itself is named after its package.
package source

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mod/modfile"

	"github.com/teranos/zorsh-gen/errors"
	"github.com/teranos/zorsh-gen/logger"
	"github.com/teranos/zorsh-gen/typegen/extract"
)

// Loader selects how Go files are discovered.
type Loader string

const (
	// LoaderWalk walks the directory tree and parses every file found.
	LoaderWalk Loader = "walk"
	// LoaderPackages asks the go command, honouring build constraints.
	LoaderPackages Loader = "packages"
)

func ParseLoader(s string) (Loader, error) {
	switch Loader(s) {
	case "", LoaderWalk:
		return LoaderWalk, nil
	case LoaderPackages:
		return LoaderPackages, nil
	}
	return "", errors.Newf("unknown loader %q (expected walk or packages)", s)
}

// DefaultIgnoredPatterns are skipped unless configured otherwise.
var DefaultIgnoredPatterns = []string{"tests/", "examples/", "target/"}

type Options struct {
	// IgnoredPatterns are substrings of slash-separated paths relative to the
	// input root. Directories are matched with a trailing slash.
	IgnoredPatterns []string
	Loader          Loader
}

func DefaultOptions() Options {
	return Options{IgnoredPatterns: DefaultIgnoredPatterns, Loader: LoaderWalk}
}

// Ignored reports whether a path relative to the input root is skipped.
func (o Options) Ignored(rel string, dir bool) bool {
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == "" {
		return false
	}
	name := path.Base(rel)
	if dir {
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
			name == "testdata" || name == "vendor" {
			return true
		}
		rel += "/"
	} else if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	for _, p := range o.IgnoredPatterns {
		if p != "" && strings.Contains(rel, p) {
			return true
		}
	}
	return false
}

// Module is one directory of Go files.
type Module struct {
	// Path is the module path types declared here are qualified with
	Path string
	// Dir is the absolute directory
	Dir string
	// ImportPath is the Go import path, empty when no go.mod was found
	ImportPath string
	Package    string
	Files      []*ast.File
	// FileNames are relative to the input root, parallel to Files
	FileNames []string
}

// Tree is the parsed input of a run.
type Tree struct {
	Root string
	// GoModule is the module path declared by the nearest go.mod
	GoModule string
	Fset     *token.FileSet
	// Modules are sorted by Path
	Modules []*Module

	byImport map[string]string
}

// ModuleFor maps a Go import path to the module path of a loaded directory.
func (t *Tree) ModuleFor(importPath string) (string, bool) {
	m, ok := t.byImport[importPath]
	return m, ok
}

var _ extract.ImportResolver = (*Tree)(nil)

// Source returns the extractor input of a module.
func (t *Tree) Source(m *Module) extract.Source {
	return extract.Source{Module: m.Path, Fset: t.Fset, Files: m.Files}
}

func (t *Tree) Module(path string) (*Module, bool) {
	for _, m := range t.Modules {
		if m.Path == path {
			return m, true
		}
	}
	return nil, false
}

// FileCount returns the number of parsed files.
func (t *Tree) FileCount() int {
	n := 0
	for _, m := range t.Modules {
		n += len(m.Files)
	}
	return n
}

// Load parses the Go files under root.
func Load(ctx context.Context, root string, opts Options) (*Tree, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", root)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read input directory %s", root)
	}
	if !info.IsDir() {
		return nil, errors.WithHint(errors.Newf("%s is not a directory", root),
			"pass the directory containing the Go packages to convert")
	}

	log := logger.ComponentLogger("source")
	t := &Tree{Root: abs, Fset: token.NewFileSet(), byImport: make(map[string]string)}

	var modRoot string
	if gomod, ok := findGoMod(abs); ok {
		t.GoModule, err = readModulePath(gomod)
		if err != nil {
			return nil, err
		}
		modRoot = filepath.Dir(gomod)
		log.Debugw("Found go.mod", logger.FieldFile, gomod, "go_module", t.GoModule)
	}

	loader := opts.Loader
	if loader == "" {
		loader = LoaderWalk
	}
	switch loader {
	case LoaderWalk:
		err = t.walk(ctx, opts, log)
	case LoaderPackages:
		err = t.loadPackages(ctx, opts, log)
	default:
		err = errors.Newf("unknown loader %q", loader)
	}
	if err != nil {
		return nil, err
	}

	t.finish(modRoot)
	log.Infow("Loaded sources",
		logger.FieldModules, len(t.Modules),
		logger.FieldFiles, t.FileCount())
	return t, nil
}

func (t *Tree) walk(ctx context.Context, opts Options, log *zap.SugaredLogger) error {
	byDir := make(map[string]*Module)
	var errs error

	err := filepath.WalkDir(t.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(t.Root, p)
		if err != nil {
			return err
		}
		if opts.Ignored(rel, d.IsDir()) {
			if d.IsDir() {
				log.Debugw("Skipping directory", logger.FieldDir, rel)
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		f, err := parser.ParseFile(t.Fset, p, nil, parser.ParseComments)
		if err != nil {
			errs = errors.Append(errs, errors.Wrapf(err, "failed to parse %s", rel))
			return nil
		}

		dir := filepath.Dir(p)
		m := byDir[dir]
		if m == nil {
			m = &Module{Dir: dir, Package: f.Name.Name}
			byDir[dir] = m
		}
		if f.Name.Name != m.Package {
			log.Warnw("Skipping file of a different package",
				logger.FieldFile, rel,
				"package", f.Name.Name,
				"expected", m.Package)
			return nil
		}
		m.Files = append(m.Files, f)
		m.FileNames = append(m.FileNames, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "failed to walk %s", t.Root)
	}
	if errs != nil {
		return errs
	}

	for _, m := range byDir {
		t.Modules = append(t.Modules, m)
	}
	return nil
}

// finish assigns module paths and import paths and sorts the modules.
func (t *Tree) finish(modRoot string) {
	for _, m := range t.Modules {
		rel, _ := filepath.Rel(t.Root, m.Dir)
		if rel == "." {
			m.Path = m.Package
		} else {
			m.Path = filepath.ToSlash(rel)
		}

		if m.ImportPath == "" && t.GoModule != "" {
			if r, err := filepath.Rel(modRoot, m.Dir); err == nil && !strings.HasPrefix(r, "..") {
				m.ImportPath = path.Join(t.GoModule, filepath.ToSlash(r))
			}
		}
		if m.ImportPath != "" {
			t.byImport[m.ImportPath] = m.Path
		}
	}
	sort.Slice(t.Modules, func(i, j int) bool { return t.Modules[i].Path < t.Modules[j].Path })
}

// findGoMod searches dir and its parents for go.mod.
func findGoMod(dir string) (string, bool) {
	for {
		p := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func readModulePath(gomod string) (string, error) {
	data, err := os.ReadFile(gomod)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", gomod)
	}
	f, err := modfile.ParseLax(gomod, data, nil)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse %s", gomod)
	}
	if f.Module == nil {
		return "", errors.Newf("%s has no module directive", gomod)
	}
	return f.Module.Mod.Path, nil
}

// ParseSource parses a single in-memory file as a tree with one module. An
// empty module path names the module after the file's package.
func ParseSource(module, filename string, src []byte) (*Tree, error) {
	t := &Tree{Fset: token.NewFileSet(), byImport: make(map[string]string)}
	f, err := parser.ParseFile(t.Fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", filename)
	}
	if module == "" {
		module = f.Name.Name
	}
	t.Modules = []*Module{{
		Path:      module,
		Package:   f.Name.Name,
		Files:     []*ast.File{f},
		FileNames: []string{filename},
	}}
	return t, nil
}
