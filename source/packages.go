package source

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/teranos/zorsh-gen/errors"
	"github.com/teranos/zorsh-gen/logger"
)

const packagesMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax | packages.NeedModule

// loadPackages discovers packages through the go command. Build constraints
// are honoured, so files excluded for the current platform are not read.
func (t *Tree) loadPackages(ctx context.Context, opts Options, log *zap.SugaredLogger) error {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    packagesMode,
		Dir:     t.Root,
		Fset:    t.Fset,
	}
	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return errors.Wrapf(err, "failed to load packages under %s", t.Root)
	}

	var errs error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = errors.Append(errs, errors.Newf("%s: %s", pkg.PkgPath, e.Error()))
		}
		if len(pkg.GoFiles) == 0 || len(pkg.Syntax) == 0 {
			continue
		}

		dir := filepath.Dir(pkg.GoFiles[0])
		rel, err := filepath.Rel(t.Root, dir)
		if err != nil || ignoredDir(opts, rel) {
			log.Debugw("Skipping package", "package", pkg.PkgPath, logger.FieldDir, rel)
			continue
		}
		if t.GoModule == "" && pkg.Module != nil {
			t.GoModule = pkg.Module.Path
		}

		m := &Module{Dir: dir, ImportPath: pkg.PkgPath, Package: pkg.Name}
		for _, f := range pkg.Syntax {
			name := t.Fset.Position(f.Package).Filename
			frel, err := filepath.Rel(t.Root, name)
			if err != nil || opts.Ignored(frel, false) {
				continue
			}
			m.Files = append(m.Files, f)
			m.FileNames = append(m.FileNames, filepath.ToSlash(frel))
		}
		if len(m.Files) > 0 {
			t.Modules = append(t.Modules, m)
		}
	}
	return errs
}

// ignoredDir checks every directory between the root and rel.
func ignoredDir(opts Options, rel string) bool {
	for rel != "." && rel != "" {
		if opts.Ignored(rel, true) {
			return true
		}
		rel = filepath.Dir(rel)
	}
	return false
}
