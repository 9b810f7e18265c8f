// Package layout maps module paths to generated file paths and computes the
// import specifiers between them.
package layout

import (
	"path"
	"strings"

	"github.com/teranos/zorsh-gen/errors"
)

// Structure selects how modules become files.
type Structure string

const (
	// Nested mirrors the module hierarchy: a/b -> a/b.ts
	Nested Structure = "nested"
	// Flat puts every module in the output root: a/b -> a_b.ts
	Flat Structure = "flat"
)

// Extension of generated files.
const Extension = ".ts"

func ParseStructure(s string) (Structure, error) {
	switch Structure(s) {
	case "", Nested:
		return Nested, nil
	case Flat:
		return Flat, nil
	}
	return "", errors.Newf("unknown output structure %q (expected nested or flat)", s)
}

type Layout struct {
	Structure Structure
}

// Segments splits a module path on "/" and ".".
func Segments(module string) []string {
	return strings.FieldsFunc(module, func(r rune) bool { return r == '/' || r == '.' })
}

// FilePath is the slash-separated path of a module's generated file, relative
// to the output root.
func (l Layout) FilePath(module string) string {
	return l.stem(module) + Extension
}

func (l Layout) stem(module string) string {
	segs := Segments(strings.ToLower(module))
	if len(segs) == 0 {
		segs = []string{"index"}
	}
	if l.Structure == Flat {
		return strings.Join(segs, "_")
	}
	return strings.Join(segs, "/")
}

// ImportPath is the ES module specifier a file for module from uses to import
// module to: "./item", "../item/types".
func (l Layout) ImportPath(from, to string) string {
	fromDir := strings.Split(path.Dir(l.stem(from)), "/")
	target := strings.Split(l.stem(to), "/")
	if fromDir[0] == "." {
		fromDir = nil
	}

	common := 0
	for common < len(fromDir) && common < len(target)-1 && fromDir[common] == target[common] {
		common++
	}

	var parts []string
	for range fromDir[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, target[common:]...)

	rel := strings.Join(parts, "/")
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}
