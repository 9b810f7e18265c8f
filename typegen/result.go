// Package typegen holds the results shared by the generation pipeline. The
// stages live in subpackages: model, extract, resolve, layout and emit.
package typegen

import (
	"sort"

	"github.com/teranos/zorsh-gen/typegen/resolve"
)

// Result is everything one generation run produced. Nothing is written to disk
// until a Result exists, so a failing run never leaves partial output.
type Result struct {
	// Plan is the emission plan the files were rendered from
	Plan *resolve.Plan

	// Files holds one generated file per module, sorted by path
	Files []File
}

// File is one generated schema file.
type File struct {
	// Path is slash-separated and relative to the output directory
	Path string
	// Module is the module path the file was generated for
	Module string
	// Content is the complete file text
	Content string
	// Types lists the fully-qualified names declared in the file, in emission order
	Types []string
}

// TypeCount returns the number of declarations across all files.
func (r *Result) TypeCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Types)
	}
	return n
}

// File returns the generated file of a module.
func (r *Result) File(module string) (File, bool) {
	for _, f := range r.Files {
		if f.Module == module {
			return f, true
		}
	}
	return File{}, false
}

// SortFiles orders Files by path.
func (r *Result) SortFiles() {
	sort.Slice(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })
}
