package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePath(t *testing.T) {
	tests := []struct {
		module    string
		structure Structure
		want      string
	}{
		{"pkg/item", Nested, "pkg/item.ts"},
		{"pkg.item", Nested, "pkg/item.ts"},
		{"Types", Nested, "types.ts"},
		{"pkg/item", Flat, "pkg_item.ts"},
		{"a/b/c", Flat, "a_b_c.ts"},
		{"", Nested, "index.ts"},
	}
	for _, tt := range tests {
		t.Run(string(tt.structure)+"/"+tt.module, func(t *testing.T) {
			assert.Equal(t, tt.want, Layout{Structure: tt.structure}.FilePath(tt.module))
		})
	}
}

func TestImportPath(t *testing.T) {
	tests := []struct {
		from, to  string
		structure Structure
		want      string
	}{
		{"pkg/inventory", "pkg/item", Nested, "./item"},
		{"types", "models", Nested, "./models"},
		{"types", "pkg/item", Nested, "./pkg/item"},
		{"pkg/item", "types", Nested, "../types"},
		{"a/b/c", "a/d/e", Nested, "../d/e"},
		{"a/b", "a/b/c", Nested, "./b/c"},
		{"a/b/c", "a", Nested, "../../a"},
		{"pkg/inventory", "pkg/item", Flat, "./pkg_item"},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, Layout{Structure: tt.structure}.ImportPath(tt.from, tt.to))
		})
	}
}

func TestParseStructure(t *testing.T) {
	s, err := ParseStructure("")
	require.NoError(t, err)
	assert.Equal(t, Nested, s)

	s, err = ParseStructure("flat")
	require.NoError(t, err)
	assert.Equal(t, Flat, s)

	_, err = ParseStructure("tree")
	assert.Error(t, err)
}
