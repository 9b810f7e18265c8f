package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/zorsh-gen/errors"
	"github.com/teranos/zorsh-gen/typegen"
	"github.com/teranos/zorsh-gen/typegen/resolve"
)

// newTestCmd builds a command carrying the root and generate flags, reading
// an empty config file so no zorsh.toml of the environment leaks in.
func newTestCmd(t *testing.T, run func(*cobra.Command, []string) error) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "zorsh.toml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0o644))

	cmd := &cobra.Command{Use: "test", RunE: run}
	cmd.Flags().String("config", "", "")
	cmd.Flags().Bool("json", false, "")
	addGenerateFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Set("config", cfgPath))

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func writeGoTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"go.mod": "module example.com/app\n",
		"models/user.go": `package models

//zorsh:generate
type User struct {
	ID   uint64
	Role Role
}

//zorsh:enum
type Role uint8

const (
	RoleAdmin Role = iota
	RoleMember
)
`,
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func TestLoadSettingsPrecedence(t *testing.T) {
	cmd, _ := newTestCmd(t, nil)
	cfgPath, _ := cmd.Flags().GetString("config")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[input]
dir = "from-file"

[output]
structure = "flat"

[generate]
workers = 2
`), 0o644))

	cfg, err := loadSettings(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Input.Dir)
	assert.Equal(t, "flat", cfg.Output.Structure)
	assert.Equal(t, 2, cfg.Generate.Workers)

	require.NoError(t, cmd.Flags().Set("structure", "nested"))
	require.NoError(t, cmd.Flags().Set("ignored-patterns", "gen/,old/"))
	cfg, err = loadSettings(cmd, []string{"in", "out"})
	require.NoError(t, err)
	assert.Equal(t, "in", cfg.Input.Dir)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "nested", cfg.Output.Structure)
	assert.Equal(t, []string{"gen/", "old/"}, cfg.Input.IgnoredPatterns)
	assert.Equal(t, 2, cfg.Generate.Workers)
}

func TestLoadSettingsRejectsInvalidFlag(t *testing.T) {
	cmd, _ := newTestCmd(t, nil)
	require.NoError(t, cmd.Flags().Set("cycles", "sometimes"))

	_, err := loadSettings(cmd, []string{"in", "out"})
	assert.Error(t, err)
}

func TestRequireOutput(t *testing.T) {
	cmd, _ := newTestCmd(t, nil)
	cfg, err := loadSettings(cmd, []string{"in"})
	require.NoError(t, err)

	err = requireOutput(cfg)
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestGenerateThenCheck(t *testing.T) {
	in := writeGoTree(t)
	out := filepath.Join(t.TempDir(), "schemas")

	gen, buf := newTestCmd(t, runGenerate)
	require.NoError(t, runGenerate(gen, []string{in, out}))
	assert.Contains(t, buf.String(), "models.ts")

	data, err := os.ReadFile(filepath.Join(out, "models.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "export const RoleSchema = b.enum({\n    Admin: b.unit(),\n    Member: b.unit()\n});")
	assert.Contains(t, string(data), "Role: RoleSchema")

	check, _ := newTestCmd(t, runCheck)
	require.NoError(t, runCheck(check, []string{in, out}))

	require.NoError(t, os.WriteFile(filepath.Join(out, "models.ts"), []byte("edited"), 0o644))
	err = runCheck(check, []string{in, out})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStaleOutput))
}

func TestGenerateReportsUserErrors(t *testing.T) {
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.go"), []byte(`package a

//zorsh:generate
type A struct {
	B Missing
	C chan int
}
`), 0o644))
	out := filepath.Join(t.TempDir(), "schemas")

	cmd, _ := newTestCmd(t, runGenerate)
	err := runGenerate(cmd, []string{in, out})
	require.Error(t, err)
	assert.True(t, errors.IsUserError(err))

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestInspectWritesYAML(t *testing.T) {
	in := writeGoTree(t)
	cmd, buf := newTestCmd(t, runInspect)
	require.NoError(t, runInspect(cmd, []string{in}))

	assert.Equal(t, `modules:
  - module: models
    file: models.ts
    order:
      - models.Role
      - models.User
`, buf.String())
}

func TestWriteReportIncludesImportsAndDeferred(t *testing.T) {
	result := &typegen.Result{
		Plan: &resolve.Plan{Modules: []*resolve.ModulePlan{{
			Module:   "a",
			Order:    []string{"a.A"},
			Imports:  []string{"b.B"},
			Deferred: []string{"b.B"},
		}}},
		Files: []typegen.File{{Path: "a.ts", Module: "a"}},
	}
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, result))
	assert.Contains(t, buf.String(), "imports:\n      - b.B\n")
	assert.Contains(t, buf.String(), "deferred:\n      - b.B\n")
}

func TestFormatError(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	err := errors.Combine(
		errors.WithHint(errors.New("a: A.B: unknown type Missing"), "declare Missing"),
		errors.New("a: A.C: channels cannot be serialized"),
	)
	text := FormatError(err)
	assert.Contains(t, text, "2 problems found\n")
	assert.Contains(t, text, "✗ a: A.B: unknown type Missing\n  hint: declare Missing\n")
	assert.Contains(t, text, "✗ a: A.C: channels cannot be serialized\n")
}
