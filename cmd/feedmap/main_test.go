package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPathsCmd(t *testing.T) {
	out, err := run(t, `{"b":{"c":1},"a":[2]}`, "paths")
	require.NoError(t, err)
	assert.Equal(t, "$.a\n$.a[*]\n$.b\n$.b.c\n", out)
}

func TestInspectCmd(t *testing.T) {
	doc := writeFile(t, "doc.json", `[["P1", 3]]`)
	out, err := run(t, "", "inspect", "--format", "keyed", doc)
	require.NoError(t, err)
	assert.Contains(t, out, `"formatMismatch": true`)
	assert.Contains(t, out, `"suggestedFormat": "positional"`)

	_, err = run(t, "", "inspect", "--format", "grid", doc)
	assert.Error(t, err)
}

func TestResolveCmd(t *testing.T) {
	out, err := run(t, `{"stats":{"occ":0.75}}`, "resolve", "stats.occ")
	require.NoError(t, err)
	assert.Equal(t, "0.75\n", out)

	out, err = run(t, `["P1", 3]`, "resolve", "--format", "positional", "1")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	_, err = run(t, `{"a":1}`, "resolve", "missing")
	assert.Error(t, err)
}

func TestEvalCmd(t *testing.T) {
	cfg := writeFile(t, "mapping.yaml", `
target_mode: collection
format: keyed
entity_key: id
mappings:
  - address: region
    category: attribute
    field: region
`)
	entities := writeFile(t, "entities.yaml", "h1: Harbor Hotel\n")

	out, err := run(t, `{"data":[{"id":"h1","region":"West"}]}`, "eval", "-m", cfg, "-e", entities)
	require.NoError(t, err)
	assert.Contains(t, out, `"displayName": "Harbor Hotel"`)
	assert.Contains(t, out, `"Region": "West"`)

	_, err = run(t, `{}`, "eval")
	assert.Error(t, err, "mapping flag is required")

	_, err = run(t, `{"a":`, "eval", "-m", cfg)
	assert.Error(t, err)
}
