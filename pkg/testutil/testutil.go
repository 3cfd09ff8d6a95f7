package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specforge/specinit/pkg/filesystem"
	"github.com/specforge/specinit/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// DefaultRoot is where Project trees are rooted
const DefaultRoot = "/work/beacon-spec"

// Project is an in-memory checkout used by tests
type Project struct {
	t    *testing.T
	Root string
	Mem  afero.Fs
	// Base is the fs the Project writes through; tests may wrap it
	Base afero.Fs
}

// NewProject creates an empty project rooted at DefaultRoot
func NewProject(t *testing.T) *Project {
	t.Helper()
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll(DefaultRoot, 0755))
	return &Project{t: t, Root: DefaultRoot, Mem: mem, Base: mem}
}

// NewTemplateProject creates a project holding a small template checkout
func NewTemplateProject(t *testing.T) *Project {
	t.Helper()
	p := NewProject(t)
	for rel, content := range TemplateFiles() {
		p.File(rel, content)
	}
	return p
}

// TemplateFiles is a minimal template checkout with placeholder tokens
func TemplateFiles() map[string]string {
	return map[string]string{
		"pyproject.toml": "[project]\n" +
			"name = \"{PACKAGE_NAME}\"\n" +
			"description = \"{PROJECT_NAME}\"\n" +
			"authors = [{ name = \"{AUTHOR_NAME}\", email = \"{AUTHOR_EMAIL}\" }]\n" +
			"\n[project.urls]\n" +
			"Repository = \"<repository-url>\"\n",
		"README.md": "# {PROJECT_NAME}\n\n" +
			"Welcome to {PROJECT_NAME}, maintained by {AUTHOR_NAME}.\n\n" +
			"    git clone https://github.com/{GITHUB_REPO}\n",
		"LICENSE":
			"Copyright (c) {YEAR} {AUTHOR_NAME}\n",
		"mkdocs.yml":
			"site_name: {PROJECT_NAME}\nrepo_url: <repository-url>\n",
		"src/specpkg/__init__.py":
			"\"\"\"{PROJECT_NAME}.\"\"\"\n",
		"docs/index.md":
			"No placeholders here.\n",
		"scripts/setup.py":
			"print('{PROJECT_NAME}')\n",
	}
}

// FS returns the project filesystem as seen by specinit
func (p *Project) FS() types.FS {
	return filesystem.NewAferoFS(p.Base)
}

// Abs returns the absolute path of a root-relative slash path
func (p *Project) Abs(rel string) string {
	return filepath.Join(p.Root, filepath.FromSlash(rel))
}

// File writes a file with mode 0644, creating parent directories
func (p *Project) File(rel, content string) *Project {
	return p.FileMode(rel, content, 0644)
}

// FileMode writes a file with the given mode, creating parent directories
func (p *Project) FileMode(rel, content string, mode os.FileMode) *Project {
	p.t.Helper()
	abs := p.Abs(rel)
	require.NoError(p.t, p.Mem.MkdirAll(filepath.Dir(abs), 0755))
	require.NoError(p.t, afero.WriteFile(p.Mem, abs, []byte(content), mode))
	require.NoError(p.t, p.Mem.Chmod(abs, mode))
	return p
}

// Dir creates a directory
func (p *Project) Dir(rel string) *Project {
	p.t.Helper()
	require.NoError(p.t, p.Mem.MkdirAll(p.Abs(rel), 0755))
	return p
}

// Read returns the content of a file, failing the test if it is missing
func (p *Project) Read(rel string) string {
	p.t.Helper()
	data, err := afero.ReadFile(p.Mem, p.Abs(rel))
	require.NoError(p.t, err)
	return string(data)
}

// Exists reports whether rel exists
func (p *Project) Exists(rel string) bool {
	p.t.Helper()
	ok, err := afero.Exists(p.Mem, p.Abs(rel))
	require.NoError(p.t, err)
	return ok
}

// Mode returns the permission bits of rel
func (p *Project) Mode(rel string) os.FileMode {
	p.t.Helper()
	info, err := p.Mem.Stat(p.Abs(rel))
	require.NoError(p.t, err)
	return info.Mode().Perm()
}

// Backdate sets the mtime of rel to a fixed point in the past and returns it
func (p *Project) Backdate(rel string) time.Time {
	p.t.Helper()
	when := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(p.t, p.Mem.Chtimes(p.Abs(rel), when, when))
	return when
}

// ModTime returns the mtime of rel
func (p *Project) ModTime(rel string) time.Time {
	p.t.Helper()
	info, err := p.Mem.Stat(p.Abs(rel))
	require.NoError(p.t, err)
	return info.ModTime()
}

// SkipOnWindows skips the test if running on Windows.
func SkipOnWindows(t *testing.T) {
	t.Helper()
	if os.PathSeparator == '\\' {
		t.Skip("Test not supported on Windows")
	}
}

