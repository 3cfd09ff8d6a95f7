package specinit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specforge/specinit/cmd/specinit"
	"github.com/specforge/specinit/pkg/errors"
	"github.com/specforge/specinit/pkg/filesystem"
	"github.com/specforge/specinit/pkg/testutil"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}

func execute(t *testing.T, p *testutil.Project, driver *testutil.ScriptedDriver, args ...string) (string, error) {
	t.Helper()
	env := specinit.Env{
		FS:     p.FS(),
		Getwd:  func() (string, error) { return p.Root, nil },
		Driver: driver,
	}
	if driver != nil {
		env.Interactive = true
	}

	cmd := specinit.NewRootCmdWithEnv(env)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var answerFlags = []string{
	"--project-name", "Beacon Spec",
	"--package-name", "beacon_spec",
	"--github-org", "acme",
	"--author-name", "Jane Doe",
	"--author-email", "jane@example.org",
	"--year", "2026",
}

func TestRootCmd_NonInteractive(t *testing.T) {
	isolate(t)
	p := testutil.NewTemplateProject(t)

	args := append([]string{"--non-interactive", "--format", "text"}, answerFlags...)
	out, err := execute(t, p, nil, args...)
	require.NoError(t, err)

	assert.Contains(t, out, "Setup complete!")
	assert.Contains(t, out, "Next steps")
	assert.Contains(t, out, "https://github.com/acme/beacon_spec")
	assert.Equal(t, "Copyright (c) 2026 Jane Doe\n", p.Read("LICENSE"))
	assert.False(t, p.Exists("scripts/setup.py"))
}

func TestRootCmd_SecondRunIsNoop(t *testing.T) {
	isolate(t)
	p := testutil.NewTemplateProject(t)
	args := append([]string{"--non-interactive", "--format", "text"}, answerFlags...)

	_, err := execute(t, p, nil, args...)
	require.NoError(t, err)
	readme := p.Read("README.md")

	out, err := execute(t, p, nil, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Project already configured:")
	assert.Equal(t, readme, p.Read("README.md"))
}

func TestRootCmd_MissingAnswers(t *testing.T) {
	isolate(t)
	p := testutil.NewTemplateProject(t)

	_, err := execute(t, p, nil, "--non-interactive", "--format", "text", "--package-name", "Not Valid")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Contains(t, p.Read("LICENSE"), "{YEAR}")
}

func TestRootCmd_WriteFailure(t *testing.T) {
	isolate(t)
	p := testutil.NewTemplateProject(t)
	p.Fail().FailWrite(p.Abs("README.md"), fs.ErrPermission)

	args := append([]string{"--non-interactive", "--format", "text"}, answerFlags...)
	out, err := execute(t, p, nil, args...)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPartialFailure))

	assert.Contains(t, out, "README.md [write] permission denied")
	assert.NotContains(t, out, "Next steps")
	assert.Equal(t, "Copyright (c) 2026 Jane Doe\n", p.Read("LICENSE"))
	assert.True(t, p.Exists("scripts/setup.py"))
}

func TestRootCmd_UnreadableFile(t *testing.T) {
	isolate(t)
	p := testutil.NewTemplateProject(t)
	p.Fail().FailRead(p.Abs("LICENSE"), fs.ErrPermission)

	args := append([]string{"--non-interactive", "--format", "text"}, answerFlags...)
	out, err := execute(t, p, nil, args...)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPartialFailure))

	assert.Contains(t, out, "Could not scan:")
	assert.True(t, p.Exists("scripts/setup.py"))
}

func TestRootCmd_Interrupted(t *testing.T) {
	isolate(t)
	p := testutil.NewTemplateProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := specinit.NewRootCmdWithEnv(specinit.Env{
		FS:    p.FS(),
		Getwd: func() (string, error) { return p.Root, nil },
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--non-interactive", "--format", "text"}, answerFlags...))

	err := cmd.ExecuteContext(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCancelled))
	assert.Contains(t, out.String(), "Setup interrupted.")
	assert.Contains(t, p.Read("LICENSE"), "{YEAR}")
	assert.True(t, p.Exists("scripts/setup.py"))
}

func TestRootCmd_DryRun(t *testing.T) {
	isolate(t)
	p := testutil.NewTemplateProject(t)

	args := append([]string{"--non-interactive", "--dry-run", "--format", "text"}, answerFlags...)
	out, err := execute(t, p, nil, args...)
	require.NoError(t, err)

	assert.Contains(t, out, "DRY RUN")
	assert.NotContains(t, out, "Next steps")
	assert.Contains(t, p.Read("LICENSE"), "{YEAR}")
	assert.True(t, p.Exists("scripts/setup.py"))
}

func TestRootCmd_Interactive(t *testing.T) {
	isolate(t)
	p := testutil.NewTemplateProject(t)
	driver := testutil.NewScriptedDriver(
		"Beacon Spec", "beacon_spec", "acme", "Jane Doe", "jane@example.org", "2026",
	).WithConfirms(true)

	out, err := execute(t, p, driver, "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "Setup complete!")
	assert.Len(t, driver.Asked, 6)
	assert.Contains(t, p.Read("README.md"), "Welcome to Beacon Spec, maintained by Jane Doe.")
}

func TestRootCmd_InteractiveDeclined(t *testing.T) {
	isolate(t)
	p := testutil.NewTemplateProject(t)
	driver := testutil.NewScriptedDriver(
		"Beacon Spec", "beacon_spec", "acme", "Jane Doe", "jane@example.org", "2026",
	).WithConfirms(false)

	out, err := execute(t, p, driver, "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "Setup cancelled.")
	assert.Contains(t, p.Read("LICENSE"), "{YEAR}")
}

func TestRootCmd_JSONNeverPrompts(t *testing.T) {
	isolate(t)
	p := testutil.NewTemplateProject(t)
	driver := testutil.NewScriptedDriver()

	args := append([]string{"--format", "json"}, answerFlags...)
	out, err := execute(t, p, driver, args...)
	require.NoError(t, err)
	assert.Empty(t, driver.Asked)

	var view map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, true, view["success"])
	assert.Equal(t, false, view["already_configured"])
}

func TestRootCmd_BadFormat(t *testing.T) {
	isolate(t)
	p := testutil.NewTemplateProject(t)

	_, err := execute(t, p, nil, "--format", "yaml")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestCheckCmd(t *testing.T) {
	isolate(t)
	p := testutil.NewTemplateProject(t)

	out, err := execute(t, p, nil, "check", "--format", "text")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTokensRemain))
	assert.Contains(t, out, "still contain placeholder tokens")
	assert.Contains(t, out, "LICENSE")

	args := append([]string{"--non-interactive", "--keep", "--format", "text"}, answerFlags...)
	_, err = execute(t, p, nil, args...)
	require.NoError(t, err)

	out, err = execute(t, p, nil, "check", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Clean:")
}

func TestTokensCmd(t *testing.T) {
	isolate(t)
	p := testutil.NewProject(t)

	out, err := execute(t, p, nil, "tokens", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "{PROJECT_NAME}")
	assert.Contains(t, out, "{GITHUB_REPO}")

	out, err = execute(t, p, nil, "tokens", "--defaults")
	require.NoError(t, err)
	assert.Contains(t, out, `marker = "pyproject.toml"`)
}

func TestTokensCmd_ProjectConfig(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".specinit.toml"),
		[]byte("[tokens.year]\ntoken = \"{COPYRIGHT_YEAR}\"\n"), 0644))

	cmd := specinit.NewRootCmdWithEnv(specinit.Env{
		FS:    filesystem.NewOS(),
		Getwd: func() (string, error) { return root, nil },
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"tokens", "--format", "text"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "{COPYRIGHT_YEAR}")
	assert.NotContains(t, out.String(), "{YEAR}")
}

func TestVersionCmd(t *testing.T) {
	isolate(t)
	p := testutil.NewProject(t)

	out, err := execute(t, p, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "specinit")
}

func TestCompletionCmd(t *testing.T) {
	isolate(t)
	p := testutil.NewProject(t)

	out, err := execute(t, p, nil, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "specinit")

	_, err = execute(t, p, nil, "completion", "tcsh")
	require.Error(t, err)
}

func TestHelpTopics(t *testing.T) {
	isolate(t)
	p := testutil.NewProject(t)

	out, err := execute(t, p, nil, "help", "topics")
	require.NoError(t, err)
	assert.Contains(t, out, "legacy")
	assert.Contains(t, out, "--dry-run")

	out, err = execute(t, p, nil, "help", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "already been configured")
}
