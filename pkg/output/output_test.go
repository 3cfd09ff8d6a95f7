package output_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specforge/specinit/pkg/config"
	"github.com/specforge/specinit/pkg/errors"
	"github.com/specforge/specinit/pkg/initializer"
	"github.com/specforge/specinit/pkg/output"
	"github.com/specforge/specinit/pkg/testutil"
	"github.com/specforge/specinit/pkg/tokens"
)

func runTemplate(t *testing.T, setup func(p *testutil.Project), opts initializer.Options) *initializer.Result {
	t.Helper()
	p := testutil.NewTemplateProject(t)
	if setup != nil {
		setup(p)
	}
	cfg := config.Default()
	cfg.Answers = testutil.BeaconAnswers()
	opts.Root = p.Root
	opts.FS = p.FS()
	opts.Config = cfg
	res, err := initializer.Run(context.Background(), opts)
	require.NoError(t, err)
	return res
}

func render(t *testing.T, format output.Format, result interface{}) string {
	t.Helper()
	var buf bytes.Buffer
	r, err := output.NewRenderer(format, &buf)
	require.NoError(t, err)
	require.NoError(t, r.RenderResult(result))
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    output.Format
		wantErr bool
	}{
		{"", output.FormatAuto, false},
		{"auto", output.FormatAuto, false},
		{"terminal", output.FormatTerminal, false},
		{"TEXT", output.FormatText, false},
		{"plain", output.FormatText, false},
		{"json", output.FormatJSON, false},
		{"xml", output.FormatAuto, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := output.ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.in != "" {
				assert.NotEqual(t, "unknown", got.String())
			}
		})
	}
}

func TestAutoFormatOnBufferIsPlain(t *testing.T) {
	res := runTemplate(t, nil, initializer.Options{})
	out := render(t, output.FormatAuto, res)
	assert.NotContains(t, out, "\x1b[")
}

func TestTextRender_Success(t *testing.T) {
	res := runTemplate(t, nil, initializer.Options{})
	out := render(t, output.FormatText, res)

	assert.Contains(t, out, "README.md")
	assert.Contains(t, out, "{PROJECT_NAME}")
	assert.Contains(t, out, "Updated 5 file(s), 1 unchanged.")
	assert.Contains(t, out, "Removed scripts/setup.py")
	assert.Contains(t, out, "Setup complete!")
	assert.NotContains(t, out, "\x1b[")
}

func TestTextRender_PartialFailure(t *testing.T) {
	res := runTemplate(t, func(p *testutil.Project) {
		p.Fail().FailWrite(p.Abs("LICENSE"), fs.ErrPermission)
	}, initializer.Options{})
	out := render(t, output.FormatText, res)

	assert.Contains(t, out, "Failed to update:")
	assert.Contains(t, out, "LICENSE [write] permission denied")
	assert.Contains(t, out, "Unresolved tokens remain in:")
	assert.Contains(t, out, "Setup incomplete.")
	assert.NotContains(t, out, "Setup complete!")
}

func TestTextRender_ScanFailure(t *testing.T) {
	res := runTemplate(t, func(p *testutil.Project) {
		p.Fail().FailRead(p.Abs("LICENSE"), fs.ErrPermission)
	}, initializer.Options{})
	out := render(t, output.FormatText, res)

	assert.Contains(t, out, "Could not scan:")
	assert.Contains(t, out, "LICENSE [scan] permission denied")
	assert.Contains(t, out, "Setup incomplete.")
	assert.NotContains(t, out, "Removed scripts/setup.py")

	var view map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(render(t, output.FormatJSON, res)), &view))
	assert.Equal(t, false, view["success"])
}

func TestTextRender_Interrupted(t *testing.T) {
	p := testutil.NewTemplateProject(t)
	cfg := config.Default()
	cfg.Answers = testutil.BeaconAnswers()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := initializer.Run(ctx, initializer.Options{Root: p.Root, FS: p.FS(), Config: cfg})
	require.NoError(t, err)

	out := render(t, output.FormatText, res)
	assert.Contains(t, out, "Setup interrupted.")
	assert.NotContains(t, out, "Setup complete!")
}

func TestTextRender_DryRunAndStates(t *testing.T) {
	dry := runTemplate(t, nil, initializer.Options{DryRun: true})
	out := render(t, output.FormatText, dry)
	assert.Contains(t, out, "DRY RUN")
	assert.Contains(t, out, "Would update 5 file(s)")

	out = render(t, output.FormatText, &initializer.Result{AlreadyConfigured: true})
	assert.Contains(t, out, "Project already configured")

	out = render(t, output.FormatText, &initializer.Result{Cancelled: true})
	assert.Contains(t, out, "Setup cancelled.")
}

func TestTextRender_Check(t *testing.T) {
	report := &initializer.CheckReport{
		Scanned: 3,
		Files:   []string{"README.md"},
		Tokens:  map[string][]string{"README.md": {"{PROJECT_NAME}"}},
	}
	out := render(t, output.FormatText, report)
	assert.Contains(t, out, "1 file(s) still contain placeholder tokens (3 scanned)")
	assert.Contains(t, out, "README.md: {PROJECT_NAME}")

	out = render(t, output.FormatText, &initializer.CheckReport{Scanned: 3, Tokens: map[string][]string{}})
	assert.Contains(t, out, "Clean: no placeholder tokens in 3 file(s).")
}

func TestTextRender_Tokens(t *testing.T) {
	list := output.TokenList{Definitions: tokens.Definitions(config.Default(), false)}
	out := render(t, output.FormatText, list)
	assert.Contains(t, out, "{GITHUB_REPO}")
	assert.Contains(t, out, "{{ .GithubOrg }}/{{ .PackageName }}")
	assert.Contains(t, out, "--legacy")
}

func TestJSONRender_Run(t *testing.T) {
	res := runTemplate(t, func(p *testutil.Project) {
		p.Fail().FailWrite(p.Abs("LICENSE"), fs.ErrPermission)
	}, initializer.Options{})
	out := render(t, output.FormatJSON, res)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, false, got["success"])
	assert.Len(t, got["modified"], 4)

	failures := got["failures"].([]interface{})
	require.Len(t, failures, 1)
	failure := failures[0].(map[string]interface{})
	assert.Equal(t, "LICENSE", failure["path"])
	assert.Equal(t, "FILE_WRITE", failure["code"])

	answers := got["answers"].(map[string]interface{})
	assert.Equal(t, "beacon_spec", answers["package_name"])
}

func TestJSONRender_ErrorAndMessage(t *testing.T) {
	var buf bytes.Buffer
	r, err := output.NewRenderer(output.FormatJSON, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderError(errors.New(errors.ErrNotProjectRoot, "pyproject.toml not found")))
	require.NoError(t, r.RenderMarkdown("# ignored"))
	require.NoError(t, r.RenderMessage("hello"))

	dec := json.NewDecoder(&buf)
	var first, second map[string]string
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, "NOT_PROJECT_ROOT", first["code"])
	assert.Equal(t, "hello", second["message"])
}

func TestRenderMarkdown(t *testing.T) {
	var plain bytes.Buffer
	r, err := output.NewRenderer(output.FormatText, &plain)
	require.NoError(t, err)
	require.NoError(t, r.RenderMarkdown("## Next steps\n\n1. Run `uv sync`\n"))
	assert.Equal(t, "## Next steps\n\n1. Run `uv sync`\n", plain.String())

	var rich bytes.Buffer
	r, err = output.NewRenderer(output.FormatTerminal, &rich)
	require.NoError(t, err)
	require.NoError(t, r.RenderMarkdown("## Next steps\n\n1. Run `uv sync`\n"))
	assert.Contains(t, rich.String(), "Next steps")
	assert.Contains(t, rich.String(), "uv sync")
}

func TestRenderError(t *testing.T) {
	var buf bytes.Buffer
	r, err := output.NewRenderer(output.FormatText, &buf)
	require.NoError(t, err)
	require.NoError(t, r.RenderError(errors.New(errors.ErrInvalidInput, "bad")))
	assert.Equal(t, "Error: [INVALID_INPUT] bad\n", buf.String())
}
