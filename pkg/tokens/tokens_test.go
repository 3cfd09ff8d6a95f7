package tokens_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specforge/specinit/pkg/config"
	"github.com/specforge/specinit/pkg/errors"
	"github.com/specforge/specinit/pkg/tokens"
)

func beaconAnswers() config.Answers {
	return config.Answers{
		ProjectName: "Beacon Spec",
		PackageName: "beacon_spec",
		GithubOrg:   "acme",
		AuthorName:  "Jane Doe",
		AuthorEmail: "jane@example.org",
		Year:        "2026",
	}
}

func defaultMap(t *testing.T, legacy bool) *tokens.Map {
	t.Helper()
	m, err := tokens.Build(tokens.Definitions(config.Default(), legacy), beaconAnswers())
	require.NoError(t, err)
	return m
}

func TestDefinitionsOrder(t *testing.T) {
	defs := tokens.Definitions(config.Default(), false)
	var got []string
	for _, d := range defs {
		got = append(got, d.Token)
	}
	want := []string{
		"{PROJECT_NAME}", "{PACKAGE_NAME}", "{GITHUB_ORG}", "{AUTHOR_NAME}",
		"{AUTHOR_EMAIL}", "{YEAR}", "{GITHUB_REPO}", "<repository-url>",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Definitions() order mismatch (-want +got):\n%s", diff)
	}

	withLegacy := tokens.Definitions(config.Default(), true)
	assert.Greater(t, len(withLegacy), len(defs))
}

func TestBuildRendersTemplates(t *testing.T) {
	m := defaultMap(t, false)

	got := map[string]string{}
	for _, b := range m.Bindings() {
		got[b.Token] = b.Value
	}
	assert.Equal(t, "Beacon Spec", got["{PROJECT_NAME}"])
	assert.Equal(t, "acme/beacon_spec", got["{GITHUB_REPO}"])
	assert.Equal(t, "https://github.com/acme/beacon_spec", got["<repository-url>"])
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		defs []tokens.Definition
		code errors.ErrorCode
	}{
		{
			name: "malformed_template",
			defs: []tokens.Definition{{Key: "x", Token: "{X}", Value: "{{ .ProjectName"}},
			code: errors.ErrTemplate,
		},
		{
			name: "unknown_field",
			defs: []tokens.Definition{{Key: "x", Token: "{X}", Value: "{{ .Nope }}"}},
			code: errors.ErrTemplate,
		},
		{
			name: "empty_token",
			defs: []tokens.Definition{{Key: "x", Token: "", Value: "v"}},
			code: errors.ErrInvalidInput,
		},
		{
			name: "duplicate_token",
			defs: []tokens.Definition{
				{Key: "a", Token: "{X}", Value: "1"},
				{Key: "b", Token: "{X}", Value: "2"},
			},
			code: errors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Build(tt.defs, beaconAnswers())
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}

func TestApplyScenario(t *testing.T) {
	m := defaultMap(t, false)

	out, counts := m.Apply("Welcome to {PROJECT_NAME}, maintained by {AUTHOR_NAME}.")

	assert.Equal(t, "Welcome to Beacon Spec, maintained by Jane Doe.", out)
	assert.Equal(t, map[string]int{"{PROJECT_NAME}": 1, "{AUTHOR_NAME}": 1}, counts)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		bindings []tokens.Binding
		in       string
		want     string
		counts   map[string]int
	}{
		{
			name:     "no_tokens_returns_input",
			bindings: []tokens.Binding{{Key: "a", Token: "{A}", Value: "x"}},
			in:       "plain text { A }",
			want:     "plain text { A }",
			counts:   map[string]int{},
		},
		{
			name:     "multiple_occurrences",
			bindings: []tokens.Binding{{Key: "a", Token: "{A}", Value: "x"}},
			in:       "{A}{A} and {A}",
			want:     "xx and x",
			counts:   map[string]int{"{A}": 3},
		},
		{
			name: "longest_token_wins",
			bindings: []tokens.Binding{
				{Key: "short", Token: "ethereum-specs", Value: "SHORT"},
				{Key: "long", Token: "ethereum-specs-extra", Value: "LONG"},
			},
			in:     "ethereum-specs-extra ethereum-specs",
			want:   "LONG SHORT",
			counts: map[string]int{"ethereum-specs-extra": 1, "ethereum-specs": 1},
		},
		{
			name: "replacement_output_is_not_rescanned",
			bindings: []tokens.Binding{
				{Key: "a", Token: "{A}", Value: "{B}"},
				{Key: "b", Token: "{B}", Value: "b"},
			},
			in:     "{A} {B}",
			want:   "{B} b",
			counts: map[string]int{"{A}": 1, "{B}": 1},
		},
		{
			name:     "multibyte_content",
			bindings: []tokens.Binding{{Key: "a", Token: "{A}", Value: "Ünïcødé"}},
			in:       "→ {A} ←",
			want:     "→ Ünïcødé ←",
			counts:   map[string]int{"{A}": 1},
		},
		{
			name:     "token_at_end",
			bindings: []tokens.Binding{{Key: "a", Token: "{A}", Value: "z"}},
			in:       "end {A}",
			want:     "end z",
			counts:   map[string]int{"{A}": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tokens.NewMap(tt.bindings)
			require.NoError(t, err)

			got, counts := m.Apply(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.counts, counts)
		})
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	m := defaultMap(t, false)
	in := strings.Join([]string{
		"name = \"{PACKAGE_NAME}\"",
		"authors = [{ name = \"{AUTHOR_NAME}\", email = \"{AUTHOR_EMAIL}\" }]",
		"Copyright (c) {YEAR} {AUTHOR_NAME}",
		"git clone <repository-url>",
	}, "\n")

	once, counts := m.Apply(in)
	require.NotEmpty(t, counts)
	assert.Empty(t, m.Contains(once), "no token may survive a pass")

	twice, counts := m.Apply(once)
	assert.Equal(t, once, twice)
	assert.Empty(t, counts)
}

func TestLegacyLiterals(t *testing.T) {
	m := defaultMap(t, true)

	out, _ := m.Apply("https://github.com/ethereum/ethereum-protocol-specs (c) 2024 Your Name")

	assert.Equal(t, "https://github.com/acme/beacon_spec (c) 2026 Jane Doe", out)
}

func TestContainsAndProbe(t *testing.T) {
	probe, err := tokens.Probe(tokens.Definitions(config.Default(), false))
	require.NoError(t, err)

	assert.Equal(t, []string{"{PROJECT_NAME}", "{YEAR}"}, probe.Contains("# {PROJECT_NAME} (c) {YEAR}"))
	assert.Empty(t, probe.Contains("# Beacon"))
	assert.Equal(t, 8, probe.Len())
	assert.Len(t, probe.Tokens(), 8)
}

func TestZeroMap(t *testing.T) {
	m, err := tokens.NewMap(nil)
	require.NoError(t, err)
	out, counts := m.Apply("{PROJECT_NAME}")
	assert.Equal(t, "{PROJECT_NAME}", out)
	assert.Empty(t, counts)
}
