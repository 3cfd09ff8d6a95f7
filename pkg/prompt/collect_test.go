package prompt_test

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specforge/specinit/pkg/config"
	"github.com/specforge/specinit/pkg/errors"
	"github.com/specforge/specinit/pkg/prompt"
	"github.com/specforge/specinit/pkg/testutil"
)

func TestCollectConfiguration(t *testing.T) {
	d := testutil.NewScriptedDriver("Beacon Spec", "beacon_spec", "acme", "Jane Doe", "jane@example.org", "2026")

	got, err := prompt.CollectConfiguration(context.Background(), d, config.Answers{}, config.Answers{})
	require.NoError(t, err)
	assert.Equal(t, testutil.BeaconAnswers(), got)

	require.Len(t, d.Asked, 6)
	assert.Equal(t, "Project name:", d.Asked[0].Message)
	assert.Equal(t, "Copyright year:", d.Asked[5].Message)
}

func TestCollectConfiguration_Defaults(t *testing.T) {
	defaults := config.Answers{ProjectName: "beacon-spec", GithubOrg: "acme", Year: "2026"}
	seed := config.Answers{AuthorName: "Jane Doe", AuthorEmail: "not an email"}

	d := testutil.NewScriptedDriver("Beacon Spec", "", "", "", "jane@example.org", "")
	got, err := prompt.CollectConfiguration(context.Background(), d, seed, defaults)
	require.NoError(t, err)

	assert.Equal(t, "beacon-spec", d.Asked[0].Default)
	// derived from the project name typed at the first prompt
	assert.Equal(t, "beacon_spec", d.Asked[1].Default)
	assert.Equal(t, "Jane Doe", d.Asked[3].Default)
	assert.Empty(t, d.Asked[4].Default, "invalid seed values are not offered")

	assert.Equal(t, testutil.BeaconAnswers(), got)
}

func TestCollectConfiguration_Reprompts(t *testing.T) {
	d := testutil.NewScriptedDriver(
		"Beacon Spec",
		"beacon-spec", "2beacon", "beacon_spec",
		"acme", "Jane Doe",
		"jane@", "jane@example.org",
		"26", "2026",
	)

	got, err := prompt.CollectConfiguration(context.Background(), d, config.Answers{}, config.Answers{})
	require.NoError(t, err)
	assert.Equal(t, "beacon_spec", got.PackageName)
	assert.Equal(t, "2026", got.Year)
	assert.Len(t, d.Rejected, 4)
}

func TestCollectConfiguration_TrimsInput(t *testing.T) {
	d := testutil.NewScriptedDriver("  Beacon Spec ", "beacon_spec", "acme", " Jane Doe", "jane@example.org", "2026")

	got, err := prompt.CollectConfiguration(context.Background(), d, config.Answers{}, config.Answers{})
	require.NoError(t, err)
	assert.Equal(t, "Beacon Spec", got.ProjectName)
	assert.Equal(t, "Jane Doe", got.AuthorName)
}

func TestCollectConfiguration_Aborted(t *testing.T) {
	d := testutil.NewScriptedDriver()
	d.Err = prompt.ErrAborted

	_, err := prompt.CollectConfiguration(context.Background(), d, config.Answers{}, config.Answers{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCancelled))
}

func TestCollectConfiguration_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := prompt.CollectConfiguration(ctx, testutil.NewScriptedDriver("x"), config.Answers{}, config.Answers{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCancelled))
}

func TestCollectConfiguration_DriverFailure(t *testing.T) {
	d := testutil.NewScriptedDriver()
	d.Err = stderrors.New("tty gone")

	_, err := prompt.CollectConfiguration(context.Background(), d, config.Answers{}, config.Answers{})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInternal))
}

func TestResolveNonInteractive(t *testing.T) {
	t.Run("merges defaults and derives the package", func(t *testing.T) {
		seed := config.Answers{ProjectName: "Beacon Spec", AuthorName: "Jane Doe", AuthorEmail: "jane@example.org"}
		defaults := config.Answers{ProjectName: "ignored", GithubOrg: "acme", Year: "2026"}

		got, err := prompt.ResolveNonInteractive(seed, defaults)
		require.NoError(t, err)
		assert.Equal(t, testutil.BeaconAnswers(), got)
	})

	t.Run("rejects invalid answers", func(t *testing.T) {
		seed := testutil.BeaconAnswers()
		seed.PackageName = "beacon spec"
		seed.Year = "next"

		_, err := prompt.ResolveNonInteractive(seed, config.Answers{})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
		assert.Equal(t, 2, errors.GetErrorDetails(err)["fields"])
	})
}

func TestConfirmPlan(t *testing.T) {
	tests := []struct {
		name     string
		confirms []bool
		want     bool
	}{
		{name: "accepted", confirms: []bool{true}, want: true},
		{name: "declined", confirms: []bool{false}, want: false},
		{name: "default is yes", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testutil.NewScriptedDriver().WithConfirms(tt.confirms...)

			ok, err := prompt.ConfirmPlan(context.Background(), d, testutil.BeaconAnswers())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			require.Len(t, d.Infos, 1)
			assert.Contains(t, d.Infos[0], "Configuration summary:")
		})
	}
}

func TestConfirmPlan_Aborted(t *testing.T) {
	d := testutil.NewScriptedDriver()
	d.Err = prompt.ErrAborted

	ok, err := prompt.ConfirmPlan(context.Background(), d, testutil.BeaconAnswers())
	assert.False(t, ok)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCancelled))
}

func TestSummary(t *testing.T) {
	s := prompt.Summary(testutil.BeaconAnswers())

	assert.Contains(t, s, "Beacon Spec")
	assert.Contains(t, s, "jane@example.org")
	assert.NotContains(t, s, "\n\n")
	assert.Len(t, strings.Split(s, "\n"), 7)
}
