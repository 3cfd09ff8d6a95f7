package testutil

import (
	"testing"

	"github.com/specforge/specinit/pkg/config"
	"github.com/specforge/specinit/pkg/tokens"
	"github.com/stretchr/testify/require"
)

// BeaconAnswers is a valid answer set used across tests
func BeaconAnswers() config.Answers {
	return config.Answers{
		ProjectName: "Beacon Spec",
		PackageName: "beacon_spec",
		GithubOrg:   "acme",
		AuthorName:  "Jane Doe",
		AuthorEmail: "jane@example.org",
		Year:        "2026",
	}
}

// BeaconMap builds the default replacement map for BeaconAnswers
func BeaconMap(t *testing.T) *tokens.Map {
	t.Helper()
	m, err := tokens.Build(tokens.Definitions(config.Default(), false), BeaconAnswers())
	require.NoError(t, err)
	return m
}
