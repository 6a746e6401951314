package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "igcounts/pkg/errors"
)

func TestParseCandidates(t *testing.T) {
	input := `username,status,followers,following,media_count,engagement_rate,avg_likes,avg_comments
alice,OK,"12,345",321,42,3.5%,162.7,12.2
bob,FAILED,,,,,,
`
	candidates, err := ParseCandidates(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "alice", candidates[0].Username)
	assert.Equal(t, "OK", candidates[0].Status)
	assert.Equal(t, "12,345", candidates[0].Followers)
	assert.Equal(t, "321", candidates[0].Following)
	assert.Equal(t, "42", candidates[0].MediaCount)
	assert.Equal(t, "3.5%", candidates[0].EngagementRate)
	assert.Equal(t, "162.7", candidates[0].AvgLikes)
	assert.Equal(t, "12.2", candidates[0].AvgComments)

	assert.Equal(t, "bob", candidates[1].Username)
	assert.Equal(t, "FAILED", candidates[1].Status)
	assert.Empty(t, candidates[1].Followers)
}

func TestParseCandidatesColumnSubset(t *testing.T) {
	input := "username,followers,status\ncarol,99,OK\n"

	candidates, err := ParseCandidates(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, "carol", candidates[0].Username)
	assert.Equal(t, "99", candidates[0].Followers)
	assert.Equal(t, "OK", candidates[0].Status)
	assert.Empty(t, candidates[0].EngagementRate)
}

func TestParseCandidatesIgnoresUnknownColumns(t *testing.T) {
	input := "rank,username,status,followers\n1,dave,OK,7\n"

	candidates, err := ParseCandidates(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "dave", candidates[0].Username)
	assert.Equal(t, "7", candidates[0].Followers)
}

func TestParseCandidatesSkipsBlankUsername(t *testing.T) {
	input := "username,status,followers\n,OK,5\nerin,OK,6\n"

	candidates, err := ParseCandidates(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "erin", candidates[0].Username)
}

func TestParseCandidatesShortRow(t *testing.T) {
	input := "username,status,followers\nfrank,OK\n"

	candidates, err := ParseCandidates(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "frank", candidates[0].Username)
	assert.Empty(t, candidates[0].Followers)
}

func TestParseCandidatesHeaderBOM(t *testing.T) {
	input := "\ufeffusername,status,followers\ngrace,OK,8\n"

	candidates, err := ParseCandidates(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "grace", candidates[0].Username)
}

func TestParseCandidatesMissingUsernameColumn(t *testing.T) {
	input := "name,followers\nalice,1\n"

	_, err := ParseCandidates(strings.NewReader(input))
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeValidation, errs.TypeOf(err))
}

func TestParseCandidatesMissingStatusColumn(t *testing.T) {
	input := "username,followers\nalice,1\n"

	_, err := ParseCandidates(strings.NewReader(input))
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeValidation, errs.TypeOf(err))
}

func TestParseCandidatesEmptyInput(t *testing.T) {
	_, err := ParseCandidates(strings.NewReader(""))
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeValidation, errs.TypeOf(err))
}

func TestReadCandidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.csv")
	content := "username,status,followers\nalice,OK,5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	candidates, err := ReadCandidates(path)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "alice", candidates[0].Username)
}

func TestReadCandidatesMissingFile(t *testing.T) {
	_, err := ReadCandidates(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.Equal(t, errs.ErrorTypeStorage, errs.TypeOf(err))
}
