package service

import (
	"context"
	"testing"

	"battlescore/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestSetScoresStartsComingMatch(t *testing.T) {
	tournament, teams := createTestTournament(t, 2)
	match := createTestMatch(t, tournament, repository.MatchComing, teams...)
	scoreService := NewScoreService(db)

	updated, err := scoreService.SetScores(context.Background(), tournament.Id, match.Id, []ScoreEntry{
		{TeamId: teams[0].Id, Value: intPtr(13)},
	})
	require.NoError(t, err)

	assert.Equal(t, repository.MatchOngoing, updated.Status)
	require.NotNil(t, updated.DateStart)
	require.Len(t, updated.Scores, 1)
	assert.Equal(t, 13, updated.Scores[0].Value)
}

func TestSetScoresNilValueDeletesScore(t *testing.T) {
	tournament, teams := createTestTournament(t, 2)
	match := createTestMatch(t, tournament, repository.MatchOngoing, teams...)
	scoreService := NewScoreService(db)

	_, err := scoreService.SetScores(context.Background(), tournament.Id, match.Id, []ScoreEntry{
		{TeamId: teams[0].Id, Value: intPtr(7)},
		{TeamId: teams[1].Id, Value: intPtr(5)},
	})
	require.NoError(t, err)

	updated, err := scoreService.SetScores(context.Background(), tournament.Id, match.Id, []ScoreEntry{
		{TeamId: teams[1].Id, Value: nil},
	})
	require.NoError(t, err)

	require.Len(t, updated.Scores, 1)
	assert.Equal(t, teams[0].Id, updated.Scores[0].TeamId)
}

func TestSetScoresRejectsFinishedMatch(t *testing.T) {
	tournament, teams := createTestTournament(t, 2)
	match := createTestMatch(t, tournament, repository.MatchDone, teams...)
	scoreService := NewScoreService(db)

	_, err := scoreService.SetScores(context.Background(), tournament.Id, match.Id, []ScoreEntry{
		{TeamId: teams[0].Id, Value: intPtr(1)},
	})
	assert.ErrorContains(t, err, "finished match")
}

func TestSetScoresRejectsForeignTeam(t *testing.T) {
	tournament, teams := createTestTournament(t, 3)
	match := createTestMatch(t, tournament, repository.MatchComing, teams[0], teams[1])
	scoreService := NewScoreService(db)

	_, err := scoreService.SetScores(context.Background(), tournament.Id, match.Id, []ScoreEntry{
		{TeamId: teams[2].Id, Value: intPtr(1)},
	})
	assert.ErrorContains(t, err, "does not play in this match")
}
