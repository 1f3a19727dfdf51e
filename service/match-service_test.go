package service

import (
	"context"
	"testing"

	"battlescore/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateMatchDoneStampsEndAndRefreshesStandings(t *testing.T) {
	tournament, teams := createTestTournament(t, 2)
	match := createTestMatch(t, tournament, repository.MatchOngoing, teams...)
	scoreRepository := repository.NewScoreRepository(db)
	_, err := scoreRepository.Upsert(match.Id, teams[0].Id, 13)
	require.NoError(t, err)
	_, err = scoreRepository.Upsert(match.Id, teams[1].Id, 7)
	require.NoError(t, err)
	matchService := NewMatchService(db)

	done := repository.MatchDone
	updated, err := matchService.UpdateMatch(context.Background(), tournament.Id, match.Id, &MatchUpdate{Status: &done})
	require.NoError(t, err)

	assert.Equal(t, repository.MatchDone, updated.Status)
	assert.NotNil(t, updated.DateEnd)

	standings, err := repository.NewStandingRepository(db).GetStandingsForTournament(tournament.Id)
	require.NoError(t, err)
	require.Len(t, standings, 2)
	assert.Equal(t, teams[0].Id, standings[0].TeamId)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 2, standings[1].Rank)
}

func TestUpdateMatchDoneSchedulesNextMatches(t *testing.T) {
	tournament, teams := createTestTournament(t, 4)
	nbTeamMatches := 2
	tournament.AutoMatchCreation = true
	tournament.NbTeamMatches = &nbTeamMatches
	tournament, err := repository.NewTournamentRepository(db).Save(tournament)
	require.NoError(t, err)
	match := createTestMatch(t, tournament, repository.MatchOngoing, teams[0], teams[1])
	scoreRepository := repository.NewScoreRepository(db)
	_, err = scoreRepository.Upsert(match.Id, teams[0].Id, 11)
	require.NoError(t, err)
	_, err = scoreRepository.Upsert(match.Id, teams[1].Id, 9)
	require.NoError(t, err)
	matchService := NewMatchService(db)

	done := repository.MatchDone
	_, err = matchService.UpdateMatch(context.Background(), tournament.Id, match.Id, &MatchUpdate{Status: &done})
	require.NoError(t, err)

	ongoing, coming, finished, err := matchService.GetMatchesForTournament(tournament.Id)
	require.NoError(t, err)
	assert.Len(t, finished, 1)
	assert.NotEmpty(t, append(ongoing, coming...))
}

func TestUpdateMatchCannotReopen(t *testing.T) {
	tournament, teams := createTestTournament(t, 2)
	match := createTestMatch(t, tournament, repository.MatchDone, teams...)
	matchService := NewMatchService(db)

	ongoing := repository.MatchOngoing
	_, err := matchService.UpdateMatch(context.Background(), tournament.Id, match.Id, &MatchUpdate{Status: &ongoing})
	assert.ErrorContains(t, err, "cannot be reopened")
}
