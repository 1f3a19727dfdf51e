package service

import (
	"context"
	"testing"

	"battlescore/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string {
	return &v
}

func TestUpdateTournamentDoesNotChangeStatus(t *testing.T) {
	tournament, _ := createTestTournament(t, 0)
	tournament.Status = repository.TournamentDraft
	tournament, err := repository.NewTournamentRepository(db).Save(tournament)
	require.NoError(t, err)
	tournamentService := NewTournamentService(db)

	updated, err := tournamentService.UpdateTournament(tournament, &TournamentUpdate{Name: strPtr("Renamed")})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, repository.TournamentDraft, updated.Status)
	assert.Nil(t, updated.DateStart)
}

func TestStartTournamentRejectsRestart(t *testing.T) {
	tournament, _ := createTestTournament(t, 0)
	tournamentService := NewTournamentService(db)

	_, err := tournamentService.StartTournament(context.Background(), tournament)
	assert.ErrorContains(t, err, "already started")
}

func TestStartTournamentStampsStart(t *testing.T) {
	tournament, _ := createTestTournament(t, 0)
	tournament.Status = repository.TournamentDraft
	tournament, err := repository.NewTournamentRepository(db).Save(tournament)
	require.NoError(t, err)
	tournamentService := NewTournamentService(db)

	started, err := tournamentService.StartTournament(context.Background(), tournament)
	require.NoError(t, err)

	assert.Equal(t, repository.TournamentOngoing, started.Status)
	assert.NotNil(t, started.DateStart)
}
