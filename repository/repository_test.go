package repository

import (
	"fmt"
	"log"
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/ory/dockertest/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *gorm.DB

var testEnumQueries = []string{
	`CREATE TYPE battle.tournament_sport AS ENUM ('GENERIC', 'PETANQUE')`,
	`CREATE TYPE battle.tournament_status AS ENUM ('DRAFT', 'PUBLISHED', 'ONGOING', 'DONE')`,
	`CREATE TYPE battle.match_status AS ENUM ('COMING', 'ONGOING', 'DONE')`,
	`CREATE TYPE battle.participant_role AS ENUM ('ADMIN', 'PLAYER', 'SPECTATOR')`,
	`CREATE TYPE battle.command_run_status AS ENUM ('CREATED', 'RUNNING', 'SUCCESS', 'FAILED')`,
}

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.Run("postgres", "17.2-alpine", []string{"POSTGRES_USER=postgres", "POSTGRES_PASSWORD=postgres", "DATABASE_NAME=postgres"})
	if err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}
	resource.Expire(600)
	sqlInfo := fmt.Sprintf(
		"host=localhost port=%s user=postgres password=postgres dbname=postgres sslmode=disable search_path=battle",
		resource.GetPort("5432/tcp"))

	if err := pool.Retry(func() error {
		var err error
		db, err = gorm.Open(postgres.Open(sqlInfo), &gorm.Config{
			NamingStrategy: schema.NamingStrategy{
				TablePrefix:   "battle.",
				SingularTable: false,
			},
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return err
		}
		db.Exec(`CREATE SCHEMA IF NOT EXISTS battle`)
		for _, query := range testEnumQueries {
			x := db.Exec(query)
			if x.Error != nil && strings.Contains(x.Error.Error(), "already exists") {
				continue
			}
		}
		return db.AutoMigrate(
			&User{},
			&Oauth{},
			&Tournament{},
			&Team{},
			&Participant{},
			&Match{},
			&Score{},
			&Standing{},
			&CommandRun{},
			&RecurringJob{},
		)
	}); err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}

	defer func() {
		if err := pool.Purge(resource); err != nil {
			log.Fatalf("Could not purge resource: %s", err)
		}
	}()
	m.Run()
}

func createTestTournament(t *testing.T, nbTeams int) (*Tournament, []*Team) {
	t.Helper()
	user := &User{Email: fmt.Sprintf("admin-%s@example.com", t.Name()), PasswordHash: "x", Pseudo: "admin"}
	require.NoError(t, db.Create(user).Error)
	tournament := &Tournament{Name: t.Name(), AdminId: user.Id}
	require.NoError(t, db.Create(tournament).Error)
	teams := make([]*Team, 0, nbTeams)
	for i := 1; i <= nbTeams; i++ {
		team := &Team{TournamentId: tournament.Id, Name: fmt.Sprintf("Team %d", i), Number: i}
		require.NoError(t, db.Create(team).Error)
		teams = append(teams, team)
	}
	return tournament, teams
}

func TestTeamDeleteRenumbers(t *testing.T) {
	tournament, teams := createTestTournament(t, 4)
	teamRepository := NewTeamRepository(db)

	err := teamRepository.DeleteAndRenumber(tournament.Id, teams[1].Id)
	assert.NoError(t, err)

	remaining, err := teamRepository.GetTeamsForTournament(tournament.Id)
	assert.NoError(t, err)
	assert.Len(t, remaining, 3)
	for i, team := range remaining {
		assert.Equal(t, i+1, team.Number)
	}
}

func TestTeamDeleteUnknownTeam(t *testing.T) {
	tournament, _ := createTestTournament(t, 2)
	teamRepository := NewTeamRepository(db)

	err := teamRepository.DeleteAndRenumber(tournament.Id, 999999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMatchOrderingAndRenumber(t *testing.T) {
	tournament, teams := createTestTournament(t, 4)
	matchRepository := NewMatchRepository(db)

	matches := make([]*Match, 0, 3)
	for i := 1; i <= 3; i++ {
		match, err := matchRepository.Save(&Match{TournamentId: tournament.Id, Ordering: i})
		require.NoError(t, err)
		require.NoError(t, matchRepository.SetTeams(match, []*Team{teams[0], teams[1]}))
		matches = append(matches, match)
	}

	maxOrdering, err := matchRepository.GetMaxOrdering(tournament.Id)
	assert.NoError(t, err)
	assert.Equal(t, 3, maxOrdering)

	err = matchRepository.DeleteAndRenumber(tournament.Id, matches[0].Id)
	assert.NoError(t, err)

	_, coming, _, err := matchRepository.GetMatchesForTournament(tournament.Id)
	assert.NoError(t, err)
	assert.Len(t, coming, 2)
	assert.Equal(t, 1, coming[0].Ordering)
	assert.Equal(t, 2, coming[1].Ordering)
}

func TestScoreUpsert(t *testing.T) {
	tournament, teams := createTestTournament(t, 2)
	matchRepository := NewMatchRepository(db)
	scoreRepository := NewScoreRepository(db)

	match, err := matchRepository.Save(&Match{TournamentId: tournament.Id, Ordering: 1})
	require.NoError(t, err)
	require.NoError(t, matchRepository.SetTeams(match, teams))

	_, err = scoreRepository.Upsert(match.Id, teams[0].Id, 7)
	assert.NoError(t, err)
	_, err = scoreRepository.Upsert(match.Id, teams[0].Id, 13)
	assert.NoError(t, err)

	scores, err := scoreRepository.GetScoresForMatch(match.Id)
	assert.NoError(t, err)
	assert.Len(t, scores, 1)
	assert.Equal(t, 13, scores[0].Value)

	err = scoreRepository.Delete(match.Id, teams[0].Id)
	assert.NoError(t, err)
	scores, err = scoreRepository.GetScoresForMatch(match.Id)
	assert.NoError(t, err)
	assert.Empty(t, scores)
}

func TestStandingsReplace(t *testing.T) {
	tournament, teams := createTestTournament(t, 3)
	standingRepository := NewStandingRepository(db)

	first := []*Standing{
		{TournamentId: tournament.Id, TeamId: teams[0].Id, Rank: 1, Points: 2},
		{TournamentId: tournament.Id, TeamId: teams[1].Id, Rank: 2, Points: 1},
		{TournamentId: tournament.Id, TeamId: teams[2].Id, Rank: 3, Points: 0},
	}
	require.NoError(t, standingRepository.ReplaceForTournament(tournament.Id, first))

	second := []*Standing{
		{TournamentId: tournament.Id, TeamId: teams[2].Id, Rank: 1, Points: 3},
		{TournamentId: tournament.Id, TeamId: teams[0].Id, Rank: 2, Points: 2},
		{TournamentId: tournament.Id, TeamId: teams[1].Id, Rank: 2, Points: 2},
	}
	require.NoError(t, standingRepository.ReplaceForTournament(tournament.Id, second))

	standings, err := standingRepository.GetStandingsForTournament(tournament.Id)
	assert.NoError(t, err)
	assert.Len(t, standings, 3)
	assert.Equal(t, teams[2].Id, standings[0].TeamId)
	assert.Equal(t, 1, standings[0].Rank)
}

func TestGetTournamentForScoringPreloads(t *testing.T) {
	tournament, teams := createTestTournament(t, 2)
	matchRepository := NewMatchRepository(db)
	scoreRepository := NewScoreRepository(db)

	match, err := matchRepository.Save(&Match{TournamentId: tournament.Id, Ordering: 1})
	require.NoError(t, err)
	require.NoError(t, matchRepository.SetTeams(match, teams))
	_, err = scoreRepository.Upsert(match.Id, teams[0].Id, 13)
	require.NoError(t, err)

	loaded, err := NewTournamentRepository(db).GetTournamentForScoring(tournament.Id)
	assert.NoError(t, err)
	assert.Len(t, loaded.Teams, 2)
	require.Len(t, loaded.Matches, 1)
	assert.Len(t, loaded.Matches[0].Teams, 2)
	assert.Len(t, loaded.Matches[0].Scores, 1)
}

func TestParticipantUniquePerTournament(t *testing.T) {
	tournament, _ := createTestTournament(t, 0)
	user := &User{Email: fmt.Sprintf("player-%s@example.com", t.Name()), PasswordHash: "x", Pseudo: "player"}
	require.NoError(t, db.Create(user).Error)
	participantRepository := NewParticipantRepository(db)

	_, err := participantRepository.Save(&Participant{UserId: user.Id, TournamentId: tournament.Id})
	assert.NoError(t, err)
	_, err = participantRepository.Save(&Participant{UserId: user.Id, TournamentId: tournament.Id})
	assert.Error(t, err)
}
