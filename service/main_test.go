package service

import (
	"fmt"
	"log"
	"strings"
	"testing"

	"battlescore/repository"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/ory/dockertest/v3"
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
			&repository.User{},
			&repository.Oauth{},
			&repository.Tournament{},
			&repository.Team{},
			&repository.Participant{},
			&repository.Match{},
			&repository.Score{},
			&repository.Standing{},
			&repository.CommandRun{},
			&repository.RecurringJob{},
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

func createTestTournament(t *testing.T, nbTeams int) (*repository.Tournament, []*repository.Team) {
	t.Helper()
	user := &repository.User{Email: fmt.Sprintf("admin-%s@example.com", t.Name()), PasswordHash: "x", Pseudo: "admin"}
	require.NoError(t, db.Create(user).Error)
	tournament := &repository.Tournament{Name: t.Name(), Status: repository.TournamentOngoing, AdminId: user.Id}
	require.NoError(t, db.Create(tournament).Error)
	teams := make([]*repository.Team, 0, nbTeams)
	for i := 1; i <= nbTeams; i++ {
		team := &repository.Team{TournamentId: tournament.Id, Name: fmt.Sprintf("Team %d", i), Number: i}
		require.NoError(t, db.Create(team).Error)
		teams = append(teams, team)
	}
	return tournament, teams
}

func createTestMatch(t *testing.T, tournament *repository.Tournament, status repository.MatchStatus, teams ...*repository.Team) *repository.Match {
	t.Helper()
	matchRepository := repository.NewMatchRepository(db)
	maxOrdering, err := matchRepository.GetMaxOrdering(tournament.Id)
	require.NoError(t, err)
	match, err := matchRepository.Save(&repository.Match{
		TournamentId: tournament.Id,
		Ordering:     maxOrdering + 1,
		Status:       status,
	})
	require.NoError(t, err)
	require.NoError(t, matchRepository.SetTeams(match, teams))
	return match
}
