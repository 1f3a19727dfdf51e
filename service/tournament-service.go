package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"battlescore/app_error"
	"battlescore/repository"
	"battlescore/utils"

	"gorm.io/gorm"
)

const (
	maxTournamentNameLength = 150
	maxLocationLength       = 255
	maxDetailsLength        = 1000
	dashboardLimit          = 20
)

type TournamentService struct {
	tournamentRepository  *repository.TournamentRepository
	participantRepository *repository.ParticipantRepository
	teamService           *TeamService
	matchService          *MatchService
	eventService          *EventService
}

func NewTournamentService(db *gorm.DB) *TournamentService {
	return &TournamentService{
		tournamentRepository:  repository.NewTournamentRepository(db),
		participantRepository: repository.NewParticipantRepository(db),
		teamService:           NewTeamService(db),
		matchService:          NewMatchService(db),
		eventService:          NewEventService(),
	}
}

type TournamentCreate struct {
	Name              string                     `json:"name" binding:"required"`
	Sport             repository.TournamentSport `json:"sport"`
	Description       string                     `json:"description"`
	Location          string                     `json:"location"`
	NbTeams           int                        `json:"nb_teams"`
	NbPlayersPerTeam  int                        `json:"nb_players_per_team"`
	NbTeamMatches     *int                       `json:"nb_team_matches"`
	AutoMatchCreation bool                       `json:"auto_match_creation"`
	StartsAt          *time.Time                 `json:"starts_at"`
}

// CreateTournament creates a draft tournament owned by the admin, registers
// the admin as an ADMIN participant and generates the initial teams.
func (s *TournamentService) CreateTournament(admin *repository.User, create *TournamentCreate) (*repository.Tournament, error) {
	if create.AutoMatchCreation && create.NbTeamMatches == nil {
		return nil, app_error.New(fmt.Errorf("automatic match creation requires a number of matches per team"), http.StatusBadRequest)
	}
	sport := create.Sport
	if sport == "" {
		sport = repository.SportGeneric
	}
	tournament := &repository.Tournament{
		Name:              utils.SanitizeUserText(create.Name, maxTournamentNameLength),
		Sport:             sport,
		Status:            repository.TournamentDraft,
		Description:       utils.SanitizeUserText(create.Description, maxDetailsLength),
		Location:          utils.SanitizeUserText(create.Location, maxLocationLength),
		NbTeams:           create.NbTeams,
		NbPlayersPerTeam:  create.NbPlayersPerTeam,
		NbTeamMatches:     create.NbTeamMatches,
		AutoMatchCreation: create.AutoMatchCreation,
		StartsAt:          create.StartsAt,
		AdminId:           admin.Id,
	}
	tournament, err := s.tournamentRepository.Save(tournament)
	if err != nil {
		return nil, err
	}
	if _, err := s.participantRepository.Save(&repository.Participant{
		UserId:       admin.Id,
		TournamentId: tournament.Id,
		Role:         repository.RoleAdmin,
	}); err != nil {
		return nil, err
	}
	if tournament.NbTeams > 0 {
		if _, err := s.teamService.CreateTeams(tournament, tournament.NbTeams); err != nil {
			return nil, err
		}
	}
	return s.tournamentRepository.GetTournamentById(tournament.Id, "Teams", "Participants")
}

func (s *TournamentService) GetTournamentById(tournamentId int, preloads ...string) (*repository.Tournament, error) {
	return s.tournamentRepository.GetTournamentById(tournamentId, preloads...)
}

func (s *TournamentService) GetTournamentForScoring(tournamentId int) (*repository.Tournament, error) {
	return s.tournamentRepository.GetTournamentForScoring(tournamentId)
}

// GetDashboard lists the most recent tournaments the user administrates or
// participates in.
func (s *TournamentService) GetDashboard(userId int) ([]*repository.Tournament, error) {
	return s.tournamentRepository.GetTournamentsForUser(userId, dashboardLimit)
}

type TournamentUpdate struct {
	Name        *string                     `json:"name"`
	Sport       *repository.TournamentSport `json:"sport"`
	Description *string                     `json:"description"`
	Location    *string                     `json:"location"`
	StartsAt    *time.Time                  `json:"starts_at"`
}

func (s *TournamentService) UpdateTournament(tournament *repository.Tournament, update *TournamentUpdate) (*repository.Tournament, error) {
	if update.Name != nil {
		tournament.Name = utils.SanitizeUserText(*update.Name, maxTournamentNameLength)
	}
	if update.Sport != nil {
		tournament.Sport = *update.Sport
	}
	if update.Description != nil {
		tournament.Description = utils.SanitizeUserText(*update.Description, maxDetailsLength)
	}
	if update.Location != nil {
		tournament.Location = utils.SanitizeUserText(*update.Location, maxLocationLength)
	}
	if update.StartsAt != nil {
		tournament.StartsAt = update.StartsAt
	}
	return s.tournamentRepository.Save(tournament)
}

// StartTournament moves a draft or published tournament to ONGOING, stamps
// the start time and schedules the first matches when automatic match
// creation is on.
func (s *TournamentService) StartTournament(ctx context.Context, tournament *repository.Tournament) (*repository.Tournament, error) {
	if tournament.Status == repository.TournamentOngoing || tournament.Status == repository.TournamentDone {
		return nil, app_error.New(fmt.Errorf("tournament has already started"), http.StatusConflict)
	}
	now := time.Now()
	tournament.Status = repository.TournamentOngoing
	tournament.DateStart = &now
	tournament, err := s.tournamentRepository.Save(tournament)
	if err != nil {
		return nil, err
	}
	if _, err := s.matchService.CreateNextMatches(ctx, tournament.Id); err != nil {
		return nil, err
	}
	s.eventService.Publish(ctx, TournamentEvent{
		Type:         EventTournamentStarted,
		TournamentId: tournament.Id,
		Payload:      tournament,
	})
	return tournament, nil
}

// SetAutoMatchCreation toggles automatic match creation. Turning it on
// requires a configured number of matches per team.
func (s *TournamentService) SetAutoMatchCreation(ctx context.Context, tournament *repository.Tournament, enabled bool) (*repository.Tournament, error) {
	if enabled && tournament.NbTeamMatches == nil {
		return nil, app_error.New(fmt.Errorf("set a number of matches per team before enabling automatic match creation"), http.StatusBadRequest)
	}
	tournament.AutoMatchCreation = enabled
	tournament, err := s.tournamentRepository.Save(tournament)
	if err != nil {
		return nil, err
	}
	if enabled && tournament.Status == repository.TournamentOngoing {
		if _, err := s.matchService.CreateNextMatches(ctx, tournament.Id); err != nil {
			return nil, err
		}
	}
	return tournament, nil
}

// SetNbTeamMatches sets or clears the per-team match limit. Clearing it also
// disables automatic match creation.
func (s *TournamentService) SetNbTeamMatches(tournament *repository.Tournament, nbTeamMatches *int) (*repository.Tournament, error) {
	if nbTeamMatches != nil && *nbTeamMatches < 1 {
		return nil, app_error.New(fmt.Errorf("number of matches per team must be positive"), http.StatusBadRequest)
	}
	tournament.NbTeamMatches = nbTeamMatches
	if nbTeamMatches == nil {
		tournament.AutoMatchCreation = false
	}
	return s.tournamentRepository.Save(tournament)
}

func (s *TournamentService) DeleteTournament(tournamentId int) error {
	return s.tournamentRepository.Delete(tournamentId)
}
