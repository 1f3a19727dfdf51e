package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"battlescore/app_error"
	"battlescore/metrics"
	"battlescore/repository"
	"battlescore/scoring"
	"battlescore/utils"

	"gorm.io/gorm"
)

type MatchService struct {
	matchRepository      *repository.MatchRepository
	teamRepository       *repository.TeamRepository
	tournamentRepository *repository.TournamentRepository
	standingService      *StandingService
	eventService         *EventService
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{
		matchRepository:      repository.NewMatchRepository(db),
		teamRepository:       repository.NewTeamRepository(db),
		tournamentRepository: repository.NewTournamentRepository(db),
		standingService:      NewStandingService(db),
		eventService:         NewEventService(),
	}
}

func (s *MatchService) GetMatchById(tournamentId int, matchId int) (*repository.Match, error) {
	return s.matchRepository.GetMatchById(tournamentId, matchId)
}

func (s *MatchService) GetMatchesForTournament(tournamentId int) (ongoing, coming, done []*repository.Match, err error) {
	return s.matchRepository.GetMatchesForTournament(tournamentId)
}

type MatchCreate struct {
	TeamIds   []int      `json:"team_ids" binding:"required"`
	DateStart *time.Time `json:"date_start"`
	Location  string     `json:"location"`
	Details   string     `json:"details"`
}

// CreateMatch creates a coming match between at least two teams, appended at
// the end of the schedule.
func (s *MatchService) CreateMatch(ctx context.Context, tournamentId int, create *MatchCreate) (*repository.Match, error) {
	teamIds := utils.Uniques(create.TeamIds)
	if len(teamIds) < 2 {
		return nil, app_error.New(fmt.Errorf("a match needs at least two distinct teams"), http.StatusBadRequest)
	}
	teams, err := s.teamRepository.GetTeamsByIds(tournamentId, teamIds)
	if err != nil {
		return nil, err
	}
	if len(teams) != len(teamIds) {
		return nil, app_error.New(fmt.Errorf("some teams do not belong to this tournament"), http.StatusBadRequest)
	}
	maxOrdering, err := s.matchRepository.GetMaxOrdering(tournamentId)
	if err != nil {
		return nil, err
	}
	dateStart := create.DateStart
	if dateStart == nil {
		now := time.Now()
		dateStart = &now
	}
	match := &repository.Match{
		TournamentId: tournamentId,
		Ordering:     maxOrdering + 1,
		Status:       repository.MatchComing,
		DateStart:    dateStart,
		Location:     utils.SanitizeUserText(create.Location, maxLocationLength),
		Details:      utils.SanitizeUserText(create.Details, maxDetailsLength),
	}
	match, err = s.matchRepository.Save(match)
	if err != nil {
		return nil, err
	}
	if err := s.matchRepository.SetTeams(match, teams); err != nil {
		return nil, err
	}
	match.Teams = teams
	metrics.MatchesCreatedCounter.Inc()
	s.eventService.Publish(ctx, TournamentEvent{
		Type:         EventMatchCreated,
		TournamentId: tournamentId,
		Payload:      match,
	})
	return match, nil
}

type MatchUpdate struct {
	Status    *repository.MatchStatus `json:"status"`
	TeamIds   []int                   `json:"team_ids"`
	DateStart *time.Time              `json:"date_start"`
	DateEnd   *time.Time              `json:"date_end"`
	Location  *string                 `json:"location"`
	Details   *string                 `json:"details"`
}

// UpdateMatch applies the update and runs the DONE side effects when the
// status transitions: the end date is stamped, the standings snapshot is
// refreshed and the next matches are scheduled.
func (s *MatchService) UpdateMatch(ctx context.Context, tournamentId int, matchId int, update *MatchUpdate) (*repository.Match, error) {
	match, err := s.matchRepository.GetMatchById(tournamentId, matchId)
	if err != nil {
		return nil, err
	}
	if update.TeamIds != nil {
		teamIds := utils.Uniques(update.TeamIds)
		if len(teamIds) < 2 {
			return nil, app_error.New(fmt.Errorf("a match needs at least two distinct teams"), http.StatusBadRequest)
		}
		teams, err := s.teamRepository.GetTeamsByIds(tournamentId, teamIds)
		if err != nil {
			return nil, err
		}
		if len(teams) != len(teamIds) {
			return nil, app_error.New(fmt.Errorf("some teams do not belong to this tournament"), http.StatusBadRequest)
		}
		if err := s.matchRepository.SetTeams(match, teams); err != nil {
			return nil, err
		}
		match.Teams = teams
	}
	if update.DateStart != nil {
		match.DateStart = update.DateStart
	}
	if update.DateEnd != nil {
		match.DateEnd = update.DateEnd
	}
	if update.Location != nil {
		match.Location = utils.SanitizeUserText(*update.Location, maxLocationLength)
	}
	if update.Details != nil {
		match.Details = utils.SanitizeUserText(*update.Details, maxDetailsLength)
	}

	finished := false
	if update.Status != nil && *update.Status != match.Status {
		switch *update.Status {
		case repository.MatchOngoing:
			if match.Status == repository.MatchDone {
				return nil, app_error.New(fmt.Errorf("a finished match cannot be reopened"), http.StatusConflict)
			}
			match.Status = repository.MatchOngoing
			if match.DateStart == nil {
				now := time.Now()
				match.DateStart = &now
			}
		case repository.MatchDone:
			match.Status = repository.MatchDone
			if match.DateEnd == nil {
				now := time.Now()
				match.DateEnd = &now
			}
			finished = true
		case repository.MatchComing:
			return nil, app_error.New(fmt.Errorf("a match cannot go back to coming"), http.StatusConflict)
		default:
			return nil, app_error.New(fmt.Errorf("unknown match status %s", *update.Status), http.StatusBadRequest)
		}
	}

	match, err = s.matchRepository.Save(match)
	if err != nil {
		return nil, err
	}
	s.eventService.Publish(ctx, TournamentEvent{
		Type:         EventMatchUpdated,
		TournamentId: tournamentId,
		Payload:      match,
	})
	if finished {
		metrics.MatchesFinishedCounter.Inc()
		if _, err := s.standingService.RefreshStandings(ctx, tournamentId); err != nil {
			return nil, err
		}
		if _, err := s.CreateNextMatches(ctx, tournamentId); err != nil {
			return nil, err
		}
	}
	return match, nil
}

// DeleteMatch removes the match and renumbers the remaining schedule dense
// from 1.
func (s *MatchService) DeleteMatch(ctx context.Context, tournamentId int, matchId int) error {
	if err := s.matchRepository.DeleteAndRenumber(tournamentId, matchId); err != nil {
		return err
	}
	s.eventService.Publish(ctx, TournamentEvent{
		Type:         EventMatchDeleted,
		TournamentId: tournamentId,
		Payload:      map[string]int{"match_id": matchId},
	})
	return nil
}

// CreateNextMatches schedules new matches for idle teams and starts every
// match whose teams are free. It is a no-op for tournaments without
// automatic match creation.
func (s *MatchService) CreateNextMatches(ctx context.Context, tournamentId int) ([]*repository.Match, error) {
	tournament, err := s.tournamentRepository.GetTournamentForScoring(tournamentId)
	if err != nil {
		return nil, err
	}
	pairs := scoring.PlanNextMatches(tournament)
	created := make([]*repository.Match, 0, len(pairs))
	maxOrdering, err := s.matchRepository.GetMaxOrdering(tournamentId)
	if err != nil {
		return nil, err
	}
	for i, pair := range pairs {
		match := &repository.Match{
			TournamentId: tournamentId,
			Ordering:     maxOrdering + i + 1,
			Status:       repository.MatchComing,
		}
		match, err = s.matchRepository.Save(match)
		if err != nil {
			return nil, err
		}
		if err := s.matchRepository.SetTeams(match, []*repository.Team{pair.Home, pair.Away}); err != nil {
			return nil, err
		}
		match.Teams = []*repository.Team{pair.Home, pair.Away}
		metrics.MatchesCreatedCounter.Inc()
		created = append(created, match)
		s.eventService.Publish(ctx, TournamentEvent{
			Type:         EventMatchCreated,
			TournamentId: tournamentId,
			Payload:      match,
		})
	}
	if _, err := s.RefreshMatchStatuses(ctx, tournamentId); err != nil {
		return nil, err
	}
	return created, nil
}

// RefreshMatchStatuses starts every coming match whose teams are free,
// respecting the schedule order.
func (s *MatchService) RefreshMatchStatuses(ctx context.Context, tournamentId int) ([]*repository.Match, error) {
	tournament, err := s.tournamentRepository.GetTournamentForScoring(tournamentId)
	if err != nil {
		return nil, err
	}
	started := scoring.UpdateMatchStatuses(tournament)
	for _, match := range started {
		if match.DateStart == nil {
			now := time.Now()
			match.DateStart = &now
		}
		if _, err := s.matchRepository.Save(match); err != nil {
			return nil, err
		}
		s.eventService.Publish(ctx, TournamentEvent{
			Type:         EventMatchUpdated,
			TournamentId: tournamentId,
			Payload:      match,
		})
	}
	return started, nil
}
