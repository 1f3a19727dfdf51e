package service

import (
	"context"

	"battlescore/metrics"
	"battlescore/repository"
	"battlescore/scoring"
	"battlescore/utils"

	"gorm.io/gorm"
)

type StandingService struct {
	standingRepository   *repository.StandingRepository
	tournamentRepository *repository.TournamentRepository
	eventService         *EventService
}

func NewStandingService(db *gorm.DB) *StandingService {
	return &StandingService{
		standingRepository:   repository.NewStandingRepository(db),
		tournamentRepository: repository.NewTournamentRepository(db),
		eventService:         NewEventService(),
	}
}

func (s *StandingService) GetStandingsForTournament(tournamentId int) ([]*repository.Standing, error) {
	return s.standingRepository.GetStandingsForTournament(tournamentId)
}

// ComputeRanking returns the live ranking without touching the snapshot.
func (s *StandingService) ComputeRanking(tournamentId int) ([]*scoring.TeamScore, error) {
	tournament, err := s.tournamentRepository.GetTournamentForScoring(tournamentId)
	if err != nil {
		return nil, err
	}
	return scoring.ControllerFor(tournament.Sport).ComputeRanking(tournament), nil
}

// RefreshStandings recomputes the ranking and replaces the persisted
// snapshot, then announces the update.
func (s *StandingService) RefreshStandings(ctx context.Context, tournamentId int) ([]*repository.Standing, error) {
	ranking, err := s.ComputeRanking(tournamentId)
	if err != nil {
		return nil, err
	}
	standings := utils.Map(ranking, func(row *scoring.TeamScore) *repository.Standing {
		return &repository.Standing{
			TournamentId: tournamentId,
			TeamId:       row.Team.Id,
			Rank:         row.Rank,
			Points:       row.Points,
		}
	})
	if err := s.standingRepository.ReplaceForTournament(tournamentId, standings); err != nil {
		return nil, err
	}
	metrics.StandingsRefreshCounter.Inc()
	s.eventService.Publish(ctx, TournamentEvent{
		Type:         EventStandingsUpdated,
		TournamentId: tournamentId,
		Payload:      ranking,
	})
	return standings, nil
}
