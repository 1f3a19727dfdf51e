package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"battlescore/app_error"
	"battlescore/metrics"
	"battlescore/repository"

	"gorm.io/gorm"
)

type ScoreService struct {
	scoreRepository *repository.ScoreRepository
	matchRepository *repository.MatchRepository
	eventService    *EventService
}

func NewScoreService(db *gorm.DB) *ScoreService {
	return &ScoreService{
		scoreRepository: repository.NewScoreRepository(db),
		matchRepository: repository.NewMatchRepository(db),
		eventService:    NewEventService(),
	}
}

type ScoreEntry struct {
	TeamId int  `json:"team_id" binding:"required"`
	Value  *int `json:"value"`
}

// SetScores batch-upserts the given scores on a match. A nil value deletes
// the team's score row. The first score on a coming match starts it.
func (s *ScoreService) SetScores(ctx context.Context, tournamentId int, matchId int, entries []ScoreEntry) (*repository.Match, error) {
	match, err := s.matchRepository.GetMatchById(tournamentId, matchId)
	if err != nil {
		return nil, err
	}
	if match.Status == repository.MatchDone {
		return nil, app_error.New(fmt.Errorf("scores of a finished match cannot be changed"), http.StatusConflict)
	}
	for _, entry := range entries {
		if !match.HasTeam(entry.TeamId) {
			return nil, app_error.New(fmt.Errorf("team %d does not play in this match", entry.TeamId), http.StatusBadRequest)
		}
	}

	scored := false
	for _, entry := range entries {
		if entry.Value == nil {
			if err := s.scoreRepository.Delete(matchId, entry.TeamId); err != nil {
				return nil, err
			}
			s.eventService.Publish(ctx, TournamentEvent{
				Type:         EventScoreDeleted,
				TournamentId: tournamentId,
				Payload:      map[string]int{"match_id": matchId, "team_id": entry.TeamId},
			})
			continue
		}
		score, err := s.scoreRepository.Upsert(matchId, entry.TeamId, *entry.Value)
		if err != nil {
			return nil, err
		}
		scored = true
		metrics.ScoresUpsertedCounter.Inc()
		s.eventService.Publish(ctx, TournamentEvent{
			Type:         EventScoreUpdated,
			TournamentId: tournamentId,
			Payload:      score,
		})
	}

	if scored && match.Status == repository.MatchComing {
		match.Status = repository.MatchOngoing
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
	return s.matchRepository.GetMatchById(tournamentId, matchId)
}

func (s *ScoreService) GetScoresForMatch(matchId int) ([]*repository.Score, error) {
	return s.scoreRepository.GetScoresForMatch(matchId)
}
