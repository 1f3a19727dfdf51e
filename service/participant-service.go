package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"battlescore/app_error"
	"battlescore/repository"

	"gorm.io/gorm"
)

type ParticipantService struct {
	participantRepository *repository.ParticipantRepository
	teamRepository        *repository.TeamRepository
	eventService          *EventService
}

func NewParticipantService(db *gorm.DB) *ParticipantService {
	return &ParticipantService{
		participantRepository: repository.NewParticipantRepository(db),
		teamRepository:        repository.NewTeamRepository(db),
		eventService:          NewEventService(),
	}
}

func (s *ParticipantService) GetParticipantsForTournament(tournamentId int) ([]*repository.Participant, error) {
	return s.participantRepository.GetParticipantsForTournament(tournamentId)
}

func (s *ParticipantService) GetParticipantForUser(tournamentId int, userId int) (*repository.Participant, error) {
	return s.participantRepository.GetParticipantForUser(tournamentId, userId)
}

// Join adds the user to the tournament. Joining twice returns the existing
// participation unchanged.
func (s *ParticipantService) Join(ctx context.Context, tournamentId int, userId int, role repository.ParticipantRole) (*repository.Participant, error) {
	existing, err := s.participantRepository.GetParticipantForUser(tournamentId, userId)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if role == "" {
		role = repository.RolePlayer
	}
	participant, err := s.participantRepository.Save(&repository.Participant{
		UserId:       userId,
		TournamentId: tournamentId,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}
	s.eventService.Publish(ctx, TournamentEvent{
		Type:         EventParticipantCreated,
		TournamentId: tournamentId,
		Payload:      participant,
	})
	return participant, nil
}

type ParticipantUpdate struct {
	Role   *repository.ParticipantRole `json:"role"`
	TeamId *int                        `json:"team_id"`
	// ClearTeam removes the team assignment when true
	ClearTeam bool `json:"clear_team"`
}

func (s *ParticipantService) UpdateParticipant(ctx context.Context, tournamentId int, participantId int, update *ParticipantUpdate) (*repository.Participant, error) {
	participant, err := s.participantRepository.GetParticipantById(tournamentId, participantId)
	if err != nil {
		return nil, err
	}
	if update.Role != nil {
		switch *update.Role {
		case repository.RoleAdmin, repository.RolePlayer, repository.RoleSpectator:
			participant.Role = *update.Role
		default:
			return nil, app_error.New(fmt.Errorf("unknown participant role %s", *update.Role), http.StatusBadRequest)
		}
	}
	if update.ClearTeam {
		participant.TeamId = nil
	} else if update.TeamId != nil {
		if _, err := s.teamRepository.GetTeamById(tournamentId, *update.TeamId); err != nil {
			return nil, err
		}
		participant.TeamId = update.TeamId
	}
	participant, err = s.participantRepository.Save(participant)
	if err != nil {
		return nil, err
	}
	s.eventService.Publish(ctx, TournamentEvent{
		Type:         EventParticipantUpdated,
		TournamentId: tournamentId,
		Payload:      participant,
	})
	return participant, nil
}

func (s *ParticipantService) RemoveParticipant(ctx context.Context, tournamentId int, participantId int) error {
	if err := s.participantRepository.Delete(tournamentId, participantId); err != nil {
		return err
	}
	s.eventService.Publish(ctx, TournamentEvent{
		Type:         EventParticipantDeleted,
		TournamentId: tournamentId,
		Payload:      map[string]int{"participant_id": participantId},
	})
	return nil
}
