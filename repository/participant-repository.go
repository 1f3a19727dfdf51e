package repository

import (
	"gorm.io/gorm"
)

type ParticipantRole string

const (
	RoleAdmin     ParticipantRole = "ADMIN"
	RolePlayer    ParticipantRole = "PLAYER"
	RoleSpectator ParticipantRole = "SPECTATOR"
)

type Participant struct {
	Id           int             `gorm:"primaryKey"`
	UserId       int             `gorm:"not null;uniqueIndex:idx_participant_user_tournament"`
	TournamentId int             `gorm:"not null;uniqueIndex:idx_participant_user_tournament"`
	TeamId       *int            `gorm:"null"`
	Role         ParticipantRole `gorm:"type:battle.participant_role;not null;default:'PLAYER'"`
	User         *User           `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	Team         *Team           `gorm:"foreignKey:TeamId;constraint:OnDelete:SET NULL"`
	Timestamps
}

type ParticipantRepository struct {
	DB *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{DB: db}
}

func (r *ParticipantRepository) GetParticipantById(tournamentId int, participantId int) (*Participant, error) {
	var participant Participant
	result := r.DB.Preload("User").First(&participant, "id = ? AND tournament_id = ?", participantId, tournamentId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &participant, nil
}

func (r *ParticipantRepository) GetParticipantsForTournament(tournamentId int) ([]*Participant, error) {
	participants := make([]*Participant, 0)
	result := r.DB.Preload("User").Preload("Team").Find(&participants, "tournament_id = ?", tournamentId)
	if result.Error != nil {
		return nil, result.Error
	}
	return participants, nil
}

func (r *ParticipantRepository) GetParticipantForUser(tournamentId int, userId int) (*Participant, error) {
	var participant Participant
	result := r.DB.First(&participant, "tournament_id = ? AND user_id = ?", tournamentId, userId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &participant, nil
}

func (r *ParticipantRepository) Save(participant *Participant) (*Participant, error) {
	result := r.DB.Save(participant)
	if result.Error != nil {
		return nil, result.Error
	}
	return participant, nil
}

func (r *ParticipantRepository) Delete(tournamentId int, participantId int) error {
	result := r.DB.Delete(&Participant{}, "id = ? AND tournament_id = ?", participantId, tournamentId)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
