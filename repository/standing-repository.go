package repository

import (
	"gorm.io/gorm"
)

// Standing is the persisted ranking snapshot of a team in a tournament,
// refreshed whenever a match finishes.
type Standing struct {
	Id           int   `gorm:"primaryKey"`
	TournamentId int   `gorm:"not null;uniqueIndex:idx_standing_tournament_team"`
	TeamId       int   `gorm:"not null;uniqueIndex:idx_standing_tournament_team"`
	Rank         int   `gorm:"not null"`
	Points       int   `gorm:"not null;default:0"`
	Team         *Team `gorm:"foreignKey:TeamId;constraint:OnDelete:CASCADE"`
	Timestamps
}

type StandingRepository struct {
	DB *gorm.DB
}

func NewStandingRepository(db *gorm.DB) *StandingRepository {
	return &StandingRepository{DB: db}
}

func (r *StandingRepository) GetStandingsForTournament(tournamentId int) ([]*Standing, error) {
	standings := make([]*Standing, 0)
	result := r.DB.Preload("Team").Order("rank ASC").Find(&standings, "tournament_id = ?", tournamentId)
	if result.Error != nil {
		return nil, result.Error
	}
	return standings, nil
}

// ReplaceForTournament swaps the snapshot for the tournament atomically.
func (r *StandingRepository) ReplaceForTournament(tournamentId int, standings []*Standing) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&Standing{}, "tournament_id = ?", tournamentId).Error; err != nil {
			return err
		}
		if len(standings) == 0 {
			return nil
		}
		return tx.CreateInBatches(standings, len(standings)).Error
	})
}
