package repository

import (
	"gorm.io/gorm"
)

type Team struct {
	Id           int            `gorm:"primaryKey"`
	TournamentId int            `gorm:"not null;index"`
	Name         string         `gorm:"not null"`
	Number       int            `gorm:"not null"`
	Members      []*Participant `gorm:"foreignKey:TeamId"`
	Matches      []*Match       `gorm:"many2many:match_teams"`
	Timestamps
}

type TeamRepository struct {
	DB *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{DB: db}
}

func (r *TeamRepository) GetTeamById(tournamentId int, teamId int, preloads ...string) (*Team, error) {
	var team Team
	query := r.DB
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	result := query.First(&team, "id = ? AND tournament_id = ?", teamId, tournamentId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &team, nil
}

func (r *TeamRepository) GetTeamsForTournament(tournamentId int) ([]*Team, error) {
	teams := make([]*Team, 0)
	result := r.DB.Order("number ASC").Find(&teams, "tournament_id = ?", tournamentId)
	if result.Error != nil {
		return nil, result.Error
	}
	return teams, nil
}

func (r *TeamRepository) GetTeamsByIds(tournamentId int, teamIds []int) ([]*Team, error) {
	teams := make([]*Team, 0)
	result := r.DB.Find(&teams, "tournament_id = ? AND id IN ?", tournamentId, teamIds)
	if result.Error != nil {
		return nil, result.Error
	}
	return teams, nil
}

func (r *TeamRepository) GetMaxNumber(tournamentId int) (int, error) {
	var maxNumber *int
	result := r.DB.Model(&Team{}).
		Where("tournament_id = ?", tournamentId).
		Select("MAX(number)").
		Scan(&maxNumber)
	if result.Error != nil {
		return 0, result.Error
	}
	if maxNumber == nil {
		return 0, nil
	}
	return *maxNumber, nil
}

func (r *TeamRepository) Save(team *Team) (*Team, error) {
	result := r.DB.Save(team)
	if result.Error != nil {
		return nil, result.Error
	}
	return team, nil
}

func (r *TeamRepository) SaveAll(teams []*Team) error {
	result := r.DB.CreateInBatches(teams, len(teams))
	return result.Error
}

// DeleteAndRenumber removes the team and renumbers the remaining teams of the
// tournament dense from 1, in one transaction.
func (r *TeamRepository) DeleteAndRenumber(tournamentId int, teamId int) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&Team{}, "id = ? AND tournament_id = ?", teamId, tournamentId)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		teams := make([]*Team, 0)
		if err := tx.Order("number ASC").Find(&teams, "tournament_id = ?", tournamentId).Error; err != nil {
			return err
		}
		for i, team := range teams {
			if team.Number != i+1 {
				if err := tx.Model(team).Update("number", i+1).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
