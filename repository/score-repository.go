package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Score struct {
	Id      int   `gorm:"primaryKey"`
	MatchId int   `gorm:"not null;uniqueIndex:idx_score_match_team"`
	TeamId  int   `gorm:"not null;uniqueIndex:idx_score_match_team"`
	Value   int   `gorm:"not null;default:0"`
	Team    *Team `gorm:"foreignKey:TeamId;constraint:OnDelete:CASCADE"`
	Timestamps
}

type ScoreRepository struct {
	DB *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{DB: db}
}

func (r *ScoreRepository) GetScoresForMatch(matchId int) ([]*Score, error) {
	scores := make([]*Score, 0)
	result := r.DB.Preload("Team").Find(&scores, "match_id = ?", matchId)
	if result.Error != nil {
		return nil, result.Error
	}
	return scores, nil
}

// Upsert creates the score for (match, team) or updates its value.
func (r *ScoreRepository) Upsert(matchId int, teamId int, value int) (*Score, error) {
	score := &Score{MatchId: matchId, TeamId: teamId, Value: value}
	result := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "match_id"}, {Name: "team_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "date_updated"}),
	}).Create(score)
	if result.Error != nil {
		return nil, result.Error
	}
	return score, nil
}

func (r *ScoreRepository) Delete(matchId int, teamId int) error {
	result := r.DB.Delete(&Score{}, "match_id = ? AND team_id = ?", matchId, teamId)
	return result.Error
}
