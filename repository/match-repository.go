package repository

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type MatchStatus string

const (
	MatchComing  MatchStatus = "COMING"
	MatchOngoing MatchStatus = "ONGOING"
	MatchDone    MatchStatus = "DONE"
)

type Match struct {
	Id           int         `gorm:"primaryKey"`
	TournamentId int         `gorm:"not null;index"`
	Ordering     int         `gorm:"not null"`
	Status       MatchStatus `gorm:"type:battle.match_status;not null;default:'COMING'"`
	DateStart    *time.Time  `gorm:"null"`
	DateEnd      *time.Time  `gorm:"null"`
	Location     string      `gorm:"null"`
	Details      string      `gorm:"null"`
	Teams        []*Team     `gorm:"many2many:match_teams"`
	Scores       []*Score    `gorm:"foreignKey:MatchId;constraint:OnDelete:CASCADE"`
	Timestamps
}

// HasTeam reports whether the team plays in this match.
func (m *Match) HasTeam(teamId int) bool {
	for _, team := range m.Teams {
		if team.Id == teamId {
			return true
		}
	}
	return false
}

type MatchRepository struct {
	DB *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{DB: db}
}

func (r *MatchRepository) GetMatchById(tournamentId int, matchId int) (*Match, error) {
	var match Match
	result := r.DB.
		Preload("Teams").
		Preload("Scores").
		First(&match, "id = ? AND tournament_id = ?", matchId, tournamentId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &match, nil
}

// GetMatchesForTournament returns the matches split by status with the
// section orderings of the matches page: ongoing by most recent start, coming
// by ordering, done by most recent end.
func (r *MatchRepository) GetMatchesForTournament(tournamentId int) (ongoing, coming, done []*Match, err error) {
	timer := prometheus.NewTimer(queryDuration.WithLabelValues("GetMatchesForTournament"))
	defer timer.ObserveDuration()
	base := func() *gorm.DB {
		return r.DB.Preload("Teams").Preload("Scores").Where("tournament_id = ?", tournamentId)
	}
	ongoing = make([]*Match, 0)
	if err = base().Where("status = ?", MatchOngoing).Order("date_start DESC").Find(&ongoing).Error; err != nil {
		return nil, nil, nil, err
	}
	coming = make([]*Match, 0)
	if err = base().Where("status = ?", MatchComing).Order("ordering ASC").Find(&coming).Error; err != nil {
		return nil, nil, nil, err
	}
	done = make([]*Match, 0)
	if err = base().Where("status = ?", MatchDone).Order("date_end DESC").Find(&done).Error; err != nil {
		return nil, nil, nil, err
	}
	return ongoing, coming, done, nil
}

func (r *MatchRepository) GetMaxOrdering(tournamentId int) (int, error) {
	var maxOrdering *int
	result := r.DB.Model(&Match{}).
		Where("tournament_id = ?", tournamentId).
		Select("MAX(ordering)").
		Scan(&maxOrdering)
	if result.Error != nil {
		return 0, result.Error
	}
	if maxOrdering == nil {
		return 0, nil
	}
	return *maxOrdering, nil
}

func (r *MatchRepository) Save(match *Match) (*Match, error) {
	result := r.DB.Save(match)
	if result.Error != nil {
		return nil, result.Error
	}
	return match, nil
}

// SetTeams replaces the teams playing the match.
func (r *MatchRepository) SetTeams(match *Match, teams []*Team) error {
	if err := r.DB.Model(match).Association("Teams").Replace(teams); err != nil {
		return err
	}
	match.Teams = teams
	return nil
}

// DeleteAndRenumber removes the match and renumbers the remaining matches of
// the tournament dense from 1, in one transaction.
func (r *MatchRepository) DeleteAndRenumber(tournamentId int, matchId int) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&Match{}, "id = ? AND tournament_id = ?", matchId, tournamentId)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		matches := make([]*Match, 0)
		if err := tx.Order("ordering ASC").Find(&matches, "tournament_id = ?", tournamentId).Error; err != nil {
			return err
		}
		for i, match := range matches {
			if match.Ordering != i+1 {
				if err := tx.Model(match).Update("ordering", i+1).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
