package repository

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type TournamentSport string

const (
	SportGeneric  TournamentSport = "GENERIC"
	SportPetanque TournamentSport = "PETANQUE"
)

type TournamentStatus string

const (
	TournamentDraft     TournamentStatus = "DRAFT"
	TournamentPublished TournamentStatus = "PUBLISHED"
	TournamentOngoing   TournamentStatus = "ONGOING"
	TournamentDone      TournamentStatus = "DONE"
)

type Tournament struct {
	Id                int              `gorm:"primaryKey"`
	Name              string           `gorm:"not null"`
	Sport             TournamentSport  `gorm:"type:battle.tournament_sport;not null;default:'GENERIC'"`
	Status            TournamentStatus `gorm:"type:battle.tournament_status;not null;default:'DRAFT'"`
	Description       string           `gorm:"null"`
	Location          string           `gorm:"null"`
	NbTeams           int              `gorm:"not null;default:0"`
	NbPlayersPerTeam  int              `gorm:"not null;default:0"`
	NbTeamMatches     *int             `gorm:"null"`
	AutoMatchCreation bool             `gorm:"not null;default:false"`
	StartsAt          *time.Time       `gorm:"null"`
	DateStart         *time.Time       `gorm:"null"`
	AdminId           int              `gorm:"not null"`
	Admin             *User            `gorm:"foreignKey:AdminId;constraint:OnDelete:CASCADE"`
	Teams             []*Team          `gorm:"foreignKey:TournamentId;constraint:OnDelete:CASCADE"`
	Participants      []*Participant   `gorm:"foreignKey:TournamentId;constraint:OnDelete:CASCADE"`
	Matches           []*Match         `gorm:"foreignKey:TournamentId;constraint:OnDelete:CASCADE"`
	Timestamps
}

type TournamentRepository struct {
	DB *gorm.DB
}

func NewTournamentRepository(db *gorm.DB) *TournamentRepository {
	return &TournamentRepository{DB: db}
}

func (r *TournamentRepository) GetTournamentById(tournamentId int, preloads ...string) (*Tournament, error) {
	var tournament Tournament
	query := r.DB
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	result := query.First(&tournament, tournamentId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &tournament, nil
}

// GetTournamentForScoring loads a tournament with everything the ranking and
// auto match creation need: teams, matches with their teams and scores.
func (r *TournamentRepository) GetTournamentForScoring(tournamentId int) (*Tournament, error) {
	timer := prometheus.NewTimer(queryDuration.WithLabelValues("GetTournamentForScoring"))
	defer timer.ObserveDuration()
	var tournament Tournament
	result := r.DB.
		Preload("Teams", func(db *gorm.DB) *gorm.DB { return db.Order("teams.number ASC") }).
		Preload("Matches", func(db *gorm.DB) *gorm.DB { return db.Order("matches.ordering ASC") }).
		Preload("Matches.Teams").
		Preload("Matches.Scores").
		First(&tournament, tournamentId)
	if result.Error != nil {
		return nil, result.Error
	}
	return &tournament, nil
}

// GetTournamentsForUser returns tournaments the user admins or participates
// in, most recent first.
func (r *TournamentRepository) GetTournamentsForUser(userId int, limit int) ([]*Tournament, error) {
	tournaments := make([]*Tournament, 0)
	query := r.DB.
		Joins("LEFT JOIN battle.participants ON participants.tournament_id = tournaments.id").
		Where("tournaments.admin_id = ? OR participants.user_id = ?", userId, userId).
		Group("tournaments.id").
		Order("tournaments.date_created DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	result := query.Find(&tournaments)
	if result.Error != nil {
		return nil, result.Error
	}
	return tournaments, nil
}

func (r *TournamentRepository) GetOngoingTournaments() ([]*Tournament, error) {
	tournaments := make([]*Tournament, 0)
	result := r.DB.Find(&tournaments, "status = ?", TournamentOngoing)
	if result.Error != nil {
		return nil, result.Error
	}
	return tournaments, nil
}

func (r *TournamentRepository) Save(tournament *Tournament) (*Tournament, error) {
	result := r.DB.Save(tournament)
	if result.Error != nil {
		return nil, result.Error
	}
	return tournament, nil
}

func (r *TournamentRepository) Delete(tournamentId int) error {
	result := r.DB.Delete(&Tournament{}, tournamentId)
	return result.Error
}
