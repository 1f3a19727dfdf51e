package service

import (
	"fmt"
	"net/http"

	"battlescore/app_error"
	"battlescore/repository"
	"battlescore/utils"

	"gorm.io/gorm"
)

const (
	maxTeamsPerCreate = 50
	maxTeamNameLength = 100
)

var teamNameAdjectives = []string{
	"Brave", "Swift", "Mighty", "Clever", "Golden", "Silent", "Wild", "Iron",
	"Crimson", "Lucky", "Fierce", "Noble", "Shadow", "Thunder", "Frozen", "Blazing",
}

var teamNameNouns = []string{
	"Otters", "Falcons", "Badgers", "Wolves", "Ravens", "Foxes", "Bears", "Lynxes",
	"Hornets", "Cobras", "Bisons", "Eagles", "Sharks", "Panthers", "Owls", "Stallions",
}

type TeamService struct {
	teamRepository *repository.TeamRepository
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{
		teamRepository: repository.NewTeamRepository(db),
	}
}

func (s *TeamService) GetTeamsForTournament(tournamentId int) ([]*repository.Team, error) {
	return s.teamRepository.GetTeamsForTournament(tournamentId)
}

func (s *TeamService) GetTeamById(tournamentId int, teamId int, preloads ...string) (*repository.Team, error) {
	return s.teamRepository.GetTeamById(tournamentId, teamId, preloads...)
}

// CreateTeams bulk-creates count teams with generated names, numbered after
// the current highest team number. Count is clamped to [1, 50].
func (s *TeamService) CreateTeams(tournament *repository.Tournament, count int) ([]*repository.Team, error) {
	if count < 1 {
		count = 1
	}
	if count > maxTeamsPerCreate {
		count = maxTeamsPerCreate
	}

	existing, err := s.teamRepository.GetTeamsForTournament(tournament.Id)
	if err != nil {
		return nil, err
	}
	usedNames := make(map[string]bool, len(existing))
	for _, team := range existing {
		usedNames[team.Name] = true
	}
	maxNumber, err := s.teamRepository.GetMaxNumber(tournament.Id)
	if err != nil {
		return nil, err
	}

	generator := newTeamNameGenerator(tournament.Id)
	teams := make([]*repository.Team, 0, count)
	for i := 1; i <= count; i++ {
		number := maxNumber + i
		name := generator.next(usedNames)
		if name == "" {
			name = fmt.Sprintf("Team %d", number)
		}
		usedNames[name] = true
		teams = append(teams, &repository.Team{
			TournamentId: tournament.Id,
			Name:         name,
			Number:       number,
		})
	}
	if err := s.teamRepository.SaveAll(teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *TeamService) UpdateTeamName(tournamentId int, teamId int, name string) (*repository.Team, error) {
	team, err := s.teamRepository.GetTeamById(tournamentId, teamId)
	if err != nil {
		return nil, err
	}
	name = utils.SanitizeUserText(name, maxTeamNameLength)
	if name == "" {
		return nil, app_error.New(fmt.Errorf("team name must not be empty"), http.StatusBadRequest)
	}
	team.Name = name
	return s.teamRepository.Save(team)
}

// DeleteTeam removes the team and renumbers the remaining teams dense from 1.
func (s *TeamService) DeleteTeam(tournamentId int, teamId int) error {
	return s.teamRepository.DeleteAndRenumber(tournamentId, teamId)
}

// teamNameGenerator walks a full-cycle sequence over the adjective/noun
// grid so a tournament gets every combination once, in an order that is
// deterministic per tournament but different between tournaments.
type teamNameGenerator struct {
	lcg *utils.LCG
}

func newTeamNameGenerator(tournamentId int) *teamNameGenerator {
	size := len(teamNameAdjectives) * len(teamNameNouns)
	lcg, err := utils.NewLCG(0, size, 5, 3, tournamentId%size)
	if err != nil {
		return &teamNameGenerator{}
	}
	return &teamNameGenerator{lcg: lcg}
}

// next returns an unused name, or "" once the grid is exhausted.
func (g *teamNameGenerator) next(used map[string]bool) string {
	if g.lcg == nil {
		return ""
	}
	size := len(teamNameAdjectives) * len(teamNameNouns)
	for i := 0; i < size; i++ {
		index := g.lcg.Next()
		name := fmt.Sprintf("%s %s", teamNameAdjectives[index/len(teamNameNouns)], teamNameNouns[index%len(teamNameNouns)])
		if !used[name] {
			return name
		}
	}
	return ""
}
