package scoring

import (
	"testing"

	"battlescore/repository"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int {
	return &v
}

func matchBetween(id int, ordering int, status repository.MatchStatus, teams ...*repository.Team) *repository.Match {
	return &repository.Match{Id: id, Ordering: ordering, Status: status, Teams: teams}
}

func TestPlanNextMatchesDisabled(t *testing.T) {
	tournament := &repository.Tournament{
		AutoMatchCreation: false,
		NbTeamMatches:     intPtr(3),
		Teams:             teams(4),
	}
	assert.Empty(t, PlanNextMatches(tournament))

	tournament = &repository.Tournament{
		AutoMatchCreation: true,
		NbTeamMatches:     nil,
		Teams:             teams(4),
	}
	assert.Empty(t, PlanNextMatches(tournament))
}

func TestPlanNextMatchesPairsIdleTeams(t *testing.T) {
	tournament := &repository.Tournament{
		AutoMatchCreation: true,
		NbTeamMatches:     intPtr(3),
		Teams:             teams(4),
	}

	pairs := PlanNextMatches(tournament)

	assert.Len(t, pairs, 2)
	assert.Equal(t, 1, pairs[0].Home.Id)
	assert.Equal(t, 2, pairs[0].Away.Id)
	assert.Equal(t, 3, pairs[1].Home.Id)
	assert.Equal(t, 4, pairs[1].Away.Id)
}

func TestPlanNextMatchesSkipsBusyTeams(t *testing.T) {
	allTeams := teams(4)
	tournament := &repository.Tournament{
		AutoMatchCreation: true,
		NbTeamMatches:     intPtr(3),
		Teams:             allTeams,
		Matches: []*repository.Match{
			matchBetween(1, 1, repository.MatchOngoing, allTeams[0], allTeams[1]),
		},
	}

	pairs := PlanNextMatches(tournament)

	assert.Len(t, pairs, 1)
	assert.Equal(t, 3, pairs[0].Home.Id)
	assert.Equal(t, 4, pairs[0].Away.Id)
}

func TestPlanNextMatchesRespectsTeamLimit(t *testing.T) {
	allTeams := teams(3)
	tournament := &repository.Tournament{
		AutoMatchCreation: true,
		NbTeamMatches:     intPtr(1),
		Teams:             allTeams,
		Matches: []*repository.Match{
			matchBetween(1, 1, repository.MatchDone, allTeams[0], allTeams[1]),
		},
	}

	// Teams 1 and 2 played their single match, team 3 has no opponent left
	assert.Empty(t, PlanNextMatches(tournament))
}

func TestPlanNextMatchesPrefersLeastPlayedOpponent(t *testing.T) {
	allTeams := teams(3)
	tournament := &repository.Tournament{
		AutoMatchCreation: true,
		NbTeamMatches:     intPtr(3),
		Teams:             allTeams,
		Matches: []*repository.Match{
			matchBetween(1, 1, repository.MatchDone, allTeams[0], allTeams[1]),
		},
	}

	pairs := PlanNextMatches(tournament)

	// Team 3 played the least and picks first; both opponents are fresh to
	// it so the lower number wins the tie
	assert.Len(t, pairs, 1)
	assert.Equal(t, 3, pairs[0].Home.Id)
	assert.Equal(t, 1, pairs[0].Away.Id)
}

func TestPlanNextMatchesAvoidsRematch(t *testing.T) {
	allTeams := teams(4)
	tournament := &repository.Tournament{
		AutoMatchCreation: true,
		NbTeamMatches:     intPtr(3),
		Teams:             allTeams,
		Matches: []*repository.Match{
			matchBetween(1, 1, repository.MatchDone, allTeams[0], allTeams[1]),
			matchBetween(2, 2, repository.MatchDone, allTeams[2], allTeams[3]),
		},
	}

	pairs := PlanNextMatches(tournament)

	assert.Len(t, pairs, 2)
	assert.Equal(t, 1, pairs[0].Home.Id)
	assert.Equal(t, 3, pairs[0].Away.Id)
	assert.Equal(t, 2, pairs[1].Home.Id)
	assert.Equal(t, 4, pairs[1].Away.Id)
}

func TestUpdateMatchStatusesStartsFreeMatches(t *testing.T) {
	allTeams := teams(4)
	tournament := &repository.Tournament{
		Teams: allTeams,
		Matches: []*repository.Match{
			matchBetween(1, 1, repository.MatchComing, allTeams[0], allTeams[1]),
			matchBetween(2, 2, repository.MatchComing, allTeams[2], allTeams[3]),
		},
	}

	started := UpdateMatchStatuses(tournament)

	assert.Len(t, started, 2)
	assert.Equal(t, repository.MatchOngoing, tournament.Matches[0].Status)
	assert.Equal(t, repository.MatchOngoing, tournament.Matches[1].Status)
}

func TestUpdateMatchStatusesBlockedByOngoing(t *testing.T) {
	allTeams := teams(3)
	tournament := &repository.Tournament{
		Teams: allTeams,
		Matches: []*repository.Match{
			matchBetween(1, 1, repository.MatchOngoing, allTeams[0], allTeams[1]),
			matchBetween(2, 2, repository.MatchComing, allTeams[1], allTeams[2]),
		},
	}

	started := UpdateMatchStatuses(tournament)

	assert.Empty(t, started)
	assert.Equal(t, repository.MatchComing, tournament.Matches[1].Status)
}

func TestUpdateMatchStatusesBlockedMatchReservesTeams(t *testing.T) {
	allTeams := teams(4)
	tournament := &repository.Tournament{
		Teams: allTeams,
		Matches: []*repository.Match{
			matchBetween(1, 1, repository.MatchOngoing, allTeams[0], allTeams[1]),
			// Blocked by match 1, but still holds teams 2 and 3
			matchBetween(2, 2, repository.MatchComing, allTeams[1], allTeams[2]),
			// Must not start ahead of match 2
			matchBetween(3, 3, repository.MatchComing, allTeams[2], allTeams[3]),
		},
	}

	started := UpdateMatchStatuses(tournament)

	assert.Empty(t, started)
	assert.Equal(t, repository.MatchComing, tournament.Matches[1].Status)
	assert.Equal(t, repository.MatchComing, tournament.Matches[2].Status)
}

func TestUpdateMatchStatusesIgnoresDone(t *testing.T) {
	allTeams := teams(2)
	tournament := &repository.Tournament{
		Teams: allTeams,
		Matches: []*repository.Match{
			matchBetween(1, 1, repository.MatchDone, allTeams[0], allTeams[1]),
			matchBetween(2, 2, repository.MatchComing, allTeams[0], allTeams[1]),
		},
	}

	started := UpdateMatchStatuses(tournament)

	assert.Len(t, started, 1)
	assert.Equal(t, 2, started[0].Id)
	assert.Equal(t, repository.MatchDone, tournament.Matches[0].Status)
}
