package scoring

import (
	"testing"

	"battlescore/repository"

	"github.com/stretchr/testify/assert"
)

func teams(n int) []*repository.Team {
	result := make([]*repository.Team, 0, n)
	for i := 1; i <= n; i++ {
		result = append(result, &repository.Team{Id: i, Number: i})
	}
	return result
}

func match(id int, scores ...*repository.Score) *repository.Match {
	return &repository.Match{Id: id, Status: repository.MatchDone, Scores: scores}
}

func score(teamId int, value int) *repository.Score {
	return &repository.Score{TeamId: teamId, Value: value}
}

func TestComputeRankingVictory(t *testing.T) {
	tournament := &repository.Tournament{
		Teams:   teams(2),
		Matches: []*repository.Match{match(1, score(1, 13), score(2, 7))},
	}

	ranking := ControllerFor(tournament.Sport).ComputeRanking(tournament)

	assert.Len(t, ranking, 2)
	assert.Equal(t, 1, ranking[0].Team.Id)
	assert.Equal(t, 1, ranking[0].Points)
	assert.Equal(t, 1, ranking[0].Rank)
	assert.Equal(t, 2, ranking[1].Team.Id)
	assert.Equal(t, 0, ranking[1].Points)
	assert.Equal(t, 2, ranking[1].Rank)
}

func TestComputeRankingDraw(t *testing.T) {
	tournament := &repository.Tournament{
		Teams:   teams(2),
		Matches: []*repository.Match{match(1, score(1, 10), score(2, 10))},
	}

	ranking := ControllerFor(tournament.Sport).ComputeRanking(tournament)

	assert.Equal(t, 1, ranking[0].Points)
	assert.Equal(t, 1, ranking[1].Points)
	assert.Equal(t, 1, ranking[0].Rank)
	assert.Equal(t, 1, ranking[1].Rank)
}

func TestComputeRankingSkipsIncompleteMatches(t *testing.T) {
	tournament := &repository.Tournament{
		Teams: teams(2),
		Matches: []*repository.Match{
			match(1, score(1, 13)),
			match(2),
		},
	}

	ranking := ControllerFor(tournament.Sport).ComputeRanking(tournament)

	assert.Equal(t, 0, ranking[0].Points)
	assert.Equal(t, 0, ranking[1].Points)
}

func TestComputeRankingSorting(t *testing.T) {
	tournament := &repository.Tournament{
		Teams: teams(3),
		Matches: []*repository.Match{
			match(1, score(1, 13), score(2, 7)),
			match(2, score(1, 13), score(3, 5)),
			match(3, score(2, 11), score(3, 13)),
		},
	}

	ranking := ControllerFor(tournament.Sport).ComputeRanking(tournament)

	assert.Equal(t, 1, ranking[0].Team.Id)
	assert.Equal(t, 2, ranking[0].Points)
	assert.Equal(t, 1, ranking[0].Rank)
	// Teams 2 and 3 are tied on one point, team 3 won their encounter but
	// ties break on team number for a stable display order
	assert.Equal(t, 2, ranking[1].Team.Id)
	assert.Equal(t, 2, ranking[1].Rank)
	assert.Equal(t, 3, ranking[2].Team.Id)
	assert.Equal(t, 2, ranking[2].Rank)
}

func TestComputeRankingTiedRanksSkipNext(t *testing.T) {
	tournament := &repository.Tournament{
		Teams: teams(3),
		Matches: []*repository.Match{
			match(1, score(1, 13), score(3, 7)),
			match(2, score(2, 13), score(3, 7)),
		},
	}

	ranking := ControllerFor(tournament.Sport).ComputeRanking(tournament)

	assert.Equal(t, 1, ranking[0].Rank)
	assert.Equal(t, 1, ranking[1].Rank)
	assert.Equal(t, 3, ranking[2].Rank)
	assert.Equal(t, 3, ranking[2].Team.Id)
}

func TestComputeRankingEmptyTournament(t *testing.T) {
	tournament := &repository.Tournament{Teams: teams(4)}

	ranking := ControllerFor(tournament.Sport).ComputeRanking(tournament)

	assert.Len(t, ranking, 4)
	for _, row := range ranking {
		assert.Equal(t, 0, row.Points)
		assert.Equal(t, 1, row.Rank)
	}
}

func TestComputeRankingCountsScoreRowsNotMatchTeams(t *testing.T) {
	// The winning score row belongs to a team no longer listed on the match
	tournament := &repository.Tournament{
		Teams: teams(3),
		Matches: []*repository.Match{
			{
				Id:     1,
				Status: repository.MatchDone,
				Teams:  []*repository.Team{{Id: 2, Number: 2}, {Id: 3, Number: 3}},
				Scores: []*repository.Score{score(1, 13), score(2, 7)},
			},
		},
	}

	ranking := ControllerFor(tournament.Sport).ComputeRanking(tournament)

	assert.Equal(t, 1, ranking[0].Team.Id)
	assert.Equal(t, 1, ranking[0].Points)
}

func TestControllerForPetanque(t *testing.T) {
	controller := ControllerFor(repository.SportPetanque)
	assert.IsType(t, &PetanqueSportController{}, controller)
}
