package scoring

import (
	"sort"

	"battlescore/repository"
)

// TeamScore is one row of a tournament ranking.
type TeamScore struct {
	Team   *repository.Team
	Points int
	Rank   int
}

// SportController computes rankings for a tournament. Sports can specialize
// the scoring rules; the generic rules award one point per match win and one
// point to each team on a draw.
type SportController interface {
	ComputeRanking(tournament *repository.Tournament) []*TeamScore
}

type GenericSportController struct{}

// PetanqueSportController currently reuses the generic scoring logic. It is
// kept as its own type so petanque rules (ends won vs points) can diverge.
type PetanqueSportController struct {
	GenericSportController
}

// ControllerFor returns the sport controller for the given sport, falling
// back to the generic rules.
func ControllerFor(sport repository.TournamentSport) SportController {
	switch sport {
	case repository.SportPetanque:
		return &PetanqueSportController{}
	default:
		return &GenericSportController{}
	}
}

// ComputeRanking awards one point per won match and one point to each team on
// a draw, then sorts teams by points with standard competition ranking: tied
// teams share a rank and the next rank is skipped (1, 1, 3).
//
// A match only counts once at least two scores are recorded. Points are
// attributed from the score rows themselves so a team removed from a match
// after scoring keeps its point.
func (c *GenericSportController) ComputeRanking(tournament *repository.Tournament) []*TeamScore {
	points := make(map[int]int, len(tournament.Teams))
	for _, team := range tournament.Teams {
		points[team.Id] = 0
	}

	for _, match := range tournament.Matches {
		if len(match.Scores) < 2 {
			continue
		}
		best := match.Scores[0].Value
		for _, score := range match.Scores[1:] {
			if score.Value > best {
				best = score.Value
			}
		}
		winners := make([]*repository.Score, 0, 2)
		for _, score := range match.Scores {
			if score.Value == best {
				winners = append(winners, score)
			}
		}
		if len(winners) == len(match.Scores) && len(winners) > 1 {
			// Draw: every team gets a point
			for _, score := range winners {
				points[score.TeamId]++
			}
			continue
		}
		for _, score := range winners {
			points[score.TeamId]++
		}
	}

	ranking := make([]*TeamScore, 0, len(tournament.Teams))
	for _, team := range tournament.Teams {
		ranking = append(ranking, &TeamScore{Team: team, Points: points[team.Id]})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].Points != ranking[j].Points {
			return ranking[i].Points > ranking[j].Points
		}
		return ranking[i].Team.Number < ranking[j].Team.Number
	})
	for i, row := range ranking {
		if i > 0 && row.Points == ranking[i-1].Points {
			row.Rank = ranking[i-1].Rank
		} else {
			row.Rank = i + 1
		}
	}
	return ranking
}
