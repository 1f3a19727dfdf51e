package scoring

import (
	"sort"

	"battlescore/repository"
)

// TeamPair is a planned pairing for a new match.
type TeamPair struct {
	Home *repository.Team
	Away *repository.Team
}

// PlanNextMatches plans the matches to create for a tournament with
// automatic match creation enabled. It returns no pairs unless the feature is
// on and a per-team match limit is set.
//
// A team is skipped while it still has a pending (coming or ongoing) match,
// and once it has played its NbTeamMatches matches. Remaining teams are
// paired fewest-played first, each with the eligible opponent it has met the
// least, so the schedule spreads opponents before repeating them.
func PlanNextMatches(tournament *repository.Tournament) []TeamPair {
	if !tournament.AutoMatchCreation || tournament.NbTeamMatches == nil {
		return nil
	}
	limit := *tournament.NbTeamMatches

	matchCount := make(map[int]int, len(tournament.Teams))
	pending := make(map[int]bool)
	encounters := make(map[int]map[int]int)
	for _, team := range tournament.Teams {
		matchCount[team.Id] = 0
		encounters[team.Id] = make(map[int]int)
	}
	for _, match := range tournament.Matches {
		for _, team := range match.Teams {
			matchCount[team.Id]++
			if match.Status != repository.MatchDone {
				pending[team.Id] = true
			}
			for _, opponent := range match.Teams {
				if opponent.Id != team.Id {
					encounters[team.Id][opponent.Id]++
				}
			}
		}
	}

	eligible := make([]*repository.Team, 0, len(tournament.Teams))
	for _, team := range tournament.Teams {
		if !pending[team.Id] && matchCount[team.Id] < limit {
			eligible = append(eligible, team)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if matchCount[eligible[i].Id] != matchCount[eligible[j].Id] {
			return matchCount[eligible[i].Id] < matchCount[eligible[j].Id]
		}
		return eligible[i].Number < eligible[j].Number
	})

	pairs := make([]TeamPair, 0)
	used := make(map[int]bool)
	for _, team := range eligible {
		if used[team.Id] {
			continue
		}
		var opponent *repository.Team
		for _, candidate := range eligible {
			if candidate.Id == team.Id || used[candidate.Id] {
				continue
			}
			if opponent == nil || encounters[team.Id][candidate.Id] < encounters[team.Id][opponent.Id] {
				opponent = candidate
			}
		}
		if opponent == nil {
			break
		}
		used[team.Id] = true
		used[opponent.Id] = true
		pairs = append(pairs, TeamPair{Home: team, Away: opponent})
	}
	return pairs
}

// UpdateMatchStatuses flips coming matches to ongoing when none of their
// teams is busy, walking matches in schedule order. A blocked match reserves
// its teams so a later match cannot jump the queue. Done and ongoing matches
// are never touched. The newly started matches are returned; persisting the
// status change is up to the caller.
func UpdateMatchStatuses(tournament *repository.Tournament) []*repository.Match {
	busy := make(map[int]bool)
	for _, match := range tournament.Matches {
		if match.Status == repository.MatchOngoing {
			for _, team := range match.Teams {
				busy[team.Id] = true
			}
		}
	}

	matches := make([]*repository.Match, len(tournament.Matches))
	copy(matches, tournament.Matches)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Ordering < matches[j].Ordering
	})

	started := make([]*repository.Match, 0)
	for _, match := range matches {
		if match.Status != repository.MatchComing {
			continue
		}
		blocked := false
		for _, team := range match.Teams {
			if busy[team.Id] {
				blocked = true
				break
			}
		}
		// Reserve the teams either way to keep the schedule order
		for _, team := range match.Teams {
			busy[team.Id] = true
		}
		if blocked {
			continue
		}
		match.Status = repository.MatchOngoing
		started = append(started, match)
	}
	return started
}
