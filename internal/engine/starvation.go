package engine

import (
	"sort"

	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/hexgrid"
)

// ComputeStarvationCandidates returns, for every non-eliminated player
// with at least one warrior, the set of that player's warriors whose
// distance to the throne is maximum.
func ComputeStarvationCandidates(state domain.GameState) map[string][]string {
	out := map[string][]string{}
	for _, pl := range state.Players {
		if pl.IsEliminated {
			continue
		}
		best := -1
		var bestIDs []string
		for _, p := range state.Pieces {
			if p.Type != domain.PieceWarrior || p.PlayerID != pl.ID {
				continue
			}
			d := hexgrid.Distance(throneHex, p.Position)
			switch {
			case d > best:
				best = d
				bestIDs = []string{p.ID}
			case d == best:
				bestIDs = append(bestIDs, p.ID)
			}
		}
		if len(bestIDs) > 0 {
			out[pl.ID] = bestIDs
		}
	}
	return out
}

// PickSacrifice deterministically chooses which of a player's warriors
// is sacrificed on a turn timeout: the one with the largest
// (distance-to-throne, id) pair, per spec §4.B.
func PickSacrifice(state domain.GameState, playerID string) (domain.Piece, bool) {
	var candidates []domain.Piece
	for _, p := range state.Pieces {
		if p.Type == domain.PieceWarrior && p.PlayerID == playerID {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return domain.Piece{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		di := hexgrid.Distance(throneHex, candidates[i].Position)
		dj := hexgrid.Distance(throneHex, candidates[j].Position)
		if di != dj {
			return di > dj
		}
		return candidates[i].ID > candidates[j].ID
	})
	return candidates[0], true
}
