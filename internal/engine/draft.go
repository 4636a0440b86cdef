package engine

import (
	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/hexgrid"
)

// HasDraft reports whether a draft formation exists behind the jarl in
// the direction of travel, per spec §4.A: walking opposite dir from the
// jarl's hex, collect friendly warriors until two are found or the walk
// is stopped by an enemy piece, a shield, a hole, or the board edge.
// Empty hexes are skipped, not stopping.
func HasDraft(state domain.GameState, jarl domain.Piece, dir int) bool {
	_, found := CollectDraft(state, jarl, dir)
	return found >= 2
}

// CollectDraft walks the draft search and returns the collected warrior
// piece ids (up to 2) and the count found, for reuse by callers that
// want the ids (none currently do, but this keeps the search logic in
// one place for tests and future starvation/UI needs).
func CollectDraft(state domain.GameState, jarl domain.Piece, dir int) ([]string, int) {
	opposite := hexgrid.Opposite(dir)
	cur := jarl.Position
	var ids []string
	maxSteps := 2*state.Config.BoardRadius + 2
	for step := 0; step < maxSteps; step++ {
		cur = hexgrid.Neighbor(cur, opposite)
		if !hexgrid.WithinRadius(cur, state.Config.BoardRadius) {
			break // edge
		}
		if state.IsHole(cur) {
			break
		}
		occupant, occupied := state.PieceAt(cur)
		if !occupied {
			continue // empty hexes are skipped
		}
		if occupant.Type == domain.PieceShield {
			break
		}
		if occupant.PlayerID != jarl.PlayerID {
			break // enemy piece stops the walk
		}
		if occupant.Type == domain.PieceWarrior {
			ids = append(ids, occupant.ID)
			if len(ids) == 2 {
				break
			}
		}
		// a player has exactly one jarl, so occupant can't be a second
		// friendly jarl here.
	}
	return ids, len(ids)
}
