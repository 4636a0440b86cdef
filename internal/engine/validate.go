// Package engine implements the pure, deterministic rule engine: move
// validation, draft formation, combat, push resolution, victory, and
// starvation. No function here performs I/O or retains state between
// calls (spec §4.A).
package engine

import (
	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/hexgrid"
)

// ValidationResult is the successful outcome of validateMove.
type ValidationResult struct {
	HasMomentum         bool
	AdjustedDestination hexgrid.Hex
	WasAdjusted         bool
	Direction           int
}

// ValidateMove checks a proposed move against every rule in spec §4.A,
// in order, returning the first matching error. A nil error means the
// move is legal as described by the returned ValidationResult.
func ValidateMove(state domain.GameState, playerID string, cmd domain.MoveCommand) (ValidationResult, *domain.RuleError) {
	var res ValidationResult

	if state.Phase != domain.PhasePlaying {
		return res, domain.NewRuleError(domain.ErrGameNotPlaying, "game is not in the playing phase")
	}
	if playerID != state.CurrentPlayerID {
		return res, domain.NewRuleError(domain.ErrNotYourTurn, "it is not your turn")
	}

	piece, ok := state.PieceByID(cmd.PieceID)
	if !ok {
		return res, domain.NewRuleError(domain.ErrPieceNotFound, "no such piece")
	}
	if piece.Type == domain.PieceShield {
		return res, domain.NewRuleError(domain.ErrShieldCannotMove, "shields never move")
	}
	if piece.PlayerID != playerID {
		return res, domain.NewRuleError(domain.ErrNotYourPiece, "piece belongs to another player")
	}

	if !hexgrid.WithinRadius(cmd.Destination, state.Config.BoardRadius) {
		return res, domain.NewRuleError(domain.ErrDestinationOffBoard, "destination is outside the board")
	}
	if state.IsHole(cmd.Destination) {
		return res, domain.NewRuleError(domain.ErrDestinationIsHole, "destination is a hole")
	}
	if occupant, occupied := state.PieceAt(cmd.Destination); occupied && occupant.PlayerID == playerID && occupant.PlayerID != "" {
		return res, domain.NewRuleError(domain.ErrDestinationOccupiedFriend, "destination is occupied by your own piece")
	}

	throne := hexgrid.Hex{}
	if piece.Type == domain.PieceWarrior && cmd.Destination == throne {
		return res, domain.NewRuleError(domain.ErrWarriorCannotEnterThrone, "warriors cannot enter the throne")
	}

	dir, inLine := hexgrid.InLine(piece.Position, cmd.Destination)
	if !inLine {
		return res, domain.NewRuleError(domain.ErrMoveNotStraightLine, "move is not a straight line")
	}
	res.Direction = dir

	dist := hexgrid.Distance(piece.Position, cmd.Destination)
	switch piece.Type {
	case domain.PieceWarrior:
		if dist < 1 || dist > 2 {
			return res, domain.NewRuleError(domain.ErrInvalidDistanceWarrior, "warriors move 1 or 2 hexes")
		}
	case domain.PieceJarl:
		switch dist {
		case 1:
			// always allowed
		case 2:
			if !HasDraft(state, piece, dir) {
				return res, domain.NewRuleError(domain.ErrJarlNeedsDraftForTwoHex, "jarl needs a draft formation to move two hexes")
			}
		default:
			return res, domain.NewRuleError(domain.ErrInvalidDistanceJarl, "jarls move 1 or 2 hexes")
		}
	}
	if dist == 2 {
		res.HasMomentum = true
	}

	path, _ := hexgrid.Line(piece.Position, cmd.Destination)
	for _, h := range path[1 : len(path)-1] {
		if state.IsHole(h) {
			return res, domain.NewRuleError(domain.ErrPathBlocked, "path is blocked by a hole")
		}
		if _, occ := state.PieceAt(h); occ {
			return res, domain.NewRuleError(domain.ErrPathBlocked, "path is blocked by a piece")
		}
	}

	res.AdjustedDestination = cmd.Destination
	if piece.Type == domain.PieceJarl && dist == 2 {
		// A 2-hex jarl move that passes through, but doesn't start or
		// end at, the throne is clamped to the throne (spec §4.A).
		if path[1] == throne && piece.Position != throne {
			res.AdjustedDestination = throne
			res.WasAdjusted = true
		}
	}

	return res, nil
}
