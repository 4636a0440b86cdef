package engine

import (
	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/hexgrid"
)

// CombatBreakdown is the additive components of one side's combat total.
type CombatBreakdown struct {
	Base     int
	Momentum int
	Support  int
	Total    int
}

// CombatOutcome is the closed set of results a combat resolution can
// produce.
type CombatOutcome string

const (
	OutcomePush    CombatOutcome = "push"
	OutcomeBlocked CombatOutcome = "blocked"
)

// CombatResult is the full outcome of CalculateCombat.
type CombatResult struct {
	Attack        CombatBreakdown
	Defense       CombatBreakdown
	Outcome       CombatOutcome
	PushDirection int
}

// CalculateAttack computes attacker's breakdown. posAtImpact is the hex
// the attacker is standing on when the blow lands (one hex short of the
// defender along the line of movement for a 1-hex approach, or the
// hex just before the destination for a 2-hex momentum approach).
func CalculateAttack(state domain.GameState, attacker domain.Piece, posAtImpact hexgrid.Hex, direction int, hasMomentum bool) CombatBreakdown {
	b := CombatBreakdown{Base: attacker.Type.Strength()}
	if hasMomentum {
		b.Momentum = 1
	}
	b.Support = findInlineSupport(state, posAtImpact, direction, attacker)
	b.Total = b.Base + b.Momentum + b.Support
	return b
}

// CalculateDefense computes the defender's breakdown. direction is the
// attack's direction of travel (i.e. the direction the push would send
// the defender).
func CalculateDefense(state domain.GameState, defender domain.Piece, direction int) CombatBreakdown {
	b := CombatBreakdown{Base: defender.Type.Strength()}
	b.Support = findBracing(state, defender.Position, direction, defender.PlayerID)
	b.Total = b.Base + b.Support
	return b
}

// findInlineSupport walks from posAtImpact opposite the attack
// direction, summing friendly non-shield pieces until one is missing.
// The attacker's own starting hex counts as empty: it has left it by the
// time the blow lands.
func findInlineSupport(state domain.GameState, posAtImpact hexgrid.Hex, direction int, attacker domain.Piece) int {
	opposite := hexgrid.Opposite(direction)
	total := 0
	cur := posAtImpact
	for {
		cur = hexgrid.Neighbor(cur, opposite)
		if !hexgrid.WithinRadius(cur, state.Config.BoardRadius) {
			break
		}
		occupant, ok := state.PieceAt(cur)
		if !ok || occupant.ID == attacker.ID || occupant.Type == domain.PieceShield || occupant.PlayerID != attacker.PlayerID {
			break
		}
		total += occupant.Type.Strength()
	}
	return total
}

// findBracing walks from the defender's hex in the push direction,
// summing friendly non-shield pieces until one is missing.
func findBracing(state domain.GameState, defenderPos hexgrid.Hex, direction int, defenderPlayerID string) int {
	total := 0
	cur := defenderPos
	for {
		cur = hexgrid.Neighbor(cur, direction)
		if !hexgrid.WithinRadius(cur, state.Config.BoardRadius) {
			break
		}
		occupant, ok := state.PieceAt(cur)
		if !ok || occupant.Type == domain.PieceShield || occupant.PlayerID != defenderPlayerID {
			break
		}
		total += occupant.Type.Strength()
	}
	return total
}

// CalculateCombat resolves the attack/defense breakdowns into an
// outcome. Ties favor the defender.
func CalculateCombat(state domain.GameState, attacker domain.Piece, posAtImpact hexgrid.Hex, defender domain.Piece, direction int, hasMomentum bool) CombatResult {
	atk := CalculateAttack(state, attacker, posAtImpact, direction, hasMomentum)
	def := CalculateDefense(state, defender, direction)

	outcome := OutcomeBlocked
	if atk.Total > def.Total {
		outcome = OutcomePush
	}

	return CombatResult{
		Attack:        atk,
		Defense:       def,
		Outcome:       outcome,
		PushDirection: direction,
	}
}
