package engine

import (
	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/hexgrid"
)

// ChainTerminator is the closed set of reasons a push chain stops.
type ChainTerminator string

const (
	TerminatorEdge   ChainTerminator = "edge"
	TerminatorHole   ChainTerminator = "hole"
	TerminatorShield ChainTerminator = "shield"
	TerminatorThrone ChainTerminator = "throne"
	TerminatorEmpty  ChainTerminator = "empty"
)

// Chain is the ordered sequence of pieces that would be displaced by a
// push starting at fromHex in direction, plus how it terminates.
type Chain struct {
	Pieces     []domain.Piece
	Terminator ChainTerminator
}

var throneHex = hexgrid.Hex{}

// DetectChain walks forward from fromHex (inclusive) in direction,
// collecting consecutive pieces, and classifies how the chain ends.
func DetectChain(state domain.GameState, fromHex hexgrid.Hex, direction int) Chain {
	var chain Chain
	cur := fromHex
	first := true
	for {
		if first {
			if p, ok := state.PieceAt(cur); ok {
				chain.Pieces = append(chain.Pieces, p)
			}
			first = false
		}

		next := hexgrid.Neighbor(cur, direction)
		if !hexgrid.WithinRadius(next, state.Config.BoardRadius) {
			chain.Terminator = TerminatorEdge
			return chain
		}
		if next == throneHex {
			chain.Terminator = TerminatorThrone
			return chain
		}
		if state.IsHole(next) {
			chain.Terminator = TerminatorHole
			return chain
		}
		occupant, occupied := state.PieceAt(next)
		if !occupied {
			chain.Terminator = TerminatorEmpty
			return chain
		}
		if occupant.Type == domain.PieceShield {
			chain.Terminator = TerminatorShield
			return chain
		}
		chain.Pieces = append(chain.Pieces, occupant)
		cur = next
	}
}

// PushResolution is the set of mutations a resolved push produces.
type PushResolution struct {
	// Moves maps a chain piece id to its new position. The attacker is
	// not included; its end hex is AttackerFinalPosition.
	Moves map[string]hexgrid.Hex
	// Eliminated lists pieces removed from the board, in chain order.
	Eliminated []domain.EliminatedPayload
	// PushEvents lists, in chain order, the PUSH events to emit.
	PushEvents []domain.Event
	// AttackerFinalPosition is where the attacker ends up.
	AttackerFinalPosition hexgrid.Hex
	// Compressed is true when no piece moved and nothing was eliminated.
	Compressed bool
}

// ResolvePush dispatches on the chain terminator and computes the full
// set of resulting moves/eliminations, per spec §4.A. originalHex is the
// attacker's position before the move began: on compression the attacker
// must end up exactly there, even for a momentum move whose intermediate
// hex differs from its starting hex.
func ResolvePush(chain Chain, direction int, attacker domain.Piece, originalHex hexgrid.Hex) PushResolution {
	res := PushResolution{Moves: map[string]hexgrid.Hex{}}

	switch chain.Terminator {
	case TerminatorShield, TerminatorThrone:
		res.Compressed = true
		res.AttackerFinalPosition = originalHex
		return res

	case TerminatorEmpty:
		// Every chain piece advances one hex; attacker occupies the
		// first chain piece's original hex.
		fromHex := chain.Pieces[0].Position
		for _, p := range chain.Pieces {
			dest := hexgrid.Neighbor(p.Position, direction)
			res.Moves[p.ID] = dest
			res.PushEvents = append(res.PushEvents, domain.Event{
				Kind: domain.EventPush,
				Payload: domain.PushPayload{
					PieceID: p.ID,
					From:    p.Position,
					To:      dest,
				},
			})
		}
		res.AttackerFinalPosition = fromHex
		return res

	case TerminatorEdge, TerminatorHole:
		fromHex := chain.Pieces[0].Position
		cause := domain.CauseEdge
		if chain.Terminator == TerminatorHole {
			cause = domain.CauseHole
		}
		last := len(chain.Pieces) - 1
		for i, p := range chain.Pieces {
			if i == last {
				res.Eliminated = append(res.Eliminated, domain.EliminatedPayload{
					PieceID:  p.ID,
					PlayerID: p.PlayerID,
					Cause:    cause,
				})
				continue
			}
			dest := hexgrid.Neighbor(p.Position, direction)
			res.Moves[p.ID] = dest
			res.PushEvents = append(res.PushEvents, domain.Event{
				Kind: domain.EventPush,
				Payload: domain.PushPayload{
					PieceID: p.ID,
					From:    p.Position,
					To:      dest,
				},
			})
		}
		res.AttackerFinalPosition = fromHex
		return res
	}

	// Unreachable: Terminator is always one of the above.
	res.Compressed = true
	res.AttackerFinalPosition = originalHex
	return res
}
