package engine

import (
	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/hexgrid"
)

// ApplyMove is the top-level pure operation the Game Actor calls for a
// MAKE_MOVE command: validate, resolve combat/push, detect victory,
// advance the turn, and check starvation — all in one deterministic
// step. It never mutates its input; same inputs always yield an
// identical new state and event list (spec §8, move determinism).
func ApplyMove(state domain.GameState, playerID string, cmd domain.MoveCommand) (domain.GameState, []domain.Event, *domain.RuleError) {
	res, verr := ValidateMove(state, playerID, cmd)
	if verr != nil {
		return state, nil, verr
	}

	newState := state.Clone()
	var events []domain.Event

	piece, _ := newState.PieceByID(cmd.PieceID)
	originalPos := piece.Position
	destination := res.AdjustedDestination

	eliminatedThisMove := false
	finalPos := destination

	if occupant, occupied := newState.PieceAt(destination); occupied && !res.WasAdjusted {
		path, _ := hexgrid.Line(originalPos, destination)
		posAtImpact := path[len(path)-2]

		combat := CalculateCombat(newState, piece, posAtImpact, occupant, res.Direction, res.HasMomentum)

		switch combat.Outcome {
		case OutcomePush:
			chain := DetectChain(newState, destination, res.Direction)
			pushRes := ResolvePush(chain, res.Direction, piece, originalPos)

			for id, pos := range pushRes.Moves {
				setPiecePosition(&newState, id, pos)
			}
			for _, elim := range pushRes.Eliminated {
				if p, ok := newState.PieceByID(elim.PieceID); ok && p.Type == domain.PieceJarl {
					markPlayerEliminated(&newState, elim.PlayerID)
				}
				removePiece(&newState, elim.PieceID)
				events = append(events, domain.Event{Kind: domain.EventEliminated, Payload: elim})
				eliminatedThisMove = true
			}
			events = append(events, pushRes.PushEvents...)
			finalPos = pushRes.AttackerFinalPosition
		case OutcomeBlocked:
			finalPos = posAtImpact
		}
	}

	setPiecePosition(&newState, piece.ID, finalPos)
	piece.Position = finalPos

	moveEvent := domain.Event{
		Kind: domain.EventMove,
		Payload: domain.MovePayload{
			PieceID:             piece.ID,
			From:                originalPos,
			To:                  finalPos,
			HasMomentum:         res.HasMomentum,
			AdjustedDestination: res.WasAdjusted,
		},
	}
	events = append([]domain.Event{moveEvent}, events...)

	if win, winnerID, ok := VictoryCheck(newState, playerID, piece, finalPos); ok {
		newState.Phase = domain.PhaseEnded
		newState.WinnerID = winnerID
		newState.WinCondition = win
		events = append(events, domain.Event{
			Kind:    domain.EventGameEnded,
			Payload: domain.GameEndedPayload{WinnerID: winnerID, WinCondition: win},
		})
		appendMoveHistory(&newState, playerID, piece.ID, originalPos, finalPos, events)
		return newState, events, nil
	}

	if eliminatedThisMove {
		newState.RoundsSinceElimination = 0
	}

	nextIdx, wrapped := advanceTurn(newState)
	newState.CurrentPlayerID = newState.Players[nextIdx].ID
	newState.TurnNumber++
	if wrapped {
		newState.RoundNumber++
		if !eliminatedThisMove {
			newState.RoundsSinceElimination++
		}
	}

	events = append(events, domain.Event{
		Kind: domain.EventTurnEnded,
		Payload: domain.TurnEndedPayload{
			NextPlayerID: newState.CurrentPlayerID,
			TurnNumber:   newState.TurnNumber,
			RoundNumber:  newState.RoundNumber,
		},
	})

	appendMoveHistory(&newState, playerID, piece.ID, originalPos, finalPos, events)

	if newState.RoundsSinceElimination >= domain.StarvationThreshold {
		events = append(events, resolveStarvationOnset(&newState)...)
	}

	return newState, events, nil
}

// advanceTurn returns the index of the next non-eliminated player and
// whether doing so wrapped back to the first active player of the
// round (i.e. a new round began).
func advanceTurn(state domain.GameState) (int, bool) {
	_, curIdx, _ := state.PlayerByID(state.CurrentPlayerID)
	n := len(state.Players)
	wrapped := false
	for step := 1; step <= n; step++ {
		idx := (curIdx + step) % n
		if idx == state.FirstPlayerIndex {
			wrapped = true
		}
		if !state.Players[idx].IsEliminated {
			return idx, wrapped
		}
	}
	return curIdx, false
}

func setPiecePosition(state *domain.GameState, pieceID string, pos hexgrid.Hex) {
	for i := range state.Pieces {
		if state.Pieces[i].ID == pieceID {
			state.Pieces[i].Position = pos
			return
		}
	}
}

// markPlayerEliminated sets IsEliminated on playerID's seat so turn
// advancement skips them once their jarl is gone (spec §8: exactly one
// jarl per non-eliminated player).
func markPlayerEliminated(state *domain.GameState, playerID string) {
	if _, idx, ok := state.PlayerByID(playerID); ok {
		state.Players[idx].IsEliminated = true
	}
}

func removePiece(state *domain.GameState, pieceID string) {
	out := state.Pieces[:0]
	for _, p := range state.Pieces {
		if p.ID != pieceID {
			out = append(out, p)
		}
	}
	state.Pieces = out
}

func appendMoveHistory(state *domain.GameState, playerID, pieceID string, from, to hexgrid.Hex, events []domain.Event) {
	state.MoveHistory = append(state.MoveHistory, domain.MoveRecord{
		PlayerID: playerID,
		PieceID:  pieceID,
		From:     from,
		To:       to,
		Events:   events,
	})
}

// resolveStarvationOnset computes starvation candidates, auto-eliminates
// any player with a single candidate, and either resolves fully or
// transitions the state into the starvation sub-state awaiting choices.
func resolveStarvationOnset(state *domain.GameState) []domain.Event {
	candidates := ComputeStarvationCandidates(*state)
	var autoEliminated []domain.EliminatedPayload
	pending := map[string][]string{}

	for playerID, ids := range candidates {
		if len(ids) == 1 {
			if p, ok := state.PieceByID(ids[0]); ok {
				removePiece(state, ids[0])
				autoEliminated = append(autoEliminated, domain.EliminatedPayload{
					PieceID:  p.ID,
					PlayerID: p.PlayerID,
					Cause:    domain.CauseStarvation,
				})
			}
		} else {
			pending[playerID] = ids
		}
	}

	var events []domain.Event
	if len(pending) > 0 {
		state.Phase = domain.PhaseStarvation
		state.StarvationCandidates = pending
		state.StarvationChoices = map[string]string{}
		events = append(events, domain.Event{
			Kind:    domain.EventStarvationPending,
			Payload: domain.StarvationPendingPayload{Candidates: pending},
		})
	} else {
		state.RoundsSinceElimination = 0
	}

	if len(autoEliminated) > 0 {
		for _, e := range autoEliminated {
			events = append(events, domain.Event{Kind: domain.EventEliminated, Payload: e})
		}
		events = append(events, domain.Event{
			Kind:    domain.EventStarvationResolved,
			Payload: domain.StarvationResolvedPayload{Eliminated: autoEliminated},
		})
	}
	return events
}

// ResolveStarvationChoice applies one player's SUBMIT_STARVATION_CHOICE.
// It returns the updated state, any events, and an error if pieceID is
// not among that player's candidates.
func ResolveStarvationChoice(state domain.GameState, playerID, pieceID string) (domain.GameState, []domain.Event, *domain.RuleError) {
	candidates, ok := state.StarvationCandidates[playerID]
	if !ok {
		return state, nil, domain.NewRuleError(domain.ErrInvalidStarvationChoice, "player has no pending starvation choice")
	}
	valid := false
	for _, c := range candidates {
		if c == pieceID {
			valid = true
			break
		}
	}
	if !valid {
		return state, nil, domain.NewRuleError(domain.ErrInvalidStarvationChoice, "piece is not a starvation candidate")
	}

	newState := state.Clone()
	newState.StarvationChoices[playerID] = pieceID
	delete(newState.StarvationCandidates, playerID)

	if len(newState.StarvationCandidates) > 0 {
		// still waiting on other players
		return newState, nil, nil
	}

	var events []domain.Event
	var eliminated []domain.EliminatedPayload
	for _, pid := range choiceOrder(newState.StarvationChoices) {
		pieceID := newState.StarvationChoices[pid]
		if p, ok := newState.PieceByID(pieceID); ok {
			removePiece(&newState, pieceID)
			eliminated = append(eliminated, domain.EliminatedPayload{
				PieceID:  p.ID,
				PlayerID: p.PlayerID,
				Cause:    domain.CauseStarvation,
			})
		}
	}
	for _, e := range eliminated {
		events = append(events, domain.Event{Kind: domain.EventEliminated, Payload: e})
	}
	events = append(events, domain.Event{
		Kind:    domain.EventStarvationResolved,
		Payload: domain.StarvationResolvedPayload{Eliminated: eliminated},
	})

	newState.StarvationChoices = map[string]string{}
	newState.RoundsSinceElimination = 0
	newState.Phase = domain.PhasePlaying

	return newState, events, nil
}

// choiceOrder returns map keys in a stable (sorted) order so event
// emission is deterministic.
func choiceOrder(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// ComputeValidMoves enumerates every legal destination for a piece,
// for GET /api/games/:id/valid-moves/:pieceId.
func ComputeValidMoves(state domain.GameState, pieceID string) []domain.ValidMove {
	piece, ok := state.PieceByID(pieceID)
	if !ok {
		return nil
	}
	var out []domain.ValidMove
	seen := map[hexgrid.Hex]bool{}
	for dir := 0; dir < 6; dir++ {
		for dist := 1; dist <= 2; dist++ {
			dest := piece.Position
			for i := 0; i < dist; i++ {
				dest = hexgrid.Neighbor(dest, dir)
			}
			if seen[dest] {
				continue
			}
			res, err := ValidateMove(state, piece.PlayerID, domain.MoveCommand{PieceID: pieceID, Destination: dest})
			if err != nil {
				continue
			}
			seen[dest] = true
			out = append(out, domain.ValidMove{Destination: dest, HasMomentum: res.HasMomentum})
			if res.WasAdjusted {
				seen[res.AdjustedDestination] = true
			}
		}
	}
	return out
}
