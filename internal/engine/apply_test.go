package engine

import (
	"testing"

	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/hexgrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoPlayerState() domain.GameState {
	return domain.GameState{
		Config:          domain.GameConfig{PlayerCount: 2, BoardRadius: 4, WarriorCount: 8, Terrain: domain.TerrainStandard},
		Phase:           domain.PhasePlaying,
		CurrentPlayerID: "p1",
		Players:         []domain.Player{{ID: "p1"}, {ID: "p2"}},
		RoundsSinceElimination: 3,
	}
}

func TestApplyMove_SimpleMoveEmitsMoveThenTurnEnded(t *testing.T) {
	state := twoPlayerState()
	state.Pieces = []domain.Piece{
		{ID: "w1", Type: domain.PieceWarrior, PlayerID: "p1", Position: hexgrid.Hex{Q: 1, R: 0}},
	}

	newState, events, err := ApplyMove(state, "p1", domain.MoveCommand{PieceID: "w1", Destination: hexgrid.Hex{Q: 2, R: 0}})
	require.Nil(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventMove, events[0].Kind)
	assert.Equal(t, domain.EventTurnEnded, events[1].Kind)

	moved, ok := newState.PieceByID("w1")
	require.True(t, ok)
	assert.Equal(t, hexgrid.Hex{Q: 2, R: 0}, moved.Position)
	assert.Equal(t, "p2", newState.CurrentPlayerID)
}

func TestApplyMove_DoesNotMutateInputState(t *testing.T) {
	state := twoPlayerState()
	state.Pieces = []domain.Piece{
		{ID: "w1", Type: domain.PieceWarrior, PlayerID: "p1", Position: hexgrid.Hex{Q: 1, R: 0}},
	}
	original := state.Clone()

	_, _, err := ApplyMove(state, "p1", domain.MoveCommand{PieceID: "w1", Destination: hexgrid.Hex{Q: 2, R: 0}})
	require.Nil(t, err)

	unchanged, _ := state.PieceByID("w1")
	assert.Equal(t, hexgrid.Hex{Q: 1, R: 0}, unchanged.Position)
	assert.Equal(t, original.CurrentPlayerID, state.CurrentPlayerID)
}

func TestApplyMove_EdgePushEliminatesDefenderAndResetsStarvationCounter(t *testing.T) {
	state := twoPlayerState()
	state.Pieces = []domain.Piece{
		{ID: "j1", Type: domain.PieceJarl, PlayerID: "p1", Position: hexgrid.Hex{Q: 3, R: 0}},
		{ID: "w2", Type: domain.PieceWarrior, PlayerID: "p2", Position: hexgrid.Hex{Q: 4, R: 0}},
	}

	newState, events, err := ApplyMove(state, "p1", domain.MoveCommand{PieceID: "j1", Destination: hexgrid.Hex{Q: 4, R: 0}})
	require.Nil(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, domain.EventMove, events[0].Kind)
	assert.Equal(t, domain.EventEliminated, events[1].Kind)
	assert.Equal(t, domain.EventTurnEnded, events[2].Kind)

	elim := events[1].Payload.(domain.EliminatedPayload)
	assert.Equal(t, domain.CauseEdge, elim.Cause)
	assert.Equal(t, "w2", elim.PieceID)

	_, stillThere := newState.PieceByID("w2")
	assert.False(t, stillThere)

	jarl, _ := newState.PieceByID("j1")
	assert.Equal(t, hexgrid.Hex{Q: 4, R: 0}, jarl.Position)
	assert.Equal(t, 0, newState.RoundsSinceElimination)
}

func TestApplyMove_EliminatingJarlMarksPlayerEliminatedAndSkipsTurn(t *testing.T) {
	state := domain.GameState{
		Config:          domain.GameConfig{PlayerCount: 3, BoardRadius: 3, WarriorCount: 6, Terrain: domain.TerrainStandard},
		Phase:           domain.PhasePlaying,
		CurrentPlayerID: "p1",
		Players:         []domain.Player{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}},
	}
	state.Pieces = []domain.Piece{
		{ID: "j1", Type: domain.PieceJarl, PlayerID: "p1", Position: hexgrid.Hex{Q: 1, R: 0}},
		{ID: "w3", Type: domain.PieceWarrior, PlayerID: "p1", Position: hexgrid.Hex{Q: 0, R: 0}},
		{ID: "w4", Type: domain.PieceWarrior, PlayerID: "p1", Position: hexgrid.Hex{Q: -1, R: 0}},
		{ID: "j2", Type: domain.PieceJarl, PlayerID: "p2", Position: hexgrid.Hex{Q: 3, R: 0}},
		{ID: "j3", Type: domain.PieceJarl, PlayerID: "p3", Position: hexgrid.Hex{Q: -3, R: 0}},
	}

	// j1 has a draft formation (w3, w4) behind it, so it may momentum-move
	// two hexes and push j2 off the board edge.
	newState, events, err := ApplyMove(state, "p1", domain.MoveCommand{PieceID: "j1", Destination: hexgrid.Hex{Q: 3, R: 0}})
	require.Nil(t, err)

	var elimEvent *domain.EliminatedPayload
	for _, e := range events {
		if e.Kind == domain.EventEliminated {
			p := e.Payload.(domain.EliminatedPayload)
			elimEvent = &p
		}
	}
	require.NotNil(t, elimEvent)
	assert.Equal(t, "j2", elimEvent.PieceID)
	assert.Equal(t, "p2", elimEvent.PlayerID)

	_, stillThere := newState.PieceByID("j2")
	assert.False(t, stillThere)

	_, p2Idx, ok := newState.PlayerByID("p2")
	require.True(t, ok)
	assert.True(t, newState.Players[p2Idx].IsEliminated, "p2's jarl was eliminated, so p2 must be marked eliminated")

	// the game doesn't end: p1 and p3 still have jarls. p2 must be
	// skipped in turn order.
	assert.Equal(t, domain.PhasePlaying, newState.Phase)
	assert.Equal(t, "p3", newState.CurrentPlayerID)
}

func TestApplyMove_ThroneWinEndsGameWithoutTurnAdvance(t *testing.T) {
	state := twoPlayerState()
	state.Pieces = []domain.Piece{
		{ID: "j1", Type: domain.PieceJarl, PlayerID: "p1", Position: hexgrid.Hex{Q: 1, R: 0}},
		{ID: "j2", Type: domain.PieceJarl, PlayerID: "p2", Position: hexgrid.Hex{Q: -3, R: 0}},
	}

	newState, events, err := ApplyMove(state, "p1", domain.MoveCommand{PieceID: "j1", Destination: hexgrid.Hex{}})
	require.Nil(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventMove, events[0].Kind)
	assert.Equal(t, domain.EventGameEnded, events[1].Kind)

	assert.Equal(t, domain.PhaseEnded, newState.Phase)
	assert.Equal(t, "p1", newState.WinnerID)
	assert.Equal(t, domain.WinThrone, newState.WinCondition)
	// the turn must not have advanced past the winning player
	assert.Equal(t, "p1", newState.CurrentPlayerID)
}

func TestApplyMove_RejectsIllegalMoveWithoutMutating(t *testing.T) {
	state := twoPlayerState()
	state.Pieces = []domain.Piece{
		{ID: "w1", Type: domain.PieceWarrior, PlayerID: "p1", Position: hexgrid.Hex{Q: 1, R: 0}},
	}

	newState, events, err := ApplyMove(state, "p2", domain.MoveCommand{PieceID: "w1", Destination: hexgrid.Hex{Q: 2, R: 0}})
	require.NotNil(t, err)
	assert.Equal(t, domain.ErrNotYourTurn, err.Code)
	assert.Nil(t, events)
	assert.Equal(t, "p1", newState.CurrentPlayerID)
}

func TestResolveStarvationChoice_EliminatesChosenPiece(t *testing.T) {
	state := twoPlayerState()
	state.Phase = domain.PhaseStarvation
	state.Pieces = []domain.Piece{
		{ID: "w1", Type: domain.PieceWarrior, PlayerID: "p1", Position: hexgrid.Hex{Q: 3, R: 0}},
		{ID: "w2", Type: domain.PieceWarrior, PlayerID: "p1", Position: hexgrid.Hex{Q: 0, R: 3}},
	}
	state.StarvationCandidates = map[string][]string{"p1": {"w1", "w2"}}
	state.StarvationChoices = map[string]string{}

	newState, events, err := ResolveStarvationChoice(state, "p1", "w1")
	require.Nil(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventEliminated, events[0].Kind)
	assert.Equal(t, domain.EventStarvationResolved, events[1].Kind)

	_, stillThere := newState.PieceByID("w1")
	assert.False(t, stillThere)
	assert.Equal(t, domain.PhasePlaying, newState.Phase)
	assert.Equal(t, 0, newState.RoundsSinceElimination)
}

func TestResolveStarvationChoice_RejectsNonCandidate(t *testing.T) {
	state := twoPlayerState()
	state.Phase = domain.PhaseStarvation
	state.StarvationCandidates = map[string][]string{"p1": {"w1"}}

	_, _, err := ResolveStarvationChoice(state, "p1", "w99")
	require.NotNil(t, err)
	assert.Equal(t, domain.ErrInvalidStarvationChoice, err.Code)
}

func TestComputeValidMoves_ListsLegalDestinations(t *testing.T) {
	state := twoPlayerState()
	state.Pieces = []domain.Piece{
		{ID: "w1", Type: domain.PieceWarrior, PlayerID: "p1", Position: hexgrid.Hex{Q: 1, R: 0}},
	}

	moves := ComputeValidMoves(state, "w1")
	assert.NotEmpty(t, moves)
	for _, m := range moves {
		assert.True(t, hexgrid.WithinRadius(m.Destination, state.Config.BoardRadius))
	}
}
