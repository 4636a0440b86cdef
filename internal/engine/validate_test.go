package engine

import (
	"testing"

	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/hexgrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playingState() domain.GameState {
	return domain.GameState{
		Config:          domain.GameConfig{PlayerCount: 2, BoardRadius: 4},
		Phase:           domain.PhasePlaying,
		CurrentPlayerID: "p1",
		Players:         []domain.Player{{ID: "p1"}, {ID: "p2"}},
		Pieces: []domain.Piece{
			{ID: "w1", Type: domain.PieceWarrior, PlayerID: "p1", Position: hexgrid.Hex{Q: 1, R: 0}},
			{ID: "j1", Type: domain.PieceJarl, PlayerID: "p1", Position: hexgrid.Hex{Q: 2, R: 0}},
			{ID: "e1", Type: domain.PieceWarrior, PlayerID: "p2", Position: hexgrid.Hex{Q: -2, R: 0}},
		},
	}
}

func TestValidateMove_NotYourTurn(t *testing.T) {
	state := playingState()
	_, err := ValidateMove(state, "p2", domain.MoveCommand{PieceID: "w1", Destination: hexgrid.Hex{Q: 0, R: 0}})
	require.NotNil(t, err)
	assert.Equal(t, domain.ErrNotYourTurn, err.Code)
}

func TestValidateMove_NotYourPiece(t *testing.T) {
	state := playingState()
	_, err := ValidateMove(state, "p1", domain.MoveCommand{PieceID: "e1", Destination: hexgrid.Hex{Q: -1, R: 0}})
	require.NotNil(t, err)
	assert.Equal(t, domain.ErrNotYourPiece, err.Code)
}

func TestValidateMove_OffBoard(t *testing.T) {
	state := playingState()
	_, err := ValidateMove(state, "p1", domain.MoveCommand{PieceID: "w1", Destination: hexgrid.Hex{Q: 10, R: 0}})
	require.NotNil(t, err)
	assert.Equal(t, domain.ErrDestinationOffBoard, err.Code)
}

func TestValidateMove_NotStraightLine(t *testing.T) {
	state := playingState()
	_, err := ValidateMove(state, "p1", domain.MoveCommand{PieceID: "w1", Destination: hexgrid.Hex{Q: 2, R: 1}})
	require.NotNil(t, err)
	assert.Equal(t, domain.ErrMoveNotStraightLine, err.Code)
}

func TestValidateMove_WarriorTwoHexWithoutObstruction(t *testing.T) {
	state := playingState()
	// North-west from (1,0): the interior hex (1,-1) is empty.
	res, err := ValidateMove(state, "p1", domain.MoveCommand{PieceID: "w1", Destination: hexgrid.Hex{Q: 1, R: -2}})
	require.Nil(t, err)
	assert.True(t, res.HasMomentum)
}

func TestValidateMove_WarriorCannotEnterThrone(t *testing.T) {
	state := playingState()
	state.Pieces[0].Position = hexgrid.Hex{Q: -1, R: 0}
	_, err := ValidateMove(state, "p1", domain.MoveCommand{PieceID: "w1", Destination: hexgrid.Hex{}})
	require.NotNil(t, err)
	assert.Equal(t, domain.ErrWarriorCannotEnterThrone, err.Code)
}

func TestValidateMove_JarlTwoHexNeedsDraft(t *testing.T) {
	state := playingState()
	// No draft behind the jarl in this direction.
	_, err := ValidateMove(state, "p1", domain.MoveCommand{PieceID: "j1", Destination: hexgrid.Hex{Q: 4, R: 0}})
	require.NotNil(t, err)
	assert.Equal(t, domain.ErrJarlNeedsDraftForTwoHex, err.Code)
}

func TestValidateMove_JarlTwoHexWithDraft(t *testing.T) {
	state := domain.GameState{
		Config:          domain.GameConfig{PlayerCount: 2, BoardRadius: 4},
		Phase:           domain.PhasePlaying,
		CurrentPlayerID: "p1",
		Players:         []domain.Player{{ID: "p1"}, {ID: "p2"}},
		Pieces: []domain.Piece{
			{ID: "j1", Type: domain.PieceJarl, PlayerID: "p1", Position: hexgrid.Hex{Q: 1, R: -1}},
			{ID: "w2", Type: domain.PieceWarrior, PlayerID: "p1", Position: hexgrid.Hex{Q: 0, R: -1}},
			{ID: "w3", Type: domain.PieceWarrior, PlayerID: "p1", Position: hexgrid.Hex{Q: -1, R: -1}},
		},
	}
	res, err := ValidateMove(state, "p1", domain.MoveCommand{PieceID: "j1", Destination: hexgrid.Hex{Q: 3, R: -1}})
	require.Nil(t, err)
	assert.True(t, res.HasMomentum)
}

func TestValidateMove_PathBlocked(t *testing.T) {
	state := playingState()
	state.Pieces = append(state.Pieces, domain.Piece{ID: "block", Type: domain.PieceWarrior, PlayerID: "p2", Position: hexgrid.Hex{Q: 2, R: 0}})
	state.Pieces[0].Position = hexgrid.Hex{Q: 1, R: 0}
	_, err := ValidateMove(state, "p1", domain.MoveCommand{PieceID: "w1", Destination: hexgrid.Hex{Q: 3, R: 0}})
	require.NotNil(t, err)
	assert.Equal(t, domain.ErrPathBlocked, err.Code)
}

func TestValidateMove_ShieldNeverMoves(t *testing.T) {
	state := playingState()
	state.Pieces = append(state.Pieces, domain.Piece{ID: "s1", Type: domain.PieceShield, Position: hexgrid.Hex{Q: 1, R: 0}})
	_, err := ValidateMove(state, "p1", domain.MoveCommand{PieceID: "s1", Destination: hexgrid.Hex{Q: 2, R: 0}})
	require.NotNil(t, err)
	assert.Equal(t, domain.ErrShieldCannotMove, err.Code)
}

func TestValidateMove_JarlClampedThroughThrone(t *testing.T) {
	state := domain.GameState{
		Config:          domain.GameConfig{PlayerCount: 2, BoardRadius: 4},
		Phase:           domain.PhasePlaying,
		CurrentPlayerID: "p1",
		Players:         []domain.Player{{ID: "p1"}, {ID: "p2"}},
		Pieces: []domain.Piece{
			{ID: "j1", Type: domain.PieceJarl, PlayerID: "p1", Position: hexgrid.Hex{Q: -1, R: 0}},
			{ID: "w2", Type: domain.PieceWarrior, PlayerID: "p1", Position: hexgrid.Hex{Q: -2, R: 0}},
			{ID: "w3", Type: domain.PieceWarrior, PlayerID: "p1", Position: hexgrid.Hex{Q: -3, R: 0}},
		},
	}
	res, err := ValidateMove(state, "p1", domain.MoveCommand{PieceID: "j1", Destination: hexgrid.Hex{Q: 1, R: 0}})
	require.Nil(t, err)
	assert.True(t, res.WasAdjusted)
	assert.Equal(t, hexgrid.Hex{}, res.AdjustedDestination)
}
