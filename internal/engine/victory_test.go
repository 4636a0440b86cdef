package engine

import (
	"testing"

	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/hexgrid"
	"github.com/stretchr/testify/assert"
)

func TestVictoryCheck_ThroneWin(t *testing.T) {
	jarl := domain.Piece{ID: "j1", Type: domain.PieceJarl, PlayerID: "p1", Position: hexgrid.Hex{}}
	other := domain.Piece{ID: "j2", Type: domain.PieceJarl, PlayerID: "p2", Position: hexgrid.Hex{Q: 3, R: 0}}
	state := domain.GameState{Pieces: []domain.Piece{jarl, other}}

	win, winner, ok := VictoryCheck(state, "p1", jarl, hexgrid.Hex{})
	assert.True(t, ok)
	assert.Equal(t, domain.WinThrone, win)
	assert.Equal(t, "p1", winner)
}

func TestVictoryCheck_LastStanding(t *testing.T) {
	jarl := domain.Piece{ID: "j1", Type: domain.PieceJarl, PlayerID: "p1", Position: hexgrid.Hex{Q: 1, R: 0}}
	state := domain.GameState{Pieces: []domain.Piece{jarl}}

	win, winner, ok := VictoryCheck(state, "p1", jarl, jarl.Position)
	assert.True(t, ok)
	assert.Equal(t, domain.WinLastStanding, win)
	assert.Equal(t, "p1", winner)
}

func TestVictoryCheck_NoWin(t *testing.T) {
	j1 := domain.Piece{ID: "j1", Type: domain.PieceJarl, PlayerID: "p1", Position: hexgrid.Hex{Q: 1, R: 0}}
	j2 := domain.Piece{ID: "j2", Type: domain.PieceJarl, PlayerID: "p2", Position: hexgrid.Hex{Q: 2, R: 0}}
	state := domain.GameState{Pieces: []domain.Piece{j1, j2}}

	_, _, ok := VictoryCheck(state, "p1", j1, j1.Position)
	assert.False(t, ok)
}
