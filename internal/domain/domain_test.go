package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAICallsign_TwoWords(t *testing.T) {
	name := GenerateAICallsign()
	parts := strings.Fields(name)
	assert.Len(t, parts, 2, "callsign must be \"<Epithet> <Name>\": got %q", name)
}

func TestGameState_RemovePiece(t *testing.T) {
	state := GameState{Pieces: []Piece{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	}}
	state.RemovePiece("b")

	var ids []string
	for _, p := range state.Pieces {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"a", "c"}, ids)
}

func TestGameState_RemovePiece_NoMatchLeavesUnchanged(t *testing.T) {
	state := GameState{Pieces: []Piece{{ID: "a"}, {ID: "b"}}}
	state.RemovePiece("does-not-exist")
	assert.Len(t, state.Pieces, 2)
}
