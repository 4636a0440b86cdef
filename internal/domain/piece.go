package domain

import "github.com/mark3labs/hexthrone/internal/hexgrid"

// PieceType is a closed variant set of the piece kinds the board holds.
type PieceType string

const (
	PieceJarl    PieceType = "jarl"
	PieceWarrior PieceType = "warrior"
	PieceShield  PieceType = "shield"
)

// Strength returns the piece's combat strength. Shields never attack or
// defend; callers must special-case PieceShield before using this value
// in a combat total.
func (t PieceType) Strength() int {
	switch t {
	case PieceJarl:
		return 2
	case PieceWarrior:
		return 1
	default:
		return 0
	}
}

// Piece is an immutable-id board occupant. Shields have PlayerID == "".
type Piece struct {
	ID       string
	Type     PieceType
	PlayerID string
	Position hexgrid.Hex
}
