package engine

import (
	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/hexgrid"
)

// VictoryCheck reports a win, if any, after a move. moverPiece is the
// piece that just voluntarily moved (never a pushed piece); finalHex is
// where it ended up.
func VictoryCheck(state domain.GameState, moverPlayerID string, moverPiece domain.Piece, finalHex hexgrid.Hex) (domain.WinCondition, string, bool) {
	if moverPiece.Type == domain.PieceJarl && finalHex == throneHex {
		return domain.WinThrone, moverPlayerID, true
	}

	jarls := state.RemainingJarls()
	if len(jarls) == 1 {
		return domain.WinLastStanding, jarls[0].PlayerID, true
	}
	return domain.WinNone, "", false
}
