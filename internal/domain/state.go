package domain

import "github.com/mark3labs/hexthrone/internal/hexgrid"

// Phase is the actor's top-level state-machine position. Sub-states
// (setup, and starvation's per-player latch bookkeeping) are tracked
// alongside but Phase itself stays in this closed set.
type Phase string

const (
	PhaseLobby      Phase = "lobby"
	PhaseSetup      Phase = "setup"
	PhasePlaying    Phase = "playing"
	PhaseStarvation Phase = "starvation"
	PhasePaused     Phase = "paused"
	PhaseEnded      Phase = "ended"
)

// MoveRecord is one trimmed entry of move history, kept for the AI
// prompt (last 6, per spec §3) and for client-side move logs.
type MoveRecord struct {
	PlayerID string      `json:"playerId"`
	PieceID  string      `json:"pieceId"`
	From     hexgrid.Hex `json:"from"`
	To       hexgrid.Hex `json:"to"`
	Events   []Event     `json:"events"`
}

// MaxMoveHistoryForAI bounds how much history is handed to the AI
// move-generator snapshot.
const MaxMoveHistoryForAI = 6

// GameState is the mutable state a Game Actor owns. It is never shared
// by reference outside the actor; callers receive copies.
type GameState struct {
	Config GameConfig
	Players []Player // order defines turn order; index 0 is host
	Pieces  []Piece
	Holes   map[hexgrid.Hex]struct{}

	Phase            Phase
	CurrentPlayerID  string
	TurnNumber       int
	RoundNumber      int
	FirstPlayerIndex int

	RoundsSinceElimination int

	WinnerID     string
	WinCondition WinCondition

	MoveHistory []MoveRecord

	// Starvation sub-state: when Phase == PhaseStarvation, Candidates
	// names each tied player's eligible piece ids and Choices records
	// what has been submitted so far.
	StarvationCandidates map[string][]string
	StarvationChoices    map[string]string
}

// Clone returns a deep copy suitable for handing to a broadcast
// subscriber or an AI snapshot without risking a data race with the
// actor's own mutation of its internal state.
func (s GameState) Clone() GameState {
	out := s
	out.Players = append([]Player(nil), s.Players...)
	out.Pieces = append([]Piece(nil), s.Pieces...)

	out.Holes = make(map[hexgrid.Hex]struct{}, len(s.Holes))
	for h := range s.Holes {
		out.Holes[h] = struct{}{}
	}

	out.MoveHistory = append([]MoveRecord(nil), s.MoveHistory...)

	if s.StarvationCandidates != nil {
		out.StarvationCandidates = make(map[string][]string, len(s.StarvationCandidates))
		for k, v := range s.StarvationCandidates {
			out.StarvationCandidates[k] = append([]string(nil), v...)
		}
	}
	if s.StarvationChoices != nil {
		out.StarvationChoices = make(map[string]string, len(s.StarvationChoices))
		for k, v := range s.StarvationChoices {
			out.StarvationChoices[k] = v
		}
	}
	return out
}

// PieceAt returns the piece occupying h, if any.
func (s GameState) PieceAt(h hexgrid.Hex) (Piece, bool) {
	for _, p := range s.Pieces {
		if p.Position == h {
			return p, true
		}
	}
	return Piece{}, false
}

// PieceByID returns the piece with the given id, if any.
func (s GameState) PieceByID(id string) (Piece, bool) {
	for _, p := range s.Pieces {
		if p.ID == id {
			return p, true
		}
	}
	return Piece{}, false
}

// IsHole reports whether h is an impassable hole.
func (s GameState) IsHole(h hexgrid.Hex) bool {
	_, ok := s.Holes[h]
	return ok
}

// RemovePiece deletes the piece with the given id, if present.
func (s *GameState) RemovePiece(pieceID string) {
	out := s.Pieces[:0]
	for _, p := range s.Pieces {
		if p.ID != pieceID {
			out = append(out, p)
		}
	}
	s.Pieces = out
}

// PlayerByID returns the player with the given id, if any.
func (s GameState) PlayerByID(id string) (Player, int, bool) {
	for i, p := range s.Players {
		if p.ID == id {
			return p, i, true
		}
	}
	return Player{}, -1, false
}

// JarlOf returns the non-eliminated jarl owned by playerID, if any.
func (s GameState) JarlOf(playerID string) (Piece, bool) {
	for _, p := range s.Pieces {
		if p.Type == PieceJarl && p.PlayerID == playerID {
			return p, true
		}
	}
	return Piece{}, false
}

// RemainingJarls returns every jarl still on the board.
func (s GameState) RemainingJarls() []Piece {
	var out []Piece
	for _, p := range s.Pieces {
		if p.Type == PieceJarl {
			out = append(out, p)
		}
	}
	return out
}

// Host returns the first-joined player, the only one permitted to
// start the game.
func (s GameState) Host() (Player, bool) {
	if len(s.Players) == 0 {
		return Player{}, false
	}
	return s.Players[0], true
}

// MoveCommand is the opaque, already-typed payload the actor accepts
// for a move; decoding from transport JSON is the transport layer's
// concern (spec §9).
type MoveCommand struct {
	PieceID     string
	Destination hexgrid.Hex
}

// ValidMove is one entry of the enumerated legal-destinations response
// for GET /api/games/:id/valid-moves/:pieceId.
type ValidMove struct {
	Destination hexgrid.Hex `json:"destination"`
	HasMomentum bool        `json:"hasMomentum"`
}
