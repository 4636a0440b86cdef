package domain

import "github.com/mark3labs/hexthrone/internal/hexgrid"

// EventKind is the closed variant set of rule-engine event kinds. The
// engine never emits anything outside this set.
type EventKind string

const (
	EventMove               EventKind = "MOVE"
	EventPush               EventKind = "PUSH"
	EventEliminated         EventKind = "ELIMINATED"
	EventTurnEnded          EventKind = "TURN_ENDED"
	EventGameEnded          EventKind = "GAME_ENDED"
	EventStarvationPending  EventKind = "STARVATION_PENDING"
	EventStarvationResolved EventKind = "STARVATION_RESOLVED"
)

// EliminationCause is the closed set of reasons a piece leaves the board.
type EliminationCause string

const (
	CauseEdge       EliminationCause = "edge"
	CauseHole       EliminationCause = "hole"
	CauseStarvation EliminationCause = "starvation"
	CauseTimeout    EliminationCause = "timeout"
)

// Event is a single emitted fact from a rule-engine operation. Payload
// holds one of the *Payload structs below, selected by Kind.
type Event struct {
	Kind    EventKind   `json:"kind"`
	Payload interface{} `json:"payload"`
}

// MovePayload describes a single piece relocation.
type MovePayload struct {
	PieceID             string      `json:"pieceId"`
	From                hexgrid.Hex `json:"from"`
	To                  hexgrid.Hex `json:"to"`
	HasMomentum         bool        `json:"hasMomentum"`
	AdjustedDestination bool        `json:"adjustedDestination,omitempty"`
}

// PushPayload describes one piece of a resolved push chain advancing.
type PushPayload struct {
	PieceID string      `json:"pieceId"`
	From    hexgrid.Hex `json:"from"`
	To      hexgrid.Hex `json:"to"`
}

// EliminatedPayload describes a piece leaving the board.
type EliminatedPayload struct {
	PieceID  string           `json:"pieceId"`
	PlayerID string           `json:"playerId"`
	Cause    EliminationCause `json:"cause"`
}

// TurnEndedPayload names the next player to act.
type TurnEndedPayload struct {
	NextPlayerID string `json:"nextPlayerId"`
	TurnNumber   int    `json:"turnNumber"`
	RoundNumber  int    `json:"roundNumber"`
}

// GameEndedPayload carries the terminal outcome.
type GameEndedPayload struct {
	WinnerID     string       `json:"winnerId"`
	WinCondition WinCondition `json:"winCondition"`
}

// StarvationPendingPayload names which players must submit a choice and
// from which candidate piece ids.
type StarvationPendingPayload struct {
	Candidates map[string][]string `json:"candidates"` // playerId -> candidate pieceIds
}

// StarvationResolvedPayload lists the pieces that starvation removed.
type StarvationResolvedPayload struct {
	Eliminated []EliminatedPayload `json:"eliminated"`
}

// WinCondition is the closed set of victory types.
type WinCondition string

const (
	WinNone         WinCondition = ""
	WinThrone       WinCondition = "throne"
	WinLastStanding WinCondition = "lastStanding"
)
