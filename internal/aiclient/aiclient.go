// Package aiclient defines the narrow interface the Game Actor uses to
// obtain a move for an AI-controlled seat, plus a deterministic
// fallback mover. The LLM-backed generator itself is out of scope
// (spec §1: "the LLM-backed AI move generator ... specified only by
// its interface to the core"); this package is that interface and its
// safety net, grounded on the teacher's NPC controller
// (game/npc.go — out of scope for a hex game but same "bounded
// decision loop feeding a command back into the authoritative state"
// shape) and on the spec's AI-timeout-policy open question.
package aiclient

import (
	"context"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/engine"
)

// Generator produces a move for the given player from a read-only
// snapshot of the current game state. Implementations must not mutate
// the snapshot.
type Generator interface {
	GenerateMove(ctx context.Context, snapshot domain.GameState, playerID string) (domain.MoveCommand, error)
}

// RandomMover picks a uniformly random legal move among all of the
// player's pieces. It never errors and never blocks, so it is safe as
// a last-resort fallback.
type RandomMover struct{}

func (RandomMover) GenerateMove(_ context.Context, snapshot domain.GameState, playerID string) (domain.MoveCommand, error) {
	var pieceIDs []string
	for _, p := range snapshot.Pieces {
		if p.PlayerID == playerID && p.Type != domain.PieceShield {
			pieceIDs = append(pieceIDs, p.ID)
		}
	}
	rand.Shuffle(len(pieceIDs), func(i, j int) { pieceIDs[i], pieceIDs[j] = pieceIDs[j], pieceIDs[i] })

	for _, id := range pieceIDs {
		moves := engine.ComputeValidMoves(snapshot, id)
		if len(moves) == 0 {
			continue
		}
		pick := moves[rand.Intn(len(moves))]
		return domain.MoveCommand{PieceID: id, Destination: pick.Destination}, nil
	}
	return domain.MoveCommand{}, errNoLegalMove
}

var errNoLegalMove = moveGenError("no legal move available")

type moveGenError string

func (e moveGenError) Error() string { return string(e) }

// BoundedRetry wraps a primary Generator (typically an LLM-backed
// implementation supplied by the transport/AI integration layer) with
// a small number of retries before falling back to RandomMover. This
// preserves the spec's open-question contract: "an AI turn never
// hangs the actor indefinitely", while leaving the exact retry
// schedule an implementation choice.
type BoundedRetry struct {
	Primary    Generator
	Fallback   Generator
	MaxRetries int
	RetryDelay time.Duration
	Logger     *log.Logger
}

// NewBoundedRetry builds a BoundedRetry with sane defaults; Fallback is
// RandomMover.
func NewBoundedRetry(primary Generator, logger *log.Logger) *BoundedRetry {
	fallback := Generator(RandomMover{})
	return &BoundedRetry{
		Primary:    primary,
		Fallback:   fallback,
		MaxRetries: 3,
		RetryDelay: 250 * time.Millisecond,
		Logger:     logger,
	}
}

func (b *BoundedRetry) GenerateMove(ctx context.Context, snapshot domain.GameState, playerID string) (domain.MoveCommand, error) {
	if b.Primary == nil {
		return b.Fallback.GenerateMove(ctx, snapshot, playerID)
	}

	for attempt := 0; attempt <= b.MaxRetries; attempt++ {
		cmd, err := b.Primary.GenerateMove(ctx, snapshot, playerID)
		if err == nil {
			return cmd, nil
		}
		if b.Logger != nil {
			b.Logger.Warn("ai move generation failed, retrying", "playerId", playerID, "attempt", attempt, "error", err)
		}
		select {
		case <-ctx.Done():
			return b.Fallback.GenerateMove(context.Background(), snapshot, playerID)
		case <-time.After(b.RetryDelay):
		}
	}

	if b.Logger != nil {
		b.Logger.Warn("ai move generation exhausted retries, falling back to random mover", "playerId", playerID)
	}
	return b.Fallback.GenerateMove(ctx, snapshot, playerID)
}
