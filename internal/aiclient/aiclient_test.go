package aiclient

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/engine"
)

func testPieceIDFor(kind string, playerIdx, n int) string {
	return fmt.Sprintf("%s-%d-%d", kind, playerIdx, n)
}

func testPlayingState(t *testing.T) domain.GameState {
	t.Helper()
	config := domain.GameConfig{PlayerCount: 2, BoardRadius: domain.BoardRadiusFor(2), WarriorCount: domain.DefaultWarriorCount(2), Terrain: domain.TerrainStandard}
	players := []domain.Player{{ID: "p1"}, {ID: "p2"}}
	setup := engine.GenerateSetup(config, players, testPieceIDFor)
	return domain.GameState{
		Config:          config,
		Players:         players,
		Pieces:          setup.Pieces,
		Holes:           setup.Holes,
		Phase:           domain.PhasePlaying,
		CurrentPlayerID: "p1",
	}
}

func TestRandomMover_ReturnsLegalMoveForOwnedPiece(t *testing.T) {
	state := testPlayingState(t)

	cmd, err := RandomMover{}.GenerateMove(context.Background(), state, "p1")
	require.NoError(t, err)

	piece, ok := state.PieceByID(cmd.PieceID)
	require.True(t, ok)
	assert.Equal(t, "p1", piece.PlayerID)
	assert.NotEqual(t, domain.PieceShield, piece.Type)

	moves := engine.ComputeValidMoves(state, cmd.PieceID)
	found := false
	for _, m := range moves {
		if m.Destination == cmd.Destination {
			found = true
		}
	}
	assert.True(t, found, "RandomMover must pick one of the piece's own valid moves")
}

type stubGenerator struct {
	calls   int
	err     error
	move    domain.MoveCommand
	blockOn <-chan struct{}
}

func (s *stubGenerator) GenerateMove(ctx context.Context, _ domain.GameState, _ string) (domain.MoveCommand, error) {
	s.calls++
	if s.blockOn != nil {
		select {
		case <-s.blockOn:
		case <-ctx.Done():
			return domain.MoveCommand{}, ctx.Err()
		}
	}
	if s.err != nil {
		return domain.MoveCommand{}, s.err
	}
	return s.move, nil
}

func TestBoundedRetry_ReturnsPrimaryResultOnSuccess(t *testing.T) {
	state := testPlayingState(t)
	want := domain.MoveCommand{PieceID: "x"}
	primary := &stubGenerator{move: want}

	b := NewBoundedRetry(primary, log.Default())
	b.RetryDelay = time.Millisecond

	got, err := b.GenerateMove(context.Background(), state, "p1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, primary.calls)
}

func TestBoundedRetry_FallsBackAfterExhaustingRetries(t *testing.T) {
	state := testPlayingState(t)
	primary := &stubGenerator{err: errors.New("boom")}

	b := NewBoundedRetry(primary, log.Default())
	b.MaxRetries = 2
	b.RetryDelay = time.Millisecond

	cmd, err := b.GenerateMove(context.Background(), state, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, primary.calls, "must attempt MaxRetries+1 times before falling back")

	piece, ok := state.PieceByID(cmd.PieceID)
	require.True(t, ok)
	assert.Equal(t, "p1", piece.PlayerID, "fallback must still be a legal move for the requested player")
}

func TestBoundedRetry_FallsBackImmediatelyWhenContextDone(t *testing.T) {
	state := testPlayingState(t)
	block := make(chan struct{})
	primary := &stubGenerator{move: domain.MoveCommand{PieceID: "never"}, blockOn: block}

	b := NewBoundedRetry(primary, log.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd, err := b.GenerateMove(ctx, state, "p1")
	require.NoError(t, err)
	_, ok := state.PieceByID(cmd.PieceID)
	assert.True(t, ok)
}
