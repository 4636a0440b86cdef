// Package manager implements the registry of active Game Actors (spec
// §4.E), grounded on the teacher's single global Manager in
// game/manager.go — generalized from "one Manager owns one game's
// state" to "one Manager owns many games, each delegated to its own
// actor.Handle".
package manager

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mark3labs/hexthrone/internal/actor"
	"github.com/mark3labs/hexthrone/internal/aiclient"
	"github.com/mark3labs/hexthrone/internal/broadcast"
	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/persistence"
)

// GameSummary is the listGames response shape (spec §6 `GET /api/games`).
type GameSummary struct {
	GameID      string   `json:"gameId"`
	Status      string   `json:"status"`
	PlayerCount int      `json:"playerCount"`
	MaxPlayers  int      `json:"maxPlayers"`
	Players     []string `json:"players"`
}

// Manager is the registry of active game actors keyed by gameId.
type Manager struct {
	mu      sync.RWMutex
	actors  map[string]*actor.Handle
	store   *persistence.Store
	bus     *broadcast.Bus
	aiGen   aiclient.Generator
	logger  *log.Logger
}

// New constructs an empty Manager. Call Recover once at boot to
// rehydrate any games that were active when the process last stopped.
func New(store *persistence.Store, bus *broadcast.Bus, aiGen aiclient.Generator, logger *log.Logger) *Manager {
	return &Manager{
		actors: make(map[string]*actor.Handle),
		store:  store,
		bus:    bus,
		aiGen:  aiGen,
		logger: logger,
	}
}

// Create spins up a new lobby-phase actor and persists its initial
// snapshot (done by actor.Spawn itself), returning the new gameId.
func (m *Manager) Create(config domain.GameConfig) string {
	gameID := uuid.NewString()
	h := actor.Spawn(gameID, config, m.store, m.bus, m.aiGen, m.logger)

	m.mu.Lock()
	m.actors[gameID] = h
	m.mu.Unlock()
	m.watchDiscard(gameID, h)

	return gameID
}

// watchDiscard drops gameId's registry entry once its actor discards
// itself, so the next lookup reports GAME_NOT_FOUND instead of handing
// out a handle to a goroutine that has already exited.
func (m *Manager) watchDiscard(gameID string, h *actor.Handle) {
	go func() {
		<-h.Done()
		m.mu.Lock()
		if cur, ok := m.actors[gameID]; ok && cur == h {
			delete(m.actors, gameID)
		}
		m.mu.Unlock()
		m.logger.Warn("game actor discarded after persistence conflict", "gameId", gameID)
	}()
}

// lookup returns the actor handle for gameId, or GAME_NOT_FOUND.
func (m *Manager) lookup(gameID string) (*actor.Handle, *domain.RuleError) {
	m.mu.RLock()
	h, ok := m.actors[gameID]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.NewRuleError(domain.ErrGameNotFound, "no such game")
	}
	return h, nil
}

// Join forwards a JOIN command to gameId's actor.
func (m *Manager) Join(ctx context.Context, gameID, playerName string) (string, *domain.RuleError) {
	h, err := m.lookup(gameID)
	if err != nil {
		return "", err
	}
	return h.Join(ctx, playerName)
}

// AddAI forwards an ADD_AI command to gameId's actor.
func (m *Manager) AddAI(ctx context.Context, gameID, difficulty string) (string, *domain.RuleError) {
	h, err := m.lookup(gameID)
	if err != nil {
		return "", err
	}
	return h.AddAI(ctx, difficulty)
}

// Start forwards a START command to gameId's actor.
func (m *Manager) Start(ctx context.Context, gameID, playerID string) *domain.RuleError {
	h, err := m.lookup(gameID)
	if err != nil {
		return err
	}
	return h.Start(ctx, playerID)
}

// MakeMove forwards a MAKE_MOVE command to gameId's actor.
func (m *Manager) MakeMove(ctx context.Context, gameID, playerID string, cmd domain.MoveCommand) ([]domain.Event, *domain.RuleError) {
	h, err := m.lookup(gameID)
	if err != nil {
		return nil, err
	}
	return h.MakeMove(ctx, playerID, cmd)
}

// SubmitStarvationChoice forwards a SUBMIT_STARVATION_CHOICE command to
// gameId's actor.
func (m *Manager) SubmitStarvationChoice(ctx context.Context, gameID, playerID, pieceID string) ([]domain.Event, *domain.RuleError) {
	h, err := m.lookup(gameID)
	if err != nil {
		return nil, err
	}
	return h.SubmitStarvationChoice(ctx, playerID, pieceID)
}

// OnDisconnect forwards a DISCONNECT command to gameId's actor.
func (m *Manager) OnDisconnect(ctx context.Context, gameID, playerID string) *domain.RuleError {
	h, err := m.lookup(gameID)
	if err != nil {
		return err
	}
	return h.Disconnect(ctx, playerID)
}

// OnReconnect forwards a RECONNECT command to gameId's actor.
func (m *Manager) OnReconnect(ctx context.Context, gameID, playerID string) *domain.RuleError {
	h, err := m.lookup(gameID)
	if err != nil {
		return err
	}
	return h.Reconnect(ctx, playerID)
}

// Snapshot returns gameId's current state.
func (m *Manager) Snapshot(ctx context.Context, gameID string) (domain.GameState, *domain.RuleError) {
	h, err := m.lookup(gameID)
	if err != nil {
		return domain.GameState{}, err
	}
	state, sendErr := h.Snapshot(ctx)
	if sendErr != nil {
		return domain.GameState{}, domain.NewRuleError(domain.ErrInternal, sendErr.Error())
	}
	return state, nil
}

// ListGames returns a summary of every in-memory game, optionally
// filtered by phase (spec §6: `?status=lobby|playing|ended`).
func (m *Manager) ListGames(ctx context.Context, statusFilter string) []GameSummary {
	m.mu.RLock()
	handles := make([]*actor.Handle, 0, len(m.actors))
	for _, h := range m.actors {
		handles = append(handles, h)
	}
	m.mu.RUnlock()

	var out []GameSummary
	for _, h := range handles {
		state, err := h.Snapshot(ctx)
		if err != nil {
			continue
		}
		status := string(state.Phase)
		if statusFilter != "" && status != statusFilter {
			continue
		}
		names := make([]string, 0, len(state.Players))
		for _, p := range state.Players {
			names = append(names, p.Name)
		}
		out = append(out, GameSummary{
			GameID:      h.GameID(),
			Status:      status,
			PlayerCount: len(state.Players),
			MaxPlayers:  state.Config.PlayerCount,
			Players:     names,
		})
	}
	return out
}

// Recover loads every non-terminal snapshot and materializes an actor
// for each one not already in memory, returning the count newly
// loaded. A corrupted or unreadable snapshot is logged and skipped —
// the remaining games must still load (spec §4.E).
func (m *Manager) Recover() (int, error) {
	snapshots, err := m.store.LoadActiveSnapshots()
	if err != nil {
		return 0, fmt.Errorf("manager: recover: %w", err)
	}

	loaded := 0
	for _, snap := range snapshots {
		m.mu.RLock()
		_, already := m.actors[snap.GameID]
		m.mu.RUnlock()
		if already {
			continue
		}

		h := actor.Resume(snap, m.store, m.bus, m.aiGen, m.logger)
		m.mu.Lock()
		m.actors[snap.GameID] = h
		m.mu.Unlock()
		m.watchDiscard(snap.GameID, h)
		loaded++
	}
	return loaded, nil
}

// Remove shuts down and forgets gameId's actor.
func (m *Manager) Remove(gameID string) {
	m.mu.Lock()
	h, ok := m.actors[gameID]
	delete(m.actors, gameID)
	m.mu.Unlock()
	if ok {
		h.Shutdown()
	}
}

// Shutdown terminates every in-memory actor.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	handles := make([]*actor.Handle, 0, len(m.actors))
	for id, h := range m.actors {
		handles = append(handles, h)
		delete(m.actors, id)
	}
	m.mu.Unlock()

	for _, h := range handles {
		h.Shutdown()
	}
}
