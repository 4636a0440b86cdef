// Package actor implements the Game Actor (spec §4.B): one goroutine
// per active game owning its GameState, processing commands strictly
// serially off a FIFO mailbox channel. Grounded on the teacher's
// single-owner game/manager.go (mutex-protected state + JetStream KV
// persistence + background goroutine), generalized here to a
// channel-mailbox actor so that "no command observes a partial state
// of another" holds by construction rather than by lock discipline.
package actor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mark3labs/hexthrone/internal/aiclient"
	"github.com/mark3labs/hexthrone/internal/broadcast"
	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/engine"
	"github.com/mark3labs/hexthrone/internal/persistence"
)

type commandKind int

const (
	cmdJoin commandKind = iota
	cmdAddAI
	cmdStart
	cmdMakeMove
	cmdSubmitStarvationChoice
	cmdDisconnect
	cmdReconnect
	cmdTimeout
	cmdSnapshot
	cmdShutdown
)

type command struct {
	kind       commandKind
	playerID   string
	playerName string
	difficulty string
	move       domain.MoveCommand
	pieceID    string
	timerEpoch int
	reply      chan result
}

type result struct {
	state      domain.GameState
	events     []domain.Event
	assignedID string
	err        *domain.RuleError
}

// Handle is the external, concurrency-safe reference to a running Game
// Actor. All methods enqueue a command and block for its ack; callers
// from different goroutines may use the same Handle concurrently — the
// mailbox is what serializes them.
type Handle struct {
	gameID  string
	mailbox chan command
	done    chan struct{}
}

// GameID returns the id of the game this handle addresses.
func (h *Handle) GameID() string { return h.gameID }

// Done returns a channel that is closed once the actor has discarded
// itself — currently only after losing a snapshot CAS race — and will
// process no further commands. The Manager uses this to drop its
// registry entry (spec §4.C/§7: a version conflict is fatal to the
// losing writer).
func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) send(ctx context.Context, cmd command) (result, error) {
	cmd.reply = make(chan result, 1)
	select {
	case h.mailbox <- cmd:
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
	select {
	case res := <-cmd.reply:
		return res, nil
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

// Join adds a human player during the lobby phase.
func (h *Handle) Join(ctx context.Context, name string) (string, *domain.RuleError) {
	res, err := h.send(ctx, command{kind: cmdJoin, playerName: name})
	if err != nil {
		return "", domain.NewRuleError(domain.ErrInternal, err.Error())
	}
	return res.assignedID, res.err
}

// AddAI adds an AI-controlled seat during the lobby phase.
func (h *Handle) AddAI(ctx context.Context, difficulty string) (string, *domain.RuleError) {
	res, err := h.send(ctx, command{kind: cmdAddAI, difficulty: difficulty})
	if err != nil {
		return "", domain.NewRuleError(domain.ErrInternal, err.Error())
	}
	return res.assignedID, res.err
}

// Start transitions lobby → setup → playing if playerID is the host
// and seats are full.
func (h *Handle) Start(ctx context.Context, playerID string) *domain.RuleError {
	res, err := h.send(ctx, command{kind: cmdStart, playerID: playerID})
	if err != nil {
		return domain.NewRuleError(domain.ErrInternal, err.Error())
	}
	return res.err
}

// MakeMove submits a move on behalf of playerID.
func (h *Handle) MakeMove(ctx context.Context, playerID string, move domain.MoveCommand) ([]domain.Event, *domain.RuleError) {
	res, err := h.send(ctx, command{kind: cmdMakeMove, playerID: playerID, move: move})
	if err != nil {
		return nil, domain.NewRuleError(domain.ErrInternal, err.Error())
	}
	return res.events, res.err
}

// SubmitStarvationChoice submits playerID's chosen sacrifice during the
// starvation sub-state.
func (h *Handle) SubmitStarvationChoice(ctx context.Context, playerID, pieceID string) ([]domain.Event, *domain.RuleError) {
	res, err := h.send(ctx, command{kind: cmdSubmitStarvationChoice, playerID: playerID, pieceID: pieceID})
	if err != nil {
		return nil, domain.NewRuleError(domain.ErrInternal, err.Error())
	}
	return res.events, res.err
}

// Disconnect marks playerID disconnected; if they are the current
// player the game pauses and the turn timer is cancelled.
func (h *Handle) Disconnect(ctx context.Context, playerID string) *domain.RuleError {
	res, err := h.send(ctx, command{kind: cmdDisconnect, playerID: playerID})
	if err != nil {
		return domain.NewRuleError(domain.ErrInternal, err.Error())
	}
	return res.err
}

// Reconnect clears playerID's disconnected mark and, if the game was
// paused on their account, resumes play with a fresh timer deadline.
func (h *Handle) Reconnect(ctx context.Context, playerID string) *domain.RuleError {
	res, err := h.send(ctx, command{kind: cmdReconnect, playerID: playerID})
	if err != nil {
		return domain.NewRuleError(domain.ErrInternal, err.Error())
	}
	return res.err
}

// Snapshot returns a deep copy of the actor's current state.
func (h *Handle) Snapshot(ctx context.Context) (domain.GameState, error) {
	res, err := h.send(ctx, command{kind: cmdSnapshot})
	if err != nil {
		return domain.GameState{}, err
	}
	return res.state, nil
}

// Shutdown stops the actor's goroutine and cancels its timer. If the
// mailbox has room it enqueues a shutdown command and waits for the
// loop to acknowledge it; if the mailbox is full it returns at once and
// the actor keeps running. On the shutdown command the loop closes the
// mailbox and exits without processing commands still queued.
func (h *Handle) Shutdown() {
	cmd := command{kind: cmdShutdown, reply: make(chan result, 1)}
	select {
	case h.mailbox <- cmd:
		<-cmd.reply
	default:
	}
}

// actor owns one game's mutable state and everything needed to persist
// and broadcast its transitions.
type actor struct {
	gameID string
	state  domain.GameState
	status persistence.SnapshotStatus
	version int

	store  *persistence.Store
	bus    *broadcast.Bus
	ai     aiclient.Generator
	logger *log.Logger
	handle *Handle

	mailbox chan command

	timer      *time.Timer
	timerEpoch int

	pieceSeq  int
	discarded bool
}

// Spawn creates a new in-lobby game actor and starts its goroutine.
// aiGen may be nil, in which case aiclient.RandomMover is used for any
// AI seat.
func Spawn(gameID string, config domain.GameConfig, store *persistence.Store, bus *broadcast.Bus, aiGen aiclient.Generator, logger *log.Logger) *Handle {
	if aiGen == nil {
		aiGen = aiclient.RandomMover{}
	}
	a := &actor{
		gameID: gameID,
		state: domain.GameState{
			Config: config,
			Phase:  domain.PhaseLobby,
		},
		status:  persistence.StatusLobby,
		version: 1,
		store:   store,
		bus:     bus,
		ai:      aiGen,
		logger:  logger,
		mailbox: make(chan command, 32),
	}
	a.handle = &Handle{gameID: gameID, mailbox: a.mailbox, done: make(chan struct{})}
	if a.store != nil {
		if err := a.store.SaveSnapshot(gameID, a.state, a.version, a.status); err != nil {
			a.logger.Error("failed to save initial snapshot", "gameId", gameID, "error", err)
		}
	}
	go a.run()
	return a.handle
}

// Resume reconstructs an actor from a persisted snapshot during
// recovery (spec §4.E Manager.recover).
func Resume(snap persistence.Snapshot, store *persistence.Store, bus *broadcast.Bus, aiGen aiclient.Generator, logger *log.Logger) *Handle {
	if aiGen == nil {
		aiGen = aiclient.RandomMover{}
	}
	a := &actor{
		gameID:  snap.GameID,
		state:   snap.State,
		status:  snap.Status,
		version: snap.Version,
		store:   store,
		bus:     bus,
		ai:      aiGen,
		logger:  logger,
		mailbox: make(chan command, 32),
	}
	a.handle = &Handle{gameID: snap.GameID, mailbox: a.mailbox, done: make(chan struct{})}
	go a.run()
	a.maybeScheduleAITurn()
	return a.handle
}

func (a *actor) run() {
	for cmd := range a.mailbox {
		if cmd.kind == cmdShutdown {
			a.cancelTimer()
			cmd.reply <- result{}
			close(a.mailbox)
			return
		}
		a.handle1(cmd)
		if a.discarded {
			a.cancelTimer()
			close(a.handle.done)
			return
		}
	}
}

func (a *actor) handle1(cmd command) {
	switch cmd.kind {
	case cmdJoin:
		a.onJoin(cmd)
	case cmdAddAI:
		a.onAddAI(cmd)
	case cmdStart:
		a.onStart(cmd)
	case cmdMakeMove:
		a.onMakeMove(cmd)
	case cmdSubmitStarvationChoice:
		a.onSubmitStarvationChoice(cmd)
	case cmdDisconnect:
		a.onDisconnect(cmd)
	case cmdReconnect:
		a.onReconnect(cmd)
	case cmdTimeout:
		a.onTimeout(cmd)
	case cmdSnapshot:
		cmd.reply <- result{state: a.state.Clone()}
	default:
		cmd.reply <- result{err: domain.NewRuleError(domain.ErrInternal, "unknown command")}
	}
}

func (a *actor) onJoin(cmd command) {
	if a.state.Phase != domain.PhaseLobby {
		cmd.reply <- result{err: domain.NewRuleError(domain.ErrGameNotPlaying, "game is not accepting players")}
		return
	}
	name := cmd.playerName
	if name == "" || len(name) > domain.MaxNameLen {
		cmd.reply <- result{err: domain.NewRuleError(domain.ErrValidation, "playerName must be 1..30 chars")}
		return
	}
	for _, p := range a.state.Players {
		if p.Name == name {
			cmd.reply <- result{err: domain.NewRuleError(domain.ErrValidation, "name already taken")}
			return
		}
	}
	if len(a.state.Players) >= a.state.Config.PlayerCount {
		cmd.reply <- result{err: domain.NewRuleError(domain.ErrValidation, "seats are full")}
		return
	}

	playerID := uuid.NewString()
	seatIndex := len(a.state.Players)
	a.state.Players = append(a.state.Players, domain.Player{
		ID:        playerID,
		Name:      name,
		Color:     domain.SeatColor(seatIndex),
		Connected: true,
	})

	a.broadcast(broadcast.MsgPlayerJoined, map[string]interface{}{
		"playerId":   playerID,
		"playerName": name,
		"gameState":  a.state.Clone(),
	})
	cmd.reply <- result{assignedID: playerID}
}

func (a *actor) onAddAI(cmd command) {
	if a.state.Phase != domain.PhaseLobby {
		cmd.reply <- result{err: domain.NewRuleError(domain.ErrGameNotPlaying, "game is not accepting players")}
		return
	}
	if len(a.state.Players) >= a.state.Config.PlayerCount {
		cmd.reply <- result{err: domain.NewRuleError(domain.ErrValidation, "seats are full")}
		return
	}

	playerID := uuid.NewString()
	seatIndex := len(a.state.Players)
	difficulty := cmd.difficulty
	if difficulty == "" {
		difficulty = "random"
	}
	a.state.Players = append(a.state.Players, domain.Player{
		ID:         playerID,
		Name:       domain.GenerateAICallsign(),
		Color:      domain.SeatColor(seatIndex),
		IsAI:       true,
		AIStrength: difficulty,
		Connected:  true,
	})

	a.broadcast(broadcast.MsgPlayerJoined, map[string]interface{}{
		"playerId":   playerID,
		"playerName": a.state.Players[seatIndex].Name,
		"gameState":  a.state.Clone(),
	})
	cmd.reply <- result{assignedID: playerID}
}

func (a *actor) onStart(cmd command) {
	if a.state.Phase != domain.PhaseLobby {
		cmd.reply <- result{err: domain.NewRuleError(domain.ErrGameNotPlaying, "game already started")}
		return
	}
	host, ok := a.state.Host()
	if !ok || host.ID != cmd.playerID {
		cmd.reply <- result{err: domain.NewRuleError(domain.ErrUnauthorized, "only the host may start the game")}
		return
	}
	if len(a.state.Players) != a.state.Config.PlayerCount {
		cmd.reply <- result{err: domain.NewRuleError(domain.ErrValidation, "not enough players to start")}
		return
	}

	setup := engine.GenerateSetup(a.state.Config, a.state.Players, a.nextPieceID)
	a.state.Pieces = setup.Pieces
	a.state.Holes = setup.Holes
	a.state.Phase = domain.PhasePlaying
	a.state.CurrentPlayerID = a.state.Players[0].ID
	a.state.FirstPlayerIndex = 0
	a.state.TurnNumber = 1
	a.state.RoundNumber = 1

	a.saveSnapshot(persistence.StatusPlaying)
	a.broadcast(broadcast.MsgGameState, a.state.Clone())
	a.resetTimer()
	cmd.reply <- result{}
	a.maybeScheduleAITurn()
}

func (a *actor) onMakeMove(cmd command) {
	if a.state.Phase != domain.PhasePlaying {
		cmd.reply <- result{err: domain.NewRuleError(domain.ErrGameNotPlaying, "game is not accepting moves")}
		return
	}

	newState, events, ruleErr := engine.ApplyMove(a.state, cmd.playerID, cmd.move)
	if ruleErr != nil {
		cmd.reply <- result{err: ruleErr}
		return
	}

	a.cancelTimer()
	a.state = newState
	a.saveEvents(events)

	switch a.state.Phase {
	case domain.PhaseEnded:
		a.status = persistence.StatusEnded
		a.saveSnapshot(persistence.StatusEnded)
	case domain.PhaseStarvation:
		a.saveSnapshot(persistence.StatusStarvation)
	default:
		// intra-playing move: event write only, per spec §4.B.
	}

	a.broadcast(broadcast.MsgTurnPlayed, map[string]interface{}{
		"newState": a.state.Clone(),
		"events":   events,
	})

	cmd.reply <- result{events: events}

	if a.state.Phase == domain.PhasePlaying {
		a.resetTimer()
		a.maybeScheduleAITurn()
	}
}

func (a *actor) onSubmitStarvationChoice(cmd command) {
	if a.state.Phase != domain.PhaseStarvation {
		cmd.reply <- result{err: domain.NewRuleError(domain.ErrGameNotPlaying, "no starvation choice is pending")}
		return
	}

	newState, events, ruleErr := engine.ResolveStarvationChoice(a.state, cmd.playerID, cmd.pieceID)
	if ruleErr != nil {
		cmd.reply <- result{err: ruleErr}
		return
	}
	a.state = newState
	a.saveEvents(events)

	if a.state.Phase == domain.PhasePlaying {
		a.saveSnapshot(persistence.StatusPlaying)
		a.resetTimer()
		a.maybeScheduleAITurn()
	}

	if len(events) > 0 {
		a.broadcast(broadcast.MsgTurnPlayed, map[string]interface{}{
			"newState": a.state.Clone(),
			"events":   events,
		})
	}
	cmd.reply <- result{events: events}
}

func (a *actor) onDisconnect(cmd command) {
	_, idx, ok := a.state.PlayerByID(cmd.playerID)
	if !ok {
		cmd.reply <- result{err: domain.NewRuleError(domain.ErrValidation, "player not in this game")}
		return
	}
	a.state.Players[idx].Connected = false

	if a.state.CurrentPlayerID == cmd.playerID && (a.state.Phase == domain.PhasePlaying || a.state.Phase == domain.PhaseStarvation) {
		a.cancelTimer()
		if a.state.Phase == domain.PhasePlaying {
			a.state.Phase = domain.PhasePaused
			a.saveSnapshot(persistence.StatusPlaying)
		}
	}

	a.broadcast(broadcast.MsgPlayerLeft, map[string]interface{}{
		"playerId":  cmd.playerID,
		"gameState": a.state.Clone(),
	})
	cmd.reply <- result{}
}

func (a *actor) onReconnect(cmd command) {
	_, idx, ok := a.state.PlayerByID(cmd.playerID)
	if !ok {
		cmd.reply <- result{err: domain.NewRuleError(domain.ErrValidation, "player not in this game")}
		return
	}
	a.state.Players[idx].Connected = true

	if a.state.Phase == domain.PhasePaused && a.state.CurrentPlayerID == cmd.playerID {
		a.state.Phase = domain.PhasePlaying
		a.resetTimer()
		a.maybeScheduleAITurn()
	}
	cmd.reply <- result{}
}

func (a *actor) onTimeout(cmd command) {
	if cmd.timerEpoch != a.timerEpoch {
		// stale timer fire from a cancelled/reset deadline; ignore.
		return
	}
	if a.state.Phase != domain.PhasePlaying {
		return
	}

	playerID := a.state.CurrentPlayerID
	var events []domain.Event
	if piece, ok := engine.PickSacrifice(a.state, playerID); ok {
		a.state.RemovePiece(piece.ID)
		if piece.Type == domain.PieceJarl {
			if _, idx, ok := a.state.PlayerByID(playerID); ok {
				a.state.Players[idx].IsEliminated = true
			}
		}
		elim := domain.EliminatedPayload{PieceID: piece.ID, PlayerID: playerID, Cause: domain.CauseTimeout}
		events = append(events, domain.Event{Kind: domain.EventEliminated, Payload: elim})
	}

	nextIdx, wrapped := advanceTurnAfterTimeout(a.state)
	a.state.CurrentPlayerID = a.state.Players[nextIdx].ID
	a.state.TurnNumber++
	if wrapped {
		a.state.RoundNumber++
	}
	events = append(events, domain.Event{
		Kind: domain.EventTurnEnded,
		Payload: domain.TurnEndedPayload{
			NextPlayerID: a.state.CurrentPlayerID,
			TurnNumber:   a.state.TurnNumber,
			RoundNumber:  a.state.RoundNumber,
		},
	})

	a.saveEvents(events)
	a.broadcast(broadcast.MsgTurnPlayed, map[string]interface{}{
		"newState": a.state.Clone(),
		"events":   events,
	})
	a.resetTimer()
	a.maybeScheduleAITurn()
}

func (a *actor) nextPieceID(kind string, playerIdx, n int) string {
	a.pieceSeq++
	return fmt.Sprintf("%s-%d-%d-%d", kind, playerIdx, n, a.pieceSeq)
}

func (a *actor) saveEvents(events []domain.Event) {
	if a.store == nil {
		return
	}
	for _, e := range events {
		if err := a.store.SaveEvent(a.gameID, e.Kind, e.Payload); err != nil {
			a.logger.Error("failed to persist event", "gameId", a.gameID, "kind", e.Kind, "error", err)
		}
	}
}

// saveSnapshot persists the actor's current state. A version conflict
// means another writer already moved this game's snapshot forward — per
// spec §4.C/§7 that is fatal to the loser, so this actor discards
// itself rather than keep serving commands against a row it can no
// longer safely advance.
func (a *actor) saveSnapshot(status persistence.SnapshotStatus) {
	a.status = status
	if a.store == nil {
		return
	}
	a.version++
	if err := a.store.SaveSnapshot(a.gameID, a.state, a.version, status); err != nil {
		if errors.Is(err, persistence.ErrVersionConflict) {
			a.logger.Error("snapshot version conflict, discarding actor", "gameId", a.gameID, "error", err)
			a.discarded = true
			return
		}
		a.logger.Error("failed to persist snapshot", "gameId", a.gameID, "error", err)
	}
}

func (a *actor) broadcast(kind broadcast.MessageKind, payload interface{}) {
	if a.bus == nil {
		return
	}
	a.bus.Publish(a.gameID, kind, payload)
}

func (a *actor) cancelTimer() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.timerEpoch++
}

func (a *actor) resetTimer() {
	a.cancelTimer()
	if a.state.Config.TurnTimerMs == nil || *a.state.Config.TurnTimerMs <= 0 {
		return
	}
	epoch := a.timerEpoch
	d := time.Duration(*a.state.Config.TurnTimerMs) * time.Millisecond
	a.timer = time.AfterFunc(d, func() {
		cmd := command{kind: cmdTimeout, timerEpoch: epoch, reply: make(chan result, 1)}
		select {
		case a.mailbox <- cmd:
		default:
		}
	})
}

// maybeScheduleAITurn asynchronously generates and submits a move for
// the current player if they are AI-controlled. It never blocks the
// actor's own goroutine — the AI call happens on a separate goroutine
// and re-enters through the normal MAKE_MOVE mailbox path.
func (a *actor) maybeScheduleAITurn() {
	if a.state.Phase != domain.PhasePlaying {
		return
	}
	player, _, ok := a.state.PlayerByID(a.state.CurrentPlayerID)
	if !ok || !player.IsAI {
		return
	}
	snapshot := a.state.Clone()
	if n := len(snapshot.MoveHistory); n > domain.MaxMoveHistoryForAI {
		snapshot.MoveHistory = snapshot.MoveHistory[n-domain.MaxMoveHistoryForAI:]
	}
	gameID := a.gameID
	handle := a.handle
	ai := a.ai
	logger := a.logger
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		move, err := ai.GenerateMove(ctx, snapshot, player.ID)
		if err != nil {
			logger.Error("ai move generation failed with no fallback result", "gameId", gameID, "playerId", player.ID, "error", err)
			return
		}
		if _, ruleErr := handle.MakeMove(ctx, player.ID, move); ruleErr != nil {
			logger.Warn("ai-generated move was rejected", "playerId", player.ID, "error", ruleErr)
		}
	}()
}

// advanceTurnAfterTimeout mirrors engine's unexported advanceTurn for
// the actor's own timeout path (the rule engine only exposes turn
// advancement bundled inside ApplyMove).
func advanceTurnAfterTimeout(state domain.GameState) (int, bool) {
	_, curIdx, _ := state.PlayerByID(state.CurrentPlayerID)
	n := len(state.Players)
	wrapped := false
	for step := 1; step <= n; step++ {
		idx := (curIdx + step) % n
		if idx == state.FirstPlayerIndex {
			wrapped = true
		}
		if !state.Players[idx].IsEliminated {
			return idx, wrapped
		}
	}
	return curIdx, false
}
