package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	datastar "github.com/starfederation/datastar/sdk/go"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	"github.com/mark3labs/hexthrone/internal/broadcast"
	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/manager"
	"github.com/mark3labs/hexthrone/internal/session"
)

// RegisterStreamRoutes wires the streaming surface of spec §6 onto
// router: a long-lived SSE connection per client (the "socket") that
// fans out room broadcasts, plus the client→server command endpoints
// that feed the actor and ack back over the same connection style,
// grounded on the teacher's "/gamestate" and "/update" SSE routes in
// routes/index.go.
func RegisterStreamRoutes(r *router.Router[*core.RequestEvent], mgr *manager.Manager, sessions *session.Store, bus *broadcast.Bus) {
	protected := r.Group("/api/games/{id}")
	protected.BindFunc(RequireSession(sessions))

	protected.GET("/stream", joinGameStreamHandler(mgr, bus))
	protected.POST("/stream/start-game", startGameStreamHandler(mgr))
	protected.POST("/stream/play-turn", playTurnStreamHandler(mgr))
	protected.POST("/stream/starvation-choice", starvationChoiceStreamHandler(mgr))
}

// joinGameStreamHandler is the "joinGame" entry point: opening this
// connection, once the bearer session/gameId match, establishes the
// client's room membership for the lifetime of the request. It
// immediately pushes the current gameState, then every subsequent
// room broadcast (spec §4.D: playerJoined / playerLeft / turnPlayed /
// gameState) until the client disconnects. The socket's lifetime also
// drives DISCONNECT/RECONNECT (spec §4.B): opening it reconnects the
// player, and its teardown (connection drop, tab close) disconnects
// them.
func joinGameStreamHandler(mgr *manager.Manager, bus *broadcast.Bus) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := requireGameMatch(e)
		if err != nil {
			return err
		}
		gameID := e.Request.PathValue("id")

		if ruleErr := mgr.OnReconnect(e.Request.Context(), gameID, rec.PlayerID); ruleErr != nil {
			return writeRuleError(e, ruleErr)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			mgr.OnDisconnect(ctx, gameID, rec.PlayerID)
		}()

		state, ruleErr := mgr.Snapshot(e.Request.Context(), gameID)
		if ruleErr != nil {
			return writeRuleError(e, ruleErr)
		}

		sse := datastar.NewSSE(e.Response, e.Request)
		sendMessage(&sse, broadcast.Message{Kind: broadcast.MsgGameState, Payload: state})

		messages := make(chan broadcast.Message, 16)
		sub, subErr := bus.Subscribe(gameID, func(m broadcast.Message) {
			select {
			case messages <- m:
			default:
				// slow consumer: drop rather than block the publisher.
			}
		})
		if subErr != nil {
			return writeError(e, http.StatusInternalServerError, domain.ErrInternal, "failed to subscribe to game room")
		}
		defer sub.Unsubscribe()

		ctx := e.Request.Context()
		for {
			select {
			case <-ctx.Done():
				return nil
			case msg := <-messages:
				sendMessage(&sse, msg)
			}
		}
	}
}

// datastarSink is the subset of datastar's SSE generator these handlers
// need, kept narrow so the concrete type returned by datastar.NewSSE can
// be passed in by pointer regardless of its method-set details.
type datastarSink interface {
	MergeSignals([]byte) error
}

func sendMessage(sse datastarSink, msg broadcast.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	_ = sse.MergeSignals(payload)
}

func startGameStreamHandler(mgr *manager.Manager) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := requireGameMatch(e)
		if err != nil {
			return err
		}
		gameID := e.Request.PathValue("id")

		sse := datastar.NewSSE(e.Response, e.Request)
		if ruleErr := mgr.Start(e.Request.Context(), gameID, rec.PlayerID); ruleErr != nil {
			return ackError(&sse, ruleErr)
		}
		return ackSuccess(&sse, nil)
	}
}

type playTurnRequest struct {
	Command moveCommandDTO `json:"command"`
}

// playTurnStreamHandler implements the "playTurn" command. Per spec
// §6's security note, the playerId is taken from the socket's bound
// session, never from the request body.
func playTurnStreamHandler(mgr *manager.Manager) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := requireGameMatch(e)
		if err != nil {
			return err
		}
		gameID := e.Request.PathValue("id")

		var body playTurnRequest
		sse := datastar.NewSSE(e.Response, e.Request)
		if bindErr := e.BindBody(&body); bindErr != nil {
			return ackError(&sse, domain.NewRuleError(domain.ErrValidation, "invalid move payload"))
		}

		events, ruleErr := mgr.MakeMove(e.Request.Context(), gameID, rec.PlayerID, body.Command.toDomain())
		if ruleErr != nil {
			return ackError(&sse, ruleErr)
		}
		return ackSuccess(&sse, events)
	}
}

type starvationChoiceRequest struct {
	PieceID string `json:"pieceId"`
}

func starvationChoiceStreamHandler(mgr *manager.Manager) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := requireGameMatch(e)
		if err != nil {
			return err
		}
		gameID := e.Request.PathValue("id")

		var body starvationChoiceRequest
		sse := datastar.NewSSE(e.Response, e.Request)
		if bindErr := e.BindBody(&body); bindErr != nil {
			return ackError(&sse, domain.NewRuleError(domain.ErrValidation, "invalid starvation choice payload"))
		}

		events, ruleErr := mgr.SubmitStarvationChoice(e.Request.Context(), gameID, rec.PlayerID, body.PieceID)
		if ruleErr != nil {
			return ackError(&sse, ruleErr)
		}
		return ackSuccess(&sse, events)
	}
}

func ackSuccess(sse datastarSink, events []domain.Event) error {
	payload, _ := json.Marshal(map[string]interface{}{"success": true, "events": events})
	return sse.MergeSignals(payload)
}

func ackError(sse datastarSink, ruleErr *domain.RuleError) error {
	payload, _ := json.Marshal(map[string]interface{}{"success": false, "error": ruleErr.Code, "message": ruleErr.Message})
	return sse.MergeSignals(payload)
}
