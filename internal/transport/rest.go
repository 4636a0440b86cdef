package transport

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/engine"
	"github.com/mark3labs/hexthrone/internal/hexgrid"
	"github.com/mark3labs/hexthrone/internal/manager"
	"github.com/mark3labs/hexthrone/internal/session"
)

// RegisterRESTRoutes wires the REST surface of spec §6 onto router.
// defaultTurnTimerMs (internal/config's DEFAULT_TURN_TIMER_MS) is applied
// to a create request that omits turnTimerMs entirely; zero disables it.
func RegisterRESTRoutes(r *router.Router[*core.RequestEvent], mgr *manager.Manager, sessions *session.Store, defaultTurnTimerMs int64) {
	r.POST("/api/games", createGameHandler(mgr, defaultTurnTimerMs))
	r.GET("/api/games", listGamesHandler(mgr))
	r.POST("/api/games/{id}/join", joinGameHandler(mgr, sessions))

	protected := r.Group("/api/games/{id}")
	protected.BindFunc(RequireSession(sessions))
	protected.GET("", getGameHandler(mgr))
	protected.POST("/start", startGameHandler(mgr))
	protected.POST("/ai", addAIHandler(mgr))
	protected.GET("/valid-moves/{pieceId}", validMovesHandler(mgr))
}

type createGameRequest struct {
	PlayerCount *int   `json:"playerCount"`
	TurnTimerMs *int64 `json:"turnTimerMs"`
}

func createGameHandler(mgr *manager.Manager, defaultTurnTimerMs int64) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var body createGameRequest
		_ = e.BindBody(&body) // an empty body is valid: all fields default.

		playerCount := 2
		if body.PlayerCount != nil {
			playerCount = *body.PlayerCount
		}
		if playerCount < 2 || playerCount > 6 {
			return writeError(e, http.StatusBadRequest, domain.ErrValidation, "playerCount must be between 2 and 6")
		}
		if body.TurnTimerMs != nil && *body.TurnTimerMs <= 0 {
			return writeError(e, http.StatusBadRequest, domain.ErrValidation, "turnTimerMs must be positive when set")
		}

		turnTimerMs := body.TurnTimerMs
		if turnTimerMs == nil && defaultTurnTimerMs > 0 {
			turnTimerMs = &defaultTurnTimerMs
		}

		config := domain.GameConfig{
			PlayerCount:  playerCount,
			BoardRadius:  domain.BoardRadiusFor(playerCount),
			WarriorCount: domain.DefaultWarriorCount(playerCount),
			TurnTimerMs:  turnTimerMs,
			Terrain:      domain.TerrainStandard,
		}

		gameID := mgr.Create(config)
		return e.JSON(http.StatusCreated, map[string]string{"gameId": gameID})
	}
}

func listGamesHandler(mgr *manager.Manager) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		statusFilter := e.Request.URL.Query().Get("status")
		games := mgr.ListGames(e.Request.Context(), statusFilter)
		if games == nil {
			games = []manager.GameSummary{}
		}
		return e.JSON(http.StatusOK, map[string]interface{}{"games": games})
	}
}

type joinGameRequest struct {
	PlayerName string `json:"playerName"`
}

func joinGameHandler(mgr *manager.Manager, sessions *session.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		gameID := e.Request.PathValue("id")
		var body joinGameRequest
		if err := e.BindBody(&body); err != nil {
			return writeError(e, http.StatusBadRequest, domain.ErrValidation, "invalid request body")
		}

		playerID, ruleErr := mgr.Join(e.Request.Context(), gameID, body.PlayerName)
		if ruleErr != nil {
			return writeRuleError(e, ruleErr)
		}

		token, err := sessions.Create(e.Request.Context(), gameID, playerID, body.PlayerName)
		if err != nil {
			return writeError(e, http.StatusInternalServerError, domain.ErrInternal, "failed to create session")
		}

		return e.JSON(http.StatusOK, map[string]string{"playerId": playerID, "sessionToken": token})
	}
}

func getGameHandler(mgr *manager.Manager) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := requireGameMatch(e); err != nil {
			return err
		}
		gameID := e.Request.PathValue("id")
		state, ruleErr := mgr.Snapshot(e.Request.Context(), gameID)
		if ruleErr != nil {
			return writeRuleError(e, ruleErr)
		}
		return e.JSON(http.StatusOK, map[string]interface{}{"state": state})
	}
}

func startGameHandler(mgr *manager.Manager) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := requireGameMatch(e)
		if err != nil {
			return err
		}
		gameID := e.Request.PathValue("id")
		if ruleErr := mgr.Start(e.Request.Context(), gameID, rec.PlayerID); ruleErr != nil {
			return writeRuleError(e, ruleErr)
		}
		return e.JSON(http.StatusOK, map[string]bool{"success": true})
	}
}

type addAIRequest struct {
	Difficulty string `json:"difficulty"`
}

func addAIHandler(mgr *manager.Manager) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := requireGameMatch(e); err != nil {
			return err
		}
		gameID := e.Request.PathValue("id")
		var body addAIRequest
		_ = e.BindBody(&body)
		if body.Difficulty == "" {
			body.Difficulty = "random"
		}

		aiPlayerID, ruleErr := mgr.AddAI(e.Request.Context(), gameID, body.Difficulty)
		if ruleErr != nil {
			return writeRuleError(e, ruleErr)
		}
		return e.JSON(http.StatusOK, map[string]string{"aiPlayerId": aiPlayerID})
	}
}

func validMovesHandler(mgr *manager.Manager) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if _, err := requireGameMatch(e); err != nil {
			return err
		}
		gameID := e.Request.PathValue("id")
		pieceID := e.Request.PathValue("pieceId")

		state, ruleErr := mgr.Snapshot(e.Request.Context(), gameID)
		if ruleErr != nil {
			return writeRuleError(e, ruleErr)
		}
		moves := engine.ComputeValidMoves(state, pieceID)
		return e.JSON(http.StatusOK, map[string]interface{}{"moves": moves})
	}
}

// moveCommandDTO decodes the opaque move payload of spec §9:
// {pieceId, destination:{q,r}}.
type moveCommandDTO struct {
	PieceID     string `json:"pieceId"`
	Destination struct {
		Q int `json:"q"`
		R int `json:"r"`
	} `json:"destination"`
}

func (dto moveCommandDTO) toDomain() domain.MoveCommand {
	return domain.MoveCommand{
		PieceID:     dto.PieceID,
		Destination: hexgrid.Hex{Q: dto.Destination.Q, R: dto.Destination.R},
	}
}
