// Package transport implements the REST and datastar SSE streaming
// surface (spec §6), grounded on the teacher's routes/index.go and
// routes/router.go (pocketbase's router.Router[*core.RequestEvent],
// e.JSON, datastar SSE helpers) and middleware/auth.go's
// BindFunc-based auth pattern — generalized from a cookie-bound
// pocketbase user session to a bearer-token game session validated
// against internal/session.Store.
package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/session"
)

type ctxKey int

const sessionCtxKey ctxKey = iota

// RequireSession validates the request's bearer token against store
// and, on success, attaches the resolved session.Record to the
// request context for handlers to read via sessionFromRequest. On
// failure it writes a 401 UNAUTHORIZED {error, message} body and stops the
// chain (spec §6: "Bearer session").
func RequireSession(store *session.Store) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		token := bearerToken(e.Request)
		if token == "" {
			return writeError(e, http.StatusUnauthorized, domain.ErrUnauthorized, "missing bearer token")
		}
		rec, err := store.Validate(e.Request.Context(), token)
		if err != nil {
			return writeError(e, http.StatusUnauthorized, domain.ErrUnauthorized, "invalid or expired session token")
		}
		ctx := context.WithValue(e.Request.Context(), sessionCtxKey, rec)
		e.Request = e.Request.WithContext(ctx)
		return e.Next()
	}
}

// requireGameMatch fails the request unless the session's bound gameId
// matches the :id path parameter (spec §6: "must match gameId").
func requireGameMatch(e *core.RequestEvent) (session.Record, error) {
	rec, ok := sessionFromRequest(e.Request)
	if !ok {
		return session.Record{}, writeError(e, http.StatusUnauthorized, domain.ErrUnauthorized, "missing session")
	}
	if rec.GameID != e.Request.PathValue("id") {
		return session.Record{}, writeError(e, http.StatusUnauthorized, domain.ErrUnauthorized, "session does not belong to this game")
	}
	return rec, nil
}

func sessionFromRequest(r *http.Request) (session.Record, bool) {
	rec, ok := r.Context().Value(sessionCtxKey).(session.Record)
	return rec, ok
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimPrefix(h, prefix)
}

func writeError(e *core.RequestEvent, status int, code domain.ErrorCode, message string) error {
	return e.JSON(status, map[string]string{"error": string(code), "message": message})
}

// writeRuleError maps a *domain.RuleError onto the REST error taxonomy
// of spec §7.
func writeRuleError(e *core.RequestEvent, ruleErr *domain.RuleError) error {
	return writeError(e, statusForCode(ruleErr.Code), ruleErr.Code, ruleErr.Message)
}

// statusForCode maps a domain.ErrorCode onto the HTTP status spec §7
// calls for. Kept separate from writeRuleError so it can be exercised
// without a live *core.RequestEvent.
func statusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.ErrGameNotFound, domain.ErrPieceNotFound:
		return http.StatusNotFound
	case domain.ErrUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
