package persistence

import (
	"testing"

	"github.com/pocketbase/pocketbase/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mark3labs/hexthrone/migrations"

	"github.com/mark3labs/hexthrone/internal/domain"
)

// newTestApp boots an in-memory PocketBase test app with the events and
// snapshots collections migrated in, mirroring how migrations/ is wired
// into cmd/server/main.go via a blank import.
func newTestApp(t *testing.T) *tests.TestApp {
	t.Helper()
	app, err := tests.NewTestApp()
	require.NoError(t, err)
	t.Cleanup(app.Cleanup)
	return app
}

func TestStore_SaveAndLoadEvents(t *testing.T) {
	app := newTestApp(t)
	store := NewStore(app, nil)

	require.NoError(t, store.SaveEvent("game-1", domain.EventTurnEnded, domain.TurnEndedPayload{NextPlayerID: "p2", TurnNumber: 2, RoundNumber: 1}))
	require.NoError(t, store.SaveEvent("game-1", domain.EventGameEnded, domain.GameEndedPayload{WinnerID: "p1", WinCondition: domain.WinThrone}))
	require.NoError(t, store.SaveEvent("game-2", domain.EventTurnEnded, domain.TurnEndedPayload{NextPlayerID: "px", TurnNumber: 1, RoundNumber: 1}))

	events, err := store.LoadEvents("game-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventTurnEnded, events[0].Kind)
	assert.Equal(t, domain.EventGameEnded, events[1].Kind)
}

func TestStore_SaveSnapshotInsertsThenCASUpdates(t *testing.T) {
	app := newTestApp(t)
	store := NewStore(app, nil)

	state := domain.GameState{Phase: domain.PhaseLobby}
	require.NoError(t, store.SaveSnapshot("game-1", state, 1, StatusLobby))

	loaded, err := store.LoadSnapshot("game-1")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Version)
	assert.Equal(t, StatusLobby, loaded.Status)

	state.Phase = domain.PhasePlaying
	require.NoError(t, store.SaveSnapshot("game-1", state, 2, StatusPlaying))

	loaded, err = store.LoadSnapshot("game-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Version)
	assert.Equal(t, StatusPlaying, loaded.Status)
	assert.Equal(t, domain.PhasePlaying, loaded.State.Phase)
}

func TestStore_SaveSnapshotRejectsStaleVersion(t *testing.T) {
	app := newTestApp(t)
	store := NewStore(app, nil)

	state := domain.GameState{Phase: domain.PhaseLobby}
	require.NoError(t, store.SaveSnapshot("game-1", state, 1, StatusLobby))

	err := store.SaveSnapshot("game-1", state, 3, StatusPlaying)
	assert.ErrorIs(t, err, ErrVersionConflict)

	loaded, err := store.LoadSnapshot("game-1")
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Version, "a rejected CAS update must not mutate the stored row")
}

func TestStore_LoadSnapshotNotFound(t *testing.T) {
	app := newTestApp(t)
	store := NewStore(app, nil)

	_, err := store.LoadSnapshot("does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_LoadActiveSnapshotsExcludesEnded(t *testing.T) {
	app := newTestApp(t)
	store := NewStore(app, nil)

	require.NoError(t, store.SaveSnapshot("lobby-game", domain.GameState{Phase: domain.PhaseLobby}, 1, StatusLobby))
	require.NoError(t, store.SaveSnapshot("ended-game", domain.GameState{Phase: domain.PhaseEnded}, 1, StatusEnded))

	active, err := store.LoadActiveSnapshots()
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, s := range active {
		ids[s.GameID] = true
	}
	assert.True(t, ids["lobby-game"])
	assert.False(t, ids["ended-game"])
}
