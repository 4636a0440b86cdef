// Package persistence implements the append-only event log and the
// compare-and-swap snapshot store (spec §4.C), grounded on the
// teacher's PocketBase usage: collections defined via
// migrations/1700000001_create_events.go and
// migrations/1700000002_create_snapshots.go, records read/written
// through core.App the way migrations/1741862031_updated_users.go
// does, and the CAS update issued as a raw SQL statement through
// app.DB() (dbx.Builder) because PocketBase's record Save API has no
// conditional-update primitive.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"github.com/mark3labs/hexthrone/internal/domain"
)

// pbDateLayout matches PocketBase's stored DateTime text format, used
// when stamping the "updated" autodate column from a raw SQL update
// (the record API stamps it automatically; a raw CAS UPDATE must do
// so itself).
const pbDateLayout = "2006-01-02 15:04:05.000Z"

// SnapshotStatus mirrors the snapshots.status column (spec §3's
// `status ∈ {lobby, playing, starvation, ended}`).
type SnapshotStatus string

const (
	StatusLobby      SnapshotStatus = "lobby"
	StatusPlaying    SnapshotStatus = "playing"
	StatusStarvation SnapshotStatus = "starvation"
	StatusEnded      SnapshotStatus = "ended"
)

// Snapshot is one row of the snapshots collection.
type Snapshot struct {
	GameID  string
	State   domain.GameState
	Version int
	Status  SnapshotStatus
}

// ErrNotFound is returned when no snapshot exists for a gameId.
var ErrNotFound = errors.New("persistence: snapshot not found")

// ErrVersionConflict is raised when SaveSnapshot's compare-and-swap
// update does not match the stored version — spec §3: "mismatch
// raises VersionConflict".
var ErrVersionConflict = errors.New("persistence: version conflict")

// Store wraps a PocketBase app handle for event/snapshot persistence.
type Store struct {
	app    core.App
	logger *log.Logger
}

// NewStore wraps an already-bootstrapped PocketBase app.
func NewStore(app core.App, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{app: app, logger: logger}
}

// SaveEvent appends one event to the append-only log. Persistence
// failures are the caller's (the Game Actor's) to log and swallow per
// spec §7 — SaveEvent itself only reports the error, it never retries.
func (s *Store) SaveEvent(gameID string, kind domain.EventKind, payload interface{}) error {
	collection, err := s.app.FindCollectionByNameOrId("events")
	if err != nil {
		return fmt.Errorf("persistence: find events collection: %w", err)
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("persistence: marshal event payload: %w", err)
	}

	record := core.NewRecord(collection)
	record.Set("gameId", gameID)
	record.Set("type", string(kind))
	record.Set("payload", json.RawMessage(payloadBytes))

	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("persistence: save event: %w", err)
	}
	return nil
}

// LoadEvents returns every event recorded for gameId, oldest first.
func (s *Store) LoadEvents(gameID string) ([]domain.Event, error) {
	records, err := s.app.FindRecordsByFilter(
		"events",
		"gameId = {:gameId}",
		"+created",
		0, 0,
		dbx.Params{"gameId": gameID},
	)
	if err != nil {
		return nil, fmt.Errorf("persistence: load events: %w", err)
	}

	events := make([]domain.Event, 0, len(records))
	for _, rec := range records {
		var payload json.RawMessage
		if raw := rec.Get("payload"); raw != nil {
			if b, ok := raw.(json.RawMessage); ok {
				payload = b
			} else if b, ok := raw.([]byte); ok {
				payload = b
			}
		}
		events = append(events, domain.Event{
			Kind:    domain.EventKind(rec.GetString("type")),
			Payload: payload,
		})
	}
	return events, nil
}

// SaveSnapshot inserts version 1 if gameId has no row yet, otherwise
// performs a compare-and-swap update: the stored version must equal
// version-1 or ErrVersionConflict is returned and nothing is written
// (spec §3/§4.C).
func (s *Store) SaveSnapshot(gameID string, state domain.GameState, version int, status SnapshotStatus) error {
	stateBytes, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("persistence: marshal state: %w", err)
	}

	_, err = s.app.FindFirstRecordByFilter("snapshots", "gameId = {:gameId}", dbx.Params{"gameId": gameID})
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("persistence: lookup snapshot: %w", err)
		}
		if version != 1 {
			return ErrVersionConflict
		}
		collection, err := s.app.FindCollectionByNameOrId("snapshots")
		if err != nil {
			return fmt.Errorf("persistence: find snapshots collection: %w", err)
		}
		record := core.NewRecord(collection)
		record.Set("gameId", gameID)
		record.Set("state", json.RawMessage(stateBytes))
		record.Set("version", version)
		record.Set("status", string(status))
		if err := s.app.Save(record); err != nil {
			return fmt.Errorf("persistence: insert snapshot: %w", err)
		}
		return nil
	}

	result, err := s.app.DB().NewQuery(
		"UPDATE snapshots SET state = {:state}, status = {:status}, version = {:version}, updated = {:updated} " +
			"WHERE gameId = {:gameId} AND version = {:expected}",
	).Bind(dbx.Params{
		"state":    string(stateBytes),
		"status":   string(status),
		"version":  version,
		"updated":  time.Now().UTC().Format(pbDateLayout),
		"gameId":   gameID,
		"expected": version - 1,
	}).Execute()
	if err != nil {
		return fmt.Errorf("persistence: update snapshot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("persistence: read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// LoadSnapshot returns the current snapshot for gameId.
func (s *Store) LoadSnapshot(gameID string) (Snapshot, error) {
	record, err := s.app.FindFirstRecordByFilter("snapshots", "gameId = {:gameId}", dbx.Params{"gameId": gameID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, fmt.Errorf("persistence: load snapshot: %w", err)
	}
	return recordToSnapshot(record)
}

// LoadActiveSnapshots returns every snapshot whose status is not
// "ended" — the set the Manager rehydrates a Game Actor for on boot
// (spec §2: "Recovery: on boot, Persistence enumerates snapshots with
// non-terminal status").
func (s *Store) LoadActiveSnapshots() ([]Snapshot, error) {
	records, err := s.app.FindRecordsByFilter(
		"snapshots",
		"status != {:ended}",
		"+created",
		0, 0,
		dbx.Params{"ended": string(StatusEnded)},
	)
	if err != nil {
		return nil, fmt.Errorf("persistence: load active snapshots: %w", err)
	}

	snapshots := make([]Snapshot, 0, len(records))
	for _, rec := range records {
		snap, err := recordToSnapshot(rec)
		if err != nil {
			s.logger.Error("skipping corrupted snapshot during recovery", "gameId", rec.GetString("gameId"), "error", err)
			continue
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

func recordToSnapshot(record *core.Record) (Snapshot, error) {
	var state domain.GameState
	if raw := record.Get("state"); raw != nil {
		var b []byte
		switch v := raw.(type) {
		case json.RawMessage:
			b = v
		case []byte:
			b = v
		case string:
			b = []byte(v)
		}
		if len(b) > 0 {
			if err := json.Unmarshal(b, &state); err != nil {
				return Snapshot{}, fmt.Errorf("persistence: unmarshal state: %w", err)
			}
		}
	}

	return Snapshot{
		GameID:  record.GetString("gameId"),
		State:   state,
		Version: record.GetInt("version"),
		Status:  SnapshotStatus(record.GetString("status")),
	}, nil
}
