// Package session implements the TTL-backed bearer-token session store
// (spec §4.D), grounded on the teacher's JetStream KV usage in
// game/manager.go ("gamestate" bucket) — here a second bucket holds
// session records instead of game state.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/pocketbase/pocketbase/tools/security"
)

// TTL is the session lifetime, per spec §3 ("TTL 86400 s").
const TTL = 24 * time.Hour

// TokenLength is the number of hex characters in a session token
// (spec §3: "64 hex chars of cryptographic randomness").
const TokenLength = 64

// ErrNotFound is returned by Validate when the token is unknown or
// expired.
var ErrNotFound = errors.New("session: token not found or expired")

// Record is the value stored under a session token.
type Record struct {
	GameID     string `json:"gameId"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// Store is a TTL key-value session store backed by a JetStream KV
// bucket configured with a per-key TTL.
type Store struct {
	kv     jetstream.KeyValue
	logger *log.Logger
}

// NewStore creates or attaches to the "sessions" KV bucket.
func NewStore(ctx context.Context, js jetstream.JetStream, logger *log.Logger) (*Store, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: "sessions",
		TTL:    TTL,
	})
	if err != nil {
		return nil, err
	}
	return &Store{kv: kv, logger: logger}, nil
}

// GenerateToken mints a new 64-hex-char cryptographically random
// token. Per spec's open question on session uniqueness, no collision
// detection is performed — uniqueness is assumed probabilistic.
func GenerateToken() string {
	return security.RandomStringWithAlphabet(TokenLength, "0123456789abcdef")
}

// Create writes a new session record and returns its token.
func (s *Store) Create(ctx context.Context, gameID, playerID, playerName string) (string, error) {
	token := GenerateToken()
	rec := Record{GameID: gameID, PlayerID: playerID, PlayerName: playerName}

	payload, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	if _, err := s.kv.Put(ctx, keyFor(token), payload); err != nil {
		return "", err
	}
	return token, nil
}

// Validate returns the session record for token, or ErrNotFound.
func (s *Store) Validate(ctx context.Context, token string) (Record, error) {
	entry, err := s.kv.Get(ctx, keyFor(token))
	if err != nil {
		return Record{}, ErrNotFound
	}
	var rec Record
	if err := json.Unmarshal(entry.Value(), &rec); err != nil {
		s.logger.Warn("corrupt session record", "error", err)
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Invalidate deletes a session immediately.
func (s *Store) Invalidate(ctx context.Context, token string) error {
	return s.kv.Delete(ctx, keyFor(token))
}

// Extend refreshes a session's TTL if it still exists, by re-writing
// its current value (each JetStream KV revision gets a fresh per-key
// expiry). It is a no-op, not an error, if the key is already gone.
func (s *Store) Extend(ctx context.Context, token string) error {
	entry, err := s.kv.Get(ctx, keyFor(token))
	if err != nil {
		return nil
	}
	_, err = s.kv.Put(ctx, keyFor(token), entry.Value())
	return err
}

// keyFor maps the spec's "session:<token>" key naming onto a
// NATS-subject-safe KV key (colons are not reliably valid subject
// tokens across NATS server versions).
func keyFor(token string) string {
	return "session_" + token
}
