// Package broadcast fans out room-scoped game messages over the
// embedded NATS server, grounded on the teacher's nc.Publish calls in
// routes/index.go ("tanks.hit", "tanks.death", "shells.fired") and its
// in-process NATS connection pattern from main.go.
package broadcast

import (
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"
)

// MessageKind is the closed set of server-to-client fan-out messages
// (spec §4.D / §6 streaming surface).
type MessageKind string

const (
	MsgPlayerJoined MessageKind = "playerJoined"
	MsgPlayerLeft   MessageKind = "playerLeft"
	MsgTurnPlayed   MessageKind = "turnPlayed"
	MsgGameState    MessageKind = "gameState"
)

// Message is the envelope published to a game's room subject.
type Message struct {
	Kind    MessageKind `json:"kind"`
	Payload interface{} `json:"payload"`
}

// Bus publishes and subscribes to per-game room subjects. A "room" is
// the set of subscribers to subject(gameId); ordering within a room is
// whatever order the actor calls Publish in (spec §4.D: "delivered in
// the order the actor emitted them").
type Bus struct {
	nc     *nats.Conn
	logger *log.Logger
}

// NewBus wraps an established NATS connection.
func NewBus(nc *nats.Conn, logger *log.Logger) *Bus {
	return &Bus{nc: nc, logger: logger}
}

func subject(gameID string) string {
	return "games." + gameID + ".room"
}

// Publish fans a message out to every subscriber of gameId's room. A
// publish failure is logged and swallowed — spec §7: "Broadcast
// failures to one client do not affect the actor or other clients."
func (b *Bus) Publish(gameID string, kind MessageKind, payload interface{}) {
	msg := Message{Kind: kind, Payload: payload}
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("failed to marshal broadcast message", "gameId", gameID, "kind", kind, "error", err)
		return
	}
	if err := b.nc.Publish(subject(gameID), data); err != nil {
		b.logger.Error("failed to publish broadcast message", "gameId", gameID, "kind", kind, "error", err)
	}
}

// Subscribe joins gameId's room, invoking handler for every message
// until the returned subscription is unsubscribed. Used by the SSE
// transport to stream a room's events to one connected client.
func (b *Bus) Subscribe(gameID string, handler func(Message)) (*nats.Subscription, error) {
	return b.nc.Subscribe(subject(gameID), func(m *nats.Msg) {
		var msg Message
		if err := json.Unmarshal(m.Data, &msg); err != nil {
			b.logger.Warn("dropping malformed broadcast message", "gameId", gameID, "error", err)
			return
		}
		handler(msg)
	})
}
