// Package presence tracks which users hold a live realtime connection and
// relays notifications to them.
//
// A Hub goroutine owns the registry (user id -> connection). Every change is
// followed by a full snapshot of online ids sent to every connection.
// Notifications go to the target's connection if it has one and are dropped
// otherwise; nothing is queued.
package presence

import (
	"context"
	"errors"
	"slices"

	"github.com/dmitrijs2005/gophgram/internal/logging"
	"github.com/dmitrijs2005/gophgram/internal/server/models"
	"github.com/dmitrijs2005/gophgram/internal/wire"
)

var ErrHubClosed = errors.New("presence hub is not running")

// Conn is a registered connection as the Hub sees it.
type Conn interface {
	UserID() string
	// Send queues a frame without blocking and reports whether it was queued.
	Send(e wire.Envelope) bool
	// Close tears the connection down. It must be safe to call more than once.
	Close()
}

type relayMsg struct {
	n models.Notification
}

type Hub struct {
	register   chan Conn
	unregister chan Conn
	relay      chan relayMsg
	online     chan chan []string
	done       chan struct{}

	logger logging.Logger

	// owned by Run
	conns map[string]Conn
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		register:   make(chan Conn),
		unregister: make(chan Conn),
		relay:      make(chan relayMsg),
		online:     make(chan chan []string),
		done:       make(chan struct{}),
		logger:     logger.With("module", "presence"),
		conns:      map[string]Conn{},
	}
}

// Run serves requests until ctx is cancelled, then closes every connection.
// It must be called exactly once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	defer func() {
		for id, c := range h.conns {
			c.Close()
			delete(h.conns, id)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.handleConnect(ctx, c)
		case c := <-h.unregister:
			h.handleDisconnect(ctx, c)
		case m := <-h.relay:
			h.handleRelay(ctx, m.n)
		case reply := <-h.online:
			reply <- h.snapshot()
		}
	}
}

// Connect registers c under its user id. A connection already registered
// for that user is closed and replaced.
func (h *Hub) Connect(ctx context.Context, c Conn) error {
	return send(ctx, h, h.register, c)
}

// Disconnect removes c if it is still the registered connection for its
// user. A connection that was already replaced leaves the registry alone.
func (h *Hub) Disconnect(ctx context.Context, c Conn) error {
	return send(ctx, h, h.unregister, c)
}

// Relay hands n to the hub for delivery to n.TargetUserID.
func (h *Hub) Relay(ctx context.Context, n models.Notification) error {
	return send(ctx, h, h.relay, relayMsg{n: n})
}

// Online returns the sorted ids of connected users.
func (h *Hub) Online(ctx context.Context) ([]string, error) {
	reply := make(chan []string, 1)
	if err := send(ctx, h, h.online, reply); err != nil {
		return nil, err
	}
	select {
	case ids := <-reply:
		return ids, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func send[T any](ctx context.Context, h *Hub, ch chan T, v T) error {
	select {
	case ch <- v:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) handleConnect(ctx context.Context, c Conn) {
	id := c.UserID()
	if old, ok := h.conns[id]; ok && old != c {
		h.logger.Info(ctx, "replacing connection", "user_id", id)
		old.Close()
	}
	h.conns[id] = c
	h.logger.Info(ctx, "user connected", "user_id", id, "online", len(h.conns))
	h.broadcast(ctx)
}

func (h *Hub) handleDisconnect(ctx context.Context, c Conn) {
	id := c.UserID()
	if cur, ok := h.conns[id]; !ok || cur != c {
		return
	}
	delete(h.conns, id)
	h.logger.Info(ctx, "user disconnected", "user_id", id, "online", len(h.conns))
	h.broadcast(ctx)
}

func (h *Hub) handleRelay(ctx context.Context, n models.Notification) {
	c, ok := h.conns[n.TargetUserID]
	if !ok {
		h.logger.Debug(ctx, "target offline, dropping notification", "kind", n.Kind, "target_id", n.TargetUserID)
		return
	}
	if !c.Send(wire.NewNotification(n)) {
		h.logger.Warn(ctx, "outbound buffer full, dropping notification", "kind", n.Kind, "target_id", n.TargetUserID)
	}
}

func (h *Hub) broadcast(ctx context.Context) {
	frame := wire.NewPresence(h.snapshot())
	for id, c := range h.conns {
		if !c.Send(frame) {
			h.logger.Warn(ctx, "outbound buffer full, dropping presence snapshot", "user_id", id)
		}
	}
}

func (h *Hub) snapshot() []string {
	ids := make([]string, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
