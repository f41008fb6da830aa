package presence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophgram/internal/common"
	"github.com/dmitrijs2005/gophgram/internal/logging"
	"github.com/dmitrijs2005/gophgram/internal/wire"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Client is one websocket connection registered with a Hub.
type Client struct {
	userID    string
	ws        *websocket.Conn
	send      chan wire.Envelope
	done      chan struct{}
	closeOnce sync.Once
	lifecycle Lifecycle
	logger    logging.Logger
}

func newClient(ws *websocket.Conn, userID string, logger logging.Logger) *Client {
	return &Client{
		userID: userID,
		ws:     ws,
		send:   make(chan wire.Envelope, sendBuffer),
		done:   make(chan struct{}),
		logger: logger.With("user_id", userID),
	}
}

func (c *Client) UserID() string { return c.userID }

func (c *Client) State() State { return c.lifecycle.State() }

func (c *Client) Send(e wire.Envelope) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- e:
		return true
	default:
		return false
	}
}

// Close stops the client. The write pump sends a close frame and releases
// the socket.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		_ = c.lifecycle.Transition(StateClosed)
		close(c.done)
	})
}

// Serve runs a websocket connection for userID until the peer goes away, the
// hub replaces it, or ctx is cancelled. The connection is registered with
// hub for its lifetime.
func Serve(ctx context.Context, hub *Hub, ws *websocket.Conn, userID string, logger logging.Logger) error {
	c := newClient(ws, userID, logger)
	if userID == "" {
		c.Close()
		_ = ws.Close()
		return fmt.Errorf("%w: missing user id", common.ErrUnauthenticated)
	}
	if err := c.lifecycle.Transition(StateIdentified); err != nil {
		c.Close()
		_ = ws.Close()
		return err
	}
	if err := c.lifecycle.Transition(StateOpen); err != nil {
		c.Close()
		_ = ws.Close()
		return err
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump()
	}()

	if err := hub.Connect(ctx, c); err != nil {
		c.Close()
		<-writerDone
		return err
	}

	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	err := c.readPump()

	// The hub may already be gone during shutdown; cleanup is then moot.
	_ = hub.Disconnect(context.WithoutCancel(ctx), c)
	c.Close()
	<-writerDone

	if err != nil {
		c.logger.Warn(ctx, "connection dropped", "error", err)
	}
	return err
}

// readPump consumes control frames to keep the read deadline fresh. Data
// frames from the peer are ignored.
func (c *Client) readPump() error {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			select {
			case <-c.done:
				return nil
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return nil
			}
			return fmt.Errorf("%w: read: %w", common.ErrTransportFailure, err)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case e := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(e); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					c.logger.Warn(context.Background(), "write failed",
						"error", fmt.Errorf("%w: %w", common.ErrTransportFailure, err))
				}
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.Close()
				return
			}
		}
	}
}
