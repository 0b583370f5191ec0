// Package ws adapts websocket connections to the game hub.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"livechess/internal/game"
)

var (
	// ErrClosed is returned by Send once the connection is closed.
	ErrClosed = errors.New("connection closed")
	// ErrSlowConsumer is returned by Send when the outgoing buffer is full.
	ErrSlowConsumer = errors.New("send buffer full")
)

const (
	sendBuffer   = 64
	pingInterval = 15 * time.Second
	writeTimeout = 10 * time.Second
	readLimit    = 64 << 10
)

// Handler receives what a connection reads.
type Handler interface {
	Submit(ctx context.Context, t game.Transport, raw []byte) error
	Disconnect(ctx context.Context, t game.Transport)
}

// Conn is a websocket client connection. Sends are queued on a buffered
// channel and written by a single writer goroutine, so Send never blocks.
type Conn struct {
	id   string
	ws   *websocket.Conn
	log  *zap.Logger
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

// Accept upgrades the request. Origin checks are the caller's job.
func Accept(w http.ResponseWriter, r *http.Request, log *zap.Logger) (*Conn, error) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		return nil, err
	}
	c.SetReadLimit(readLimit)
	return newConn(c, log), nil
}

func newConn(c *websocket.Conn, log *zap.Logger) *Conn {
	id := uuid.NewString()
	return &Conn{
		id:   id,
		ws:   c,
		log:  log.With(zap.String("conn", id)),
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// ID identifies the connection in logs.
func (c *Conn) ID() string { return c.id }

// Send encodes msg and queues it for the writer.
func (c *Conn) Send(msg game.ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		return ErrSlowConsumer
	}
}

// Close stops the writer, which closes the socket. Safe to call repeatedly.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// Done is closed once the connection is closed.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Serve reads commands until the peer goes away, passing each to h in
// order, then disconnects the connection from h.
func (c *Conn) Serve(ctx context.Context, h Handler) {
	c.log.Debug("client connected")
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writeLoop(ctx)
	}()

	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				c.log.Debug("read failed", zap.Error(err))
			}
			break
		}
		_ = h.Submit(ctx, c, data)
	}

	_ = c.Close()
	h.Disconnect(context.Background(), c)
	wg.Wait()
	c.log.Debug("client disconnected")
}

func (c *Conn) writeLoop(ctx context.Context) {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		_ = c.Close()
		_ = c.ws.Close(websocket.StatusNormalClosure, "bye")
	}()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.ws.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				c.log.Debug("write failed", zap.Error(err))
				return
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.ws.Ping(pctx)
			cancel()
			if err != nil {
				c.log.Debug("ping failed", zap.Error(err))
				return
			}
		}
	}
}
