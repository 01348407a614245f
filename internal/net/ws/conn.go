package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	// ErrClosed is returned by Send once the connection is shutting down.
	ErrClosed = errors.New("connection closed")
	// ErrBacklog is returned by Send when the outbound queue is full. The
	// connection is closed at that point since the dropped frame cannot be
	// replayed.
	ErrBacklog = errors.New("outbound backlog full")
)

const (
	defaultSendBuffer = 64
	defaultWriteWait  = 10 * time.Second
	defaultPongWait   = 60 * time.Second
	defaultReadLimit  = 64 * 1024
)

// Conn queues outbound frames for one websocket. Send never blocks so the
// session registry can deliver while holding its lock; a dedicated write
// pump owns every write to the socket.
type Conn struct {
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	writeWait time.Duration
}

func newConn(ws *websocket.Conn, buffer int, writeWait time.Duration) *Conn {
	return &Conn{
		ws:        ws,
		send:      make(chan []byte, buffer),
		done:      make(chan struct{}),
		writeWait: writeWait,
	}
}

// Send queues b for the write pump. A full queue closes the connection.
func (c *Conn) Send(b []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- b:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		c.Close()
		return ErrBacklog
	}
}

// Close stops the write pump. Queued frames are flushed before the socket
// is closed. Safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

func (c *Conn) writePump(pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			c.flush()
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Conn) flush() {
	for {
		select {
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Conn) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.ws.WriteMessage(messageType, data)
}
