package p2p

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/corvidchain/corvid/eventlog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBufferSize = 32
)

// Peer wraps one persistent, bidirectional websocket connection to another
// node. It owns the connection's write side; reads are pumped out through
// Inbox for the Server to dispatch.
type Peer struct {
	ID      string
	Addr    string
	conn    *websocket.Conn
	send    chan []byte
	Inbox   chan Message
	closed  chan struct{}
	once    sync.Once
	evHandler eventlog.Handler
}

// newPeer wraps an already-established connection.
func newPeer(id, addr string, conn *websocket.Conn, evHandler eventlog.Handler) *Peer {
	if evHandler == nil {
		evHandler = eventlog.Noop
	}
	return &Peer{
		ID:        id,
		Addr:      addr,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		Inbox:     make(chan Message, sendBufferSize),
		closed:    make(chan struct{}),
		evHandler: evHandler,
	}
}

// Send queues raw for delivery. If the peer's outbound buffer is full the
// message is dropped rather than blocking the caller.
func (p *Peer) Send(raw []byte) {
	select {
	case p.send <- raw:
	default:
		p.evHandler("p2p: peer %s: send buffer full, dropping message", p.ID)
	}
}

// Close terminates the connection and both pumps. Safe to call more than
// once.
func (p *Peer) Close() {
	p.once.Do(func() {
		close(p.closed)
		p.conn.Close()
	})
}

// run starts the read and write pumps and blocks until both exit. Callers
// run it in its own goroutine.
func (p *Peer) run() {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); p.readPump() }()
	go func() { defer wg.Done(); p.writePump() }()
	wg.Wait()
	close(p.Inbox)
}

// readPump decodes every incoming frame into a Message and forwards it to
// Inbox until the connection errors or Close is called. Idle connections
// are detected through the standard ping/pong deadline extension: failing
// to see a pong within pongWait tears the connection down. A frame that
// arrives as valid websocket traffic but invalid JSON is logged and
// skipped rather than treated as a connection failure; only an actual
// socket-level read error closes the peer.
func (p *Peer) readPump() {
	defer p.Close()

	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := p.conn.ReadJSON(&msg); err != nil {
			if isDecodeError(err) {
				p.evHandler("p2p: peer %s: malformed message: %s", p.ID, err)
				continue
			}
			p.evHandler("p2p: peer %s: read error: %s", p.ID, err)
			return
		}
		select {
		case p.Inbox <- msg:
		case <-p.closed:
			return
		}
	}
}

// isDecodeError reports whether err came from json unmarshaling rather
// than from the underlying connection, so readPump can drop one malformed
// frame without tearing down the whole peer.
func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// writePump drains send and forwards frames to the connection, and
// periodically pings to keep NAT mappings alive and detect a dead peer
// before pongWait expires.
func (p *Peer) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		p.Close()
	}()

	for {
		select {
		case raw, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				p.evHandler("p2p: peer %s: write error: %s", p.ID, err)
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-p.closed:
			return
		}
	}
}
