// Package p2p implements the websocket-based peer transport: accepting
// inbound connections up to a fixed cap, dialing configured seed peers,
// and dispatching decoded messages to a caller-supplied handler.
package p2p

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	uuid "github.com/satori/go.uuid"

	"github.com/corvidchain/corvid/eventlog"
)

// defaultHandshakeTimeout bounds the HELLO exchange when New is called
// without an explicit timeout.
const defaultHandshakeTimeout = 10 * time.Second

// MaxInboundPeers caps the number of connections the server will accept
// before declining further inbound dials outright.
const MaxInboundPeers = 100

// Handler is invoked once per decoded Message, tagged with the ID of the
// peer that sent it. Each peer has its own dispatch goroutine, so handlers
// for different peers may run concurrently and a slow handler backs up
// delivery only from the peer it is handling.
type Handler func(peerID string, msg Message)

// Server owns the set of live peer connections and the listener that
// accepts new inbound ones.
type Server struct {
	id               string
	upgrader         websocket.Upgrader
	dialer           websocket.Dialer
	handler          Handler
	evHandler        eventlog.Handler
	handshakeTimeout time.Duration

	mu       sync.Mutex
	peers    map[string]*Peer
	inbound  int
}

// New constructs a Server with its own random peer identity. handshakeTimeout
// bounds how long adopt will wait for the peer's HELLO before giving up on
// the connection; a value <= 0 falls back to defaultHandshakeTimeout so a
// misconfigured or zero-value timeout can never hang a slot forever.
func New(handler Handler, evHandler eventlog.Handler, handshakeTimeout time.Duration) *Server {
	if evHandler == nil {
		evHandler = eventlog.Noop
	}
	if handshakeTimeout <= 0 {
		handshakeTimeout = defaultHandshakeTimeout
	}
	return &Server{
		id:               uuid.NewV4().String(),
		upgrader:         websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		handler:          handler,
		evHandler:        evHandler,
		handshakeTimeout: handshakeTimeout,
		peers:            make(map[string]*Peer),
	}
}

// ID returns this node's self-assigned peer identifier.
func (s *Server) ID() string {
	return s.id
}

// PeerCount returns the number of currently connected peers.
func (s *Server) PeerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}

// Peers returns the addresses of every currently connected peer.
func (s *Server) Peers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	addrs := make([]string, 0, len(s.peers))
	for _, p := range s.peers {
		addrs = append(addrs, p.Addr)
	}
	return addrs
}

// UpgradeHandler adapts an inbound HTTP request into a websocket
// connection, rejecting it outright once MaxInboundPeers is already
// connected.
func (s *Server) UpgradeHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.inbound >= MaxInboundPeers {
		s.mu.Unlock()
		http.Error(w, "too many peers", http.StatusServiceUnavailable)
		s.evHandler("p2p: inbound connection declined: at capacity")
		return
	}
	s.inbound++
	s.mu.Unlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.mu.Lock()
		s.inbound--
		s.mu.Unlock()
		s.evHandler("p2p: upgrade failed: %s", err)
		return
	}

	s.adopt(conn, r.RemoteAddr, true)
}

// Dial opens an outbound connection to addr, which must be a ws:// or
// wss:// URL. A successful dial exchanges a HELLO first and is dropped if
// the remote turns out to be this same node or a peer already connected.
func (s *Server) Dial(addr string) error {
	conn, _, err := s.dialer.Dial(addr, nil)
	if err != nil {
		return fmt.Errorf("p2p: dial %s: %w", addr, err)
	}
	s.adopt(conn, addr, false)
	return nil
}

// adopt registers conn as a live peer and starts its pumps. It performs
// the HELLO handshake first so a self-dial or a duplicate dial to an
// already-connected peer can be rejected before it occupies a slot. Both
// the write and the read are bounded by handshakeTimeout so a connection
// that completes the websocket upgrade but never speaks HELLO can't hold
// an inbound slot forever.
func (s *Server) adopt(conn *websocket.Conn, addr string, inbound bool) {
	deadline := time.Now().Add(s.handshakeTimeout)
	conn.SetWriteDeadline(deadline)
	conn.SetReadDeadline(deadline)

	raw, err := Encode(TypeHello, helloPayload{PeerID: s.id})
	if err != nil {
		conn.Close()
		s.releaseInbound(inbound)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		conn.Close()
		s.releaseInbound(inbound)
		return
	}

	var hello Message
	if err := conn.ReadJSON(&hello); err != nil || hello.Type != TypeHello {
		conn.Close()
		s.releaseInbound(inbound)
		s.evHandler("p2p: handshake failed with %s", addr)
		return
	}
	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})
	var payload helloPayload
	if err := decodePayload(hello, &payload); err != nil || payload.PeerID == "" {
		conn.Close()
		s.releaseInbound(inbound)
		return
	}

	if err := s.register(payload.PeerID, addr, conn); err != nil {
		conn.Close()
		s.releaseInbound(inbound)
		s.evHandler("p2p: rejected peer %s: %s", payload.PeerID, err)
		return
	}

	peer := s.peers[payload.PeerID]
	go func() {
		peer.run()
		s.unregister(payload.PeerID, inbound)
	}()
	go s.dispatch(peer)
}

// register records conn as the live connection for peerID, rejecting a
// self-dial or a duplicate connection to a peer already registered.
func (s *Server) register(peerID, addr string, conn *websocket.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if peerID == s.id {
		return errors.New("refusing to connect to self")
	}
	if _, exists := s.peers[peerID]; exists {
		return errors.New("already connected to this peer")
	}
	s.peers[peerID] = newPeer(peerID, addr, conn, s.evHandler)
	return nil
}

func (s *Server) unregister(peerID string, inbound bool) {
	s.mu.Lock()
	delete(s.peers, peerID)
	if inbound {
		s.inbound--
	}
	s.mu.Unlock()
	s.evHandler("p2p: peer %s disconnected", peerID)
}

func (s *Server) releaseInbound(inbound bool) {
	if !inbound {
		return
	}
	s.mu.Lock()
	s.inbound--
	s.mu.Unlock()
}

// dispatch feeds every message a peer receives to the server's handler
// until the peer's inbox closes.
func (s *Server) dispatch(p *Peer) {
	for msg := range p.Inbox {
		if s.handler != nil {
			s.handler(p.ID, msg)
		}
	}
}

// Broadcast sends raw to every currently connected peer.
func (s *Server) Broadcast(raw []byte) {
	s.BroadcastExcept(raw, "")
}

// BroadcastExcept sends raw to every currently connected peer other than
// except, so a message relayed on behalf of a peer is never echoed straight
// back to the peer that sent it.
func (s *Server) BroadcastExcept(raw []byte, except string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.peers {
		if id == except {
			continue
		}
		p.Send(raw)
	}
}

// SendTo sends raw to a single peer by ID, if still connected.
func (s *Server) SendTo(peerID string, raw []byte) {
	s.mu.Lock()
	p, ok := s.peers[peerID]
	s.mu.Unlock()
	if ok {
		p.Send(raw)
	}
}

func decodePayload(msg Message, v interface{}) error {
	return json.Unmarshal(msg.Payload, v)
}
