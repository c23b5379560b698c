package p2p

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchain/corvid/model"
)

// recordingHandler collects every message delivered to it, safe for
// concurrent use by the dispatch goroutine.
type recordingHandler struct {
	mu       sync.Mutex
	received []Message
}

func (r *recordingHandler) handle(peerID string, msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.received = append(r.received, msg)
}

func (r *recordingHandler) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.received)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestDialEstablishesTwoWayConnection(t *testing.T) {
	serverHandler := &recordingHandler{}
	clientHandler := &recordingHandler{}

	server := New(serverHandler.handle, nil, 0)
	client := New(clientHandler.handle, nil, 0)

	ts := httptest.NewServer(http.HandlerFunc(server.UpgradeHandler))
	defer ts.Close()

	wsAddr := "ws" + strings.TrimPrefix(ts.URL, "http")
	require.NoError(t, client.Dial(wsAddr))

	waitFor(t, func() bool { return server.PeerCount() == 1 })
	waitFor(t, func() bool { return client.PeerCount() == 1 })

	raw, err := EncodeLatestBlock(model.Block{Time: 1, Hash: "aa"})
	require.NoError(t, err)
	client.Broadcast(raw)

	waitFor(t, func() bool { return serverHandler.count() == 1 })
	assert.Equal(t, TypeLatestBlock, serverHandler.received[0].Type)
}

func TestDialRejectsDuplicateConnectionFromSamePeer(t *testing.T) {
	handler := &recordingHandler{}
	server := New(handler.handle, nil, 0)

	ts := httptest.NewServer(http.HandlerFunc(server.UpgradeHandler))
	defer ts.Close()

	wsAddr := "ws" + strings.TrimPrefix(ts.URL, "http")

	client := New(handler.handle, nil, 0)
	require.NoError(t, client.Dial(wsAddr))
	waitFor(t, func() bool { return server.PeerCount() == 1 })

	// client's peer ID is fixed for its lifetime, so a second dial from the
	// same client reuses an ID the server already has registered and must
	// be dropped rather than occupying a second slot.
	_ = client.Dial(wsAddr)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, server.PeerCount())
}
