package socket

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ticketAuthenticator map[string]uuid.UUID

func (a ticketAuthenticator) Authenticate(ticket []byte) (uuid.UUID, error) {
	id, ok := a[string(ticket)]
	if !ok {
		return uuid.Nil, errors.New("unknown ticket")
	}
	return id, nil
}

type request struct {
	client     uuid.UUID
	recordType byte
	body       []byte
}

type fixture struct {
	manager      *ServerSocketManager
	server       *httptest.Server
	requests     chan request
	disconnected chan uuid.UUID
}

func newFixture(t *testing.T, tickets ticketAuthenticator) *fixture {
	t.Helper()
	f := &fixture{
		manager:      NewServerSocketManager(WithHeartbeatExpiration(time.Second)),
		requests:     make(chan request, 8),
		disconnected: make(chan uuid.UUID, 8),
	}
	f.manager.SetClientAuthenticator(tickets)
	f.manager.SetClientRequestHandler(func(id uuid.UUID, recordType byte, body []byte) {
		f.requests <- request{client: id, recordType: recordType, body: body}
	})
	f.manager.SetClientDisconnectHandler(func(id uuid.UUID) { f.disconnected <- id })

	f.server = httptest.NewServer(f.manager)
	t.Cleanup(func() {
		f.manager.Stop()
		f.server.Close()
	})
	return f
}

func (f *fixture) dial(t *testing.T, ticket string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "?" + TicketQueryParam + "=" + ticket
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitConnected(t *testing.T, m *ServerSocketManager, id uuid.UUID) {
	t.Helper()
	require.Eventually(t, func() bool { return m.Connected(id) }, time.Second, 5*time.Millisecond)
}

func TestRejectsUnknownTicket(t *testing.T) {
	f := newFixture(t, ticketAuthenticator{})

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "?ticket=nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoutesClientRecords(t *testing.T) {
	id := uuid.New()
	f := newFixture(t, ticketAuthenticator{"t1": id})
	conn := f.dial(t, "t1")

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{4, 'h', 'i'}))
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{}))
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{1}))

	select {
	case r := <-f.requests:
		assert.Equal(t, request{client: id, recordType: 4, body: []byte("hi")}, r)
	case <-time.After(time.Second):
		t.Fatal("no request routed")
	}

	select {
	case r := <-f.requests:
		assert.Equal(t, byte(1), r.recordType, "empty records are dropped")
		assert.Empty(t, r.body)
	case <-time.After(time.Second):
		t.Fatal("no request routed")
	}
}

func TestAnswersPing(t *testing.T) {
	f := newFixture(t, ticketAuthenticator{"t1": uuid.New()})
	conn := f.dial(t, "t1")

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{PingRecordType, 42}))
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, []byte{PongRecordType, 42}, msg)
}

func TestBroadcastToClients(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	f := newFixture(t, ticketAuthenticator{"a": a, "b": b, "c": c})
	connA := f.dial(t, "a")
	connB := f.dial(t, "b")
	connC := f.dial(t, "c")
	for _, id := range []uuid.UUID{a, b, c} {
		waitConnected(t, f.manager, id)
	}

	f.manager.BroadcastToClients([]uuid.UUID{a, b, uuid.New()}, 10, []byte("state"))

	for _, conn := range []*websocket.Conn{connA, connB} {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, append([]byte{10}, "state"...), msg)
	}

	_ = connC.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	_, _, err := connC.ReadMessage()
	assert.Error(t, err, "unlisted clients receive nothing")
}

func TestDisconnectHandler(t *testing.T) {
	id := uuid.New()
	f := newFixture(t, ticketAuthenticator{"t1": id})
	conn := f.dial(t, "t1")
	waitConnected(t, f.manager, id)

	require.NoError(t, conn.Close())
	select {
	case got := <-f.disconnected:
		assert.Equal(t, id, got)
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect not reported")
	}
	assert.False(t, f.manager.Connected(id))
}

func TestReconnectReplacesConnection(t *testing.T) {
	id := uuid.New()
	f := newFixture(t, ticketAuthenticator{"t1": id})
	old := f.dial(t, "t1")
	waitConnected(t, f.manager, id)
	f.dial(t, "t1")

	_ = old.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := old.ReadMessage()
	assert.Error(t, err, "the older connection is closed")

	select {
	case <-f.disconnected:
		t.Fatal("replacing a connection is not a disconnect")
	case <-time.After(100 * time.Millisecond):
	}
	assert.True(t, f.manager.Connected(id))
}

func TestParseRecord(t *testing.T) {
	_, _, err := parseRecord(nil)
	assert.ErrorIs(t, err, ErrMinimumPayloadSizeLimit)

	recordType, body, err := parseRecord([]byte{7, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, byte(7), recordType)
	assert.Equal(t, []byte{1, 2}, body)
}
