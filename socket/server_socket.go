/*
Package socket carries game records over websockets.

Every binary frame is a record: one type byte followed by the body. A client joins by opening
the socket with its ticket in the "ticket" query parameter; the configured authenticator turns the
ticket into the client ID that every later record is attributed to.
*/
package socket

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-haunt/service/i"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ClientRequestHandler is called for every record received from an authenticated client.
type ClientRequestHandler func(uuid.UUID, byte, []byte)

// ClientDisconnectHandler is called once the connection of a client is gone.
type ClientDisconnectHandler func(uuid.UUID)

type ServerOption func(*ServerSocketManager)

var _ i.ServerSocketManager = &ServerSocketManager{}

var (
	ErrMinimumPayloadSizeLimit = errors.New("minimum payload size limit")
	ErrClientNotFound          = errors.New("client not found")
	ErrSendBufferFull          = errors.New("client send buffer is full")
)

const (
	PingRecordType byte = 1 << 6
	PongRecordType byte = 1 << 7

	TicketQueryParam = "ticket"

	defaultReadBufferSize      = 2048
	defaultSendBufferSize      = 64
	defaultHeartbeatExpiration = 30 * time.Second
	writeWait                  = 5 * time.Second
)

// Client is an authenticated websocket connection.
type Client struct {
	ID uuid.UUID // ID provided by the authenticator.

	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// ServerSocketManager accepts websocket clients and routes their records.
type ServerSocketManager struct {
	upgrader            websocket.Upgrader
	readBufferSize      int                     // Maximum size of an incoming record.
	sendBufferSize      int                     // Records queued per client before new ones are dropped.
	heartbeatExpiration time.Duration           // Silence after which a client is disconnected.
	authenticator       i.PlayerAuthenticator   // Turns tickets into client IDs.
	onClientRequest     ClientRequestHandler    // Called for every record of an authenticated client.
	onClientDisconnect  ClientDisconnectHandler // Called when a client is gone.
	clients             map[uuid.UUID]*Client   // Clients indexed by their identifier.
	logger              i.Logger
	wg                  sync.WaitGroup
	sync.RWMutex
}

// WithReadBufferSize sets the maximum size of an incoming record.
func WithReadBufferSize(size int) ServerOption {
	return func(s *ServerSocketManager) {
		s.readBufferSize = size
	}
}

// WithHeartbeatExpiration sets how long a client may stay silent.
func WithHeartbeatExpiration(d time.Duration) ServerOption {
	return func(s *ServerSocketManager) {
		s.heartbeatExpiration = d
	}
}

// WithLogger sets the logger.
func WithLogger(l i.Logger) ServerOption {
	return func(s *ServerSocketManager) {
		s.logger = l
	}
}

// NewServerSocketManager returns a socket manager ready to be mounted as an http.Handler.
func NewServerSocketManager(options ...ServerOption) *ServerSocketManager {
	s := &ServerSocketManager{
		readBufferSize:      defaultReadBufferSize,
		sendBufferSize:      defaultSendBufferSize,
		heartbeatExpiration: defaultHeartbeatExpiration,
		clients:             make(map[uuid.UUID]*Client),
		logger:              nopLogger{},
	}
	for _, opt := range options {
		opt(s)
	}
	if s.heartbeatExpiration <= 0 {
		s.heartbeatExpiration = defaultHeartbeatExpiration
	}
	if s.readBufferSize <= 0 {
		s.readBufferSize = defaultReadBufferSize
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  s.readBufferSize,
		WriteBufferSize: s.readBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	return s
}

// SetClientRequestHandler implements i.ServerSocketManager.
func (s *ServerSocketManager) SetClientRequestHandler(f func(uuid.UUID, byte, []byte)) {
	s.Lock()
	defer s.Unlock()
	s.onClientRequest = f
}

// SetClientDisconnectHandler implements i.ServerSocketManager.
func (s *ServerSocketManager) SetClientDisconnectHandler(f func(uuid.UUID)) {
	s.Lock()
	defer s.Unlock()
	s.onClientDisconnect = f
}

// SetClientAuthenticator implements i.ServerSocketManager.
func (s *ServerSocketManager) SetClientAuthenticator(a i.PlayerAuthenticator) {
	s.Lock()
	defer s.Unlock()
	s.authenticator = a
}

// ServeHTTP authenticates the ticket, upgrades the connection and serves the client until it leaves.
func (s *ServerSocketManager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.RLock()
	authenticator := s.authenticator
	s.RUnlock()
	if authenticator == nil {
		http.Error(w, "socket is not ready", http.StatusServiceUnavailable)
		return
	}

	id, err := authenticator.Authenticate([]byte(r.URL.Query().Get(TicketQueryParam)))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error(fmt.Sprintf("upgrade failed for %s: %s", id, err))
		return
	}

	cl := &Client{
		ID:   id,
		conn: conn,
		send: make(chan []byte, s.sendBufferSize),
		done: make(chan struct{}),
	}
	s.register(cl)

	s.wg.Add(2)
	go s.writeLoop(cl)
	go s.readLoop(cl)
}

// register stores the client, closing an older connection of the same ID.
func (s *ServerSocketManager) register(cl *Client) {
	s.Lock()
	old, exists := s.clients[cl.ID]
	s.clients[cl.ID] = cl
	s.Unlock()

	if exists {
		old.close()
	}
	s.logger.Info(fmt.Sprintf("client %s connected", cl.ID))
}

// unregister forgets the client unless a newer connection replaced it.
func (s *ServerSocketManager) unregister(cl *Client) bool {
	s.Lock()
	defer s.Unlock()
	if current, ok := s.clients[cl.ID]; ok && current == cl {
		delete(s.clients, cl.ID)
		return true
	}
	return false
}

func (s *ServerSocketManager) readLoop(cl *Client) {
	defer s.wg.Done()
	defer func() {
		cl.close()
		if s.unregister(cl) {
			s.logger.Info(fmt.Sprintf("client %s disconnected", cl.ID))
			s.RLock()
			onDisconnect := s.onClientDisconnect
			s.RUnlock()
			if onDisconnect != nil {
				onDisconnect(cl.ID)
			}
		}
	}()

	cl.conn.SetReadLimit(int64(s.readBufferSize))
	_ = cl.conn.SetReadDeadline(time.Now().Add(s.heartbeatExpiration))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(s.heartbeatExpiration))
	})

	for {
		messageType, payload, err := cl.conn.ReadMessage()
		if err != nil {
			return
		}
		_ = cl.conn.SetReadDeadline(time.Now().Add(s.heartbeatExpiration))
		if messageType != websocket.BinaryMessage {
			continue
		}
		s.handleRecord(cl, payload)
	}
}

func (s *ServerSocketManager) handleRecord(cl *Client, payload []byte) {
	recordType, body, err := parseRecord(payload)
	if err != nil {
		s.logger.Warning(fmt.Sprintf("error while parsing record of %s: %s", cl.ID, err))
		return
	}

	if recordType == PingRecordType {
		if err := s.sendToClient(cl, PongRecordType, body); err != nil {
			s.logger.Warning(fmt.Sprintf("error while sending pong to %s: %s", cl.ID, err))
		}
		return
	}

	s.RLock()
	onRequest := s.onClientRequest
	s.RUnlock()
	if onRequest != nil {
		onRequest(cl.ID, recordType, body)
	}
}

func (s *ServerSocketManager) writeLoop(cl *Client) {
	defer s.wg.Done()
	ping := time.NewTicker(s.heartbeatExpiration / 2)
	defer ping.Stop()

	for {
		select {
		case <-cl.done:
			return
		case msg := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				cl.close()
				return
			}
		case <-ping.C:
			if err := cl.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				cl.close()
				return
			}
		}
	}
}

// BroadcastToClients sends a record to every listed client that is connected.
func (s *ServerSocketManager) BroadcastToClients(ids []uuid.UUID, recordType byte, body []byte) {
	s.RLock()
	defer s.RUnlock()
	for _, id := range ids {
		cl, ok := s.clients[id]
		if !ok {
			continue
		}
		if err := s.sendToClient(cl, recordType, body); err != nil {
			s.logger.Warning(fmt.Sprintf("error while sending record to %s: %s", id, err))
		}
	}
}

// sendToClient queues a record without blocking.
func (s *ServerSocketManager) sendToClient(cl *Client, recordType byte, body []byte) error {
	record := make([]byte, 0, len(body)+1)
	record = append(record, recordType)
	record = append(record, body...)

	select {
	case <-cl.done:
		return ErrClientNotFound
	case cl.send <- record:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Stop closes every connection and waits for the client goroutines to exit.
func (s *ServerSocketManager) Stop() {
	s.logger.Info("socket stopping gracefully...")
	defer s.logger.Info("socket stopped")

	s.RLock()
	for _, cl := range s.clients {
		cl.close()
	}
	s.RUnlock()
	s.wg.Wait()
}

// Connected reports whether a client currently has an open connection.
func (s *ServerSocketManager) Connected(id uuid.UUID) bool {
	s.RLock()
	defer s.RUnlock()
	_, ok := s.clients[id]
	return ok
}

func parseRecord(payload []byte) (byte, []byte, error) {
	if len(payload) < 1 {
		return 0, nil, ErrMinimumPayloadSizeLimit
	}
	return payload[0], payload[1:], nil
}

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}
