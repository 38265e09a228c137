package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/vinom-haunt/domain"
	"github.com/beka-birhanu/vinom-haunt/logger"
	"github.com/beka-birhanu/vinom-haunt/service/i"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var errNotFound = errors.New("not found")

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New("TEST", "", io.Discard)
	require.NoError(t, err)
	return l
}

type frame struct {
	clients    []uuid.UUID
	recordType byte
	payload    []byte
}

type fakeSocket struct {
	frames        chan frame
	requests      func(uuid.UUID, byte, []byte)
	disconnect    func(uuid.UUID)
	authenticator i.PlayerAuthenticator
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{frames: make(chan frame, 512)}
}

func (s *fakeSocket) ServeHTTP(http.ResponseWriter, *http.Request)            {}
func (s *fakeSocket) SetClientRequestHandler(f func(uuid.UUID, byte, []byte)) { s.requests = f }
func (s *fakeSocket) SetClientDisconnectHandler(f func(uuid.UUID))            { s.disconnect = f }
func (s *fakeSocket) SetClientAuthenticator(a i.PlayerAuthenticator)          { s.authenticator = a }
func (s *fakeSocket) Stop()                                                   {}

func (s *fakeSocket) BroadcastToClients(clients []uuid.UUID, recordType byte, payload []byte) {
	select {
	case s.frames <- frame{clients: clients, recordType: recordType, payload: payload}:
	default:
	}
}

// waitFrame returns the next frame of the given record type.
func (s *fakeSocket) waitFrame(t *testing.T, recordType byte) frame {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case f := <-s.frames:
			if f.recordType == recordType {
				return f
			}
		case <-timeout:
			t.Fatalf("no frame of type %d", recordType)
		}
	}
}

type fakeQueue struct {
	members map[string]map[string]float64
	sync.Mutex
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{members: make(map[string]map[string]float64)}
}

func (q *fakeQueue) Enqueue(_ context.Context, key string, score float64, member string) error {
	q.Lock()
	defer q.Unlock()
	if q.members[key] == nil {
		q.members[key] = make(map[string]float64)
	}
	q.members[key][member] = score
	return nil
}

func (q *fakeQueue) DequeTops(_ context.Context, key string, amount int64) ([]string, error) {
	q.Lock()
	defer q.Unlock()
	if int64(len(q.members[key])) < amount {
		return nil, nil
	}
	members := make([]string, 0, len(q.members[key]))
	for m := range q.members[key] {
		members = append(members, m)
	}
	sort.Slice(members, func(a, b int) bool { return q.members[key][members[a]] < q.members[key][members[b]] })
	members = members[:amount]
	for _, m := range members {
		delete(q.members[key], m)
	}
	return members, nil
}

func (q *fakeQueue) Count(_ context.Context, key string) int64 {
	q.Lock()
	defer q.Unlock()
	return int64(len(q.members[key]))
}

type fakePlayerRepo struct {
	players map[uuid.UUID]*dmn.Player
	sync.Mutex
}

func newFakePlayerRepo(players ...*dmn.Player) *fakePlayerRepo {
	r := &fakePlayerRepo{players: make(map[uuid.UUID]*dmn.Player)}
	for _, p := range players {
		r.players[p.ID] = p
	}
	return r
}

func (r *fakePlayerRepo) Save(_ context.Context, p *dmn.Player) error {
	r.Lock()
	defer r.Unlock()
	r.players[p.ID] = p
	return nil
}

func (r *fakePlayerRepo) ByID(_ context.Context, id uuid.UUID) (*dmn.Player, error) {
	r.Lock()
	defer r.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}

type fakeResultRepo struct {
	saved chan *dmn.MatchResult
}

func (r *fakeResultRepo) Save(_ context.Context, res *dmn.MatchResult) error {
	r.saved <- res
	return nil
}

func (r *fakeResultRepo) ByActor(context.Context, string, int64) ([]dmn.MatchResult, error) {
	return nil, nil
}

type leaderboardCall struct {
	playerID string
	won      bool
	score    int
}

type fakeLeaderboard struct {
	calls []leaderboardCall
	sync.Mutex
}

func (l *fakeLeaderboard) RecordResult(_ context.Context, playerID string, won bool, score int) error {
	l.Lock()
	defer l.Unlock()
	l.calls = append(l.calls, leaderboardCall{playerID: playerID, won: won, score: score})
	return nil
}

func (l *fakeLeaderboard) Top(context.Context, int64) ([]dmn.LeaderboardEntry, error) {
	return nil, nil
}

func (l *fakeLeaderboard) recorded() []leaderboardCall {
	l.Lock()
	defer l.Unlock()
	return append([]leaderboardCall(nil), l.calls...)
}
