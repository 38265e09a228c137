package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	dmn "github.com/beka-birhanu/vinom-haunt/domain"
	"github.com/beka-birhanu/vinom-haunt/game"
	"github.com/beka-birhanu/vinom-haunt/game/collision"
	"github.com/beka-birhanu/vinom-haunt/game/grid"
	playservice "github.com/beka-birhanu/vinom-haunt/game/play_service"
	"github.com/beka-birhanu/vinom-haunt/service/i"
	"github.com/google/uuid"
)

const (
	defaultMapWidth     = 20
	defaultMapHeight    = 15
	defaultGameDuration = 5 * time.Minute

	// Record types of the frames broadcast to clients.
	GameStateRecordType  byte = 10
	GameEndedRecordType  byte = 11
	GameEventsRecordType byte = 12

	persistTimeout = 2 * time.Second
)

var (
	ErrNoSession         = errors.New("no session")
	ErrAlreadyInSession  = errors.New("client already has a session")
	ErrNoParticipants    = errors.New("no participants")
	ErrMissingDependency = errors.New("missing dependency")
)

// GameOptions tunes the games started by the manager.
type GameOptions struct {
	Width       int
	Height      int
	TargetScore int
	TickRate    int
	Duration    time.Duration
	Collision   collision.Config
	Spawn       grid.SpawnModel
	// PracticeEnemies replaces Spawn.Enemies in practice rooms.
	PracticeEnemies  int
	EnemyStepEvery   int
	StreakBonusEvery int
	StreakBonus      int
}

// DefaultGameOptions returns the stock room tuning.
func DefaultGameOptions() GameOptions {
	return GameOptions{
		Width:       defaultMapWidth,
		Height:      defaultMapHeight,
		TargetScore: 50,
		TickRate:    20,
		Duration:    defaultGameDuration,
		Collision:   collision.DefaultConfig(),
		Spawn: grid.SpawnModel{
			Coins:        12,
			CoinValue:    1,
			BonusValue:   5,
			BonusProb:    0.1,
			BombCoinProb: 0.1,
			Bombs:        3,
			Enemies:      2,
		},
		PracticeEnemies:  3,
		EnemyStepEvery:   10,
		StreakBonusEvery: 5,
		StreakBonus:      3,
	}
}

type session struct {
	game      *playservice.Game
	mode      playservice.Mode
	clients   []uuid.UUID
	actors    map[uuid.UUID][]string // client → driven actor IDs
	startedAt time.Time
	cancel    context.CancelFunc
}

// GameSessionManager runs the rooms of this server and routes socket traffic to them.
type GameSessionManager struct {
	socket          i.ServerSocketManager
	tokenizer       i.Tokenizer
	playerRepo      i.PlayerRepo
	resultRepo      i.MatchResultRepo
	leaderboard     i.Leaderboard
	gameEncoder     game.Encoder
	logger          i.Logger
	gameLogger      playservice.Logger
	socketAddr      string
	opts            GameOptions
	sessions        map[uuid.UUID]*session
	clientToSession map[uuid.UUID]uuid.UUID
	wg              sync.WaitGroup
	sync.RWMutex
}

// Config holds the dependencies of a GameSessionManager.
type Config struct {
	Socket      i.ServerSocketManager
	Tokenizer   i.Tokenizer
	PlayerRepo  i.PlayerRepo
	ResultRepo  i.MatchResultRepo
	Leaderboard i.Leaderboard
	GameEncoder game.Encoder
	Logger      i.Logger
	GameLogger  playservice.Logger
	SocketAddr  string
	Options     *GameOptions
}

func NewGameSessionManager(c *Config) (*GameSessionManager, error) {
	if c.Socket == nil || c.Tokenizer == nil || c.GameEncoder == nil || c.Logger == nil {
		return nil, ErrMissingDependency
	}

	opts := DefaultGameOptions()
	if c.Options != nil {
		opts = *c.Options
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = defaultMapWidth, defaultMapHeight
	}

	gsm := &GameSessionManager{
		socket:          c.Socket,
		tokenizer:       c.Tokenizer,
		playerRepo:      c.PlayerRepo,
		resultRepo:      c.ResultRepo,
		leaderboard:     c.Leaderboard,
		gameEncoder:     c.GameEncoder,
		logger:          c.Logger,
		gameLogger:      c.GameLogger,
		socketAddr:      c.SocketAddr,
		opts:            opts,
		sessions:        make(map[uuid.UUID]*session),
		clientToSession: make(map[uuid.UUID]uuid.UUID),
	}

	c.Socket.SetClientRequestHandler(gsm.writePlayerRequest)
	c.Socket.SetClientDisconnectHandler(gsm.disconnect)
	c.Socket.SetClientAuthenticator(gsm)
	return gsm, nil
}

// StartMatch opens an online room for a completed match. It is the matchmaker's handler.
func (g *GameSessionManager) StartMatch(playerIDs []uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	participants := make([]dmn.Participant, 0, len(playerIDs))
	for _, id := range playerIDs {
		name := id.String()
		if g.playerRepo != nil {
			if p, err := g.playerRepo.ByID(ctx, id); err == nil {
				name = p.Name
			} else {
				g.logger.Warning(fmt.Sprintf("looking up player %s: %s", id, err))
			}
		}
		participants = append(participants, dmn.Participant{ActorID: id.String(), Name: name, ClientID: id})
	}

	if _, err := g.NewSession(ctx, playservice.ModeOnline, participants); err != nil {
		g.logger.Error(fmt.Sprintf("starting match for %v: %s", playerIDs, err))
	}
}

// NewSession creates a room for the participants and starts its game loop.
func (g *GameSessionManager) NewSession(_ context.Context, mode playservice.Mode, participants []dmn.Participant) (uuid.UUID, error) {
	if len(participants) == 0 {
		return uuid.Nil, ErrNoParticipants
	}

	seats := make([]playservice.Seat, 0, len(participants))
	starts := startPositions(g.opts.Width, g.opts.Height)
	for idx, p := range participants {
		pos := starts[idx%len(starts)]
		seats = append(seats, playservice.Seat{
			Actor: &game.Actor{ID: p.ActorID, Name: p.Name, X: pos[0], Y: pos[1]},
			Owner: p.ClientID.String(),
		})
	}

	gameServer, err := playservice.NewGame(g.gameConfig(mode), seats, g.gameEncoder, g.gameLogger)
	if err != nil {
		g.logger.Error(fmt.Sprintf("creating new game server: %s", err))
		return uuid.Nil, err
	}

	g.Lock()
	for _, p := range participants {
		if _, ok := g.clientToSession[p.ClientID]; ok {
			g.Unlock()
			return uuid.Nil, fmt.Errorf("%w: %s", ErrAlreadyInSession, p.ClientID)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	sessionID := g.saveSession(mode, participants, gameServer, cancel)
	g.Unlock()

	g.wg.Add(2)
	go func() {
		defer g.wg.Done()
		gameServer.Start(ctx, g.opts.Duration)
	}()
	go func() {
		defer g.wg.Done()
		g.listenGameChan(sessionID, gameServer)
	}()

	g.logger.Info(fmt.Sprintf("started new %s game %s for %d actors", mode, sessionID, len(participants)))
	return sessionID, nil
}

func (g *GameSessionManager) gameConfig(mode playservice.Mode) playservice.Config {
	spawn := g.opts.Spawn
	if mode == playservice.ModePractice {
		spawn.Enemies = g.opts.PracticeEnemies
	}
	return playservice.Config{
		Mode:             mode,
		Width:            g.opts.Width,
		Height:           g.opts.Height,
		TargetScore:      g.opts.TargetScore,
		TickRate:         g.opts.TickRate,
		EnemyStepEvery:   g.opts.EnemyStepEvery,
		StreakBonusEvery: g.opts.StreakBonusEvery,
		StreakBonus:      g.opts.StreakBonus,
		Spawn:            spawn,
		Collision:        g.opts.Collision,
		Seed:             time.Now().UnixNano(),
	}
}

// startPositions returns the interior corners, the first two opposite each other.
func startPositions(width, height int) [][2]int {
	return [][2]int{{1, 1}, {width - 2, height - 2}, {1, height - 2}, {width - 2, 1}}
}

// SessionInfo returns the session of a client and where to join it.
func (g *GameSessionManager) SessionInfo(_ context.Context, clientID uuid.UUID) (uuid.UUID, string, error) {
	g.RLock()
	defer g.RUnlock()
	sessionID, ok := g.clientToSession[clientID]
	if !ok {
		return uuid.Nil, "", ErrNoSession
	}
	return sessionID, g.socketAddr, nil
}

// Authenticate resolves a ticket to a client that has a session.
func (g *GameSessionManager) Authenticate(ticket []byte) (uuid.UUID, error) {
	id, err := TicketHolder(g.tokenizer, string(ticket))
	if err != nil {
		g.logger.Error("invalid ticket provided")
		return uuid.Nil, err
	}

	g.RLock()
	defer g.RUnlock()
	if _, ok := g.clientToSession[id]; !ok {
		g.logger.Error(fmt.Sprintf("client %s does not have a game session", id))
		return uuid.Nil, ErrNoSession
	}

	g.logger.Info(fmt.Sprintf("authenticated client: %s", id))
	return id, nil
}

// saveSession registers the session. Callers hold the lock.
func (g *GameSessionManager) saveSession(mode playservice.Mode, participants []dmn.Participant, gs *playservice.Game, cancel context.CancelFunc) uuid.UUID {
	sessionID := uuid.New()
	for {
		if _, ok := g.sessions[sessionID]; !ok {
			break
		}
		sessionID = uuid.New()
	}

	s := &session{
		game:      gs,
		mode:      mode,
		actors:    make(map[uuid.UUID][]string),
		startedAt: time.Now().UTC(),
		cancel:    cancel,
	}
	for _, p := range participants {
		if _, seen := s.actors[p.ClientID]; !seen {
			s.clients = append(s.clients, p.ClientID)
		}
		s.actors[p.ClientID] = append(s.actors[p.ClientID], p.ActorID)
		g.clientToSession[p.ClientID] = sessionID
	}
	g.sessions[sessionID] = s

	return sessionID
}

func (g *GameSessionManager) listenGameChan(id uuid.UUID, gs *playservice.Game) {
	for {
		select {
		case val := <-gs.StateChan:
			g.socket.BroadcastToClients(g.clients(id), GameStateRecordType, val)
		case val := <-gs.EventChan:
			g.socket.BroadcastToClients(g.clients(id), GameEventsRecordType, val)
		case val, ok := <-gs.EndChan:
			if ok {
				g.socket.BroadcastToClients(g.clients(id), GameEndedRecordType, val)
			}
			g.finish(id)
			return
		}
	}
}

func (g *GameSessionManager) clients(id uuid.UUID) []uuid.UUID {
	g.RLock()
	defer g.RUnlock()
	if s, ok := g.sessions[id]; ok {
		return append([]uuid.UUID(nil), s.clients...)
	}
	return nil
}

// finish stores the outcome of an ended session and forgets it.
func (g *GameSessionManager) finish(id uuid.UUID) {
	g.Lock()
	s, ok := g.sessions[id]
	if ok {
		for _, c := range s.clients {
			delete(g.clientToSession, c)
		}
		delete(g.sessions, id)
	}
	g.Unlock()
	if !ok {
		return
	}
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	g.persist(ctx, id, s)
}

func (g *GameSessionManager) persist(ctx context.Context, id uuid.UUID, s *session) {
	snapshot := s.game.Snapshot()
	result := &dmn.MatchResult{
		ID:        id,
		Mode:      string(s.mode),
		StartedAt: s.startedAt,
		EndedAt:   time.Now().UTC(),
	}
	for _, a := range snapshot.Players {
		result.Actors = append(result.Actors, dmn.ActorResult{ActorID: a.ID, Name: a.Name, Score: a.Score})
	}
	winner, won := s.game.Winner()
	if won {
		result.WinnerID = winner.WinnerID
	}

	if g.resultRepo != nil {
		if err := g.resultRepo.Save(ctx, result); err != nil {
			g.logger.Error(fmt.Sprintf("saving result of %s: %s", id, err))
		}
	}

	// Local actors are not registered players and stay off the leaderboard.
	if g.leaderboard == nil || s.mode == playservice.ModeLocal {
		return
	}
	for _, a := range result.Actors {
		isWinner := won && s.mode == playservice.ModeOnline && a.ActorID == winner.WinnerID
		if err := g.leaderboard.RecordResult(ctx, a.ActorID, isWinner, a.Score); err != nil {
			g.logger.Error(fmt.Sprintf("recording %s on the leaderboard: %s", a.ActorID, err))
		}
	}
	g.logger.Info(fmt.Sprintf("game %s finished", id))
}

func (g *GameSessionManager) writePlayerRequest(clientID uuid.UUID, actionType byte, payload []byte) {
	g.RLock()
	defer g.RUnlock()
	sessionID, ok := g.clientToSession[clientID]
	if !ok {
		g.logger.Error("received request for client without session")
		return
	}

	gameServer := g.sessions[sessionID].game
	select {
	case gameServer.ActionChan <- playservice.Request{From: clientID.String(), Type: actionType, Payload: payload}:
	default:
		g.logger.Warning(fmt.Sprintf("dropping request of %s, game %s is busy", clientID, sessionID))
	}
}

// disconnect takes the actors of a gone client out of its game.
func (g *GameSessionManager) disconnect(clientID uuid.UUID) {
	g.Lock()
	sessionID, ok := g.clientToSession[clientID]
	if !ok {
		g.Unlock()
		return
	}
	s := g.sessions[sessionID]
	actors := s.actors[clientID]
	delete(s.actors, clientID)
	delete(g.clientToSession, clientID)
	clients := s.clients[:0]
	for _, c := range s.clients {
		if c != clientID {
			clients = append(clients, c)
		}
	}
	s.clients = clients
	g.Unlock()

	for _, actorID := range actors {
		if err := s.game.RemoveActor(actorID); err != nil && !errors.Is(err, playservice.ErrUnknownPlayer) {
			g.logger.Warning(fmt.Sprintf("removing %s: %s", actorID, err))
		}
	}
	g.logger.Info(fmt.Sprintf("client %s left game %s", clientID, sessionID))
}

// StopAll ends every running game and waits for their results to be stored.
func (g *GameSessionManager) StopAll() {
	g.RLock()
	for _, s := range g.sessions {
		s.game.Stop()
	}
	g.RUnlock()
	g.wg.Wait()
}
