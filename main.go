package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-haunt/api"
	gameapi "github.com/beka-birhanu/vinom-haunt/api/game"
	api_i "github.com/beka-birhanu/vinom-haunt/api/i"
	playerapi "github.com/beka-birhanu/vinom-haunt/api/player"
	"github.com/beka-birhanu/vinom-haunt/api/ticket"
	"github.com/beka-birhanu/vinom-haunt/config"
	mpencoder "github.com/beka-birhanu/vinom-haunt/game/msgpack_encoder"
	"github.com/beka-birhanu/vinom-haunt/infrastruture/leaderboard"
	"github.com/beka-birhanu/vinom-haunt/infrastruture/repo"
	"github.com/beka-birhanu/vinom-haunt/infrastruture/sortedstorage"
	"github.com/beka-birhanu/vinom-haunt/infrastruture/token"
	"github.com/beka-birhanu/vinom-haunt/logger"
	"github.com/beka-birhanu/vinom-haunt/service"
	"github.com/beka-birhanu/vinom-haunt/service/i"
	"github.com/beka-birhanu/vinom-haunt/socket"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	socketPath       = "/v1/ws"
	heartbeatTimeout = 30 * time.Second
)

// Global variables for dependencies
var (
	mongoClient        *mongo.Client
	redisClient        *redis.Client
	playerRepo         i.PlayerRepo
	resultRepo         *repo.MatchResultRepo
	board              i.Leaderboard
	sortedQueue        i.SortedQueue
	matchmaker         *service.Matchmaker
	socketManager      *socket.ServerSocketManager
	gameSessionManager *service.GameSessionManager
	jwtTokenizer       i.Tokenizer
	playerService      i.PlayerService
	gameController     api_i.Controller
	playerController   api_i.Controller
	router             *api.Router
	appLogger          *logger.Logger
)

func newLogger(prefix, color string) *logger.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %s logger: %v", prefix, err))
		os.Exit(1)
	}
	return l
}

func initMongo(ctx context.Context) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initRedis(ctx context.Context) {
	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
}

func initRepos(ctx context.Context) {
	playerRepo = repo.NewPlayerRepo(mongoClient, config.Envs.DBName, "players")
	resultRepo = repo.NewMatchResultRepo(mongoClient, config.Envs.DBName, "match_results")
	if err := resultRepo.EnsureIndexes(ctx); err != nil {
		appLogger.Warning(fmt.Sprintf("Creating match result indexes: %v", err))
	}
	appLogger.Info("Repositories initialized")
}

func initLeaderboard() {
	var err error
	board, err = leaderboard.NewRedisLeaderboard(redisClient, "")
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating leaderboard: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Leaderboard initialized")
}

func initMatchmaker() {
	var err error
	sortedQueue, err = sortedstorage.NewRedisSortedQueue(redisClient, config.Envs.QueueTTL)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating sorted queue: %v", err))
		os.Exit(1)
	}

	matchmaker, err = service.NewMatchmaker(sortedQueue, newLogger("MATCH-MAKER", config.ColorPurple), &service.Options{
		MaxPlayer: int64(config.Envs.MatchSize),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating matchmaker: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Matchmaker initialized")
}

func initSocket() {
	socketManager = socket.NewServerSocketManager(
		socket.WithHeartbeatExpiration(heartbeatTimeout),
		socket.WithLogger(newLogger("SOCKET", config.ColorBlue)),
	)
	appLogger.Info("Socket manager initialized")
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initPlayerService() {
	var err error
	playerService, err = service.NewPlayerService(playerRepo, jwtTokenizer)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating player service: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Player service initialized")
}

func gameOptions() *service.GameOptions {
	opts := service.DefaultGameOptions()
	opts.Width = config.Envs.MapWidth
	opts.Height = config.Envs.MapHeight
	opts.TargetScore = config.Envs.TargetScore
	opts.TickRate = config.Envs.TickRate
	opts.Duration = config.Envs.GameDuration
	opts.Collision.Cooldown = config.Envs.Cooldown
	return &opts
}

func initSessionManager() {
	sessionLogger := newLogger("SESSION-MANAGER", config.ColorCyan)

	var err error
	gameSessionManager, err = service.NewGameSessionManager(&service.Config{
		Socket:      socketManager,
		Tokenizer:   jwtTokenizer,
		PlayerRepo:  playerRepo,
		ResultRepo:  resultRepo,
		Leaderboard: board,
		GameEncoder: &mpencoder.MsgPack{},
		Logger:      sessionLogger,
		GameLogger:  newLogger("GAME", config.ColorYellow),
		SocketAddr:  "/api" + socketPath,
		Options:     gameOptions(),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager: %v", err))
		os.Exit(1)
	}

	matchmaker.SetMatchHandler(gameSessionManager.StartMatch)
	appLogger.Info("Session manager initialized")
}

func initControllers() {
	var err error
	gameController, err = gameapi.NewGameController(gameapi.Config{
		GameSessionManager: gameSessionManager,
		PlayerRepo:         playerRepo,
		Matchmaker:         matchmaker,
		Leaderboard:        board,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating game controller: %v", err))
		os.Exit(1)
	}

	playerController = playerapi.NewPlayerController(playerService, resultRepo)
	appLogger.Info("Controllers initialized")
}

func initRouter(t i.Tokenizer) {
	gin.SetMode(config.Envs.GinMode)
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{playerController, gameController},
		AuthorizationMiddleware: ticket.Authoriz(t),
		SocketPath:              socketPath,
		Socket:                  socketManager,
	})
	appLogger.Info("Router initialized")
}

func main() {
	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	initMongo(setupCtx)
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	initRedis(setupCtx)
	defer redisClient.Close()

	initRepos(setupCtx)
	initLeaderboard()
	initMatchmaker()
	initSocket()
	initJWTTokenizer()
	initPlayerService()
	initSessionManager()
	initControllers()
	initRouter(jwtTokenizer)

	if err := router.Run(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Running server: %v", err))
	}

	// Rooms persist their results on the way out, so stop them before the stores close.
	gameSessionManager.StopAll()
	socketManager.Stop()
	appLogger.Info("Server stopped")
}
