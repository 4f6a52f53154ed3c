package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cmu-sei/Gameboard-sub002/internal/cache"
	"github.com/cmu-sei/Gameboard-sub002/internal/config"
	"github.com/cmu-sei/Gameboard-sub002/internal/events"
	"github.com/cmu-sei/Gameboard-sub002/internal/lock"
	"github.com/cmu-sei/Gameboard-sub002/internal/repository"
	"github.com/cmu-sei/Gameboard-sub002/internal/service"
	"github.com/cmu-sei/Gameboard-sub002/internal/transport/rest"
	"github.com/cmu-sei/Gameboard-sub002/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	redisAddr := cfg.RedisAddr
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Repositories
	playerRepo := repository.NewPlayerRepo(db)
	gameRepo := repository.NewGameRepo(db)
	challengeRepo := repository.NewChallengeRepo(db)
	bonusRepo := repository.NewManualBonusRepo(db)
	scoreRepo := repository.NewTeamScoreRepo(db)

	// Caches
	scoreboard := cache.NewScoreboardCache(rdb)

	// Process-lifetime coordination primitives
	locks := lock.NewRegistry()
	bus := events.NewBus()

	// Services
	authSvc := service.NewAuthService(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret)
	engine := service.NewHTTPGameEngine(cfg.GameEngineURL, cfg.GameEngineAPIKey)
	sessionSvc := service.NewSessionService(playerRepo, gameRepo, challengeRepo, locks, engine, bus, cfg.PracticeMaxSessionMinutes)
	syncStartSvc := service.NewSyncStartService(playerRepo, gameRepo, sessionSvc, locks, bus)
	scoringSvc := service.NewScoringService(playerRepo, challengeRepo, bonusRepo, scoreRepo, scoreboard)
	challengeSvc := service.NewChallengeService(challengeRepo, bonusRepo, locks, bus)

	// Score mutations drive the denormalization engine through the bus
	bus.Subscribe(events.ScoreChanged, scoringSvc.HandleScoreChanged)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)
	syncStartSvc.SetBroadcaster(wsHub)
	scoringSvc.SetBroadcaster(wsHub)

	container := &rest.Container{
		AuthService:      authSvc,
		SessionService:   sessionSvc,
		SyncStartService: syncStartSvc,
		ScoringService:   scoringSvc,
		ChallengeService: challengeSvc,
		WSHub:            wsHub,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  PUT  /v1/players/{id}/ready")
		log.Println("  PUT  /v1/teams/{id}/session")
		log.Println("  GET  /v1/games/{id}/ready")
		log.Println("  GET  /v1/games/{id}/scoreboard")
		log.Println("  POST /v1/games/{id}/rerank")
		log.Println("  PUT  /v1/challenges/{id}/score")
		log.Println("  POST /v1/bonuses")
		log.Println("  WS   /v1/ws/games/{id}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
