package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/cmu-sei/Gameboard-sub002/internal/service"
	"github.com/cmu-sei/Gameboard-sub002/internal/transport/rest/handler"
	"github.com/cmu-sei/Gameboard-sub002/internal/transport/rest/middleware"
	"github.com/cmu-sei/Gameboard-sub002/internal/transport/ws"
)

// Container holds all dependencies for the router.
type Container struct {
	AuthService      *service.AuthService
	SessionService   *service.SessionService
	SyncStartService *service.SyncStartService
	ScoringService   *service.ScoringService
	ChallengeService *service.ChallengeService
	WSHub            *ws.Hub
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	playerHandler := handler.NewPlayerHandler(c.SyncStartService)
	teamHandler := handler.NewTeamHandler(c.SessionService)
	gameHandler := handler.NewGameHandler(c.SyncStartService, c.ScoringService)
	challengeHandler := handler.NewChallengeHandler(c.ChallengeService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(corsMiddleware)

	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/games/{id}", wsHandler.GameWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// User routes
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/players/{id}/ready", playerHandler.Ready).Methods("PUT", "OPTIONS")
	userRoutes.HandleFunc("/teams/{id}/session", teamHandler.Session).Methods("PUT", "OPTIONS")
	userRoutes.HandleFunc("/games/{id}/ready", gameHandler.Ready).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/games/{id}/scoreboard", gameHandler.Scoreboard).Methods("GET", "OPTIONS")

	// Admin routes
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/games/{id}/rerank", gameHandler.Rerank).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/challenges/{id}/score", challengeHandler.Grade).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/bonuses", challengeHandler.AwardBonus).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
