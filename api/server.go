package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"finsight/cache"
	"finsight/database"
	"finsight/engine"
	"finsight/realtime"
)

// Server handles HTTP API requests
type Server struct {
	repo     *database.FinanceRepository
	eng      *engine.Engine
	broker   *realtime.Broker
	wsHub    *realtime.WSHub
	cache    *cache.RedisClient
	cacheTTL time.Duration
}

// NewServer creates a new API server instance. The cache client may be nil;
// assessment reads then always recompute.
func NewServer(repo *database.FinanceRepository, eng *engine.Engine, broker *realtime.Broker, wsHub *realtime.WSHub, cacheClient *cache.RedisClient, cacheTTL time.Duration) *Server {
	return &Server{
		repo:     repo,
		eng:      eng,
		broker:   broker,
		wsHub:    wsHub,
		cache:    cacheClient,
		cacheTTL: cacheTTL,
	}
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port int) error {
	mux := http.NewServeMux()

	// Goal assessment routes
	mux.HandleFunc("POST /api/goals", s.handleCreateGoal)
	mux.HandleFunc("POST /api/goals/{id}/assess", s.handleAssessGoal)
	mux.HandleFunc("GET /api/goals/{id}/assessment", s.handleGetAssessment)
	mux.HandleFunc("POST /api/goals/{id}/progress", s.handleUpdateProgress)
	mux.HandleFunc("GET /api/goals/{id}/runs", s.handleGetRuns)

	// User routes
	mux.HandleFunc("GET /api/users/{id}/assessments", s.handleBulkAssess)

	// Event streams (SSE and websocket share the broker)
	mux.Handle("GET /api/events", s.broker)
	mux.Handle("GET /api/events/ws", s.wsHub)

	mux.HandleFunc("GET /health", s.handleHealth)

	// Add middleware
	handler := s.corsMiddleware(s.loggingMiddleware(mux))

	serverAddr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Printf("🚀 API Server starting on %s", serverAddr)
	return http.ListenAndServe(serverAddr, handler)
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}
