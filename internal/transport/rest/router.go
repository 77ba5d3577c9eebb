package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"turtlesoup/internal/service"
	"turtlesoup/internal/transport/rest/handler"
	"turtlesoup/internal/transport/rest/middleware"
	"turtlesoup/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	GameService *service.GameService
	WSHub       *ws.Hub
	PublicURL   string
	CORSOrigins string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	gameHandler := handler.NewGameHandler(c.GameService)
	shareHandler := handler.NewShareHandler(c.PublicURL)

	r.Use(middleware.RequestLogger)
	r.Use(corsMiddleware(c.CORSOrigins))

	// Health check
	r.HandleFunc("/health", gameHandler.Health).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/game/start", gameHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/game/ask", gameHandler.Ask).Methods("POST", "OPTIONS")
	v1.HandleFunc("/game/status", gameHandler.Status).Methods("GET", "OPTIONS")
	v1.HandleFunc("/rooms/{roomId}/qr", shareHandler.QR).Methods("GET", "OPTIONS")

	if c.WSHub != nil {
		wsHandler := ws.NewHandler(c.WSHub, c.GameService, c.CORSOrigins)
		v1.HandleFunc("/ws/rooms/{roomId}", wsHandler.Room).Methods("GET")
	}

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
