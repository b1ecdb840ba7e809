package pos

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/zombor/swiftcart/internal/cart"
	"github.com/zombor/swiftcart/internal/detect"
	"github.com/zombor/swiftcart/internal/suggest"
	"github.com/zombor/swiftcart/internal/voice"
)

// Server handles HTTP requests for the point-of-sale demo
type Server struct {
	store     *cart.Store
	simulator *detect.Simulator
	workflow  *detect.Workflow
	refresher *suggest.Refresher
	assistant *voice.Assistant
	basicAuth BasicAuth
	mux       *http.ServeMux
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// Deps are the collaborators behind the HTTP surface
type Deps struct {
	Store     *cart.Store
	Simulator *detect.Simulator
	Workflow  *detect.Workflow
	Refresher *suggest.Refresher
	Assistant *voice.Assistant
}

// NewServer creates a new Server with default mux
func NewServer(deps Deps, basicAuth BasicAuth) *Server {
	return NewServerWithMux(deps, basicAuth, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(deps Deps, basicAuth BasicAuth, mux *http.ServeMux) *Server {
	s := &Server{
		store:     deps.Store,
		simulator: deps.Simulator,
		workflow:  deps.Workflow,
		refresher: deps.Refresher,
		assistant: deps.Assistant,
		basicAuth: basicAuth,
		mux:       mux,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	return credentials[0] == s.basicAuth.Username && credentials[1] == s.basicAuth.Password
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			setCORSHeaders(w)
			w.Header().Set("WWW-Authenticate", `Basic realm="SwiftCart"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// registerRoutes registers all API routes on the server's mux
// Routes must be registered from most specific to least specific to avoid conflicts
func (s *Server) registerRoutes() {
	// Catalog and cart
	s.mux.HandleFunc("GET /api/catalog", s.requireAuth(s.handleCatalog))
	s.mux.HandleFunc("GET /api/cart", s.requireAuth(s.handleGetCart))
	s.mux.HandleFunc("POST /api/cart/items", s.requireAuth(s.handleAddCartItem))
	s.mux.HandleFunc("DELETE /api/cart", s.requireAuth(s.handleClearCart))

	// Detection simulator
	s.mux.HandleFunc("POST /api/detection/start", s.requireAuth(s.handleStartDetection))
	s.mux.HandleFunc("POST /api/detection/stop", s.requireAuth(s.handleStopDetection))
	s.mux.HandleFunc("GET /api/detection", s.requireAuth(s.handleGetDetection))

	// Image identification and confirmation
	s.mux.HandleFunc("POST /api/identify/confirm", s.requireAuth(s.handleConfirm))
	s.mux.HandleFunc("POST /api/identify/discard", s.requireAuth(s.handleDiscard))
	s.mux.HandleFunc("POST /api/identify", s.requireAuth(s.handleIdentify))
	s.mux.HandleFunc("GET /api/identify", s.requireAuth(s.handleIdentifyState))

	// Voice and suggestions
	s.mux.HandleFunc("POST /api/voice", s.requireAuth(s.handleVoice))
	s.mux.HandleFunc("GET /api/suggestion", s.requireAuth(s.handleSuggestion))

	// Static HTML interface (register last as it's the catch-all)
	s.mux.HandleFunc("GET /index.html", s.requireAuth(s.handleIndex))
	s.mux.HandleFunc("GET /", s.requireAuth(s.handleIndex))
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	// Wrap the mux with CORS middleware to handle all requests including OPTIONS
	return http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.corsMiddleware(func(w http.ResponseWriter, r *http.Request) {
			s.mux.ServeHTTP(w, r)
		})(w, r)
	}))
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
