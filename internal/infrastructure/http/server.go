// Package http provides the HTTP server infrastructure.
// Clean Architecture: Framework/driver layer - outermost circle.
package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/0xcro3dile/faqdesk-go/internal/adapters/redact"
	"github.com/0xcro3dile/faqdesk-go/internal/domain/entities"
)

// Decider is the core decide operation.
type Decider interface {
	Decide(ctx context.Context, userID, query string) (*entities.DecisionResult, error)
}

// Escalator creates human-support tickets.
type Escalator interface {
	CreateTicket(ctx context.Context, userID, message string) (string, error)
}

// Ingestor reloads the knowledge base from the FAQ source.
type Ingestor interface {
	Ingest(ctx context.Context, path string) (int, error)
}

// Server is the HTTP surface of the support service.
type Server struct {
	decider   Decider
	escalator Escalator
	ingestor  Ingestor
	faqPath   string
	jwtSecret string
	addr      string
}

// NewServer creates a new HTTP server.
func NewServer(decider Decider, escalator Escalator, ingestor Ingestor, faqPath, jwtSecret, addr string) *Server {
	return &Server{
		decider:   decider,
		escalator: escalator,
		ingestor:  ingestor,
		faqPath:   faqPath,
		jwtSecret: jwtSecret,
		addr:      addr,
	}
}

// Handler builds the route table with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ask", requireJWT(s.jwtSecret, s.handleAsk))
	mux.HandleFunc("/tickets", requireJWT(s.jwtSecret, s.handleTickets))
	mux.HandleFunc("/ingest", requireJWT(s.jwtSecret, s.handleIngest))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/dev/token", s.handleDevToken)
	mux.Handle("/metrics", metricsHandler())

	return corsMiddleware(requestIDMiddleware(loggingMiddleware(metricsMiddleware(mux))))
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	log.Printf("[INFO] faqdesk server starting on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	return server.ListenAndServe()
}

// askRequest is the /ask and /tickets request body.
type askRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// handleAsk runs one query through the decision engine.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message required")
		return
	}
	if req.UserID == "" {
		req.UserID = "anon"
	}

	// PII never reaches the engine or the audit trail.
	safeMsg := redact.PII(req.Message)

	result, err := s.decider.Decide(r.Context(), req.UserID, safeMsg)
	if err != nil {
		log.Printf("[ERROR] decide failed for user %s: %v", req.UserID, err)
		writeError(w, http.StatusInternalServerError, "Audit log unavailable")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleTickets creates an escalation ticket.
func (s *Server) handleTickets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message required")
		return
	}

	ticketID, err := s.escalator.CreateTicket(r.Context(), req.UserID, redact.PII(req.Message))
	if err != nil {
		log.Printf("[ERROR] ticket creation failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Ticket store unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"ticket_id": ticketID})
}

// handleIngest re-runs ingestion from the configured FAQ source.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	count, err := s.ingestor.Ingest(r.Context(), s.faqPath)
	if err != nil {
		log.Printf("[ERROR] ingest failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Ingestion failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"ingested": count})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// devTokenRequest mints a development JWT.
type devTokenRequest struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// handleDevToken mints a JWT for local testing.
func (s *Server) handleDevToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req devTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		writeError(w, http.StatusBadRequest, "Username required")
		return
	}
	if req.Role == "" {
		req.Role = "user"
	}

	token, err := mintToken(s.jwtSecret, req.Username, req.Role, time.Hour)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Token minting failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// requestIDMiddleware tags each request so audit lines and server logs can
// be correlated.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			return
		}
		next.ServeHTTP(w, r)
	})
}
