// Package http exposes the keep-alive surface: a tiny HTTP server that
// hosting platforms can probe to keep the bot process warm, plus a
// read-only queue snapshot for operators.
package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"relaybot/internal/domain"
)

// Server is the keep-alive HTTP adapter.
type Server struct {
	queue  *domain.Queue
	mux    *http.ServeMux
	server *http.Server
}

// NewServer creates the keep-alive server on addr.
func NewServer(queue *domain.Queue, addr string) *Server {
	s := &Server{
		queue: queue,
		mux:   http.NewServeMux(),
	}
	s.routes()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleHome)
	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /queue", s.handleQueue)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Bot is alive!"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "running",
		"timestamp": time.Now().Unix(),
		"message":   "video download-and-relay bot is active",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// queueResponse is the JSON projection of a queue snapshot.
type queueResponse struct {
	Pending   []queueItem `json:"pending"`
	Current   *queueItem  `json:"current,omitempty"`
	Running   bool        `json:"running"`
	Cancelled bool        `json:"cancelled"`
}

type queueItem struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Status string `json:"status"`
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	snap := s.queue.Snapshot()
	resp := queueResponse{
		Pending:   make([]queueItem, 0, len(snap.Pending)),
		Running:   snap.Running,
		Cancelled: snap.Cancelled,
	}
	for _, v := range snap.Pending {
		resp.Pending = append(resp.Pending, itemOf(v))
	}
	if snap.Current != nil {
		item := itemOf(*snap.Current)
		resp.Current = &item
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func itemOf(v domain.JobView) queueItem {
	return queueItem{ID: v.ID, URL: v.URL, Status: string(v.Status)}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http: encode response: %v", err)
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ServeHTTP implements http.Handler for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
