// Package websocket streams ingestion run status to browsers. Events
// come off the Redis status stream and fan out through a hub.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lshi/nbadaily/internal/publisher"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server represents the WebSocket server
type Server struct {
	port      string
	server    *http.Server
	hub       *Hub
	publisher *publisher.RedisStreamPublisher
}

// NewServer creates a new WebSocket server
func NewServer(pub *publisher.RedisStreamPublisher) *Server {
	return &Server{
		hub:       NewHub(),
		publisher: pub,
	}
}

// Start runs the hub, the status stream relay, and the HTTP listener.
// It blocks until the listener stops.
func (s *Server) Start(ctx context.Context, port string) error {
	s.port = port

	go s.hub.Run()
	go s.relayStatus(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/ingest/status", s.handleStatus)
	mux.HandleFunc("/ws/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
	}

	log.Printf("[ws] listening on :%s", port)
	return s.server.ListenAndServe()
}

// relayStatus follows the Redis status stream and broadcasts each event.
func (s *Server) relayStatus(ctx context.Context) {
	lastID := "$"
	for {
		if ctx.Err() != nil {
			return
		}
		messages, nextID, err := s.publisher.ReadStatus(ctx, lastID, 5*time.Second)
		if err != nil && !errors.Is(err, context.Canceled) {
			// Timeouts come back as errors from a blocking read.
			time.Sleep(time.Second)
			continue
		}
		lastID = nextID
		for _, msg := range messages {
			if data, ok := msg.Values["data"].(string); ok {
				s.hub.Broadcast([]byte(data))
			}
		}
	}
}

// handleStatus upgrades a connection and attaches it to the hub.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
