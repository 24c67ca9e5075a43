// Package server exposes the literature review over HTTP and WebSocket: the
// flat paper list, the hierarchy, the laid-out graph, and a push channel that
// re-sends the graph when source files change.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bibgraph/bibgraph/config"
	"github.com/bibgraph/bibgraph/graph"
	"github.com/bibgraph/bibgraph/logger"
	"github.com/bibgraph/bibgraph/review"
)

// MaxClients bounds concurrent WebSocket connections.
const MaxClients = 64

// Server serves the review API and pushes graph updates to WebSocket clients.
type Server struct {
	cfg      *config.Config
	cache    *review.Cache
	resolver LocatorResolver
	logger   *zap.SugaredLogger

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *graph.Graph
	mu         sync.RWMutex
	lastGraph  *graph.Graph

	// Reload is the dominant cost of the system, so it is rate limited.
	reloadLimiter *rate.Limiter

	httpServer *http.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a server around a build cache. The resolver may be nil, in
// which case no locator resolves.
func New(cfg *config.Config, cache *review.Cache, resolver LocatorResolver) *Server {
	if resolver == nil {
		resolver = NopResolver{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:           cfg,
		cache:         cache,
		resolver:      resolver,
		logger:        logger.Named("server"),
		clients:       make(map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		broadcast:     make(chan *graph.Graph, 8),
		reloadLimiter: rate.NewLimiter(rate.Every(10*time.Second), 2),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start begins serving on the configured port. Blocks until the listener
// fails or Shutdown is called.
func (s *Server) Start() error {
	s.wg.Add(1)
	go s.run()

	mux := s.setupRoutes()
	addr := fmt.Sprintf(":%d", s.cfg.GetServerPort())
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Infow("Server listening", "addr", addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the HTTP listener and disconnects all clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.wg.Wait()
	return err
}

// BroadcastGraph queues a graph push to all connected clients. Called by the
// source watcher after a rebuild.
func (s *Server) BroadcastGraph(g *graph.Graph) {
	select {
	case s.broadcast <- g:
	default:
		s.logger.Warnw("Broadcast channel full, dropping graph update")
	}
}

// run is the hub loop: client registration, unregistration, and broadcast.
func (s *Server) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			s.mu.Lock()
			for client := range s.clients {
				client.close()
				delete(s.clients, client)
			}
			s.mu.Unlock()
			return

		case client := <-s.register:
			s.handleClientRegister(client)

		case client := <-s.unregister:
			s.handleClientUnregister(client)

		case g := <-s.broadcast:
			s.mu.Lock()
			s.lastGraph = g
			clients := make([]*Client, 0, len(s.clients))
			for client := range s.clients {
				clients = append(clients, client)
			}
			s.mu.Unlock()

			for _, client := range clients {
				client.sendGraph(g)
			}
			s.logger.Debugw("Graph broadcast", "clients", len(clients), "nodes", len(g.Nodes))
		}
	}
}

func (s *Server) handleClientRegister(client *Client) {
	s.mu.Lock()
	if len(s.clients) >= MaxClients {
		s.mu.Unlock()
		s.logger.Warnw("Max clients reached, rejecting connection",
			"client_id", client.id,
			"max_clients", MaxClients)
		client.close()
		return
	}
	s.clients[client] = true
	total := len(s.clients)
	cached := s.lastGraph
	s.mu.Unlock()

	s.logger.Infow("Client connected", "client_id", client.id, "total_clients", total)

	// New clients get the current graph immediately.
	if cached == nil {
		if result, err := s.cache.Load(); err == nil {
			cached = result.Graph
		}
	}
	if cached != nil {
		client.sendGraph(cached)
	}
}

func (s *Server) handleClientUnregister(client *Client) {
	s.mu.Lock()
	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		client.close()
	}
	total := len(s.clients)
	s.mu.Unlock()

	s.logger.Infow("Client disconnected", "client_id", client.id, "total_clients", total)
}
