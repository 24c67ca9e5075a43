package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bibgraph/bibgraph/graph"
)

// WebSocket timeout constants following Gorilla best practices
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// Client is one WebSocket connection receiving graph pushes.
type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan *graph.Graph
	server *Server

	closeOnce sync.Once
}

// graphMessage is the envelope pushed to clients.
type graphMessage struct {
	Type  string       `json:"type"`
	Graph *graph.Graph `json:"graph"`
}

// HandleWebSocket upgrades the connection and registers the client with the
// hub. The client immediately receives the current graph.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.originAllowed(origin)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("WebSocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		id:     uuid.NewString()[:8],
		conn:   conn,
		send:   make(chan *graph.Graph, 4),
		server: s,
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}

// sendGraph queues a graph for this client, dropping when the client cannot
// keep up.
func (c *Client) sendGraph(g *graph.Graph) {
	select {
	case c.send <- g:
	default:
		c.server.logger.Debugw("Client send buffer full, dropping graph",
			"client_id", c.id)
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// writePump delivers queued graphs and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case g, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(graphMessage{Type: "graph", Graph: g}); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection until the peer goes away. Clients send
// nothing meaningful; reading only services pongs and detects disconnects.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.ctx.Done():
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
