package feedws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"evfeed/feed"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// RenderFunc rebuilds the feed for one organization.
type RenderFunc func(ctx context.Context, organization string) (*feed.Result, error)

// Hub tracks the websocket clients of each organization's embedded feed and
// pushes re-rendered output to them.
type Hub struct {
	render   RenderFunc
	clients  map[string]map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
}

func NewHub(render RenderFunc) *Hub {
	return &Hub{
		render:  render,
		clients: make(map[string]map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Embeds live on arbitrary origins.
				return true
			},
		},
	}
}

// GET /ws/feed/:orgid
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	org := ps.ByName("orgid")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("websocket upgrade failed:", err)
		return
	}
	defer conn.Close()

	// Send the current feed so the embed paints immediately.
	if res, err := h.render(r.Context(), org); err == nil {
		if msg, err := json.Marshal(res); err == nil {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Println("initial feed push failed:", err)
			}
		}
	} else {
		log.Println("initial feed render failed:", err)
	}

	h.mu.Lock()
	if h.clients[org] == nil {
		h.clients[org] = make(map[*websocket.Conn]bool)
	}
	h.clients[org][conn] = true
	total := len(h.clients[org])
	h.mu.Unlock()
	log.Printf("feed client connected for %s (%d watching)", org, total)

	// The client never sends anything; ReadMessage blocks until disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients[org], conn)
	if len(h.clients[org]) == 0 {
		delete(h.clients, org)
	}
	h.mu.Unlock()
	log.Printf("feed client disconnected from %s", org)
}

// Orgs lists the organizations that currently have watchers.
func (h *Hub) Orgs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	orgs := make([]string, 0, len(h.clients))
	for org := range h.clients {
		orgs = append(orgs, org)
	}
	return orgs
}

func (h *Hub) Broadcast(org string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients[org] {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Println("feed push failed:", err)
		}
	}
}

// CloseAll drops every client; used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for org, conns := range h.clients {
		for conn := range conns {
			conn.Close()
		}
		delete(h.clients, org)
	}
}
