// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	applog "audioviz/internal/log"
)

// WebSocketTransport broadcasts visualization vectors as JSON arrays to all
// connected clients. Browsers rendering the animation connect to /viz and
// receive one message per analyzed frame.
//
// Thread safety: a mutex guards the client map; a buffered broadcast
// channel decouples Send from the per-client writes so the analysis loop
// never blocks on the network.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan []float64
	server    *http.Server
	clientG   prometheus.Gauge // optional connected-clients gauge
}

// NewWebSocketTransport creates the transport and starts its HTTP server.
// clientGauge may be nil when metrics are disabled.
func NewWebSocketTransport(addr string, clientGauge prometheus.Gauge) *WebSocketTransport {
	wst := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Rendering clients may be served from anywhere.
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []float64, 256),
		clientG:   clientGauge,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/viz", wst.handleWebSocket)
	wst.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		applog.Infof("WebSocketTransport: listening on %s", addr)
		if err := wst.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("WebSocketTransport: server error: %v", err)
		}
	}()
	go wst.handleBroadcasts()

	return wst
}

// handleWebSocket upgrades HTTP connections and registers the client.
func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Errorf("WebSocketTransport: upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	if wst.clientG != nil {
		wst.clientG.Inc()
	}
	applog.Infof("WebSocketTransport: client connected, total: %d", total)

	// Reads are only used to notice the peer going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				wst.dropClient(conn)
				return
			}
		}
	}()
}

func (wst *WebSocketTransport) dropClient(conn *websocket.Conn) {
	wst.clientsMu.Lock()
	_, known := wst.clients[conn]
	delete(wst.clients, conn)
	total := len(wst.clients)
	wst.clientsMu.Unlock()

	conn.Close()
	if known {
		if wst.clientG != nil {
			wst.clientG.Dec()
		}
		applog.Infof("WebSocketTransport: client disconnected, total: %d", total)
	}
}

// handleBroadcasts drains the broadcast channel and writes each frame to
// every connected client, dropping clients whose writes fail.
func (wst *WebSocketTransport) handleBroadcasts() {
	for bins := range wst.broadcast {
		wst.clientsMu.Lock()
		conns := make([]*websocket.Conn, 0, len(wst.clients))
		for client := range wst.clients {
			conns = append(conns, client)
		}
		wst.clientsMu.Unlock()

		for _, client := range conns {
			if err := client.WriteJSON(bins); err != nil {
				applog.Debugf("WebSocketTransport: write failed, dropping client: %v", err)
				wst.dropClient(client)
			}
		}
	}
}

// Send queues a copy of the vector for broadcast. If the queue is full the
// frame is dropped; a stalled consumer must not back up the analysis loop.
func (wst *WebSocketTransport) Send(bins []float64) error {
	cp := make([]float64, len(bins))
	copy(cp, bins)
	select {
	case wst.broadcast <- cp:
	default:
	}
	return nil
}

// Close shuts down the server and all client connections.
func (wst *WebSocketTransport) Close() error {
	applog.Info("WebSocketTransport: closing server")

	wst.clientsMu.Lock()
	for client := range wst.clients {
		client.Close()
	}
	wst.clients = make(map[*websocket.Conn]bool)
	wst.clientsMu.Unlock()

	if wst.server != nil {
		return wst.server.Close()
	}
	return nil
}

var _ Transport = (*WebSocketTransport)(nil)
