// Package websocket broadcasts live-reload notifications to preview pages.
//
// A single hub goroutine owns client registration and fan-out; per-client
// reader and writer goroutines move bytes between the hub and the socket.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/buttonbook/internal/logging"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
	sendBuffer   = 16
)

// WebSocketManager handles WebSocket connection management and broadcasting
type WebSocketManager struct {
	clients      map[*Client]struct{}
	clientsMutex sync.RWMutex

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	originValidator OriginValidator
	logger          logging.Logger

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
	isShutdown   atomic.Bool
}

// NewWebSocketManager creates a manager and starts its hub goroutine.
// A nil validator allows every origin.
func NewWebSocketManager(originValidator OriginValidator, logger logging.Logger) *WebSocketManager {
	if originValidator == nil {
		originValidator = OriginValidatorFunc(func(string) bool { return true })
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())

	manager := &WebSocketManager{
		clients:         make(map[*Client]struct{}),
		broadcast:       make(chan []byte, 64),
		register:        make(chan *Client, 32),
		unregister:      make(chan *Client, 32),
		originValidator: originValidator,
		logger:          logger.WithComponent("websocket"),
		ctx:             ctx,
		cancel:          cancel,
	}

	go manager.runHub()

	return manager
}

// HandleWebSocket upgrades the request and registers the client
func (wm *WebSocketManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if wm.isShutdown.Load() {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	origin := r.Header.Get("Origin")
	if origin != "" && !sameOrigin(origin, r.Host) && !wm.originValidator.IsAllowedOrigin(origin) {
		wm.logger.Warn(r.Context(), nil, "WebSocket connection rejected", "origin", origin, "remote", r.RemoteAddr)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// origins are checked above
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		wm.logger.Warn(r.Context(), err, "WebSocket upgrade failed", "remote", r.RemoteAddr)
		return
	}

	client := &Client{
		conn:         conn,
		send:         make(chan []byte, sendBuffer),
		remoteAddr:   r.RemoteAddr,
		lastActivity: time.Now(),
	}

	select {
	case wm.register <- client:
	case <-wm.ctx.Done():
		_ = conn.Close(websocket.StatusGoingAway, "Server shutting down")
		return
	}

	go wm.handleClient(client)
}

// sameOrigin reports whether the page was served by this host.
func sameOrigin(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host != "" && strings.EqualFold(u.Host, host)
}

func (wm *WebSocketManager) runHub() {
	for {
		select {
		case client := <-wm.register:
			if wm.isShutdown.Load() {
				_ = client.conn.Close(websocket.StatusGoingAway, "Server shutdown")
				continue
			}
			wm.clientsMutex.Lock()
			wm.clients[client] = struct{}{}
			total := len(wm.clients)
			wm.clientsMutex.Unlock()
			wm.logger.Debug(wm.ctx, "WebSocket client connected", "remote", client.remoteAddr, "clients", total)

		case client := <-wm.unregister:
			wm.removeClient(client)

		case message := <-wm.broadcast:
			wm.broadcastToClients(message)

		case <-wm.ctx.Done():
			return
		}
	}
}

// removeClient drops a client and closes its send channel. Only the hub and
// Shutdown call it, so the channel is closed at most once.
func (wm *WebSocketManager) removeClient(client *Client) {
	wm.clientsMutex.Lock()
	_, exists := wm.clients[client]
	if exists {
		delete(wm.clients, client)
		close(client.send)
	}
	total := len(wm.clients)
	wm.clientsMutex.Unlock()

	if exists {
		wm.logger.Debug(wm.ctx, "WebSocket client disconnected", "remote", client.remoteAddr, "clients", total)
	}
}

func (wm *WebSocketManager) broadcastToClients(message []byte) {
	wm.clientsMutex.RLock()
	var slow []*Client
	for client := range wm.clients {
		select {
		case client.send <- message:
		default:
			slow = append(slow, client)
		}
	}
	wm.clientsMutex.RUnlock()

	for _, client := range slow {
		wm.removeClient(client)
	}
}

func (wm *WebSocketManager) handleClient(client *Client) {
	defer func() {
		select {
		case wm.unregister <- client:
		case <-wm.ctx.Done():
		}
	}()

	go wm.writeToClient(client)

	wm.readFromClient(client)
}

// readFromClient drains incoming frames so pings and close frames are handled.
func (wm *WebSocketManager) readFromClient(client *Client) {
	for {
		_, _, err := client.conn.Read(wm.ctx)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && wm.ctx.Err() == nil {
				wm.logger.Debug(wm.ctx, "WebSocket read ended", "remote", client.remoteAddr, "error", err.Error())
			}
			return
		}
		client.lastActivity = time.Now()
	}
}

func (wm *WebSocketManager) writeToClient(client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer client.conn.Close(websocket.StatusNormalClosure, "")

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}

			ctx, cancel := context.WithTimeout(wm.ctx, writeTimeout)
			err := client.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(wm.ctx, writeTimeout)
			err := client.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}

		case <-wm.ctx.Done():
			return
		}
	}
}

// BroadcastMessage queues a message for every connected client. The message
// is dropped when the broadcast queue is full.
func (wm *WebSocketManager) BroadcastMessage(message UpdateMessage) {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}

	data, err := json.Marshal(message)
	if err != nil {
		wm.logger.Error(wm.ctx, err, "Failed to marshal broadcast message")
		return
	}

	select {
	case wm.broadcast <- data:
	case <-wm.ctx.Done():
	default:
		wm.logger.Warn(wm.ctx, nil, "Broadcast channel full, dropping message", "type", message.Type)
	}
}

// GetConnectedClients returns the number of connected clients
func (wm *WebSocketManager) GetConnectedClients() int {
	wm.clientsMutex.RLock()
	defer wm.clientsMutex.RUnlock()
	return len(wm.clients)
}

// IsShutdown reports whether Shutdown has been called
func (wm *WebSocketManager) IsShutdown() bool {
	return wm.isShutdown.Load()
}

// Shutdown stops the hub and closes every client connection
func (wm *WebSocketManager) Shutdown(ctx context.Context) error {
	wm.shutdownOnce.Do(func() {
		wm.isShutdown.Store(true)
		wm.cancel()

		wm.clientsMutex.Lock()
		for client := range wm.clients {
			delete(wm.clients, client)
			close(client.send)
			_ = client.conn.Close(websocket.StatusGoingAway, "Server shutdown")
		}
		wm.clientsMutex.Unlock()

		wm.logger.Info(ctx, "WebSocket manager shut down")
	})

	return nil
}
