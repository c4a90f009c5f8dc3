package dev

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/weave/internal/telemetry"
)

// MessageType represents the type of a dev channel message.
type MessageType string

const (
	MessageHello  MessageType = "hello"
	MessageUpdate MessageType = "update"
	MessageReload MessageType = "reload"
	MessageError  MessageType = "error"
	MessageClear  MessageType = "clear"
)

// Message is sent to browsers via WebSocket.
type Message struct {
	Type    MessageType `json:"type"`
	Client  string      `json:"client,omitempty"`
	Module  string      `json:"module,omitempty"`
	HTML    string      `json:"html,omitempty"`
	Rebound []string    `json:"rebound,omitempty"`
	Reasons []string    `json:"reasons,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages WebSocket connections for hot reload.
type Hub struct {
	clients  map[string]*client
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
	metrics  *telemetry.Metrics
}

// NewHub creates a new hub. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *telemetry.Metrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in dev
			},
		},
		logger:  logger,
		metrics: metrics,
	}
}

// HandleWebSocket upgrades the request, greets the client with its id
// and keeps the connection until the client goes away.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	h.metrics.DevClientConnected()
	h.logger.Debug("dev client connected", "client", c.id)

	if data, err := json.Marshal(Message{Type: MessageHello, Client: c.id}); err == nil {
		c.send(data)
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.mu.Unlock()

	if ok {
		c.conn.Close()
		h.metrics.DevClientDisconnected()
		h.logger.Debug("dev client disconnected", "client", c.id)
	}
}

// Broadcast sends msg to every client and returns how many received it.
func (h *Hub) Broadcast(msg Message) int {
	data, err := json.Marshal(msg)
	if err != nil {
		return 0
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range clients {
		if err := c.send(data); err != nil {
			h.remove(c)
			continue
		}
		sent++
	}
	h.metrics.DevBroadcast(string(msg.Type))
	return sent
}

// NotifyReload sends a full page reload message to all clients.
func (h *Hub) NotifyReload(module string, reasons []string) int {
	return h.Broadcast(Message{Type: MessageReload, Module: module, Reasons: reasons})
}

// NotifyError sends an error message to all clients.
func (h *Hub) NotifyError(module, errMsg string) int {
	return h.Broadcast(Message{Type: MessageError, Module: module, Error: errMsg})
}

// ClearError clears the error overlay on all clients.
func (h *Hub) ClearError() int {
	return h.Broadcast(Message{Type: MessageClear})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
		h.metrics.DevClientDisconnected()
	}
}

// ClientScript is injected into the dev page. It swaps the page root on
// "update", reloads on "reload" and shows an overlay on "error".
const ClientScript = `
<script>
(function() {
    'use strict';

    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + '/__weave/ws');

        ws.onopen = function() {
            reconnectDelay = 1000;
            clearErrorOverlay();
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }

            switch (msg.type) {
                case 'hello':
                    console.log('[weave] connected as', msg.client);
                    break;

                case 'update':
                    var root = document.getElementById('weave-root');
                    if (root && msg.html) {
                        root.outerHTML = msg.html;
                    }
                    clearErrorOverlay();
                    break;

                case 'reload':
                    console.log('[weave] full reload', msg.reasons || []);
                    location.reload();
                    break;

                case 'error':
                    showErrorOverlay(msg.error);
                    break;

                case 'clear':
                    clearErrorOverlay();
                    break;
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    function showErrorOverlay(error) {
        clearErrorOverlay();
        var overlay = document.createElement('pre');
        overlay.id = 'weave-error-overlay';
        overlay.style.cssText = 'position:fixed;inset:0;margin:0;background:rgba(0,0,0,0.9);color:#ff5555;font:14px monospace;padding:20px;white-space:pre-wrap;z-index:999999;';
        overlay.textContent = error;
        document.body.appendChild(overlay);
    }

    function clearErrorOverlay() {
        var overlay = document.getElementById('weave-error-overlay');
        if (overlay) {
            overlay.remove();
        }
    }

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
</script>
`
