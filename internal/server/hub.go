package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shouni/gemini-image-studio/pkg/session"
)

const (
	sendBufferSize = 32
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

var errNoSubscribers = errors.New("no websocket client is connected")

// client は接続中の WebSocket クライアント 1 つ分です。
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub は接続中の全クライアントにセッションのイベントを配信します。
// session.Notifier を満たします。
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

// NewHub は空の Hub を返します。
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 同一オリジンの UI から接続される前提
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Notify はイベントを JSON にして全クライアントへ送ります。
func (h *Hub) Notify(ctx context.Context, event session.Event) {
	if event.State != nil {
		event.State = redactState(event.State)
	}
	msg, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "イベントのエンコードに失敗しました", "type", event.Type, "error", err)
		return
	}
	h.broadcast(msg)
}

// Subscribers は接続中のクライアント数です。
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcast(msg []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	sent := 0
	for c := range h.clients {
		select {
		case c.send <- msg:
			sent++
		default:
			// 詰まったクライアントは切断する
			close(c.send)
			delete(h.clients, c)
			slog.Warn("送信バッファが溢れたためクライアントを切断します")
		}
	}
	return sent
}

// serve は接続をアップグレードし、initial を最初のメッセージとして送ります。
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, initial session.Event) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "WebSocketのアップグレードに失敗しました", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize)}
	if initial.State != nil {
		initial.State = redactState(initial.State)
	}
	if msg, err := json.Marshal(initial); err == nil {
		c.send <- msg
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	slog.Info("WebSocketクライアントが接続しました", "remote", r.RemoteAddr, "clients", h.Subscribers())

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump はクライアントからのメッセージを読み捨て、切断を検知します。
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("WebSocketエラー", "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			slog.Warn("WebSocketの書き込みに失敗しました", "error", err)
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Close は全クライアントを切断します。
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}
