package feed

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	model "github.com/zhouzirui/trade-trigger/internal/model/messaging"
	"github.com/zhouzirui/trade-trigger/internal/service/inbox"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 54 * time.Second
	writeWait    = 10 * time.Second
)

// outgoingMessage 推送给订阅者的消息
type outgoingMessage struct {
	Type      string         `json:"type"`
	ChannelID string         `json:"channelId"`
	Data      *model.Message `json:"data,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// WebSocketHandler 将频道内的新消息实时推送给观察者
type WebSocketHandler struct {
	inbox    *inbox.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(inboxSvc *inbox.Service) *WebSocketHandler {
	return &WebSocketHandler{
		inbox: inboxSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/messaging/central-channels/{channelID}/ws", h.handleWebSocket)
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")
	if channelID == "" {
		http.Error(w, "channelID is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	messages, unsubscribe := h.inbox.Subscribe(channelID)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// watchers never send anything; reading only surfaces close frames
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("[websocket] read error: %v", err)
				}
				return
			}
		}
	}()

	if err := write(conn, outgoingMessage{Type: "connected", ChannelID: channelID}); err != nil {
		return
	}
	log.Printf("[websocket] watcher attached to channel=%s", channelID)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[websocket] watcher detached from channel=%s", channelID)
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := write(conn, outgoingMessage{Type: "message", ChannelID: channelID, Data: &msg}); err != nil {
				log.Printf("[websocket] write failed: %v", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func write(conn *websocket.Conn, msg outgoingMessage) error {
	msg.Timestamp = time.Now().Unix()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
