package live

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	sessionService "github.com/heartkeylab/heartkey/backend/internal/service/session"
)

// Handler 升級WebSocket連線並訂閱該會話的事件流
type Handler struct {
	hub      *Hub
	sessions *sessionService.Service
	upgrader websocket.Upgrader
}

// NewHandler 創建WebSocket處理器
func NewHandler(hub *Hub, sessions *sessionService.Service) *Handler {
	return &Handler{
		hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 註冊事件流路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/live/{sessionID}", h.handleLive)
}

// handleLive 處理WebSocket連線
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}
	if _, err := h.sessions.GetSession(sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[live] upgrade failed session=%s: %v", sessionID, err)
		return
	}

	c := h.hub.subscribe(sessionID, ws)
	log.Printf("[live] subscriber connected session=%s", sessionID)

	defer func() {
		h.hub.unsubscribe(sessionID, c)
		ws.Close()
		log.Printf("[live] subscriber disconnected session=%s", sessionID)
	}()

	// 事件流是單向的；讀迴圈只用來偵測斷線。
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
