package live

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/heartkeylab/heartkey/backend/internal/model/chat"
)

// event 是推給前端的語義事件封包
type event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// writeTimeout 限制單次推送的阻塞時間；停止讀取的訂閱者會被放棄而不是拖住呼叫端。
const writeTimeout = 5 * time.Second

// conn wraps a websocket connection with a write lock; gorilla connections
// allow at most one concurrent writer.
type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func (c *conn) send(evt event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteJSON(evt)
}

// Hub fans orchestrator events out to the WebSocket subscribers of each
// session. It is the live adapter for the orchestrator's effect stream and
// is safe to use before any subscriber connects.
type Hub struct {
	mu    sync.RWMutex
	conns map[string][]*conn
}

// NewHub 創建事件推送中心
func NewHub() *Hub {
	return &Hub{
		conns: make(map[string][]*conn),
	}
}

func (h *Hub) subscribe(sessionID string, ws *websocket.Conn) *conn {
	c := &conn{ws: ws}
	h.mu.Lock()
	h.conns[sessionID] = append(h.conns[sessionID], c)
	h.mu.Unlock()
	return c
}

func (h *Hub) unsubscribe(sessionID string, target *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := h.conns[sessionID]
	for i, c := range subs {
		if c == target {
			h.conns[sessionID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(h.conns[sessionID]) == 0 {
		delete(h.conns, sessionID)
	}
}

// broadcast 推送事件給該會話的所有訂閱者，失敗的連線直接略過
func (h *Hub) broadcast(sessionID, eventType string, data interface{}) {
	h.mu.RLock()
	subs := append([]*conn(nil), h.conns[sessionID]...)
	h.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	evt := event{
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	for _, c := range subs {
		if err := c.send(evt); err != nil {
			log.Printf("[live] push failed session=%s event=%s: %v", sessionID, eventType, err)
		}
	}
}

// MessageSent 使用者訊息已送出
func (h *Hub) MessageSent(sessionID string) {
	h.broadcast(sessionID, "messageSent", nil)
}

// TurnCompleted 一個回合完成並已摺疊進會話狀態
func (h *Hub) TurnCompleted(sessionID string, result chat.TurnResult) {
	h.broadcast(sessionID, "turnCompleted", result)
}

// TurnFailed 回合失敗，前端可播放對應的提示音
func (h *Hub) TurnFailed(sessionID string, quota bool) {
	h.broadcast(sessionID, "turnFailed", map[string]bool{"quota": quota})
}

// JourneyExtended 旅程時間軸新增了一個轉折點
func (h *Hub) JourneyExtended(sessionID string, point chat.JourneyPoint) {
	h.broadcast(sessionID, "journeyExtended", point)
}

// EmotionNamingSuggested 模型建議使用者為情緒命名
func (h *Hub) EmotionNamingSuggested(sessionID string) {
	h.broadcast(sessionID, "emotionNamingSuggested", nil)
}

// StoryUnlocked 微光故事生成完成
func (h *Hub) StoryUnlocked(sessionID string, story chat.HealingStory) {
	h.broadcast(sessionID, "storyUnlocked", story)
}

// StoryFailed 故事生成失敗，已降級為行內訊息
func (h *Hub) StoryFailed(sessionID string) {
	h.broadcast(sessionID, "storyFailed", nil)
}
