package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	sessionService "github.com/heartkeylab/heartkey/backend/internal/service/session"
	"github.com/heartkeylab/heartkey/backend/pkg/utils"
)

// Handler pushes one paced turn over Server-Sent Events: staged status
// lines while the counselor "reads" and "types", then the folded result.
type Handler struct {
	sessions *sessionService.Service
}

// New creates a new stream handler
func New(sessions *sessionService.Service) *Handler {
	return &Handler{
		sessions: sessions,
	}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleStreamRequest runs one user turn for the session and streams its
// stages. The call blocks for the turn's full paced duration.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	sess, err := h.sessions.GetSession(sessionID)
	if err != nil {
		return err
	}

	utils.SetupSSEHeaders(w)

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "status",
		SessionID: sessionID,
		Content:   "正在閱讀你的文字...",
	})

	done := make(chan error, 1)
	go func() {
		done <- sess.SendMessage(ctx, userMessage)
	}()

	// 閱讀延遲結束後切到思考狀態，與對話室裡的節奏感一致。
	select {
	case <-ctx.Done():
		<-done
		return ctx.Err()
	case err := <-done:
		if err != nil {
			h.sendSSEError(w, flusher, err.Error())
			return err
		}
	case <-readingElapsed(ctx, userMessage):
		h.sendSSE(w, flusher, StreamResponse{
			Event:     "status",
			SessionID: sessionID,
			Content:   "正在思考回應...",
		})
		if err := <-done; err != nil {
			h.sendSSEError(w, flusher, err.Error())
			return err
		}
	}

	snap := sess.Snapshot()
	if len(snap.History) > 0 {
		last := snap.History[len(snap.History)-1]
		h.sendSSE(w, flusher, StreamResponse{
			Event:     "message",
			SessionID: sessionID,
			Content:   last.Text,
		})
	}

	emotionPayload, err := json.Marshal(map[string]interface{}{
		"emotion":  snap.Emotion,
		"color":    snap.EmotionColor,
		"progress": snap.Progress,
		"status":   snap.Status,
	})
	if err == nil {
		h.sendSSE(w, flusher, StreamResponse{
			Event:     "emotion",
			SessionID: sessionID,
			Content:   string(emotionPayload),
		})
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Printf("[stream] completed turn for session=%s", sessionID)
	return nil
}

// readingElapsed fires once the reading-phase pacing for the given text has
// passed, unless the context ends first.
func readingElapsed(ctx context.Context, text string) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		defer close(ch)
		timer := time.NewTimer(sessionService.ReadingDelay(text))
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}()
	return ch
}

// sendSSE sends a Server-Sent Event
func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}

// sendSSEError sends an error via Server-Sent Events
func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, errorMsg string) {
	h.sendSSE(w, flusher, StreamResponse{
		Event: "error",
		Error: errorMsg,
	})
}
