package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	sessionService "github.com/heartkeylab/heartkey/backend/internal/service/session"
	"github.com/heartkeylab/heartkey/backend/pkg/utils"
)

// Handler 會話生命週期的HTTP處理器
type Handler struct {
	sessions *sessionService.Service
}

// New 創建會話處理器
func New(sessions *sessionService.Service) *Handler {
	return &Handler{
		sessions: sessions,
	}
}

// RegisterRoutes 註冊會話相關的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(sr chi.Router) {
		sr.Get("/", h.handleGetSession)
		sr.Delete("/", h.handleCloseSession)
		sr.Post("/messages", h.handleSendMessage)
		sr.Post("/emotions/quick", h.handleQuickEmotion)
		sr.Post("/emotions/card", h.handleEmotionCard)
		sr.Post("/story", h.handleRequestStory)
		sr.Post("/journey/toggle", h.handleToggleJourney)
		sr.Post("/picker/dismiss", h.handleDismissPicker)
		sr.Post("/story/dismiss", h.handleDismissStory)
	})
}

// handleCreateSession 建立會話並跑完開場回合
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PersonaID string `json:"personaId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.sessions.CreateSession(r.Context(), payload.PersonaID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, sess.Snapshot())
}

// handleGetSession 讀取會話快照
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, sess.Snapshot())
}

// handleCloseSession 結束並拆除會話
func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.sessions.CloseSession(sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSendMessage 送出一則使用者訊息並等待回合完成
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := sess.SendMessage(r.Context(), payload.Text); err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, sess.Snapshot())
}

// handleQuickEmotion 一鍵丟出快捷情緒
func (h *Handler) handleQuickEmotion(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var payload struct {
		Icon  string `json:"icon"`
		Label string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Label == "" {
		utils.RespondError(w, http.StatusBadRequest, "label is required")
		return
	}

	if err := sess.PickQuickEmotion(r.Context(), payload.Icon, payload.Label); err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, sess.Snapshot())
}

// handleEmotionCard 從命名卡選擇一種情緒
func (h *Handler) handleEmotionCard(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	var payload struct {
		Label string `json:"label"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Label == "" {
		utils.RespondError(w, http.StatusBadRequest, "label is required")
		return
	}

	if err := sess.PickNamedEmotion(r.Context(), payload.Label, payload.Value); err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, sess.Snapshot())
}

// handleRequestStory 手動召喚微光故事
func (h *Handler) handleRequestStory(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}

	if _, err := sess.RequestStory(r.Context()); err != nil {
		respondServiceError(w, err)
		return
	}

	// 失敗已降級為行內道歉訊息，快照即完整結果。
	utils.RespondJSON(w, http.StatusOK, sess.Snapshot())
}

// handleToggleJourney 開合旅程時間軸面板
func (h *Handler) handleToggleJourney(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	sess.ToggleJourneyView()
	utils.RespondJSON(w, http.StatusOK, sess.Snapshot())
}

// handleDismissPicker 關閉情緒命名選擇器
func (h *Handler) handleDismissPicker(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	sess.DismissEmotionPicker()
	utils.RespondJSON(w, http.StatusOK, sess.Snapshot())
}

// handleDismissStory 收起故事浮層
func (h *Handler) handleDismissStory(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.resolveSession(w, r)
	if !ok {
		return
	}
	sess.DismissStory()
	utils.RespondJSON(w, http.StatusOK, sess.Snapshot())
}

func (h *Handler) resolveSession(w http.ResponseWriter, r *http.Request) (*sessionService.Session, bool) {
	sessionID := chi.URLParam(r, "sessionID")
	sess, err := h.sessions.GetSession(sessionID)
	if err != nil {
		respondServiceError(w, err)
		return nil, false
	}
	return sess, true
}

// respondServiceError maps orchestrator sentinels onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, sessionService.ErrPersonaRequired),
		errors.Is(err, sessionService.ErrPersonaUnknown),
		errors.Is(err, sessionService.ErrEmptyMessage):
		status = http.StatusBadRequest
	case errors.Is(err, sessionService.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sessionService.ErrBusy),
		errors.Is(err, sessionService.ErrStoryBusy):
		status = http.StatusConflict
	case errors.Is(err, sessionService.ErrStoryLocked):
		status = http.StatusPreconditionFailed
	case errors.Is(err, sessionService.ErrSessionClosed):
		status = http.StatusGone
	}
	utils.RespondError(w, status, err.Error())
}
