package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartkeylab/heartkey/backend/internal/model/chat"
	"github.com/heartkeylab/heartkey/backend/internal/model/persona"
	"github.com/heartkeylab/heartkey/backend/pkg/utils"
)

// Handler persona目錄的HTTP處理器
type Handler struct {
	personas persona.Store
}

// New 創建persona處理器
func New(personas persona.Store) *Handler {
	return &Handler{
		personas: personas,
	}
}

// RegisterRoutes 註冊persona相關的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
	r.Get("/emotions/cards", h.handleListEmotionCatalog)
}

// handleListPersonas 列出所有persona
func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}

// handleListEmotionCatalog 列出快捷情緒與情緒命名卡
func (h *Handler) handleListEmotionCatalog(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"quickEmotions": chat.QuickEmotions,
		"emotionCards":  chat.EmotionCards,
	})
}
