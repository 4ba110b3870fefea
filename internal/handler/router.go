package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/heartkeylab/heartkey/backend/internal/handler/live"
	"github.com/heartkeylab/heartkey/backend/internal/handler/persona"
	"github.com/heartkeylab/heartkey/backend/internal/handler/session"
	"github.com/heartkeylab/heartkey/backend/internal/handler/stream"
	middlewarePkg "github.com/heartkeylab/heartkey/backend/internal/middleware"
	personaModel "github.com/heartkeylab/heartkey/backend/internal/model/persona"
	sessionService "github.com/heartkeylab/heartkey/backend/internal/service/session"
	"github.com/heartkeylab/heartkey/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, sessions *sessionService.Service, hub *live.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	personaHandler := persona.New(personas)
	sessionHandler := session.New(sessions)
	streamHandler := stream.New(sessions)

	r.Route("/api", func(api chi.Router) {
		personaHandler.RegisterRoutes(api)
		sessionHandler.RegisterRoutes(api)

		// SSE 版的送訊息端點：一邊等待節奏延遲一邊推送階段狀態。
		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage := r.URL.Query().Get("message")

			if userMessage == "" {
				utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
				return
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
				log.Printf("[stream] error handling request: %v", err)
				if errors.Is(err, sessionService.ErrSessionNotFound) {
					utils.RespondError(w, http.StatusNotFound, err.Error())
				}
			}
		})

		if hub != nil {
			liveHandler := live.NewHandler(hub, sessions)
			liveHandler.RegisterRoutes(api)
		}
	})

	return r
}
