package persona

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/heartkeylab/heartkey/backend/internal/model/persona"
)

func setupRouter() *chi.Mux {
	handler := New(persona.NewMemoryStore(persona.Seed()))
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func TestListPersonas(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/personas", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var personas []persona.Persona
	if err := json.Unmarshal(resp.Body.Bytes(), &personas); err != nil {
		t.Fatalf("decode personas: %v", err)
	}
	if len(personas) != 9 {
		t.Fatalf("expected 9 archetypes, got %d", len(personas))
	}
}

func TestListEmotionCatalog(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/emotions/cards", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var catalog struct {
		QuickEmotions []json.RawMessage `json:"quickEmotions"`
		EmotionCards  []json.RawMessage `json:"emotionCards"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &catalog); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(catalog.QuickEmotions) == 0 || len(catalog.EmotionCards) == 0 {
		t.Fatal("catalog must list quick emotions and emotion cards")
	}
}
