package stream

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/heartkeylab/heartkey/backend/internal/model/chat"
	"github.com/heartkeylab/heartkey/backend/internal/model/persona"
	sessionService "github.com/heartkeylab/heartkey/backend/internal/service/session"
)

type scriptedClient struct{}

func (scriptedClient) Converse(context.Context, string, persona.Persona, []chat.Message) (*chat.TurnResult, error) {
	return &chat.TurnResult{Text: "好", Progress: 15, Status: "傾聽中", DetectedEmotion: "calm"}, nil
}

func (scriptedClient) Summarize(context.Context, persona.Persona, []chat.Message) (*chat.HealingStory, error) {
	return nil, nil
}

func TestHandleStreamRequestUnknownSession(t *testing.T) {
	svc := sessionService.NewService(persona.NewMemoryStore(persona.Seed()), scriptedClient{}, nil)
	h := New(svc)

	resp := httptest.NewRecorder()
	err := h.HandleStreamRequest(context.Background(), resp, "missing", "你好")
	if !errors.Is(err, sessionService.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if strings.Contains(resp.Header().Get("Content-Type"), "text/event-stream") {
		t.Fatal("no SSE headers should be sent for an unknown session")
	}
}

func TestHandleStreamRequestFullTurn(t *testing.T) {
	if testing.Short() {
		t.Skip("paced turn takes real time")
	}
	svc := sessionService.NewService(persona.NewMemoryStore(persona.Seed()), scriptedClient{}, nil)
	sess, err := svc.CreateSession(context.Background(), "loner")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}
	h := New(svc)

	resp := httptest.NewRecorder()
	if err := h.HandleStreamRequest(context.Background(), resp, sess.ID(), "最近睡不好"); err != nil {
		t.Fatalf("HandleStreamRequest err: %v", err)
	}

	body := resp.Body.String()
	for _, want := range []string{"正在閱讀你的文字...", `"event":"message"`, `"event":"emotion"`, `"event":"end"`} {
		if !strings.Contains(body, want) {
			t.Errorf("stream missing %q in:\n%s", want, body)
		}
	}
}
