package counsel

import (
	"strings"
	"testing"
	"time"

	"github.com/heartkeylab/heartkey/backend/internal/model/chat"
	"github.com/heartkeylab/heartkey/backend/internal/model/persona"
)

func TestTimeContext(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{3, "凌晨"},
		{9, "早晨"},
		{15, "下午"},
		{21, "晚上"},
	}
	for _, tt := range tests {
		at := time.Date(2026, 8, 31, tt.hour, 0, 0, 0, time.Local)
		if got := timeContext(at); !strings.Contains(got, tt.want) {
			t.Errorf("timeContext(%02d:00) = %q, want contains %q", tt.hour, got, tt.want)
		}
	}
}

func TestBuildTurnSystemPrompt(t *testing.T) {
	p := persona.Persona{ID: "loner", Title: "孤獨的人", PromptContext: "使用者長期感到孤單。"}
	history := []chat.Message{
		{Role: chat.RoleModel, Text: "歡迎你來。"},
		{Role: chat.RoleUser, Text: "我總是一個人。"},
	}
	prompt := buildTurnSystemPrompt(p, history, time.Date(2026, 8, 31, 22, 0, 0, 0, time.Local))

	for _, want := range []string{
		p.Title,
		p.PromptContext,
		"諮商師: 歡迎你來。",
		"來訪者: 我總是一個人。",
		"晚上",
		`"detectedEmotion"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("turn prompt missing %q", want)
		}
	}
}

func TestBuildStorySystemPrompt(t *testing.T) {
	p := persona.Persona{ID: "hsp", Title: "高敏感的人"}
	prompt := buildStorySystemPrompt(p)
	if !strings.Contains(prompt, p.Title) {
		t.Error("story prompt missing persona title")
	}
	if !strings.Contains(prompt, `"content"`) {
		t.Error("story prompt missing schema contract")
	}
}

func TestTranscriptEmptyHistory(t *testing.T) {
	if got := transcript(nil); got != "" {
		t.Errorf("empty history transcript = %q", got)
	}
}
