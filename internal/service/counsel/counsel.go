// Package counsel is the boundary to the counselor language model. It turns
// one user utterance plus the conversation history into a structured
// TurnResult, and a whole transcript into an optional healing story. The
// package holds no conversational state: the full history is passed on every
// call.
package counsel

import (
	"context"
	"errors"
	"fmt"

	"github.com/heartkeylab/heartkey/backend/internal/config"
	"github.com/heartkeylab/heartkey/backend/internal/model/chat"
	"github.com/heartkeylab/heartkey/backend/internal/model/persona"
)

var (
	// ErrEmptyReply marks a response that decoded but carried no text.
	ErrEmptyReply = errors.New("counsel: empty reply from model")
)

// Client 是諮商模型的外部協作邊界。
//
// Summarize 回傳 (nil, nil) 表示「目前沒有故事」，與錯誤是兩種不同的訊號；
// 呼叫端對兩者都以非致命方式處理。
type Client interface {
	Converse(ctx context.Context, userText string, p persona.Persona, history []chat.Message) (*chat.TurnResult, error)
	Summarize(ctx context.Context, p persona.Persona, history []chat.Message) (*chat.HealingStory, error)
}

// ErrNotConfigured is returned by the disabled client on every call.
var ErrNotConfigured = errors.New("counsel: no model provider configured")

// NewClient builds the provider selected by configuration.
func NewClient(ctx context.Context, cfg config.AIConfig) (Client, error) {
	switch cfg.Provider {
	case config.ProviderArk:
		return newArkClient(ctx, cfg)
	case config.ProviderGemini:
		return newGeminiClient(ctx, cfg)
	case config.ProviderOpenAI:
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("counsel: unknown provider %q", cfg.Provider)
	}
}

// Disabled returns a client that fails every call. Sessions still work:
// each turn degrades into the orchestrator's inline apology path.
func Disabled() Client {
	return disabledClient{}
}

type disabledClient struct{}

func (disabledClient) Converse(context.Context, string, persona.Persona, []chat.Message) (*chat.TurnResult, error) {
	return nil, ErrNotConfigured
}

func (disabledClient) Summarize(context.Context, persona.Persona, []chat.Message) (*chat.HealingStory, error) {
	return nil, ErrNotConfigured
}
