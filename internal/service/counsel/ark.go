package counsel

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/heartkeylab/heartkey/backend/internal/config"
	"github.com/heartkeylab/heartkey/backend/internal/model/chat"
	"github.com/heartkeylab/heartkey/backend/internal/model/persona"
)

// arkClient drives the counselor through an eino chain backed by an Ark
// chat model. The structured-output contract rides in the system prompt;
// the reply is decoded as JSON.
type arkClient struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

func newArkClient(ctx context.Context, cfg config.AIConfig) (*arkClient, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("counsel: create ark chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("counsel: compile chat chain: %w", err)
	}

	return &arkClient{chain: runnable}, nil
}

func (c *arkClient) Converse(ctx context.Context, userText string, p persona.Persona, history []chat.Message) (*chat.TurnResult, error) {
	input := map[string]any{
		"system": buildTurnSystemPrompt(p, history, time.Now()),
		"query":  userText,
	}

	response, err := c.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("counsel: run chat chain: %w", err)
	}

	log.Printf("[counsel] ark turn reply persona=%s length=%d", p.ID, len(response.Content))
	return decodeTurn(response.Content, userText)
}

func (c *arkClient) Summarize(ctx context.Context, p persona.Persona, history []chat.Message) (*chat.HealingStory, error) {
	input := map[string]any{
		"system": buildStorySystemPrompt(p),
		"query":  transcript(history),
	}

	response, err := c.chain.Invoke(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("counsel: run story chain: %w", err)
	}

	return decodeStory(response.Content)
}
