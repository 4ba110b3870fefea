package counsel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/heartkeylab/heartkey/backend/internal/config"
	"github.com/heartkeylab/heartkey/backend/internal/model/chat"
	"github.com/heartkeylab/heartkey/backend/internal/model/persona"
)

// openAIClient uses the responses API with strict JSON-schema structured
// output, so the decode step rarely sees malformed payloads.
type openAIClient struct {
	client *openai.Client
	model  string
}

func newOpenAIClient(cfg config.AIConfig) (*openAIClient, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, errors.New("counsel: OPENAI_API_KEY not set")
	}

	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))

	model := cfg.OpenAIModel
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &openAIClient{client: &client, model: model}, nil
}

func (c *openAIClient) Converse(ctx context.Context, userText string, p persona.Persona, history []chat.Message) (*chat.TurnResult, error) {
	raw, err := c.generate(ctx,
		buildTurnSystemPrompt(p, history, time.Now()),
		userText,
		"CounselTurn", turnSchema)
	if err != nil {
		return nil, err
	}
	return decodeTurn(raw, userText)
}

func (c *openAIClient) Summarize(ctx context.Context, p persona.Persona, history []chat.Message) (*chat.HealingStory, error) {
	raw, err := c.generate(ctx,
		buildStorySystemPrompt(p),
		transcript(history),
		"HealingStory", storySchema)
	if err != nil {
		return nil, err
	}
	return decodeStory(raw)
}

func (c *openAIClient) generate(ctx context.Context, instructions, input, schemaName string, schema map[string]interface{}) (string, error) {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:   schemaName,
			Schema: schema,
			Strict: openai.Bool(true),
			Type:   "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:        c.model,
		Instructions: openai.String(instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(input, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{Format: format},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("counsel: openai responses: %w", err)
	}
	return resp.OutputText(), nil
}
