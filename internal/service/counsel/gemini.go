package counsel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/heartkeylab/heartkey/backend/internal/config"
	"github.com/heartkeylab/heartkey/backend/internal/model/chat"
	"github.com/heartkeylab/heartkey/backend/internal/model/persona"
)

// geminiClient talks to the Gemini API with a response schema so the model
// is forced onto the TurnResult/HealingStory contract.
type geminiClient struct {
	client *genai.Client
	model  string
}

func newGeminiClient(ctx context.Context, cfg config.AIConfig) (*geminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("counsel: GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("counsel: create gemini client: %w", err)
	}

	model := cfg.GeminiModel
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &geminiClient{client: client, model: model}, nil
}

var turnResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"text":     {Type: genai.TypeString},
		"progress": {Type: genai.TypeInteger, Minimum: genai.Ptr(0.0), Maximum: genai.Ptr(100.0)},
		"status":   {Type: genai.TypeString},
		"detectedEmotion": {
			Type: genai.TypeString,
			Enum: []string{"neutral", "anxiety", "sadness", "anger", "calm", "joy", "fear", "hope"},
		},
		"newTurningPoint":      {Type: genai.TypeString},
		"suggestEmotionNaming": {Type: genai.TypeBoolean},
		"suggestStory":         {Type: genai.TypeBoolean},
		"insight":              {Type: genai.TypeString},
		"practicalStep":        {Type: genai.TypeString},
	},
	PropertyOrdering: []string{"text", "progress", "status", "detectedEmotion", "newTurningPoint", "suggestEmotionNaming", "suggestStory", "insight", "practicalStep"},
}

var storyResponseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":   {Type: genai.TypeString},
		"content": {Type: genai.TypeString},
	},
	PropertyOrdering: []string{"title", "content"},
}

func (c *geminiClient) Converse(ctx context.Context, userText string, p persona.Persona, history []chat.Message) (*chat.TurnResult, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(buildTurnSystemPrompt(p, history, time.Now()), genai.RoleUser),
		ResponseSchema:    turnResponseSchema,
		// 較高溫度換取不那麼機械的回應。
		Temperature: genai.Ptr[float32](1.2),
	}

	raw, err := c.generate(ctx, userText, cfg)
	if err != nil {
		return nil, err
	}
	return decodeTurn(raw, userText)
}

func (c *geminiClient) Summarize(ctx context.Context, p persona.Persona, history []chat.Message) (*chat.HealingStory, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(buildStorySystemPrompt(p), genai.RoleUser),
		ResponseSchema:    storyResponseSchema,
	}

	raw, err := c.generate(ctx, transcript(history), cfg)
	if err != nil {
		return nil, err
	}
	return decodeStory(raw)
}

func (c *geminiClient) generate(ctx context.Context, contents string, cfg *genai.GenerateContentConfig) (string, error) {
	res, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(contents), cfg)
	if err != nil {
		return "", fmt.Errorf("counsel: gemini generate: %w", err)
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyReply
	}
	return res.Candidates[0].Content.Parts[0].Text, nil
}
