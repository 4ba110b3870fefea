package counsel

import (
	"encoding/json"
	"fmt"
	"strings"

	analysis "github.com/heartkeylab/heartkey/backend/internal/analysis/emotion"
	"github.com/heartkeylab/heartkey/backend/internal/model/chat"
)

// decodeModelJSON unmarshals a model reply, tolerating markdown code fences
// some providers wrap around JSON output.
func decodeModelJSON(raw string, out interface{}) error {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}
	if cleaned == "" {
		return ErrEmptyReply
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("counsel: decode model json: %w", err)
	}
	return nil
}

// decodeTurn parses and hardens a turn payload: empty text is an error,
// progress is clamped, and an off-contract emotion label falls back to the
// heuristic classifier.
func decodeTurn(raw, userText string) (*chat.TurnResult, error) {
	var result chat.TurnResult
	if err := decodeModelJSON(raw, &result); err != nil {
		return nil, err
	}
	if strings.TrimSpace(result.Text) == "" {
		return nil, ErrEmptyReply
	}

	if result.Progress < 0 {
		result.Progress = 0
	}
	if result.Progress > 100 {
		result.Progress = 100
	}

	if _, ok := chat.ParseEmotion(result.DetectedEmotion); !ok {
		result.DetectedEmotion = string(analysis.Classify(userText, result.Text))
	}

	return &result, nil
}

// decodeStory parses a story payload. A blank story counts as "no story".
func decodeStory(raw string) (*chat.HealingStory, error) {
	var story chat.HealingStory
	if err := decodeModelJSON(raw, &story); err != nil {
		return nil, err
	}
	if strings.TrimSpace(story.Title) == "" && strings.TrimSpace(story.Content) == "" {
		return nil, nil
	}
	return &story, nil
}
