package session

import "github.com/heartkeylab/heartkey/backend/internal/model/chat"

// Effects receives semantic events from the orchestrator. The orchestrator
// never reaches into ambient state itself; adapters (the live WebSocket hub,
// a client-side tone player) map these events to sensory feedback.
// Callbacks may block on I/O: the orchestrator only invokes them with its
// internal lock released, so a slow adapter cannot wedge the session.
type Effects interface {
	MessageSent(sessionID string)
	TurnCompleted(sessionID string, result chat.TurnResult)
	TurnFailed(sessionID string, quota bool)
	JourneyExtended(sessionID string, point chat.JourneyPoint)
	EmotionNamingSuggested(sessionID string)
	StoryUnlocked(sessionID string, story chat.HealingStory)
	StoryFailed(sessionID string)
}

// NopEffects 是預設的空實作。
type NopEffects struct{}

func (NopEffects) MessageSent(string)                        {}
func (NopEffects) TurnCompleted(string, chat.TurnResult)     {}
func (NopEffects) TurnFailed(string, bool)                   {}
func (NopEffects) JourneyExtended(string, chat.JourneyPoint) {}
func (NopEffects) EmotionNamingSuggested(string)             {}
func (NopEffects) StoryUnlocked(string, chat.HealingStory)   {}
func (NopEffects) StoryFailed(string)                        {}
