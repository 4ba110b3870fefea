package chat

import "time"

// TurnResult is the structured payload the counselor model returns for one
// turn. It is never stored as-is; the orchestrator folds its fields into
// session state. The jsonschema tags feed the structured-output schema sent
// to (or embedded in the prompt of) the model providers.
type TurnResult struct {
	Text                 string `json:"text" jsonschema:"required,description=給使用者的回應，口語化、溫暖但有深度"`
	Progress             int    `json:"progress" jsonschema:"required,minimum=0,maximum=100,description=0-100 評估使用者目前的心結解開程度"`
	Status               string `json:"status" jsonschema:"required,description=簡短描述當前狀態，例如：防備中、宣洩中、稍有釋懷、看見曙光"`
	DetectedEmotion      string `json:"detectedEmotion" jsonschema:"required,enum=neutral,enum=anxiety,enum=sadness,enum=anger,enum=calm,enum=joy,enum=fear,enum=hope"`
	NewTurningPoint      string `json:"newTurningPoint,omitempty" jsonschema:"description=若使用者的認知發生重大轉變，用一句話描述；普通對話留空"`
	SuggestEmotionNaming bool   `json:"suggestEmotionNaming,omitempty" jsonschema:"description=使用者情緒混亂、無法辨識感受時設為 true"`
	SuggestStory         bool   `json:"suggestStory,omitempty" jsonschema:"description=對話已深入且使用者需要總結或撫慰時設為 true"`
	Insight              string `json:"insight,omitempty" jsonschema:"description=一句簡短的心靈洞見，像諮商筆記上的金句"`
	PracticalStep        string `json:"practicalStep,omitempty" jsonschema:"description=一個極其微小的行動建議，只在時機合適時提供"`
}

// Emotion returns the validated spectrum label, defaulting to neutral when
// the model emitted something outside the contract.
func (r TurnResult) Emotion() Emotion {
	if e, ok := ParseEmotion(r.DetectedEmotion); ok {
		return e
	}
	return EmotionNeutral
}

// JourneyPoint 標記旅程時間軸上的一個轉捩點。
type JourneyPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Emotion     Emotion   `json:"emotion"`
}

// HealingStory is the on-demand allegorical micro-story. Ephemeral: it is
// regenerated each request and never appended to history.
type HealingStory struct {
	Title   string `json:"title" jsonschema:"required,description=充滿詩意的標題"`
	Content string `json:"content" jsonschema:"required,description=約150-200字的隱喻故事，結局輕輕放下、給予希望"`
}
