package chat

// Emotion 表示情緒光譜上的一個座標，驅動前端的氛圍配色。
type Emotion string

const (
	EmotionNeutral Emotion = "neutral"
	EmotionAnxiety Emotion = "anxiety"
	EmotionSadness Emotion = "sadness"
	EmotionAnger   Emotion = "anger"
	EmotionCalm    Emotion = "calm"
	EmotionJoy     Emotion = "joy"
	EmotionFear    Emotion = "fear"
	EmotionHope    Emotion = "hope"
)

// EmotionColors maps each emotion to its ambiance color.
var EmotionColors = map[Emotion]string{
	EmotionNeutral: "#a855f7",
	EmotionAnxiety: "#facc15",
	EmotionSadness: "#60a5fa",
	EmotionAnger:   "#ef4444",
	EmotionCalm:    "#34d399",
	EmotionJoy:     "#fbbf24",
	EmotionFear:    "#a78bfa",
	EmotionHope:    "#f472b6",
}

// ParseEmotion validates a model-reported emotion label.
func ParseEmotion(raw string) (Emotion, bool) {
	e := Emotion(raw)
	_, ok := EmotionColors[e]
	return e, ok
}

// QuickEmotion 是輸入列上的一鍵情緒表情。
type QuickEmotion struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// EmotionCard 是「為感受命名」選單中的情緒卡。
type EmotionCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// QuickEmotions lists the one-tap mood shortcuts shown above the input box.
var QuickEmotions = []QuickEmotion{
	{Icon: "😢", Label: "想哭"},
	{Icon: "😔", Label: "低落"},
	{Icon: "😩", Label: "好累"},
	{Icon: "💔", Label: "受傷"},
	{Icon: "😠", Label: "生氣"},
	{Icon: "🤯", Label: "煩躁"},
	{Icon: "😨", Label: "害怕"},
	{Icon: "😵", Label: "混亂"},
	{Icon: "😶", Label: "無感"},
	{Icon: "🤔", Label: "困惑"},
	{Icon: "🙄", Label: "無奈"},
	{Icon: "😮", Label: "震驚"},
	{Icon: "😌", Label: "平靜"},
	{Icon: "😊", Label: "開心"},
	{Icon: "🥰", Label: "溫暖"},
	{Icon: "✨", Label: "希望"},
}

// EmotionCards lists the named-emotion cards for the naming picker.
var EmotionCards = []EmotionCard{
	{Label: "委屈", Value: "感到委屈，像是有苦說不出"},
	{Label: "空虛", Value: "心裡空空的，好像少了什麼"},
	{Label: "焦慮", Value: "停不下來，覺得有壞事要發生"},
	{Label: "失落", Value: "原本期待的落空了，心裡沉沉的"},
	{Label: "愧疚", Value: "覺得都是我的錯，對不起別人"},
	{Label: "孤單", Value: "世界上好像只有我一個人"},
	{Label: "無力", Value: "想改變卻一點力氣都沒有"},
	{Label: "釋懷", Value: "好像終於可以放下一點點了"},
}
