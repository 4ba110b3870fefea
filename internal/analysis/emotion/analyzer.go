package emotion

import (
	"strings"

	"github.com/heartkeylab/heartkey/backend/internal/model/chat"
)

// 啟發式情緒分類。當模型回傳的 detectedEmotion 不在光譜契約內時，
// 以關鍵詞匹配推斷一個最接近的標籤，避免把未知值直接傳給前端。

var keywordBuckets = map[chat.Emotion][]string{
	chat.EmotionAnxiety: {
		"焦慮", "緊張", "不安", "擔心", "擔憂", "慌", "停不下來", "壞事", "坐立難安", "心慌",
		"anxious", "nervous", "worried", "restless", "overwhelmed",
	},
	chat.EmotionSadness: {
		"難過", "傷心", "失落", "沮喪", "悲傷", "哭", "委屈", "心碎", "低落", "想哭", "好累",
		"sad", "cry", "depressed", "upset", "hurt", "sorrow",
	},
	chat.EmotionAnger: {
		"生氣", "憤怒", "火大", "氣死", "怒", "煩死", "受夠了", "氣炸", "抓狂", "不公平",
		"angry", "furious", "rage", "mad", "annoyed",
	},
	chat.EmotionCalm: {
		"平靜", "放鬆", "安心", "穩定", "沉澱", "釋懷", "放下", "舒服", "自在",
		"calm", "relaxed", "peaceful", "settled",
	},
	chat.EmotionJoy: {
		"開心", "高興", "喜悅", "快樂", "太好了", "太棒了", "哈哈", "幸福", "滿足",
		"happy", "great", "awesome", "wonderful", "joy",
	},
	chat.EmotionFear: {
		"害怕", "恐懼", "恐慌", "不敢", "嚇", "怕", "畏懼", "退縮",
		"afraid", "scared", "fear", "terrified",
	},
	chat.EmotionHope: {
		"希望", "期待", "曙光", "溫暖", "光", "勇氣", "相信", "試試看", "一步一步",
		"hope", "hopeful", "looking forward", "believe",
	},
}

// Classify infers a spectrum label from the user utterance and the model
// reply. The reply wins when both carry signal; a silent reply inherits the
// user's emotion so the ambiance still follows the visitor.
func Classify(userUtterance, replyUtterance string) chat.Emotion {
	replyLabel, replyScore := scoreText(replyUtterance)
	if replyScore > 0 {
		return replyLabel
	}

	userLabel, userScore := scoreText(userUtterance)
	if userScore > 0 {
		return userLabel
	}

	return chat.EmotionNeutral
}

func scoreText(text string) (chat.Emotion, int) {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return chat.EmotionNeutral, 0
	}

	scores := make(map[chat.Emotion]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, strings.ToLower(word)) {
				scores[label] += 3
			}
		}
	}

	// 驚嘆號傾向正向高張力。
	if exclamations := strings.Count(text, "!") + strings.Count(text, "！"); exclamations > 0 {
		scores[chat.EmotionJoy] += exclamations * 2
	}

	best := chat.EmotionNeutral
	bestScore := 0
	for label, s := range scores {
		if s > bestScore {
			bestScore = s
			best = label
		}
	}
	return best, bestScore
}
