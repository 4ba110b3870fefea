package session

import (
	"time"
	"unicode/utf8"
)

// 模擬的節奏延遲：閱讀延遲與模型呼叫並行取 max，
// 打字延遲在模型回應後依序等待。兩者都不可取消。

const (
	readingBase    = 800 * time.Millisecond
	readingPerRune = 30 * time.Millisecond
	readingMax     = 2500 * time.Millisecond

	typingBase    = 1000 * time.Millisecond
	typingPerRune = 20 * time.Millisecond
	typingMax     = 4000 * time.Millisecond
)

func readingDelay(text string) time.Duration {
	d := readingBase + time.Duration(utf8.RuneCountInString(text))*readingPerRune
	if d > readingMax {
		d = readingMax
	}
	return d
}

// ReadingDelay exposes the reading-phase pacing so presentation layers can
// stage their progress feedback on the same clock.
func ReadingDelay(text string) time.Duration {
	return readingDelay(text)
}

func typingDelay(responseText string) time.Duration {
	d := typingBase + time.Duration(utf8.RuneCountInString(responseText))*typingPerRune
	if d > typingMax {
		d = typingMax
	}
	return d
}
