package session

import "strings"

// 上游協作方不保證結構化錯誤碼，只能對錯誤文字做字串嗅探。
// 這份簽名清單就是完整契約，不是舉例。

type failureKind int

const (
	failureGeneric failureKind = iota
	failureQuota
)

var quotaSignatures = []string{"429", "quota", "resource_exhausted"}

// classifyFailure maps a turn failure onto the apology taxonomy by
// case-insensitive substring match over the error text.
func classifyFailure(err error) failureKind {
	if err == nil {
		return failureGeneric
	}
	text := strings.ToLower(err.Error())
	for _, signature := range quotaSignatures {
		if strings.Contains(text, signature) {
			return failureQuota
		}
	}
	return failureGeneric
}

const (
	genericApology = "連線似乎有些不穩，請再試一次。"
	quotaApology   = "目前心靈連結過於頻繁（已達 API 額度上限），請深呼吸休息一分鐘後再試。"
	storyApology   = "(微光故事暫時無法顯現...可能是心靈連結過於頻繁，請稍作休息後再試。)"
)

func apologyFor(err error) string {
	if classifyFailure(err) == failureQuota {
		return quotaApology
	}
	return genericApology
}
