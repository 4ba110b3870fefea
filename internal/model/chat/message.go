package chat

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message 紀錄單一對話輪次。History 只增不改：訊息一旦附加就不再變動。
type Message struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"sessionId"`
	Role          Role      `json:"role"`
	Text          string    `json:"text"`
	IsError       bool      `json:"isError,omitempty"`
	Insight       string    `json:"insight,omitempty"`
	PracticalStep string    `json:"practicalStep,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
