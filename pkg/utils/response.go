package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

// RespondJSON 發送JSON響應。快照與目錄端點一律經由這裡輸出。
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// RespondError 以 {"error": ...} 包裝錯誤訊息；狀態碼由呼叫端依
// 服務層哨兵錯誤決定。
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}
