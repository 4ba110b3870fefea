package counsel

import (
	"errors"
	"testing"
)

func TestDecodeTurnStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"text\":\"我聽到了\",\"progress\":25,\"status\":\"宣洩中\",\"detectedEmotion\":\"sadness\"}\n```"
	result, err := decodeTurn(raw, "我很難過")
	if err != nil {
		t.Fatalf("decodeTurn err: %v", err)
	}
	if result.Text != "我聽到了" || result.Progress != 25 || result.DetectedEmotion != "sadness" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestDecodeTurnRejectsEmptyReply(t *testing.T) {
	for _, raw := range []string{"", "   ", "```\n```", `{"text":"  ","progress":10}`} {
		if _, err := decodeTurn(raw, "哈囉"); !errors.Is(err, ErrEmptyReply) {
			t.Errorf("decodeTurn(%q) = %v, want ErrEmptyReply", raw, err)
		}
	}
}

func TestDecodeTurnClampsProgress(t *testing.T) {
	result, err := decodeTurn(`{"text":"好","progress":-5,"status":"防備中","detectedEmotion":"neutral"}`, "嗨")
	if err != nil {
		t.Fatalf("decodeTurn err: %v", err)
	}
	if result.Progress != 0 {
		t.Fatalf("negative progress not clamped: %d", result.Progress)
	}

	result, err = decodeTurn(`{"text":"好","progress":250,"status":"釋然","detectedEmotion":"joy"}`, "嗨")
	if err != nil {
		t.Fatalf("decodeTurn err: %v", err)
	}
	if result.Progress != 100 {
		t.Fatalf("overshoot progress not clamped: %d", result.Progress)
	}
}

func TestDecodeTurnFallsBackOnBadEmotion(t *testing.T) {
	result, err := decodeTurn(`{"text":"嗯嗯","progress":15,"status":"傾聽中","detectedEmotion":"melancholy"}`, "我好難過，一直想哭")
	if err != nil {
		t.Fatalf("decodeTurn err: %v", err)
	}
	if result.DetectedEmotion != "sadness" {
		t.Fatalf("expected heuristic fallback to sadness, got %q", result.DetectedEmotion)
	}
}

func TestDecodeStoryBlankMeansNoStory(t *testing.T) {
	story, err := decodeStory(`{"title":"","content":"  "}`)
	if err != nil {
		t.Fatalf("decodeStory err: %v", err)
	}
	if story != nil {
		t.Fatalf("blank story should be nil, got %+v", story)
	}
}

func TestDecodeStory(t *testing.T) {
	story, err := decodeStory("```json\n{\"title\":\"揹殼的蝸牛\",\"content\":\"牠終於停下來休息。\"}\n```")
	if err != nil {
		t.Fatalf("decodeStory err: %v", err)
	}
	if story == nil || story.Title != "揹殼的蝸牛" {
		t.Fatalf("unexpected story: %+v", story)
	}
}

func TestDecodeModelJSONMalformed(t *testing.T) {
	if _, err := decodeTurn(`{"text": "broken`, "嗨"); err == nil {
		t.Fatal("malformed JSON must error")
	}
}
