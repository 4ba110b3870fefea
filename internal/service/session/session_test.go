package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/heartkeylab/heartkey/backend/internal/model/chat"
	"github.com/heartkeylab/heartkey/backend/internal/model/persona"
)

type stubClient struct {
	mu             sync.Mutex
	converseFn     func(userText string, history []chat.Message) (*chat.TurnResult, error)
	summarizeFn    func(history []chat.Message) (*chat.HealingStory, error)
	converseCalls  int
	summarizeCalls int
	lastUserText   string
}

func (c *stubClient) Converse(_ context.Context, userText string, _ persona.Persona, history []chat.Message) (*chat.TurnResult, error) {
	c.mu.Lock()
	c.converseCalls++
	c.lastUserText = userText
	fn := c.converseFn
	c.mu.Unlock()
	if fn == nil {
		return &chat.TurnResult{Text: "嗯。", Progress: 10, Status: "傾聽中", DetectedEmotion: "neutral"}, nil
	}
	return fn(userText, history)
}

func (c *stubClient) Summarize(_ context.Context, _ persona.Persona, history []chat.Message) (*chat.HealingStory, error) {
	c.mu.Lock()
	c.summarizeCalls++
	fn := c.summarizeFn
	c.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(history)
}

func (c *stubClient) calls() (converse, summarize int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.converseCalls, c.summarizeCalls
}

// delayRecorder replaces real sleeping so pacing can be asserted without
// slowing the suite down.
type delayRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *delayRecorder) sleep(d time.Duration) {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
}

func (r *delayRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.delays...)
}

func testPersona() persona.Persona {
	return persona.Persona{ID: "perfectionist", Title: "怕犯錯的完美主義者", PromptContext: "測試用"}
}

func newTestSession(client *stubClient) (*Session, *delayRecorder) {
	rec := &delayRecorder{}
	s := newSession("sess-1", testPersona(), client, nil, time.Now)
	s.sleep = rec.sleep
	return s, rec
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestBeginFoldsInitTurn(t *testing.T) {
	client := &stubClient{
		converseFn: func(userText string, history []chat.Message) (*chat.TurnResult, error) {
			if userText != openingProbe {
				t.Fatalf("unexpected init probe: %q", userText)
			}
			if len(history) != 0 {
				t.Fatalf("init turn must use empty history, got %d", len(history))
			}
			return &chat.TurnResult{Text: "歡迎", Progress: 10, Status: "防備中", DetectedEmotion: "neutral"}, nil
		},
	}
	s, _ := newTestSession(client)
	s.Begin(context.Background())

	snap := s.Snapshot()
	if len(snap.History) != 1 {
		t.Fatalf("expected 1 message after init, got %d", len(snap.History))
	}
	if snap.History[0].Role != chat.RoleModel {
		t.Fatalf("init turn must not append a user message")
	}
	if snap.Progress != 10 || snap.Status != "防備中" || snap.Emotion != chat.EmotionNeutral {
		t.Fatalf("unexpected folded state: %+v", snap)
	}
	if len(snap.Journey) != 1 || snap.Journey[0].Description != journeyStart {
		t.Fatalf("journey must hold only the synthesized start point, got %+v", snap.Journey)
	}
	if snap.Busy {
		t.Fatal("session should return to idle after init")
	}
}

func TestSendMessageFoldsTurn(t *testing.T) {
	client := &stubClient{}
	s, rec := newTestSession(client)
	client.converseFn = func(string, []chat.Message) (*chat.TurnResult, error) {
		return &chat.TurnResult{Text: "歡迎", Progress: 10, Status: "防備中", DetectedEmotion: "neutral"}, nil
	}
	s.Begin(context.Background())

	client.converseFn = func(userText string, history []chat.Message) (*chat.TurnResult, error) {
		if len(history) != 1 {
			t.Errorf("model call must see the pre-append history, got %d entries", len(history))
		}
		return &chat.TurnResult{
			Text:            "我聽到了",
			Progress:        25,
			Status:          "宣洩中",
			DetectedEmotion: "sadness",
			NewTurningPoint: "承認了難過",
		}, nil
	}
	if err := s.SendMessage(context.Background(), "我很難過"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.History) != 3 {
		t.Fatalf("expected 3 messages (model, user, model), got %d", len(snap.History))
	}
	if snap.History[1].Role != chat.RoleUser || snap.History[2].Role != chat.RoleModel {
		t.Fatalf("unexpected roles: %+v", snap.History)
	}
	if snap.Progress != 25 || snap.Emotion != chat.EmotionSadness {
		t.Fatalf("fold did not overwrite state: %+v", snap)
	}
	if len(snap.Journey) != 2 || snap.Journey[1].Description != "承認了難過" {
		t.Fatalf("expected journey extension, got %+v", snap.Journey)
	}
	if !snap.UnreadJourney {
		t.Fatal("journey extension with the panel closed must mark unread")
	}

	delays := rec.recorded()
	if len(delays) != 2 {
		t.Fatalf("expected reading+typing delays, got %v", delays)
	}
	wantReading := readingDelay("我很難過")
	wantTyping := typingDelay("我聽到了")
	if delays[0] != wantReading || delays[1] != wantTyping {
		t.Fatalf("delays = %v, want [%v %v]", delays, wantReading, wantTyping)
	}
}

func TestPacingDelays(t *testing.T) {
	if got := readingDelay(""); got != 800*time.Millisecond {
		t.Fatalf("empty reading delay = %v", got)
	}
	if got := readingDelay(strings.Repeat("好", 4)); got != 920*time.Millisecond {
		t.Fatalf("4-rune reading delay = %v", got)
	}
	if got := readingDelay(strings.Repeat("長", 500)); got != 2500*time.Millisecond {
		t.Fatalf("reading delay must cap at 2.5s, got %v", got)
	}
	if got := typingDelay(strings.Repeat("字", 500)); got != 4000*time.Millisecond {
		t.Fatalf("typing delay must cap at 4s, got %v", got)
	}
}

func TestHistoryAppendOnly(t *testing.T) {
	client := &stubClient{}
	s, _ := newTestSession(client)
	s.Begin(context.Background())

	firstText := s.Snapshot().History[0].Text
	lengths := []int{len(s.Snapshot().History)}
	for _, msg := range []string{"第一句", "第二句", "第三句"} {
		if err := s.SendMessage(context.Background(), msg); err != nil {
			t.Fatalf("SendMessage err: %v", err)
		}
		snap := s.Snapshot()
		lengths = append(lengths, len(snap.History))
		if snap.History[0].Text != firstText {
			t.Fatal("existing history entry mutated")
		}
	}
	for i := 1; i < len(lengths); i++ {
		if lengths[i] < lengths[i-1] {
			t.Fatalf("history shrank: %v", lengths)
		}
	}
}

func TestBusyMutualExclusion(t *testing.T) {
	release := make(chan struct{})
	client := &stubClient{
		converseFn: func(string, []chat.Message) (*chat.TurnResult, error) {
			<-release
			return &chat.TurnResult{Text: "好", Progress: 5, Status: "傾聽中", DetectedEmotion: "neutral"}, nil
		},
	}
	s, _ := newTestSession(client)

	done := make(chan error, 1)
	go func() { done <- s.SendMessage(context.Background(), "第一則") }()
	waitFor(t, func() bool { return s.Snapshot().Busy })

	if err := s.SendMessage(context.Background(), "插隊"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	converse, _ := client.calls()
	if converse != 1 {
		t.Fatalf("second send must not issue a model call, calls=%d", converse)
	}
	if got := len(s.Snapshot().History); got != 1 {
		t.Fatalf("second send must not append a user message, history=%d", got)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first send err: %v", err)
	}
}

func TestJourneyConsecutiveDedup(t *testing.T) {
	client := &stubClient{
		converseFn: func(string, []chat.Message) (*chat.TurnResult, error) {
			return &chat.TurnResult{Text: "嗯", Progress: 30, Status: "宣洩中", DetectedEmotion: "sadness", NewTurningPoint: "承認了難過"}, nil
		},
	}
	s, _ := newTestSession(client)
	for _, msg := range []string{"一", "二"} {
		if err := s.SendMessage(context.Background(), msg); err != nil {
			t.Fatalf("SendMessage err: %v", err)
		}
	}
	journey := s.Snapshot().Journey
	if len(journey) != 2 {
		t.Fatalf("duplicate consecutive turning points must collapse, got %+v", journey)
	}
}

func TestQuotaScenario(t *testing.T) {
	client := &stubClient{}
	s, _ := newTestSession(client)
	s.Begin(context.Background())
	before := s.Snapshot()

	client.converseFn = func(string, []chat.Message) (*chat.TurnResult, error) {
		return nil, errors.New("HTTP 429: too many requests")
	}
	if err := s.SendMessage(context.Background(), "還在嗎"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.History) != len(before.History)+2 {
		t.Fatalf("expected user message plus one fallback, got %d -> %d", len(before.History), len(snap.History))
	}
	last := snap.History[len(snap.History)-1]
	if !last.IsError || last.Role != chat.RoleModel {
		t.Fatalf("fallback must be an error-flagged model message: %+v", last)
	}
	if last.Text != quotaApology {
		t.Fatalf("expected quota apology, got %q", last.Text)
	}
	if snap.Busy {
		t.Fatal("busy must reset after a failed turn")
	}
	if snap.Progress != before.Progress || snap.Status != before.Status || snap.Emotion != before.Emotion {
		t.Fatal("failed turn must leave progress/status/emotion untouched")
	}
}

func TestGenericFailureApology(t *testing.T) {
	client := &stubClient{
		converseFn: func(string, []chat.Message) (*chat.TurnResult, error) {
			return nil, errors.New("network down")
		},
	}
	s, _ := newTestSession(client)
	if err := s.SendMessage(context.Background(), "哈囉"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	last := s.Snapshot().History[1]
	if last.Text != genericApology {
		t.Fatalf("expected generic apology, got %q", last.Text)
	}
}

func TestStoryGatingDepth(t *testing.T) {
	client := &stubClient{}
	s, _ := newTestSession(client)
	s.Begin(context.Background())

	if _, err := s.RequestStory(context.Background()); !errors.Is(err, ErrStoryLocked) {
		t.Fatalf("expected ErrStoryLocked, got %v", err)
	}
	if _, summarize := client.calls(); summarize != 0 {
		t.Fatalf("locked story request must not issue a call, calls=%d", summarize)
	}
}

func TestStoryGatingSingleFlight(t *testing.T) {
	release := make(chan struct{})
	client := &stubClient{
		summarizeFn: func([]chat.Message) (*chat.HealingStory, error) {
			<-release
			return &chat.HealingStory{Title: "微光", Content: "故事"}, nil
		},
	}
	s, _ := newTestSession(client)
	s.Begin(context.Background())
	for _, msg := range []string{"一", "二"} {
		if err := s.SendMessage(context.Background(), msg); err != nil {
			t.Fatalf("SendMessage err: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := s.RequestStory(context.Background()); err != nil {
			t.Errorf("first story request err: %v", err)
		}
	}()
	waitFor(t, func() bool { return s.Snapshot().StoryBusy })

	if _, err := s.RequestStory(context.Background()); !errors.Is(err, ErrStoryBusy) {
		t.Fatalf("expected ErrStoryBusy, got %v", err)
	}
	close(release)
	<-done

	if _, summarize := client.calls(); summarize != 1 {
		t.Fatalf("overlapping story requests must collapse to one call, calls=%d", summarize)
	}
	snap := s.Snapshot()
	if snap.Story == nil || !snap.StoryOpen {
		t.Fatal("completed story must populate the overlay")
	}
}

func TestAutoStoryTrigger(t *testing.T) {
	storyDone := make(chan struct{})
	client := &stubClient{
		summarizeFn: func([]chat.Message) (*chat.HealingStory, error) {
			defer close(storyDone)
			return &chat.HealingStory{Title: "微光", Content: "故事"}, nil
		},
	}
	s, _ := newTestSession(client)
	s.Begin(context.Background())

	client.converseFn = func(string, []chat.Message) (*chat.TurnResult, error) {
		return &chat.TurnResult{Text: "或許該聽個故事", Progress: 60, Status: "稍有釋懷", DetectedEmotion: "hope", SuggestStory: true}, nil
	}
	if err := s.SendMessage(context.Background(), "說來聽聽"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}

	select {
	case <-storyDone:
	case <-time.After(2 * time.Second):
		t.Fatal("auto story was never generated")
	}
	waitFor(t, func() bool { return !s.Snapshot().StoryBusy })

	if _, summarize := client.calls(); summarize != 1 {
		t.Fatalf("suggestStory must trigger exactly one story call, calls=%d", summarize)
	}
	s.mu.Lock()
	pending := s.pendingStory
	s.mu.Unlock()
	if pending {
		t.Fatal("pending story trigger must clear once consumed")
	}
}

func TestStoryFailureIsNonFatal(t *testing.T) {
	client := &stubClient{
		summarizeFn: func([]chat.Message) (*chat.HealingStory, error) {
			return nil, nil // no story available
		},
	}
	s, _ := newTestSession(client)
	s.Begin(context.Background())
	for _, msg := range []string{"一", "二"} {
		if err := s.SendMessage(context.Background(), msg); err != nil {
			t.Fatalf("SendMessage err: %v", err)
		}
	}
	before := len(s.Snapshot().History)

	story, err := s.RequestStory(context.Background())
	if err != nil || story != nil {
		t.Fatalf("nil story must degrade, got story=%v err=%v", story, err)
	}
	snap := s.Snapshot()
	if len(snap.History) != before+1 {
		t.Fatalf("expected one apology message, history %d -> %d", before, len(snap.History))
	}
	last := snap.History[len(snap.History)-1]
	if !last.IsError || last.Text != storyApology {
		t.Fatalf("unexpected story fallback: %+v", last)
	}
	if snap.StoryBusy {
		t.Fatal("story flag must reset so future attempts stay possible")
	}
}

func TestInputAdaptersRouteThroughSend(t *testing.T) {
	client := &stubClient{}
	s, _ := newTestSession(client)

	if err := s.PickQuickEmotion(context.Background(), "😢", "想哭"); err != nil {
		t.Fatalf("PickQuickEmotion err: %v", err)
	}
	client.mu.Lock()
	quickText := client.lastUserText
	client.mu.Unlock()
	if !strings.Contains(quickText, "😢") || !strings.Contains(quickText, "想哭") {
		t.Fatalf("quick emotion text missing parts: %q", quickText)
	}

	if err := s.PickNamedEmotion(context.Background(), "委屈", "感到委屈，像是有苦說不出"); err != nil {
		t.Fatalf("PickNamedEmotion err: %v", err)
	}
	client.mu.Lock()
	cardText := client.lastUserText
	client.mu.Unlock()
	if !strings.Contains(cardText, "「委屈」情緒卡") {
		t.Fatalf("card text missing label: %q", cardText)
	}

	snap := s.Snapshot()
	if len(snap.History) != 4 {
		t.Fatalf("adapters must append history like normal sends, got %d", len(snap.History))
	}
}

func TestSendRejectsEmptyText(t *testing.T) {
	client := &stubClient{}
	s, _ := newTestSession(client)
	if err := s.SendMessage(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if converse, _ := client.calls(); converse != 0 {
		t.Fatal("empty send must not reach the model")
	}
}

func TestFoldAfterTeardownIsNoop(t *testing.T) {
	release := make(chan struct{})
	client := &stubClient{
		converseFn: func(string, []chat.Message) (*chat.TurnResult, error) {
			<-release
			return &chat.TurnResult{Text: "遲到的回應", Progress: 50, Status: "宣洩中", DetectedEmotion: "calm"}, nil
		},
	}
	s, _ := newTestSession(client)

	done := make(chan error, 1)
	go func() { done <- s.SendMessage(context.Background(), "你好") }()
	waitFor(t, func() bool { return s.Snapshot().Busy })

	s.Close()
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("in-flight send err: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.History) != 1 {
		t.Fatalf("late resolution must not fold into a closed session, history=%d", len(snap.History))
	}
	if snap.Progress != 0 {
		t.Fatalf("closed session state mutated: %+v", snap)
	}
}

// stallingEffects parks inside TurnCompleted, standing in for an adapter
// stuck on slow network I/O.
type stallingEffects struct {
	NopEffects
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (e *stallingEffects) TurnCompleted(string, chat.TurnResult) {
	e.once.Do(func() { close(e.entered) })
	<-e.release
}

func TestStalledEffectsAdapterDoesNotBlockSession(t *testing.T) {
	eff := &stallingEffects{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	client := &stubClient{}
	rec := &delayRecorder{}
	s := newSession("sess-1", testPersona(), client, eff, time.Now)
	s.sleep = rec.sleep

	done := make(chan error, 1)
	go func() { done <- s.SendMessage(context.Background(), "你好") }()

	select {
	case <-eff.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("effects adapter was never invoked")
	}

	// 轉折已摺疊完成，慢速配接器不得扣住會話狀態。
	snapDone := make(chan Snapshot, 1)
	go func() { snapDone <- s.Snapshot() }()
	select {
	case snap := <-snapDone:
		if len(snap.History) != 2 {
			t.Fatalf("fold must complete before notifications, history=%d", len(snap.History))
		}
		if snap.Busy {
			t.Fatal("busy must clear before notifications")
		}
	case <-time.After(time.Second):
		t.Fatal("snapshot blocked while the effects adapter stalled")
	}

	close(eff.release)
	if err := <-done; err != nil {
		t.Fatalf("first send err: %v", err)
	}

	if err := s.SendMessage(context.Background(), "再來一句"); err != nil {
		t.Fatalf("session did not recover after the adapter stall: %v", err)
	}
	if got := len(s.Snapshot().History); got != 4 {
		t.Fatalf("expected 4 messages after the second turn, got %d", got)
	}
}

func TestEmotionPickerOverlay(t *testing.T) {
	client := &stubClient{
		converseFn: func(string, []chat.Message) (*chat.TurnResult, error) {
			return &chat.TurnResult{Text: "說說看", Progress: 20, Status: "探索中", DetectedEmotion: "anxiety", SuggestEmotionNaming: true}, nil
		},
	}
	s, _ := newTestSession(client)
	if err := s.SendMessage(context.Background(), "我不知道我怎麼了"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if !s.Snapshot().PickerOpen {
		t.Fatal("suggestEmotionNaming must open the picker")
	}
	s.DismissEmotionPicker()
	if s.Snapshot().PickerOpen {
		t.Fatal("dismiss must close the picker")
	}
}

func TestJourneyToggleClearsUnread(t *testing.T) {
	client := &stubClient{
		converseFn: func(string, []chat.Message) (*chat.TurnResult, error) {
			return &chat.TurnResult{Text: "嗯", Progress: 40, Status: "宣洩中", DetectedEmotion: "sadness", NewTurningPoint: "看見了壓抑"}, nil
		},
	}
	s, _ := newTestSession(client)
	if err := s.SendMessage(context.Background(), "心事"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if !s.Snapshot().UnreadJourney {
		t.Fatal("expected unread badge")
	}
	if open := s.ToggleJourneyView(); !open {
		t.Fatal("first toggle should open the panel")
	}
	if s.Snapshot().UnreadJourney {
		t.Fatal("opening the panel must clear unread")
	}
}
