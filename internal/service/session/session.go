package session

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartkeylab/heartkey/backend/internal/model/chat"
	"github.com/heartkeylab/heartkey/backend/internal/model/persona"
	"github.com/heartkeylab/heartkey/backend/internal/service/counsel"
)

// 開場探針：諮商開始時代替使用者送出的第一輪輸入，不會出現在歷史中。
const openingProbe = "(諮商開始。來訪者靜靜地走進房間。)"

const journeyStart = "踏上旅程"

// Session owns one conversation's full lifecycle: append-only history, the
// journey timeline, derived state from the latest completed turn, and the
// two mutually independent busy flags (turn and story). All methods are safe
// for concurrent use; at most one turn and one story are ever in flight.
type Session struct {
	id        string
	persona   persona.Persona
	client    counsel.Client
	effects   Effects
	createdAt time.Time

	// sleep and now are injectable for tests.
	sleep func(time.Duration)
	now   func() time.Time

	mu            sync.Mutex
	history       []chat.Message
	journey       []chat.JourneyPoint
	progress      int
	status        string
	emotion       chat.Emotion
	busy          bool
	storyBusy     bool
	pendingStory  bool
	journeyOpen   bool
	unreadJourney bool
	pickerOpen    bool
	story         *chat.HealingStory
	storyOpen     bool
	closed        bool
}

type command int

const commandAutoStory command = iota

func newSession(id string, p persona.Persona, client counsel.Client, effects Effects, now func() time.Time) *Session {
	if effects == nil {
		effects = NopEffects{}
	}
	if now == nil {
		now = time.Now
	}
	s := &Session{
		id:        id,
		persona:   p,
		client:    client,
		effects:   effects,
		createdAt: now(),
		sleep:     time.Sleep,
		now:       now,
		emotion:   chat.EmotionNeutral,
	}
	// 時間軸永不為空：第一個點在任何模型呼叫完成前就已存在。
	s.journey = []chat.JourneyPoint{{
		Timestamp:   s.now(),
		Description: journeyStart,
		Emotion:     chat.EmotionNeutral,
	}}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Persona returns the archetype this session is bound to.
func (s *Session) Persona() persona.Persona { return s.persona }

// Begin runs the synthetic init turn: an opening probe with empty history,
// folded like a normal turn but with no user message appended. No pacing
// delays apply here.
func (s *Session) Begin(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.busy {
		s.mu.Unlock()
		return
	}
	s.busy = true
	s.mu.Unlock()

	result, err := s.client.Converse(ctx, openingProbe, s.persona, nil)

	s.mu.Lock()
	s.busy = false
	if s.closed {
		s.mu.Unlock()
		return
	}
	var notify []func()
	if err != nil {
		log.Printf("[session] init turn failed session=%s: %v", s.id, err)
		notify = s.appendFallbackLocked(err)
	} else {
		var cmds []command
		cmds, notify = s.foldLocked(*result)
		s.runCommands(cmds)
	}
	s.mu.Unlock()
	emit(notify)
}

// SendMessage runs one user turn. Empty text and sends while busy are
// rejected without side effects. Turn failures are surfaced inline as an
// apologetic counselor message, never as an error return.
func (s *Session) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	s.busy = true
	s.pickerOpen = false
	// 呼叫用的是附加前的歷史快照，與樂觀附加互不影響。
	historyBefore := append([]chat.Message(nil), s.history...)
	s.history = append(s.history, chat.Message{
		ID:        uuid.NewString(),
		SessionID: s.id,
		Role:      chat.RoleUser,
		Text:      text,
		CreatedAt: s.now(),
	})
	s.mu.Unlock()

	s.effects.MessageSent(s.id)

	result, err := s.converseWithPacing(ctx, text, historyBefore)

	s.mu.Lock()
	s.busy = false
	if s.closed {
		// 會話已拆除，遲到的結果直接丟棄。
		s.mu.Unlock()
		return nil
	}
	var notify []func()
	if err != nil {
		log.Printf("[session] turn failed session=%s: %v", s.id, err)
		notify = s.appendFallbackLocked(err)
	} else {
		var cmds []command
		cmds, notify = s.foldLocked(*result)
		s.runCommands(cmds)
	}
	s.mu.Unlock()
	emit(notify)
	return nil
}

// converseWithPacing overlaps the model call with the reading delay (the
// turn resolves no earlier than both), then waits the typing delay before
// handing the result back.
func (s *Session) converseWithPacing(ctx context.Context, text string, history []chat.Message) (*chat.TurnResult, error) {
	type outcome struct {
		result *chat.TurnResult
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		result, err := s.client.Converse(ctx, text, s.persona, history)
		ch <- outcome{result: result, err: err}
	}()

	s.sleep(readingDelay(text))
	out := <-ch
	if out.err != nil {
		return nil, out.err
	}

	s.sleep(typingDelay(out.result.Text))
	return out.result, nil
}

// emit runs collected effect notifications. Adapters may do network I/O,
// so notifications are only ever emitted with s.mu released.
func emit(notify []func()) {
	for _, fn := range notify {
		fn()
	}
}

// foldLocked merges a completed turn into session state. It returns the
// commands the caller must execute afterwards plus the effect
// notifications to emit once the lock is released. Callers hold s.mu.
func (s *Session) foldLocked(result chat.TurnResult) ([]command, []func()) {
	s.history = append(s.history, chat.Message{
		ID:            uuid.NewString(),
		SessionID:     s.id,
		Role:          chat.RoleModel,
		Text:          result.Text,
		Insight:       result.Insight,
		PracticalStep: result.PracticalStep,
		CreatedAt:     s.now(),
	})
	// 最後一輪永遠覆寫，不做平滑。
	s.progress = result.Progress
	s.status = result.Status
	s.emotion = result.Emotion()

	var notify []func()
	if turningPoint := strings.TrimSpace(result.NewTurningPoint); turningPoint != "" {
		last := s.journey[len(s.journey)-1]
		if last.Description != turningPoint {
			point := chat.JourneyPoint{
				Timestamp:   s.now(),
				Description: turningPoint,
				Emotion:     result.Emotion(),
			}
			s.journey = append(s.journey, point)
			if !s.journeyOpen {
				s.unreadJourney = true
			}
			notify = append(notify, func() { s.effects.JourneyExtended(s.id, point) })
		}
	}

	if result.SuggestEmotionNaming {
		s.pickerOpen = true
		notify = append(notify, func() { s.effects.EmotionNamingSuggested(s.id) })
	}
	if result.SuggestStory {
		s.pendingStory = true
	}

	notify = append(notify, func() { s.effects.TurnCompleted(s.id, result) })

	var cmds []command
	if s.pendingStory && !s.storyBusy && len(s.history) >= 2 {
		s.pendingStory = false
		cmds = append(cmds, commandAutoStory)
	}
	return cmds, notify
}

// runCommands executes the post-fold command list. Callers hold s.mu.
func (s *Session) runCommands(cmds []command) {
	for _, cmd := range cmds {
		if cmd == commandAutoStory {
			go s.autoStory()
		}
	}
}

// appendFallbackLocked surfaces a failed turn as an inline counselor
// message and returns the deferred failure notification.
// progress/status/emotion stay untouched. Callers hold s.mu.
func (s *Session) appendFallbackLocked(err error) []func() {
	s.history = append(s.history, chat.Message{
		ID:        uuid.NewString(),
		SessionID: s.id,
		Role:      chat.RoleModel,
		Text:      apologyFor(err),
		IsError:   true,
		CreatedAt: s.now(),
	})
	quota := classifyFailure(err) == failureQuota
	return []func(){func() { s.effects.TurnFailed(s.id, quota) }}
}

// PickQuickEmotion routes a one-tap emotion through the normal send path.
func (s *Session) PickQuickEmotion(ctx context.Context, icon, label string) error {
	return s.SendMessage(ctx, icon+" (覺得"+label+")")
}

// PickNamedEmotion routes an emotion-card selection through the normal send
// path.
func (s *Session) PickNamedEmotion(ctx context.Context, label, value string) error {
	return s.SendMessage(ctx, "(我選擇了「"+label+"」情緒卡) 我覺得..."+value)
}

// RequestStory generates a healing story on demand. Gated: the conversation
// must be at least three messages deep and no other story request may be in
// flight. A nil story or a failed call degrades to an inline apology.
func (s *Session) RequestStory(ctx context.Context) (*chat.HealingStory, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if s.storyBusy {
		s.mu.Unlock()
		return nil, ErrStoryBusy
	}
	if len(s.history) < 3 {
		s.mu.Unlock()
		return nil, ErrStoryLocked
	}
	s.storyBusy = true
	historyCopy := append([]chat.Message(nil), s.history...)
	s.mu.Unlock()

	return s.finishStory(s.client.Summarize(ctx, s.persona, historyCopy))
}

// autoStory is the reactive arm of the suggestStory flag. It bypasses the
// manual depth gate (the fold already checked its own) but still honors the
// single-flight story guard.
func (s *Session) autoStory() {
	s.mu.Lock()
	if s.closed || s.storyBusy {
		s.mu.Unlock()
		return
	}
	s.storyBusy = true
	historyCopy := append([]chat.Message(nil), s.history...)
	s.mu.Unlock()

	story, err := s.client.Summarize(context.Background(), s.persona, historyCopy)
	if _, ferr := s.finishStory(story, err); ferr != nil {
		log.Printf("[session] auto story dropped session=%s: %v", s.id, ferr)
	}
}

// finishStory resolves a story attempt. Story failures are never fatal: they
// append their own apology and leave every other state untouched.
func (s *Session) finishStory(story *chat.HealingStory, err error) (*chat.HealingStory, error) {
	s.mu.Lock()
	s.storyBusy = false
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if err != nil || story == nil {
		if err != nil {
			log.Printf("[session] story failed session=%s: %v", s.id, err)
		}
		s.history = append(s.history, chat.Message{
			ID:        uuid.NewString(),
			SessionID: s.id,
			Role:      chat.RoleModel,
			Text:      storyApology,
			IsError:   true,
			CreatedAt: s.now(),
		})
		s.mu.Unlock()
		s.effects.StoryFailed(s.id)
		return nil, nil
	}
	s.story = story
	s.storyOpen = true
	s.mu.Unlock()
	s.effects.StoryUnlocked(s.id, *story)
	return story, nil
}

// ToggleJourneyView flips the journey panel. Opening it clears the unread
// badge. Returns the new open state.
func (s *Session) ToggleJourneyView() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.journeyOpen {
		s.unreadJourney = false
	}
	s.journeyOpen = !s.journeyOpen
	return s.journeyOpen
}

// DismissEmotionPicker closes the naming picker overlay.
func (s *Session) DismissEmotionPicker() {
	s.mu.Lock()
	s.pickerOpen = false
	s.mu.Unlock()
}

// DismissStory discards the ephemeral story overlay.
func (s *Session) DismissStory() {
	s.mu.Lock()
	s.story = nil
	s.storyOpen = false
	s.mu.Unlock()
}

// Close tears the session down. Pending resolutions become no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Snapshot is the read model the presentation layer renders.
type Snapshot struct {
	ID            string              `json:"id"`
	PersonaID     string              `json:"personaId"`
	CreatedAt     time.Time           `json:"createdAt"`
	History       []chat.Message      `json:"history"`
	Journey       []chat.JourneyPoint `json:"journey"`
	Progress      int                 `json:"progress"`
	Status        string              `json:"status"`
	Emotion       chat.Emotion        `json:"emotion"`
	EmotionColor  string              `json:"emotionColor"`
	Busy          bool                `json:"busy"`
	StoryBusy     bool                `json:"storyBusy"`
	JourneyOpen   bool                `json:"journeyOpen"`
	UnreadJourney bool                `json:"unreadJourney"`
	PickerOpen    bool                `json:"pickerOpen"`
	StoryOpen     bool                `json:"storyOpen"`
	Story         *chat.HealingStory  `json:"story,omitempty"`
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:            s.id,
		PersonaID:     s.persona.ID,
		CreatedAt:     s.createdAt,
		History:       append([]chat.Message(nil), s.history...),
		Journey:       append([]chat.JourneyPoint(nil), s.journey...),
		Progress:      s.progress,
		Status:        s.status,
		Emotion:       s.emotion,
		EmotionColor:  chat.EmotionColors[s.emotion],
		Busy:          s.busy,
		StoryBusy:     s.storyBusy,
		JourneyOpen:   s.journeyOpen,
		UnreadJourney: s.unreadJourney,
		PickerOpen:    s.pickerOpen,
		StoryOpen:     s.storyOpen,
		Story:         s.story,
	}
}
