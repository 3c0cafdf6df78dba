package usecase

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tercuman/internal/domain"
	"tercuman/internal/ports"
)

// noTranscriptPlaceholder fills the input side of a committed pair when
// the service detected speech but produced no transcript text.
const noTranscriptPlaceholder = "(speech detected, no transcript)"

// commitEngine owns the two live utterance buffers and the committed
// conversation history. Exactly one buffer pair is live at any time;
// both reset atomically on commit.
type commitEngine struct {
	detect   func(string) domain.Language
	recorder ports.WordRecorder
	events   ports.EventSink
	now      func() time.Time

	mu          sync.Mutex
	inputText   string
	outputText  string
	inputFinal  bool
	outputFinal bool
	history     []domain.ConversationPair
}

func newCommitEngine(detect func(string) domain.Language, recorder ports.WordRecorder, events ports.EventSink) *commitEngine {
	return &commitEngine{
		detect:   detect,
		recorder: recorder,
		events:   events,
		now:      time.Now,
	}
}

// Apply folds one transcript event into the live buffers. Partial and
// final events both carry the full current-utterance snapshot, so they
// replace the buffer rather than append. Returns true when the engine
// has seen an utterance boundary and the caller should commit.
func (e *commitEngine) Apply(event domain.InterpreterEvent) bool {
	switch event.Kind {
	case domain.EventPartialInput:
		e.setInput(event.Text, false)
	case domain.EventFinalInput:
		e.setInput(event.Text, true)
	case domain.EventPartialOutput:
		e.setOutput(event.Text, false)
	case domain.EventFinalOutput:
		e.setOutput(event.Text, true)
	case domain.EventTurnComplete:
		return true
	default:
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inputFinal && e.outputFinal
}

func (e *commitEngine) setInput(text string, final bool) {
	e.mu.Lock()
	e.inputText = text
	if final {
		e.inputFinal = true
	}
	e.mu.Unlock()
	e.events.LiveTranscript(domain.RoleInput, text)
}

func (e *commitEngine) setOutput(text string, final bool) {
	e.mu.Lock()
	e.outputText = text
	if final {
		e.outputFinal = true
	}
	e.mu.Unlock()
	e.events.LiveTranscript(domain.RoleOutput, text)
}

// Commit finalizes the current utterance pair: resolves languages per
// the active mode, reports both sides to the word recorder, appends one
// pair to history and atomically resets the buffers. A commit with two
// empty buffers is a no-op.
func (e *commitEngine) Commit(mode domain.Mode) (domain.ConversationPair, bool) {
	e.mu.Lock()
	input := strings.TrimSpace(e.inputText)
	output := strings.TrimSpace(e.outputText)
	if input == "" && output == "" {
		e.resetLocked()
		e.mu.Unlock()
		return domain.ConversationPair{}, false
	}

	inputLang := inputLanguage(mode, input, e.detect)
	outputLang := inputLang.Complement()

	e.recorder.Record(input, inputLang)
	e.recorder.Record(output, outputLang)

	if input == "" {
		input = noTranscriptPlaceholder
	}

	timestamp := e.now().UnixMilli()
	pair := domain.ConversationPair{
		ID: uuid.NewString(),
		Input: domain.TranscriptSegment{
			ID:        uuid.NewString(),
			Text:      input,
			IsFinal:   true,
			Language:  inputLang,
			Role:      domain.RoleInput,
			Timestamp: timestamp,
		},
		Output: domain.TranscriptSegment{
			ID:        uuid.NewString(),
			Text:      output,
			IsFinal:   true,
			Language:  outputLang,
			Role:      domain.RoleOutput,
			Timestamp: timestamp,
		},
	}
	e.history = append(e.history, pair)
	e.resetLocked()
	e.mu.Unlock()

	e.events.PairCommitted(pair)
	e.events.LiveTranscript(domain.RoleInput, "")
	e.events.LiveTranscript(domain.RoleOutput, "")
	return pair, true
}

func inputLanguage(mode domain.Mode, input string, detect func(string) domain.Language) domain.Language {
	switch mode {
	case domain.ModeEnglishInput:
		return domain.LanguageEnglish
	case domain.ModeTurkishInput:
		return domain.LanguageTurkish
	default:
		return detect(input)
	}
}

func (e *commitEngine) resetLocked() {
	e.inputText = ""
	e.outputText = ""
	e.inputFinal = false
	e.outputFinal = false
}

// CurrentText returns the live, uncommitted buffer snapshots.
func (e *commitEngine) CurrentText() (input string, output string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inputText, e.outputText
}

// History returns a copy of the committed pair sequence in insertion
// order.
func (e *commitEngine) History() []domain.ConversationPair {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.ConversationPair, len(e.history))
	copy(out, e.history)
	return out
}

// ClearHistory drops all committed pairs. Live buffers are untouched.
func (e *commitEngine) ClearHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = nil
}
