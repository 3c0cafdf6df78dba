// Package vocab tracks English word usage from committed transcripts and
// maintains the generated study guide.
package vocab

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"tercuman/internal/domain"
	"tercuman/internal/ports"
)

const (
	statsKey = "word_stats"
	guideKey = "study_guide"
)

var wordPattern = regexp.MustCompile(`[a-z']+`)

// Tracker accumulates word-frequency statistics and owns the study guide.
// Stats and guide are cleared together: a guide without the statistics
// behind it is meaningless.
type Tracker struct {
	store     ports.KeyValueStore
	generator ports.CardGenerator
	events    ports.EventSink
	log       zerolog.Logger

	mu         sync.Mutex
	stats      map[string]int
	guide      map[string]domain.StudyCard
	generating bool
}

// NewTracker loads persisted state from the store. Missing or corrupt
// entries fall back to an empty state.
func NewTracker(store ports.KeyValueStore, generator ports.CardGenerator, events ports.EventSink, log zerolog.Logger) *Tracker {
	t := &Tracker{
		store:     store,
		generator: generator,
		events:    events,
		log:       log,
		stats:     map[string]int{},
		guide:     map[string]domain.StudyCard{},
	}

	if raw, err := store.Read(statsKey); err == nil {
		if err := json.Unmarshal(raw, &t.stats); err != nil {
			log.Warn().Err(err).Msg("discarding corrupt word stats")
			t.stats = map[string]int{}
		}
	}
	if raw, err := store.Read(guideKey); err == nil {
		if err := json.Unmarshal(raw, &t.guide); err != nil {
			log.Warn().Err(err).Msg("discarding corrupt study guide")
			t.guide = map[string]domain.StudyCard{}
		}
	}

	return t
}

// Record counts qualifying word tokens from English text. Non-English
// text is ignored. Single-letter tokens are noise except "i" and "a".
func (t *Tracker) Record(text string, language domain.Language) {
	if language != domain.LanguageEnglish {
		return
	}

	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	counted := 0
	for _, token := range tokens {
		if len(token) > 1 || token == "i" || token == "a" {
			t.stats[token]++
			counted++
		}
	}
	if counted == 0 {
		return
	}

	t.persistLocked(statsKey, t.stats)
}

// WordStats returns a copy of the current frequency map.
func (t *Tracker) WordStats() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]int, len(t.stats))
	for word, count := range t.stats {
		out[word] = count
	}
	return out
}

// Guide returns a copy of the current study guide.
func (t *Tracker) Guide() map[string]domain.StudyCard {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]domain.StudyCard, len(t.guide))
	for word, card := range t.guide {
		out[word] = card
	}
	return out
}

// IsGenerating reports whether a guide generation is in flight.
func (t *Tracker) IsGenerating() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generating
}

// Clear erases word stats and the study guide together. Idempotent.
func (t *Tracker) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats = map[string]int{}
	t.guide = map[string]domain.StudyCard{}

	var errs []error
	if err := t.store.Delete(statsKey); err != nil {
		errs = append(errs, err)
	}
	if err := t.store.Delete(guideKey); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// persistLocked writes one store key, degrading to in-memory operation on
// failure. Callers must hold t.mu.
func (t *Tracker) persistLocked(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		t.log.Warn().Err(err).Str("key", key).Msg("failed to encode vocabulary state")
		return
	}
	if err := t.store.Write(key, raw); err != nil {
		t.log.Warn().Err(err).Str("key", key).Msg("failed to persist vocabulary state; continuing in memory")
	}
}
