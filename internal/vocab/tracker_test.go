package vocab

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"tercuman/internal/domain"
)

func newTestTracker(store *fakeStore, generator *fakeGenerator) (*Tracker, *fakeSink) {
	sink := &fakeSink{}
	return NewTracker(store, generator, sink, zerolog.Nop()), sink
}

func TestRecordCountsEnglishTokens(t *testing.T) {
	t.Parallel()

	tracker, _ := newTestTracker(newFakeStore(), &fakeGenerator{})
	tracker.Record("I am a test i", domain.LanguageEnglish)

	stats := tracker.WordStats()
	want := map[string]int{"i": 2, "a": 1, "am": 1, "test": 1}
	for word, count := range want {
		if stats[word] != count {
			t.Fatalf("stats[%q] = %d, want %d", word, stats[word], count)
		}
	}
	if len(stats) != len(want) {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestRecordSkipsSingleLettersExceptPronouns(t *testing.T) {
	t.Parallel()

	tracker, _ := newTestTracker(newFakeStore(), &fakeGenerator{})
	tracker.Record("x y i a", domain.LanguageEnglish)

	stats := tracker.WordStats()
	if len(stats) != 2 || stats["i"] != 1 || stats["a"] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestRecordIgnoresTurkish(t *testing.T) {
	t.Parallel()

	tracker, _ := newTestTracker(newFakeStore(), &fakeGenerator{})
	tracker.Record("merhaba this would count in english", domain.LanguageTurkish)

	if stats := tracker.WordStats(); len(stats) != 0 {
		t.Fatalf("expected no stats for turkish text, got %v", stats)
	}
}

func TestRecordHandlesApostrophes(t *testing.T) {
	t.Parallel()

	tracker, _ := newTestTracker(newFakeStore(), &fakeGenerator{})
	tracker.Record("Don't you think it's fine", domain.LanguageEnglish)

	stats := tracker.WordStats()
	if stats["don't"] != 1 || stats["it's"] != 1 {
		t.Fatalf("expected apostrophe tokens, got %v", stats)
	}
}

func TestRecordPersistsStats(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	tracker, _ := newTestTracker(store, &fakeGenerator{})
	tracker.Record("hello hello", domain.LanguageEnglish)

	raw, err := store.Read(statsKey)
	if err != nil {
		t.Fatalf("expected persisted stats: %v", err)
	}
	if string(raw) != `{"hello":2}` {
		t.Fatalf("unexpected persisted stats: %s", raw)
	}
}

func TestRecordDegradesOnStoreFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.writeErr = errors.New("disk full")
	tracker, _ := newTestTracker(store, &fakeGenerator{})

	tracker.Record("hello", domain.LanguageEnglish)
	if stats := tracker.WordStats(); stats["hello"] != 1 {
		t.Fatalf("expected in-memory count despite store failure, got %v", stats)
	}
}

func TestNewTrackerRecoversFromCorruptStore(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.values[statsKey] = []byte("{not json")
	store.values[guideKey] = []byte("also not json")

	tracker, _ := newTestTracker(store, &fakeGenerator{})
	if len(tracker.WordStats()) != 0 || len(tracker.Guide()) != 0 {
		t.Fatalf("expected empty state from corrupt store")
	}
}

func TestNewTrackerLoadsPersistedState(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.values[statsKey] = []byte(`{"deploy":4}`)
	store.values[guideKey] = []byte(`{"deploy":{"word":"deploy","synonym":"release","phrase":"deploy it","isEssential":false}}`)

	tracker, _ := newTestTracker(store, &fakeGenerator{})
	if tracker.WordStats()["deploy"] != 4 {
		t.Fatalf("expected loaded stats")
	}
	if tracker.Guide()["deploy"].Synonym != "release" {
		t.Fatalf("expected loaded guide")
	}
}

func TestClearErasesStatsAndGuideTogether(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	tracker, _ := newTestTracker(store, &fakeGenerator{})
	tracker.Record("hello world", domain.LanguageEnglish)
	tracker.guide["hello"] = domain.StudyCard{Word: "hello"}

	if err := tracker.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if len(tracker.WordStats()) != 0 || len(tracker.Guide()) != 0 {
		t.Fatalf("expected empty state after clear")
	}
	if _, err := store.Read(statsKey); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected stats removed from store")
	}
	if _, err := store.Read(guideKey); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected guide removed from store")
	}

	// Idempotent: clearing an already-empty tracker succeeds.
	if err := tracker.Clear(); err != nil {
		t.Fatalf("second clear failed: %v", err)
	}
}

type fakeStore struct {
	mu       sync.Mutex
	values   map[string][]byte
	writeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string][]byte{}}
}

func (f *fakeStore) Read(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return nil, os.ErrNotExist
	}
	return value, nil
}

func (f *fakeStore) Write(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.values[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}

type fakeGenerator struct {
	mu        sync.Mutex
	calls     int
	gotWords  []string
	essential []string
	cards     []domain.StudyCard
	err       error
}

func (f *fakeGenerator) GenerateCards(_ context.Context, words []string, essential []string) ([]domain.StudyCard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotWords = append([]string(nil), words...)
	f.essential = append([]string(nil), essential...)
	if f.err != nil {
		return nil, f.err
	}
	return f.cards, nil
}

type fakeSink struct {
	mu         sync.Mutex
	generating []bool
	errors     []domain.ErrorCode
}

func (f *fakeSink) StatusChanged(_ domain.ConnectionStatus, _ domain.StatusReason) {}
func (f *fakeSink) LiveTranscript(_ domain.SegmentRole, _ string)                  {}
func (f *fakeSink) PairCommitted(_ domain.ConversationPair)                        {}

func (f *fakeSink) GuideGenerating(active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generating = append(f.generating, active)
}

func (f *fakeSink) SessionError(code domain.ErrorCode, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, code)
}

func (f *fakeSink) generatingFlags() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bool, len(f.generating))
	copy(out, f.generating)
	return out
}
