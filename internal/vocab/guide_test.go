package vocab

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"tercuman/internal/domain"
)

func TestPriorityWordsOrdersEssentialFirst(t *testing.T) {
	t.Parallel()

	tracker, _ := newTestTracker(newFakeStore(), &fakeGenerator{})
	tracker.Record("deploy deploy deploy issue issue zebra", domain.LanguageEnglish)

	words := tracker.PriorityWords()
	if len(words) != 3 {
		t.Fatalf("unexpected words: %v", words)
	}
	if words[0] != "issue" {
		t.Fatalf("expected essential word first, got %v", words)
	}
	if words[1] != "deploy" || words[2] != "zebra" {
		t.Fatalf("expected frequency order after essentials, got %v", words)
	}
}

func TestPriorityWordsExcludesGuideMembersAndCapsAtTwenty(t *testing.T) {
	t.Parallel()

	tracker, _ := newTestTracker(newFakeStore(), &fakeGenerator{})
	for i := 0; i < 30; i++ {
		tracker.stats[fmt.Sprintf("word%02d", i)] = 30 - i
	}
	tracker.guide["word00"] = domain.StudyCard{Word: "word00"}

	words := tracker.PriorityWords()
	if len(words) != priorityCap {
		t.Fatalf("expected %d words, got %d", priorityCap, len(words))
	}
	for _, word := range words {
		if _, ok := tracker.guide[word]; ok {
			t.Fatalf("guide member %q selected", word)
		}
	}
	if words[0] != "word01" {
		t.Fatalf("expected highest ungenerated frequency first, got %v", words[0])
	}
}

func TestPriorityWordsTiebreakIsDeterministic(t *testing.T) {
	t.Parallel()

	tracker, _ := newTestTracker(newFakeStore(), &fakeGenerator{})
	tracker.stats["beta"] = 2
	tracker.stats["alpha"] = 2

	words := tracker.PriorityWords()
	if len(words) != 2 || words[0] != "alpha" || words[1] != "beta" {
		t.Fatalf("expected lexicographic tiebreak, got %v", words)
	}
}

func TestGenerateNothingToDo(t *testing.T) {
	t.Parallel()

	generator := &fakeGenerator{}
	tracker, _ := newTestTracker(newFakeStore(), generator)

	err := tracker.Generate(context.Background())
	if !errors.Is(err, ErrNothingToGenerate) {
		t.Fatalf("expected ErrNothingToGenerate, got %v", err)
	}
	if generator.calls != 0 {
		t.Fatalf("expected no service call, got %d", generator.calls)
	}
}

func TestGenerateMergesCardsAndPersists(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	generator := &fakeGenerator{cards: []domain.StudyCard{
		{Word: " Issue ", Synonym: "problem", Phrase: "that's a real issue"},
		{Word: "deploy", Synonym: "release", Phrase: "deploy on friday"},
	}}
	tracker, sink := newTestTracker(store, generator)
	tracker.Record("issue deploy", domain.LanguageEnglish)

	if err := tracker.Generate(context.Background()); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	guide := tracker.Guide()
	if !guide["issue"].IsEssential {
		t.Fatalf("expected issue marked essential: %+v", guide["issue"])
	}
	if guide["deploy"].IsEssential {
		t.Fatalf("expected deploy non-essential")
	}
	if guide["issue"].Word != "issue" {
		t.Fatalf("expected normalized word key, got %+v", guide["issue"])
	}
	if _, err := store.Read(guideKey); err != nil {
		t.Fatalf("expected persisted guide: %v", err)
	}

	if len(generator.essential) != 1 || generator.essential[0] != "issue" {
		t.Fatalf("expected essential call-out, got %v", generator.essential)
	}

	flags := sink.generatingFlags()
	if len(flags) != 2 || !flags[0] || flags[1] {
		t.Fatalf("expected generating true then false, got %v", flags)
	}
}

func TestGenerateRegenerationOverwrites(t *testing.T) {
	t.Parallel()

	generator := &fakeGenerator{cards: []domain.StudyCard{
		{Word: "deploy", Synonym: "ship", Phrase: "ship it"},
	}}
	tracker, _ := newTestTracker(newFakeStore(), generator)
	tracker.stats["deploy"] = 1
	tracker.stats["other"] = 1
	tracker.guide["deploy"] = domain.StudyCard{Word: "deploy", Synonym: "release"}

	if err := tracker.Generate(context.Background()); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if tracker.Guide()["deploy"].Synonym != "ship" {
		t.Fatalf("expected regenerated card to replace previous one")
	}
}

func TestGenerateFailureLeavesGuideUnchanged(t *testing.T) {
	t.Parallel()

	generator := &fakeGenerator{err: errors.New("malformed response")}
	tracker, sink := newTestTracker(newFakeStore(), generator)
	tracker.Record("hello world", domain.LanguageEnglish)
	tracker.guide["existing"] = domain.StudyCard{Word: "existing"}

	err := tracker.Generate(context.Background())
	if err == nil {
		t.Fatalf("expected generation error")
	}
	if len(tracker.Guide()) != 1 {
		t.Fatalf("expected guide unchanged, got %v", tracker.Guide())
	}
	if tracker.IsGenerating() {
		t.Fatalf("expected generating flag reset")
	}

	flags := sink.generatingFlags()
	if len(flags) != 2 || flags[1] {
		t.Fatalf("expected generating flag toggled back off, got %v", flags)
	}
}

func TestGenerateRejectsConcurrentCall(t *testing.T) {
	t.Parallel()

	tracker, _ := newTestTracker(newFakeStore(), &fakeGenerator{})
	tracker.stats["hello"] = 1
	tracker.generating = true

	if err := tracker.Generate(context.Background()); !errors.Is(err, ErrGenerationInFlight) {
		t.Fatalf("expected ErrGenerationInFlight, got %v", err)
	}
}

func TestExportTextEmptyStats(t *testing.T) {
	t.Parallel()

	tracker, _ := newTestTracker(newFakeStore(), &fakeGenerator{})
	if _, err := tracker.ExportText(); !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
}

func TestExportTextRoundTrip(t *testing.T) {
	t.Parallel()

	tracker, _ := newTestTracker(newFakeStore(), &fakeGenerator{})
	tracker.stats["issue"] = 2
	tracker.stats["deploy"] = 5
	tracker.stats["zebra"] = 5
	tracker.guide["deploy"] = domain.StudyCard{Word: "deploy", Synonym: "release", Phrase: "deploy it now"}

	report, err := tracker.ExportText()
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	entry := regexp.MustCompile(`(?m)^(\d+)\. WORD: ([A-Z']+)( \[TARGET WORD\])? \(used (\d+) times\)$`)
	matches := entry.FindAllStringSubmatch(report, -1)
	if len(matches) != 3 {
		t.Fatalf("expected 3 entries, got %d:\n%s", len(matches), report)
	}

	// Essential word sorts first despite lower count.
	if strings.ToLower(matches[0][2]) != "issue" || matches[0][3] == "" {
		t.Fatalf("expected essential word first, got %v", matches[0])
	}
	if strings.ToLower(matches[1][2]) != "deploy" || strings.ToLower(matches[2][2]) != "zebra" {
		t.Fatalf("unexpected order: %v", matches)
	}

	for _, m := range matches {
		word := strings.ToLower(m[2])
		count, _ := strconv.Atoi(m[4])
		if tracker.stats[word] != count {
			t.Fatalf("count mismatch for %q: report %d, stats %d", word, count, tracker.stats[word])
		}
	}

	if !strings.Contains(report, "Synonym: release") || !strings.Contains(report, `Phrase:  "deploy it now"`) {
		t.Fatalf("expected card fields in report:\n%s", report)
	}
	if !strings.Contains(report, "(no study card generated yet)") {
		t.Fatalf("expected marker for words without cards:\n%s", report)
	}
}
