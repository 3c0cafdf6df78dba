package vocab

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

const priorityCap = 20
const essentialCap = 10

var (
	// ErrGenerationInFlight rejects a second Generate while one is
	// outstanding; interleaved merges into the guide are never allowed.
	ErrGenerationInFlight = errors.New("study guide generation is already in progress")

	// ErrNothingToGenerate is the valid terminal case of an empty
	// priority list. No service call is made.
	ErrNothingToGenerate = errors.New("no new words to generate study cards for")

	// ErrNothingToExport reports an empty word-stats export request.
	ErrNothingToExport = errors.New("no tracked words to export")
)

// PriorityWords selects the words a generation request would cover:
// ungenerated essential words first (reference-list order, capped at 10),
// then remaining high-frequency words up to a combined cap of 20.
func (t *Tracker) PriorityWords() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	words, _ := t.priorityWordsLocked()
	return words
}

func (t *Tracker) priorityWordsLocked() (words []string, essential []string) {
	selected := make(map[string]struct{})

	for _, word := range essentialWords {
		if len(essential) >= essentialCap {
			break
		}
		if _, tracked := t.stats[word]; !tracked {
			continue
		}
		if _, generated := t.guide[word]; generated {
			continue
		}
		essential = append(essential, word)
		selected[word] = struct{}{}
	}

	remaining := make([]string, 0, len(t.stats))
	for word := range t.stats {
		if _, ok := selected[word]; ok {
			continue
		}
		if _, generated := t.guide[word]; generated {
			continue
		}
		remaining = append(remaining, word)
	}
	sort.Slice(remaining, func(i, j int) bool {
		if t.stats[remaining[i]] != t.stats[remaining[j]] {
			return t.stats[remaining[i]] > t.stats[remaining[j]]
		}
		return remaining[i] < remaining[j]
	})

	words = append(words, essential...)
	for _, word := range remaining {
		if len(words) >= priorityCap {
			break
		}
		words = append(words, word)
	}
	return words, essential
}

// Generate requests study cards for the current priority list and merges
// them into the guide. On any failure the guide is left unchanged.
func (t *Tracker) Generate(ctx context.Context) error {
	t.mu.Lock()
	if t.generating {
		t.mu.Unlock()
		return ErrGenerationInFlight
	}
	words, essential := t.priorityWordsLocked()
	if len(words) == 0 {
		t.mu.Unlock()
		return ErrNothingToGenerate
	}
	t.generating = true
	t.mu.Unlock()

	t.events.GuideGenerating(true)
	defer func() {
		t.mu.Lock()
		t.generating = false
		t.mu.Unlock()
		t.events.GuideGenerating(false)
	}()

	cards, err := t.generator.GenerateCards(ctx, words, essential)
	if err != nil {
		return fmt.Errorf("study card generation failed: %w", err)
	}
	if len(cards) == 0 {
		return errors.New("text generation service returned no cards")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, card := range cards {
		word := strings.ToLower(strings.TrimSpace(card.Word))
		if word == "" {
			continue
		}
		card.Word = word
		card.IsEssential = IsEssential(word)
		t.guide[word] = card
	}
	t.persistLocked(guideKey, t.guide)
	t.log.Info().Int("cards", len(cards)).Msg("study guide updated")
	return nil
}

// ExportText serializes stats and guide into a flat study report:
// essential words first, then by descending frequency, lexicographic
// tiebreak. Every line is deterministic.
func (t *Tracker) ExportText() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.stats) == 0 {
		return "", ErrNothingToExport
	}

	words := make([]string, 0, len(t.stats))
	essentialFound := 0
	for word := range t.stats {
		words = append(words, word)
		if IsEssential(word) {
			essentialFound++
		}
	}
	sort.Slice(words, func(i, j int) bool {
		ei, ej := IsEssential(words[i]), IsEssential(words[j])
		if ei != ej {
			return ei
		}
		if t.stats[words[i]] != t.stats[words[j]] {
			return t.stats[words[i]] > t.stats[words[j]]
		}
		return words[i] < words[j]
	})

	var b strings.Builder
	b.WriteString("ENGLISH STUDY GUIDE & ESSENTIAL VOCABULARY TRACKER\n")
	b.WriteString("==================================================\n\n")
	fmt.Fprintf(&b, "Essential words found: %d\n\n", essentialFound)

	for rank, word := range words {
		marker := ""
		if IsEssential(word) {
			marker = " [TARGET WORD]"
		}
		fmt.Fprintf(&b, "%d. WORD: %s%s (used %d times)\n", rank+1, strings.ToUpper(word), marker, t.stats[word])
		if card, ok := t.guide[word]; ok {
			fmt.Fprintf(&b, "   Synonym: %s\n", card.Synonym)
			fmt.Fprintf(&b, "   Phrase:  %q\n", card.Phrase)
		} else {
			b.WriteString("   (no study card generated yet)\n")
		}
		b.WriteString("---------------------------------\n")
	}

	return b.String(), nil
}
