package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tercuman/internal/domain"
)

// ErrEmptyHistory reports a transcript export with nothing to export.
var ErrEmptyHistory = errors.New("conversation history is empty")

// formatTranscript renders committed history as a flat, deterministic
// text document; one block per utterance pair.
func formatTranscript(history []domain.ConversationPair) (string, error) {
	if len(history) == 0 {
		return "", ErrEmptyHistory
	}

	var b strings.Builder
	b.WriteString("CONVERSATION TRANSCRIPT\n")
	b.WriteString("=======================\n\n")

	for _, pair := range history {
		stamp := time.UnixMilli(pair.Input.Timestamp).Format("15:04:05")
		fmt.Fprintf(&b, "[%s] %s: %s\n", stamp, pair.Input.Language, pair.Input.Text)
		fmt.Fprintf(&b, "%s %s: %s\n\n", strings.Repeat(" ", len(stamp)+2), pair.Output.Language, pair.Output.Text)
	}

	return b.String(), nil
}
