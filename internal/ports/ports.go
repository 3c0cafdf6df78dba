package ports

import (
	"context"
	"io"

	"tercuman/internal/domain"
)

// AudioConfig describes how the microphone (and optionally the system
// monitor source) should be captured.
type AudioConfig struct {
	SampleRate     int
	Channels       int
	InputFormat    string
	InputDevice    string
	MonitorDevice  string
	AmbientMode    bool
	MixSystemAudio bool
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// AudioPlayer consumes synthesized output audio chunks.
type AudioPlayer interface {
	Play(chunk []byte) error
	Close() error
}

// SessionConfig describes the duplex interpretation session.
type SessionConfig struct {
	SystemInstruction string
	InputSampleRate   int
}

// LiveSession is an active duplex session with the interpretation service.
type LiveSession interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan domain.InterpreterEvent
	Wait() error
	Close() error
}

// InterpreterProvider opens duplex interpretation sessions.
type InterpreterProvider interface {
	StartSession(ctx context.Context, cfg SessionConfig) (LiveSession, error)
}

// CardGenerator requests study cards for a word list from a
// text-generation service. Essential words are called out so the service
// can prioritize phrase quality for them.
type CardGenerator interface {
	GenerateCards(ctx context.Context, words []string, essential []string) ([]domain.StudyCard, error)
}

// WordRecorder observes committed transcript text per language. Invoked
// synchronously by the commit engine.
type WordRecorder interface {
	Record(text string, language domain.Language)
}

// KeyValueStore is string-keyed durable blob storage. Read returns
// os.ErrNotExist (wrapped or not) for missing keys.
type KeyValueStore interface {
	Read(key string) ([]byte, error)
	Write(key string, value []byte) error
	Delete(key string) error
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	StatusChanged(status domain.ConnectionStatus, reason domain.StatusReason)
	LiveTranscript(role domain.SegmentRole, text string)
	PairCommitted(pair domain.ConversationPair)
	GuideGenerating(active bool)
	SessionError(code domain.ErrorCode, detail string)
}
