package domain

// ConnectionStatus models the interpretation session lifecycle.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
	StatusError        ConnectionStatus = "error"
)

// Mode selects how the input language of an utterance is attributed.
type Mode string

const (
	ModeAuto         Mode = "AUTO"
	ModeEnglishInput Mode = "EN_INPUT"
	ModeTurkishInput Mode = "TR_INPUT"
)

// Language tags the two sides of the interpreted conversation.
type Language string

const (
	LanguageEnglish Language = "EN"
	LanguageTurkish Language = "TR"
)

// Complement returns the opposite side of the EN<->TR pair.
func (l Language) Complement() Language {
	if l == LanguageEnglish {
		return LanguageTurkish
	}
	return LanguageEnglish
}

// SegmentRole identifies which side of an utterance a segment belongs to.
type SegmentRole string

const (
	RoleInput  SegmentRole = "input"
	RoleOutput SegmentRole = "output"
)

// StatusReason provides a structured reason for status transitions.
type StatusReason string

const (
	ReasonStartup         StatusReason = "startup"
	ReasonConnecting      StatusReason = "connecting"
	ReasonSessionOpened   StatusReason = "session_opened"
	ReasonDisconnected    StatusReason = "disconnected"
	ReasonDeviceFailed    StatusReason = "device_failed"
	ReasonHandshakeFailed StatusReason = "handshake_failed"
	ReasonTransportLost   StatusReason = "transport_lost"
	ReasonServiceError    StatusReason = "service_error"
)

// ErrorCode identifies backend error categories surfaced to the UI.
type ErrorCode string

const (
	ErrorCodeStartup     ErrorCode = "startup"
	ErrorCodeDevice      ErrorCode = "device"
	ErrorCodeAudioStream ErrorCode = "audio_stream"
	ErrorCodePlayback    ErrorCode = "playback"
	ErrorCodeSession     ErrorCode = "session"
	ErrorCodeGeneration  ErrorCode = "generation"
	ErrorCodePersistence ErrorCode = "persistence"
	ErrorCodeExport      ErrorCode = "export"
)

// InterpreterEventKind identifies an inbound event from the live session.
type InterpreterEventKind string

const (
	EventPartialInput  InterpreterEventKind = "partial_input"
	EventFinalInput    InterpreterEventKind = "final_input"
	EventPartialOutput InterpreterEventKind = "partial_output"
	EventFinalOutput   InterpreterEventKind = "final_output"
	EventAudioOutput   InterpreterEventKind = "audio_output"
	EventTurnComplete  InterpreterEventKind = "turn_complete"
	EventError         InterpreterEventKind = "error"
)

// InterpreterEvent is one inbound event from the remote interpretation
// service. Text carries transcription snapshots, Audio carries synthesized
// PCM for audio_output events, Message carries the cause for error events.
type InterpreterEvent struct {
	Kind    InterpreterEventKind `json:"kind"`
	Text    string               `json:"text,omitempty"`
	Audio   []byte               `json:"-"`
	Message string               `json:"message,omitempty"`
}

// TranscriptSegment is one finalized side of a committed utterance.
// Immutable once created.
type TranscriptSegment struct {
	ID        string      `json:"id"`
	Text      string      `json:"text"`
	IsFinal   bool        `json:"isFinal"`
	Language  Language    `json:"language"`
	Role      SegmentRole `json:"role"`
	Timestamp int64       `json:"timestamp"`
}

// ConversationPair is one committed utterance: the spoken input and its
// interpretation. Appended once to history, never mutated.
type ConversationPair struct {
	ID     string            `json:"id"`
	Input  TranscriptSegment `json:"input"`
	Output TranscriptSegment `json:"output"`
}

// StudyCard is one generated vocabulary card, keyed by word in the guide.
type StudyCard struct {
	Word        string `json:"word"`
	Synonym     string `json:"synonym"`
	Phrase      string `json:"phrase"`
	IsEssential bool   `json:"isEssential"`
}

// Status summarizes the current session for the UI.
type Status struct {
	Status  ConnectionStatus `json:"status"`
	Mode    Mode             `json:"mode"`
	Message string           `json:"message,omitempty"`
}
