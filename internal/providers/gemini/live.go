// Package gemini adapts the Gemini generative language API: the
// BidiGenerateContent websocket for live interpretation sessions and the
// generateContent REST endpoint for study-card generation.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"tercuman/internal/domain"
	"tercuman/internal/ports"
)

// Config controls Gemini API settings shared by both adapters.
type Config struct {
	APIKey     string
	APIBaseURL string
	LiveModel  string
	TextModel  string
}

// ErrNoAPIKey reports a missing service credential before any request is
// attempted.
var ErrNoAPIKey = errors.New("GEMINI_API_KEY is not configured")

const bidiPath = "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

// Provider implements ports.InterpreterProvider for the Gemini Live API.
type Provider struct {
	cfg Config
}

func NewProvider(cfg Config) *Provider {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.LiveModel == "" {
		cfg.LiveModel = "gemini-2.5-flash-native-audio-preview-09-2025"
	}
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-3-flash-preview"
	}
	return &Provider{cfg: cfg}
}

func (p *Provider) StartSession(ctx context.Context, cfg ports.SessionConfig) (ports.LiveSession, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}

	wsURL, err := buildSessionURL(p.cfg)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to interpretation service: %w", err)
	}

	if err := conn.WriteJSON(setupMessage(p.cfg.LiveModel, cfg)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to send session setup: %w", err)
	}

	// The service acknowledges setup before any content flows; anything
	// else is a handshake failure.
	var ack serverMessage
	if err := conn.ReadJSON(&ack); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("interpretation service rejected the session: %w", err)
	}
	if ack.SetupComplete == nil {
		_ = conn.Close()
		return nil, errors.New("interpretation service did not acknowledge session setup")
	}

	session := &liveSession{
		conn:       conn,
		sampleRate: cfg.InputSampleRate,
		events:     make(chan domain.InterpreterEvent, 64),
		audio:      make(chan []byte, 32),
		sendClosed: make(chan struct{}),
		done:       make(chan struct{}),
	}
	if session.sampleRate <= 0 {
		session.sampleRate = 16000
	}

	session.wg.Add(2)
	go session.readLoop()
	go session.writeLoop()
	go func() {
		session.wg.Wait()
		close(session.events)
		close(session.done)
		_ = conn.Close()
	}()

	go func() {
		<-ctx.Done()
		_ = session.Close()
	}()

	return session, nil
}

type liveSession struct {
	conn       *websocket.Conn
	sampleRate int

	events chan domain.InterpreterEvent
	audio  chan []byte
	done   chan struct{}

	wg sync.WaitGroup

	errMu sync.Mutex
	err   error

	// sendClosed is a signal channel rather than a close of s.audio: a
	// SendAudio blocked on a full buffer must never race a channel close.
	sendClosed    chan struct{}
	closeSendOnce sync.Once
	closeOnce     sync.Once
}

func (s *liveSession) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	select {
	case <-s.sendClosed:
		return errors.New("audio stream is already closed")
	default:
	}

	copied := append([]byte(nil), chunk...)
	select {
	case s.audio <- copied:
		return nil
	case <-s.sendClosed:
		return errors.New("audio stream is already closed")
	case <-s.done:
		if err := s.waitErr(); err != nil {
			return err
		}
		return errors.New("session closed")
	}
}

func (s *liveSession) CloseSend() error {
	s.closeSendOnce.Do(func() { close(s.sendClosed) })
	return nil
}

func (s *liveSession) Events() <-chan domain.InterpreterEvent {
	return s.events
}

func (s *liveSession) Wait() error {
	<-s.done
	return s.waitErr()
}

func (s *liveSession) Close() error {
	s.closeOnce.Do(func() {
		_ = s.CloseSend()
		_ = s.conn.Close()
	})
	<-s.done
	return s.waitErr()
}

func (s *liveSession) waitErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *liveSession) setErr(err error) {
	if err == nil {
		return
	}
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		return
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *liveSession) writeLoop() {
	defer s.wg.Done()

	for {
		select {
		case chunk := <-s.audio:
			if err := s.writeChunk(chunk); err != nil {
				s.setErr(err)
				return
			}
		case <-s.sendClosed:
			// Drain whatever was queued before the close signal.
			for {
				select {
				case chunk := <-s.audio:
					if err := s.writeChunk(chunk); err != nil {
						s.setErr(err)
						return
					}
				default:
					end := clientMessage{RealtimeInput: &realtimeInput{AudioStreamEnd: true}}
					if err := s.conn.WriteJSON(end); err != nil {
						s.setErr(fmt.Errorf("failed to end audio stream: %w", err))
					}
					return
				}
			}
		}
	}
}

func (s *liveSession) writeChunk(chunk []byte) error {
	msg := clientMessage{RealtimeInput: &realtimeInput{Audio: &mediaChunk{
		MimeType: fmt.Sprintf("audio/pcm;rate=%d", s.sampleRate),
		Data:     base64.StdEncoding.EncodeToString(chunk),
	}}}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send audio: %w", err)
	}
	return nil
}

func (s *liveSession) readLoop() {
	defer s.wg.Done()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.setErr(fmt.Errorf("failed to read service event: %w", err))
			return
		}

		var msg serverMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}

		if msg.Error != nil {
			message := strings.TrimSpace(msg.Error.Message)
			if message == "" {
				message = "interpretation service returned an unknown error"
			}
			s.emit(domain.InterpreterEvent{Kind: domain.EventError, Message: message})
			s.setErr(errors.New(message))
			return
		}

		for _, event := range decodeServerContent(msg.ServerContent) {
			s.emit(event)
		}
	}
}

// emit delivers one event to the consumer. Synthesized audio is
// droppable under backpressure; transcription, turn and error events
// carry utterance boundaries and must never be lost.
func (s *liveSession) emit(event domain.InterpreterEvent) {
	if event.Kind == domain.EventAudioOutput {
		select {
		case s.events <- event:
		default:
		}
		return
	}

	select {
	case s.events <- event:
	case <-s.done:
	}
}

// decodeServerContent maps one server content payload to interpreter
// events in a stable order: transcriptions first, then audio, then the
// turn boundary.
func decodeServerContent(content *serverContent) []domain.InterpreterEvent {
	if content == nil {
		return nil
	}

	var events []domain.InterpreterEvent
	if t := content.InputTranscription; t != nil && strings.TrimSpace(t.Text) != "" {
		kind := domain.EventPartialInput
		if t.Finished {
			kind = domain.EventFinalInput
		}
		events = append(events, domain.InterpreterEvent{Kind: kind, Text: t.Text})
	}
	if t := content.OutputTranscription; t != nil && strings.TrimSpace(t.Text) != "" {
		kind := domain.EventPartialOutput
		if t.Finished {
			kind = domain.EventFinalOutput
		}
		events = append(events, domain.InterpreterEvent{Kind: kind, Text: t.Text})
	}
	if content.ModelTurn != nil {
		for _, part := range content.ModelTurn.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			raw, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil || len(raw) == 0 {
				continue
			}
			events = append(events, domain.InterpreterEvent{Kind: domain.EventAudioOutput, Audio: raw})
		}
	}
	if content.TurnComplete {
		events = append(events, domain.InterpreterEvent{Kind: domain.EventTurnComplete})
	}
	return events
}

func setupMessage(model string, cfg ports.SessionConfig) clientMessage {
	return clientMessage{Setup: &sessionSetup{
		Model: "models/" + model,
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
		},
		SystemInstruction:        &contentPayload{Parts: []contentPart{{Text: cfg.SystemInstruction}}},
		InputAudioTranscription:  &struct{}{},
		OutputAudioTranscription: &struct{}{},
	}}
}

func buildSessionURL(cfg Config) (string, error) {
	base := strings.TrimSpace(cfg.APIBaseURL)
	if base == "" {
		base = "https://generativelanguage.googleapis.com"
	}

	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	sessionURL, err := url.Parse(base + bidiPath)
	if err != nil {
		return "", fmt.Errorf("invalid API base URL: %w", err)
	}

	query := sessionURL.Query()
	query.Set("key", cfg.APIKey)
	sessionURL.RawQuery = query.Encode()
	return sessionURL.String(), nil
}

// Wire types for the bidirectional session.

type clientMessage struct {
	Setup         *sessionSetup  `json:"setup,omitempty"`
	RealtimeInput *realtimeInput `json:"realtimeInput,omitempty"`
}

type sessionSetup struct {
	Model                    string            `json:"model"`
	GenerationConfig         *generationConfig `json:"generationConfig,omitempty"`
	SystemInstruction        *contentPayload   `json:"systemInstruction,omitempty"`
	InputAudioTranscription  *struct{}         `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *struct{}         `json:"outputAudioTranscription,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type contentPayload struct {
	Parts []contentPart `json:"parts"`
}

type contentPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *mediaChunk `json:"inlineData,omitempty"`
}

type realtimeInput struct {
	Audio          *mediaChunk `json:"audio,omitempty"`
	AudioStreamEnd bool        `json:"audioStreamEnd,omitempty"`
}

type mediaChunk struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type serverMessage struct {
	SetupComplete *struct{}      `json:"setupComplete,omitempty"`
	ServerContent *serverContent `json:"serverContent,omitempty"`
	Error         *serverError   `json:"error,omitempty"`
}

type serverContent struct {
	InputTranscription  *transcription  `json:"inputTranscription,omitempty"`
	OutputTranscription *transcription  `json:"outputTranscription,omitempty"`
	ModelTurn           *contentPayload `json:"modelTurn,omitempty"`
	TurnComplete        bool            `json:"turnComplete,omitempty"`
}

type transcription struct {
	Text     string `json:"text"`
	Finished bool   `json:"finished"`
}

type serverError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
