package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"tercuman/internal/domain"
	"tercuman/internal/ports"
)

// systemInstruction is the fixed interpreter persona for the duplex
// session.
const systemInstruction = "You are a real-time simultaneous technical interpreter between English and Turkish. " +
	"When you hear English, interpret it into natural spoken Turkish. When you hear Turkish, interpret it into " +
	"natural spoken English. Preserve technical terms, keep the speaker's register, and never add commentary of your own."

var ErrInvalidMode = errors.New("unknown interpretation mode")

// Config controls session behavior.
type Config struct {
	Audio              ports.AudioConfig
	Session            ports.SessionConfig
	ChunkSize          int
	AudioOutputEnabled bool
}

// ConnectOptions carries per-connection user settings.
type ConnectOptions struct {
	DeviceID    string
	AmbientMode bool
	SystemAudio bool
}

// SessionController owns the connection lifecycle to the interpretation
// service: device acquisition, the duplex session, event consumption and
// commit boundaries.
type SessionController struct {
	audio    ports.AudioCapture
	provider ports.InterpreterProvider
	player   ports.AudioPlayer
	events   ports.EventSink
	engine   *commitEngine
	cfg      Config
	log      zerolog.Logger

	mu        sync.Mutex
	status    domain.ConnectionStatus
	statusMsg string
	mode      domain.Mode
	current   *activeSession
}

func NewSessionController(
	audio ports.AudioCapture,
	provider ports.InterpreterProvider,
	player ports.AudioPlayer,
	recorder ports.WordRecorder,
	detect func(string) domain.Language,
	events ports.EventSink,
	cfg Config,
	log zerolog.Logger,
) *SessionController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.Session.SystemInstruction == "" {
		cfg.Session.SystemInstruction = systemInstruction
	}
	return &SessionController{
		audio:    audio,
		provider: provider,
		player:   player,
		events:   events,
		engine:   newCommitEngine(detect, recorder, events),
		cfg:      cfg,
		log:      log,
		status:   domain.StatusDisconnected,
		mode:     domain.ModeAuto,
	}
}

// Connect acquires the capture devices and opens a duplex session. Valid
// from disconnected or error; a concurrent call while connecting or
// connected is a no-op.
func (c *SessionController) Connect(ctx context.Context, opts ConnectOptions) error {
	c.mu.Lock()
	if c.status == domain.StatusConnecting || c.status == domain.StatusConnected {
		c.mu.Unlock()
		return nil
	}
	c.status = domain.StatusConnecting
	c.statusMsg = ""
	c.mu.Unlock()
	c.events.StatusChanged(domain.StatusConnecting, domain.ReasonConnecting)

	sessionCtx, cancel := context.WithCancel(ctx)

	audioCfg := c.cfg.Audio
	if device := strings.TrimSpace(opts.DeviceID); device != "" {
		audioCfg.InputDevice = device
	}
	audioCfg.AmbientMode = opts.AmbientMode
	audioCfg.MixSystemAudio = opts.SystemAudio

	audioSession, err := c.audio.Start(sessionCtx, audioCfg)
	if err != nil {
		cancel()
		wrapped := fmt.Errorf("could not open audio device: %w", err)
		c.fail(domain.ReasonDeviceFailed, domain.ErrorCodeDevice, wrapped)
		return wrapped
	}

	live, err := c.provider.StartSession(sessionCtx, c.cfg.Session)
	if err != nil {
		_ = audioSession.Stop()
		cancel()
		wrapped := fmt.Errorf("could not open interpretation session: %w", err)
		c.fail(domain.ReasonHandshakeFailed, domain.ErrorCodeSession, wrapped)
		return wrapped
	}

	active := &activeSession{
		cancel:     cancel,
		audio:      audioSession,
		live:       live,
		eventsDone: make(chan struct{}),
		audioDone:  make(chan struct{}),
	}

	c.mu.Lock()
	c.current = active
	c.status = domain.StatusConnected
	c.mu.Unlock()

	go c.consumeInterpreterEvents(active)
	go pumpAudioChunks(active.audio, active.live, c.cfg.ChunkSize, c.events, active.audioDone)

	c.log.Info().Str("device", audioCfg.InputDevice).Bool("ambient", opts.AmbientMode).
		Bool("system_audio", opts.SystemAudio).Msg("interpretation session opened")
	c.events.StatusChanged(domain.StatusConnected, domain.ReasonSessionOpened)
	return nil
}

// Disconnect stops capture, closes the session and flushes any trailing
// utterance into history. Idempotent.
func (c *SessionController) Disconnect() error {
	c.mu.Lock()
	if c.status == domain.StatusDisconnected && c.current == nil {
		c.mu.Unlock()
		return nil
	}
	active := c.current
	c.current = nil
	c.mu.Unlock()

	if active != nil {
		c.teardown(active)
		<-active.eventsDone
	}
	c.commit()

	c.mu.Lock()
	c.status = domain.StatusDisconnected
	c.statusMsg = ""
	c.mu.Unlock()

	c.log.Info().Msg("interpretation session closed")
	c.events.StatusChanged(domain.StatusDisconnected, domain.ReasonDisconnected)
	return nil
}

// SetActiveMode switches language attribution for subsequent commits.
func (c *SessionController) SetActiveMode(mode domain.Mode) error {
	switch mode {
	case domain.ModeAuto, domain.ModeEnglishInput, domain.ModeTurkishInput:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	c.mu.Lock()
	c.mode = mode
	c.mu.Unlock()
	return nil
}

// Status returns the current connection status and active mode.
func (c *SessionController) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Status{Status: c.status, Mode: c.mode, Message: c.statusMsg}
}

// CurrentText exposes the live, uncommitted utterance buffers.
func (c *SessionController) CurrentText() (input string, output string) {
	return c.engine.CurrentText()
}

// History returns committed pairs in insertion order.
func (c *SessionController) History() []domain.ConversationPair {
	return c.engine.History()
}

// ClearHistory drops the committed conversation history.
func (c *SessionController) ClearHistory() {
	c.engine.ClearHistory()
}

// ExportTranscript renders the conversation history as a flat text
// document.
func (c *SessionController) ExportTranscript() (string, error) {
	return formatTranscript(c.engine.History())
}

func (c *SessionController) consumeInterpreterEvents(active *activeSession) {
	defer close(active.eventsDone)

	for event := range active.live.Events() {
		switch event.Kind {
		case domain.EventAudioOutput:
			c.playAudio(event.Audio)
		case domain.EventError:
			c.events.SessionError(domain.ErrorCodeSession, event.Message)
		default:
			if c.engine.Apply(event) {
				c.commit()
			}
		}
	}

	c.handleTransportLoss(active)
}

// handleTransportLoss reacts to the event stream ending. When the user
// initiated the shutdown the controller has already detached the
// session; anything else is a transport failure that requires an
// explicit reconnect.
func (c *SessionController) handleTransportLoss(active *activeSession) {
	c.mu.Lock()
	if c.current != active {
		c.mu.Unlock()
		return
	}
	c.current = nil
	c.status = domain.StatusError
	c.mu.Unlock()

	c.teardown(active)
	cause := active.live.Wait()
	detail := "connection to the interpretation service was lost"
	if cause != nil {
		detail = cause.Error()
	}

	c.mu.Lock()
	c.statusMsg = detail
	c.mu.Unlock()

	c.commit()
	c.log.Warn().Str("cause", detail).Msg("interpretation session lost")
	c.events.SessionError(domain.ErrorCodeSession, detail)
	c.events.StatusChanged(domain.StatusError, domain.ReasonTransportLost)
}

// teardown releases the capture device and the live session on every
// exit path.
func (c *SessionController) teardown(active *activeSession) {
	active.cancel()
	_ = active.audio.Stop()
	_ = active.live.Close()
	<-active.audioDone
	if c.player != nil {
		if err := c.player.Close(); err != nil {
			c.log.Warn().Err(err).Msg("failed to close audio playback")
		}
	}
}

func (c *SessionController) commit() {
	c.mu.Lock()
	mode := c.mode
	c.mu.Unlock()

	if pair, ok := c.engine.Commit(mode); ok {
		c.log.Debug().Str("pair", pair.ID).Str("input_lang", string(pair.Input.Language)).
			Msg("utterance committed to history")
	}
}

func (c *SessionController) playAudio(chunk []byte) {
	if !c.cfg.AudioOutputEnabled || c.player == nil {
		return
	}
	if err := c.player.Play(chunk); err != nil {
		c.log.Warn().Err(err).Msg("audio playback failed")
		c.events.SessionError(domain.ErrorCodePlayback, "translated audio playback failed")
	}
}

// fail records a terminal connect failure.
func (c *SessionController) fail(reason domain.StatusReason, code domain.ErrorCode, err error) {
	c.mu.Lock()
	c.status = domain.StatusError
	c.statusMsg = err.Error()
	c.mu.Unlock()

	c.log.Error().Err(err).Str("reason", string(reason)).Msg("connect failed")
	c.events.SessionError(code, err.Error())
	c.events.StatusChanged(domain.StatusError, reason)
}
