package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"tercuman/internal/bootstrap"
	"tercuman/internal/config"
	"tercuman/internal/domain"
	"tercuman/internal/usecase"
	"tercuman/internal/vocab"
)

const (
	eventStatus = "tercuman:status"
	eventLive   = "tercuman:live"
	eventPair   = "tercuman:pair"
	eventGuide  = "tercuman:guide"
	eventError  = "tercuman:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	controller *usecase.SessionController
	tracker    *vocab.Tracker
	clipboard  *wailsClipboard
	cfg        config.Config
	bootErr    error
}

func NewApp() *App {
	return &App{clipboard: &wailsClipboard{}}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.controller = services.Controller
	a.tracker = services.Tracker
	a.StatusChanged(domain.StatusDisconnected, domain.ReasonStartup)
}

func (a *App) shutdown(_ context.Context) {
	if a.controller != nil {
		_ = a.controller.Disconnect()
	}
}

// Connect acquires the selected microphone and opens the live
// interpretation session.
func (a *App) Connect(deviceID string, ambientMode bool, systemAudio bool) (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	opts := usecase.ConnectOptions{DeviceID: deviceID, AmbientMode: ambientMode, SystemAudio: systemAudio}
	if err := a.controller.Connect(a.ctx, opts); err != nil {
		return domain.Status{}, err
	}
	return a.controller.Status(), nil
}

// Disconnect closes the live session and flushes any trailing utterance.
func (a *App) Disconnect() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.controller.Disconnect(); err != nil {
		return domain.Status{}, err
	}
	return a.controller.Status(), nil
}

// SetActiveMode switches language attribution for subsequent utterances.
func (a *App) SetActiveMode(mode string) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.controller.SetActiveMode(domain.Mode(mode))
}

// GetStatus returns the current session status.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		if a.bootErr != nil {
			return domain.Status{Status: domain.StatusError, Mode: domain.ModeAuto, Message: a.bootErr.Error()}
		}
		return domain.Status{Status: domain.StatusDisconnected, Mode: domain.ModeAuto}
	}
	return a.controller.Status()
}

// GetHistory returns all committed conversation pairs in order.
func (a *App) GetHistory() ([]domain.ConversationPair, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.controller.History(), nil
}

// ClearHistory drops the committed conversation history.
func (a *App) ClearHistory() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.controller.ClearHistory()
	return nil
}

// ExportTranscript writes the conversation history to a text file chosen
// by the user. Returns the saved path, or "" when the dialog is canceled.
func (a *App) ExportTranscript() (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	text, err := a.controller.ExportTranscript()
	if errors.Is(err, usecase.ErrEmptyHistory) {
		return "", nil
	}
	if err != nil {
		a.SessionError(domain.ErrorCodeExport, err.Error())
		return "", err
	}
	name := fmt.Sprintf("tercuman-transcript-%s.txt", time.Now().Format("2006-01-02"))
	return a.saveTextFile(name, text)
}

// CopyTranscript places the rendered transcript on the system clipboard.
func (a *App) CopyTranscript() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	text, err := a.controller.ExportTranscript()
	if err != nil {
		a.SessionError(domain.ErrorCodeExport, err.Error())
		return err
	}
	if err := a.clipboard.SetText(a.ctx, text); err != nil {
		a.SessionError(domain.ErrorCodeExport, err.Error())
		return err
	}
	return nil
}

// GetWordStats returns per-word usage counts for spoken English.
func (a *App) GetWordStats() (map[string]int, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.tracker.WordStats(), nil
}

// GetStudyGuide returns the generated study cards keyed by word.
func (a *App) GetStudyGuide() (map[string]domain.StudyCard, error) {
	if err := a.requireReady(); err != nil {
		return nil, err
	}
	return a.tracker.Guide(), nil
}

// IsGeneratingGuide reports whether a guide generation is in flight.
func (a *App) IsGeneratingGuide() bool {
	if a.tracker == nil {
		return false
	}
	return a.tracker.IsGenerating()
}

// GenerateStudyGuide requests study cards for the current priority words.
func (a *App) GenerateStudyGuide() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.tracker.Generate(a.ctx); err != nil {
		a.SessionError(domain.ErrorCodeGeneration, err.Error())
		return err
	}
	return nil
}

// ExportStudyGuide writes the study guide and word counts to a text file
// chosen by the user. Returns the saved path, or "" when canceled.
func (a *App) ExportStudyGuide() (string, error) {
	if err := a.requireReady(); err != nil {
		return "", err
	}
	text, err := a.tracker.ExportText()
	if errors.Is(err, vocab.ErrNothingToExport) {
		return "", nil
	}
	if err != nil {
		a.SessionError(domain.ErrorCodeExport, err.Error())
		return "", err
	}
	name := fmt.Sprintf("tercuman-study-guide-%s.txt", time.Now().Format("2006-01-02"))
	return a.saveTextFile(name, text)
}

func (a *App) saveTextFile(defaultName, text string) (string, error) {
	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		DefaultFilename: defaultName,
		Filters: []runtime.FileFilter{
			{DisplayName: "Text files (*.txt)", Pattern: "*.txt"},
		},
	})
	if err != nil {
		a.SessionError(domain.ErrorCodeExport, err.Error())
		return "", err
	}
	if path == "" {
		return "", nil
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		a.SessionError(domain.ErrorCodeExport, err.Error())
		return "", err
	}
	return path, nil
}

// ClearVocabulary erases word statistics and the study guide together.
func (a *App) ClearVocabulary() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	if err := a.tracker.Clear(); err != nil {
		a.SessionError(domain.ErrorCodePersistence, err.Error())
		return err
	}
	return nil
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"provider":         "Gemini",
		"liveModel":        a.cfg.Gemini.LiveModel,
		"textModel":        a.cfg.Gemini.TextModel,
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
		"audioMonitor":     a.cfg.Audio.MonitorDevice,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// StatusChanged emits session lifecycle updates to the frontend.
func (a *App) StatusChanged(status domain.ConnectionStatus, reason domain.StatusReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventStatus, map[string]string{
		"status":  string(status),
		"reason":  string(reason),
		"message": statusMessage(reason),
	})
}

// LiveTranscript emits the current uncommitted utterance text.
func (a *App) LiveTranscript(role domain.SegmentRole, text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventLive, map[string]string{
		"role": string(role),
		"text": text,
	})
}

// PairCommitted emits a newly committed conversation pair.
func (a *App) PairCommitted(pair domain.ConversationPair) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPair, pair)
}

// GuideGenerating emits study guide generation progress.
func (a *App) GuideGenerating(active bool) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventGuide, map[string]bool{"active": active})
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func statusMessage(reason domain.StatusReason) string {
	switch reason {
	case domain.ReasonStartup:
		return "Ready"
	case domain.ReasonConnecting:
		return "Connecting to interpreter..."
	case domain.ReasonSessionOpened:
		return "Live interpretation session open"
	case domain.ReasonDisconnected:
		return "Disconnected"
	case domain.ReasonDeviceFailed:
		return "Audio device unavailable"
	case domain.ReasonHandshakeFailed:
		return "Could not reach the interpretation service"
	case domain.ReasonTransportLost:
		return "Connection to the interpretation service was lost"
	case domain.ReasonServiceError:
		return "Interpretation service error"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeDevice:
		return "Audio device unavailable"
	case domain.ErrorCodeAudioStream:
		return "Audio streaming issue"
	case domain.ErrorCodePlayback:
		return "Audio playback issue"
	case domain.ErrorCodeSession:
		return "Interpretation session error"
	case domain.ErrorCodeGeneration:
		return "Study guide generation failed"
	case domain.ErrorCodePersistence:
		return "Could not save vocabulary data"
	case domain.ErrorCodeExport:
		return "Export failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

type wailsClipboard struct{}

func (c *wailsClipboard) SetText(ctx context.Context, text string) error {
	return runtime.ClipboardSetText(ctx, text)
}
