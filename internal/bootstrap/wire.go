package bootstrap

import (
	"tercuman/internal/audio"
	"tercuman/internal/config"
	"tercuman/internal/lang"
	"tercuman/internal/logging"
	"tercuman/internal/ports"
	"tercuman/internal/providers/gemini"
	"tercuman/internal/store"
	"tercuman/internal/usecase"
	"tercuman/internal/vocab"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.SessionController
	Tracker    *vocab.Tracker
	Config     config.Config
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	log := logging.New(cfg.Log.Level)

	kv, err := store.NewFileStore(cfg.Store.Dir)
	if err != nil {
		return Services{}, err
	}

	geminiCfg := gemini.Config{
		APIKey:     cfg.Gemini.APIKey,
		APIBaseURL: cfg.Gemini.APIBaseURL,
		LiveModel:  cfg.Gemini.LiveModel,
		TextModel:  cfg.Gemini.TextModel,
	}

	tracker := vocab.NewTracker(kv, gemini.NewGenerator(geminiCfg), eventSink, log)

	controller := usecase.NewSessionController(
		audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
		gemini.NewProvider(geminiCfg),
		audio.NewFFPlayPlayback(cfg.Audio.PlayerCommand, cfg.Audio.OutputSampleRate),
		tracker,
		lang.Detect,
		eventSink,
		usecase.Config{
			Audio: ports.AudioConfig{
				SampleRate:    cfg.Audio.SampleRate,
				Channels:      cfg.Audio.Channels,
				InputFormat:   cfg.Audio.InputFormat,
				InputDevice:   cfg.Audio.InputDevice,
				MonitorDevice: cfg.Audio.MonitorDevice,
			},
			Session: ports.SessionConfig{
				InputSampleRate: cfg.Audio.SampleRate,
			},
			ChunkSize:          cfg.Session.ChunkSize,
			AudioOutputEnabled: cfg.Audio.OutputEnabled,
		},
		log,
	)

	return Services{Controller: controller, Tracker: tracker, Config: cfg}, nil
}
