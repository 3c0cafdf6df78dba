// Package audio captures and plays PCM streams through ffmpeg/ffplay
// subprocesses.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"tercuman/internal/ports"
)

// cleanupFilter removes close-talk noise; skipped in ambient mode so
// distant room audio survives.
const cleanupFilter = "highpass=f=200,afftdn=nf=-25"

// FFMPEGCapture streams microphone PCM audio using ffmpeg. With
// MixSystemAudio it opens the monitor source as a second input and mixes
// both before encoding.
type FFMPEGCapture struct {
	command string
}

func NewFFMPEGCapture(command string) *FFMPEGCapture {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGCapture{command: command}
}

func (c *FFMPEGCapture) Start(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}
	if cfg.MonitorDevice == "" {
		cfg.MonitorDevice = "default.monitor"
	}

	cmd := exec.CommandContext(ctx, c.command, captureArgs(cfg)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	select {
	case err := <-waitErr:
		if err != nil {
			return nil, fmt.Errorf("ffmpeg exited before capture started: %w: %s", err, trimBytes(stderr.String()))
		}
		return nil, errors.New("ffmpeg exited before capture started")
	case <-time.After(250 * time.Millisecond):
	}

	return &ffmpegSession{
		stdout:  stdout,
		stderr:  &stderr,
		process: cmd.Process,
		waitErr: waitErr,
	}, nil
}

// captureArgs builds the ffmpeg invocation for the requested capture
// topology.
func captureArgs(cfg ports.AudioConfig) []string {
	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
	}

	if cfg.MixSystemAudio {
		args = append(args,
			"-f", cfg.InputFormat,
			"-i", cfg.MonitorDevice,
		)
		mix := "amix=inputs=2:duration=longest"
		if !cfg.AmbientMode {
			mix += "," + cleanupFilter
		}
		args = append(args, "-filter_complex", mix)
	} else if !cfg.AmbientMode {
		args = append(args, "-af", cleanupFilter)
	}

	args = append(args,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "s16le",
		"-",
	)
	return args
}

type ffmpegSession struct {
	stdout io.ReadCloser
	stderr *bytes.Buffer

	process *os.Process
	waitErr <-chan error

	stopOnce sync.Once
	stopErr  error
}

func (s *ffmpegSession) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *ffmpegSession) Close() error {
	return s.Stop()
}

func (s *ffmpegSession) Stop() error {
	s.stopOnce.Do(func() {
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		case <-time.After(1200 * time.Millisecond):
			if s.process != nil {
				_ = s.process.Kill()
			}
			err, ok := <-s.waitErr
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		}

		if closeErr := s.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			if s.stopErr == nil {
				s.stopErr = closeErr
			}
		}

		if s.stopErr != nil && s.stderr != nil && s.stderr.Len() > 0 {
			s.stopErr = fmt.Errorf("%w: %s", s.stopErr, trimBytes(s.stderr.String()))
		}
	})

	return s.stopErr
}

func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func trimBytes(input string) string {
	if input == "" {
		return input
	}
	return string(bytes.TrimSpace([]byte(input)))
}
