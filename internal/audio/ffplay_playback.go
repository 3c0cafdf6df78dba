package audio

import (
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
)

// FFPlayPlayback streams synthesized s16le PCM into an ffplay subprocess.
// The process is started lazily on the first chunk so a session with
// playback disabled never spawns it.
type FFPlayPlayback struct {
	command    string
	sampleRate int

	mu      sync.Mutex
	stdin   io.WriteCloser
	process *exec.Cmd
	failed  bool
}

func NewFFPlayPlayback(command string, sampleRate int) *FFPlayPlayback {
	if command == "" {
		command = "ffplay"
	}
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	return &FFPlayPlayback{command: command, sampleRate: sampleRate}
}

func (p *FFPlayPlayback) Play(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failed {
		return nil
	}
	if p.stdin == nil {
		if err := p.startLocked(); err != nil {
			p.failed = true
			return fmt.Errorf("failed to start audio playback: %w", err)
		}
	}

	if _, err := p.stdin.Write(chunk); err != nil {
		p.failed = true
		p.teardownLocked()
		return fmt.Errorf("playback pipe broke: %w", err)
	}
	return nil
}

func (p *FFPlayPlayback) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardownLocked()
	p.failed = false
	return nil
}

func (p *FFPlayPlayback) startLocked() error {
	cmd := exec.Command(p.command,
		"-hide_banner",
		"-loglevel", "error",
		"-nodisp",
		"-f", "s16le",
		"-ar", strconv.Itoa(p.sampleRate),
		"-ch_layout", "mono",
		"-i", "-",
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	p.stdin = stdin
	p.process = cmd
	return nil
}

func (p *FFPlayPlayback) teardownLocked() {
	if p.stdin != nil {
		_ = p.stdin.Close()
		p.stdin = nil
	}
	if p.process != nil {
		if p.process.Process != nil {
			_ = p.process.Process.Kill()
		}
		_ = p.process.Wait()
		p.process = nil
	}
}
