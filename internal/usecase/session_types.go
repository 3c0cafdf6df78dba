package usecase

import (
	"tercuman/internal/ports"
)

type activeSession struct {
	cancel func()
	audio  ports.AudioSession
	live   ports.LiveSession

	eventsDone chan struct{}
	audioDone  chan struct{}
}
