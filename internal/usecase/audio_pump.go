package usecase

import (
	"errors"
	"fmt"
	"io"

	"tercuman/internal/domain"
	"tercuman/internal/ports"
)

func pumpAudioChunks(
	audio ports.AudioSession,
	live ports.LiveSession,
	chunkSize int,
	events ports.EventSink,
	done chan struct{},
) {
	defer close(done)

	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if sendErr := live.SendAudio(buf[:n]); sendErr != nil {
				events.SessionError(domain.ErrorCodeAudioStream, fmt.Sprintf("failed to stream audio: %v", sendErr))
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				events.SessionError(domain.ErrorCodeAudioStream, fmt.Sprintf("audio capture error: %v", err))
			}
			return
		}
	}
}
