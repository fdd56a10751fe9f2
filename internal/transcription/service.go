package transcription

import (
	"context"
	"fmt"
	"os"

	"github.com/skillsenselab/answerlens/internal/logger"
)

// Service turns raw audio bytes into a transcript using a Provider.
//
// The provider works on file paths, so the bytes are staged in a uniquely
// named temp file that is removed on every exit path. Cleanup is
// existence-checked so a double invocation is harmless.
type Service struct {
	provider Provider
	log      *logger.Logger
}

// NewService creates a transcription service backed by the given provider.
func NewService(p Provider, log *logger.Logger) *Service {
	return &Service{
		provider: p,
		log:      log.WithComponent("transcription"),
	}
}

// TranscribeBytes stages audio bytes in a temp file, transcribes it, and
// returns the text. Provider errors propagate; a response with no text
// yields "". The temp file never outlives the call.
func (s *Service) TranscribeBytes(ctx context.Context, audio []byte) (string, error) {
	tmp, err := os.CreateTemp("", "answerlens-audio-*.mp3")
	if err != nil {
		return "", fmt.Errorf("create temp audio file: %w", err)
	}
	path := tmp.Name()
	defer removeIfExists(path)

	if _, err := tmp.Write(audio); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp audio file: %w", err)
	}

	resp, err := s.provider.Transcribe(ctx, Request{AudioPath: path})
	if err != nil {
		return "", fmt.Errorf("transcribe %s: %w", s.provider.Name(), err)
	}
	if resp == nil {
		return "", nil
	}

	s.log.Debug("Audio transcribed", logger.Fields(
		"provider", s.provider.Name(),
		"bytes", len(audio),
		"chars", len(resp.Text),
	))
	return resp.Text, nil
}

// Available reports whether the backing speech-to-text engine is reachable.
func (s *Service) Available(ctx context.Context) bool {
	return s.provider.IsAvailable(ctx)
}

// removeIfExists deletes path unless it is already gone.
func removeIfExists(path string) {
	if _, err := os.Stat(path); err == nil {
		if rmErr := os.Remove(path); rmErr != nil {
			logger.Warn("Failed to remove temp audio file",
				logger.Fields("path", path, "error", rmErr.Error()))
		}
	}
}
