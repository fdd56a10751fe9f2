package transcription

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/skillsenselab/answerlens/internal/logger"
)

// stubProvider records the path it was called with and returns a canned
// result.
type stubProvider struct {
	resp       *Response
	err        error
	calledPath string
	pathExists bool
}

func (s *stubProvider) Name() string                       { return "stub" }
func (s *stubProvider) IsAvailable(_ context.Context) bool { return true }
func (s *stubProvider) Transcribe(_ context.Context, req Request) (*Response, error) {
	s.calledPath = req.AudioPath
	_, statErr := os.Stat(req.AudioPath)
	s.pathExists = statErr == nil
	return s.resp, s.err
}

func TestTranscribeBytes(t *testing.T) {
	t.Run("returns provider text and cleans up", func(t *testing.T) {
		provider := &stubProvider{resp: &Response{Text: "hello world"}}
		svc := NewService(provider, logger.NewDefault("test"))

		text, err := svc.TranscribeBytes(context.Background(), []byte("fake-audio"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != "hello world" {
			t.Errorf("expected 'hello world', got %q", text)
		}

		if !provider.pathExists {
			t.Error("expected temp file to exist during transcription")
		}
		if _, err := os.Stat(provider.calledPath); !os.IsNotExist(err) {
			t.Errorf("expected temp file %s to be removed", provider.calledPath)
		}
	})

	t.Run("cleans up when provider fails", func(t *testing.T) {
		provider := &stubProvider{err: errors.New("engine crashed")}
		svc := NewService(provider, logger.NewDefault("test"))

		_, err := svc.TranscribeBytes(context.Background(), []byte("fake-audio"))
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "engine crashed") {
			t.Errorf("expected provider error to propagate, got %v", err)
		}
		if _, statErr := os.Stat(provider.calledPath); !os.IsNotExist(statErr) {
			t.Errorf("expected temp file %s to be removed after failure", provider.calledPath)
		}
	})

	t.Run("nil response yields empty transcript", func(t *testing.T) {
		provider := &stubProvider{}
		svc := NewService(provider, logger.NewDefault("test"))

		text, err := svc.TranscribeBytes(context.Background(), []byte("fake-audio"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != "" {
			t.Errorf("expected empty transcript, got %q", text)
		}
	})

	t.Run("temp files carry unique names", func(t *testing.T) {
		provider := &stubProvider{resp: &Response{Text: "x"}}
		svc := NewService(provider, logger.NewDefault("test"))

		if _, err := svc.TranscribeBytes(context.Background(), []byte("a")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		first := provider.calledPath
		if _, err := svc.TranscribeBytes(context.Background(), []byte("b")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if provider.calledPath == first {
			t.Error("expected a fresh temp file per call")
		}
	})
}

func TestAvailable(t *testing.T) {
	svc := NewService(&stubProvider{}, logger.NewDefault("test"))
	if !svc.Available(context.Background()) {
		t.Error("expected availability to reflect the provider")
	}
}

func TestRemoveIfExists(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "cleanup-*")
	if err != nil {
		t.Fatalf("create temp: %v", err)
	}
	path := f.Name()
	_ = f.Close()

	removeIfExists(path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be removed", path)
	}

	// Second invocation is a no-op.
	removeIfExists(path)
}
