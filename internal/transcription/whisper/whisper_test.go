package whisper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skillsenselab/answerlens/internal/transcription"
)

func writeAudioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(path, []byte("fake-audio-bytes"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestTranscribe(t *testing.T) {
	t.Run("uploads audio and parses response", func(t *testing.T) {
		var gotModel, gotLanguage string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/transcribe" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("parse multipart: %v", err)
			}
			gotModel = r.FormValue("model")
			gotLanguage = r.FormValue("language")
			if _, _, err := r.FormFile("audio"); err != nil {
				t.Errorf("missing audio part: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"text": "tell me about yourself",
				"language": "en",
				"segments": [
					{"text": "tell me", "start": 0, "end": 1.5},
					{"text": "about yourself", "start": 1.5, "end": 3.0}
				]
			}`))
		}))
		defer srv.Close()

		p := NewProvider(Config{URL: srv.URL, Model: "small", Language: "en"})
		resp, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: writeAudioFixture(t)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if resp.Text != "tell me about yourself" {
			t.Errorf("unexpected text %q", resp.Text)
		}
		if gotModel != "small" {
			t.Errorf("expected model 'small', got %q", gotModel)
		}
		if gotLanguage != "en" {
			t.Errorf("expected language 'en', got %q", gotLanguage)
		}
		if len(resp.Segments) != 2 {
			t.Fatalf("expected 2 segments, got %d", len(resp.Segments))
		}
		if resp.Duration != 3.0 {
			t.Errorf("expected duration 3.0, got %v", resp.Duration)
		}
	})

	t.Run("request overrides config model", func(t *testing.T) {
		var gotModel string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = r.ParseMultipartForm(1 << 20)
			gotModel = r.FormValue("model")
			_, _ = w.Write([]byte(`{"text": ""}`))
		}))
		defer srv.Close()

		p := NewProvider(Config{URL: srv.URL, Model: "base"})
		_, err := p.Transcribe(context.Background(), transcription.Request{
			AudioPath: writeAudioFixture(t),
			Model:     "large",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotModel != "large" {
			t.Errorf("expected request model 'large', got %q", gotModel)
		}
	})

	t.Run("sidecar error surfaces status and body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
		}))
		defer srv.Close()

		p := NewProvider(Config{URL: srv.URL})
		_, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: writeAudioFixture(t)})
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "status 500") || !strings.Contains(err.Error(), "model not loaded") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing audio file", func(t *testing.T) {
		p := NewProvider(Config{URL: "http://localhost:1"})
		_, err := p.Transcribe(context.Background(), transcription.Request{AudioPath: "/does/not/exist.mp3"})
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if !NewProvider(Config{URL: srv.URL}).IsAvailable(context.Background()) {
		t.Error("expected available")
	}
	if NewProvider(Config{URL: "http://localhost:1"}).IsAvailable(context.Background()) {
		t.Error("expected unavailable")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.URL != defaultURL {
		t.Errorf("expected default URL, got %q", cfg.URL)
	}
	if cfg.Model != defaultModel {
		t.Errorf("expected default model, got %q", cfg.Model)
	}
	if cfg.Timeout != defaultTimeout {
		t.Errorf("expected default timeout, got %v", cfg.Timeout)
	}
}
