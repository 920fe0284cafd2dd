package whisper

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestTranscribe(t *testing.T) {
	var language, model string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
		}
		language = r.FormValue("language")
		model = r.FormValue("model")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text": "  Apollo Hospital \n"}`)
	}))
	defer srv.Close()

	audio := filepath.Join(t.TempDir(), "CA1_hospital.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	c := NewClientWithConfig(cfg, "")

	text, err := c.Transcribe(context.Background(), audio, "hi")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "Apollo Hospital" {
		t.Errorf("text = %q", text)
	}
	if language != "hi" {
		t.Errorf("language = %q, want hi", language)
	}
	if model != DefaultModel {
		t.Errorf("model = %q, want %q", model, DefaultModel)
	}
}

func TestTranscribeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"boom"}}`)
	}))
	defer srv.Close()

	audio := filepath.Join(t.TempDir(), "a.wav")
	_ = os.WriteFile(audio, []byte("RIFF"), 0644)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	if _, err := NewClientWithConfig(cfg, "").Transcribe(context.Background(), audio, "en"); err == nil {
		t.Fatal("expected error")
	}
}
