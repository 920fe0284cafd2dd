package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownloadRecording(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "AC123" || pass != "token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("ID3-audio"))
	}))
	defer srv.Close()

	c := NewClient("AC123", "token", "+15550000000")
	dest := filepath.Join(t.TempDir(), "recordings", "CA1_name.mp3")

	if err := c.DownloadRecording(context.Background(), srv.URL+"/RE1.mp3", dest); err != nil {
		t.Fatalf("DownloadRecording() error = %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "ID3-audio" {
		t.Errorf("content = %q", data)
	}
}

func TestDownloadRecordingErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("AC123", "token", "+15550000000")
	dest := filepath.Join(t.TempDir(), "missing.mp3")

	if err := c.DownloadRecording(context.Background(), srv.URL, dest); err == nil {
		t.Fatal("expected error for 404 recording")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("no file should be written on failure")
	}
}
