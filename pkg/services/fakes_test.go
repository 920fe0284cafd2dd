package services

import (
	"context"
	"errors"
	"os"
	"sync"

	"blood-helpline/pkg/models"
)

type fakeSender struct {
	mu   sync.Mutex
	fail map[string]bool
	sent map[string]string
}

func newFakeSender(failing ...string) *fakeSender {
	s := &fakeSender{fail: map[string]bool{}, sent: map[string]string{}}
	for _, to := range failing {
		s.fail[to] = true
	}
	return s
}

func (s *fakeSender) SendSMS(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[to] {
		return "", errors.New("carrier rejected")
	}
	s.sent[to] = body
	return "SM" + to, nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fakeRecords struct {
	mu      sync.Mutex
	err     error
	records []models.IntakeRecord
	// onAppend runs after a successful append
	onAppend func()
}

func (r *fakeRecords) AppendRecord(_ context.Context, record models.IntakeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	if r.onAppend != nil {
		r.onAppend()
	}
	return nil
}

func (r *fakeRecords) rows() []models.IntakeRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.IntakeRecord(nil), r.records...)
}

type fakeDonors struct {
	donors []models.DonorRecord
	err    error
}

func (d *fakeDonors) ListDonors(ctx context.Context) ([]models.DonorRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.donors, d.err
}

// fakeFetcher writes a placeholder file where the recording would land
type fakeFetcher struct {
	mu   sync.Mutex
	err  error
	urls []string
}

// DownloadRecording writes a partial file before failing, like an interrupted copy
func (f *fakeFetcher) DownloadRecording(_ context.Context, recordingURL, destPath string) error {
	f.mu.Lock()
	f.urls = append(f.urls, recordingURL)
	f.mu.Unlock()
	if err := os.WriteFile(destPath, []byte("ID3"), 0o644); err != nil {
		return err
	}
	return f.err
}

type fakeConverter struct {
	err error
}

func (c *fakeConverter) Convert(_ context.Context, srcPath, dstPath string) error {
	if c.err != nil {
		return c.err
	}
	return os.WriteFile(dstPath, []byte("RIFF"), 0o644)
}

// fakeTranscriber returns queued transcripts in order
type fakeTranscriber struct {
	mu        sync.Mutex
	err       error
	texts     []string
	languages []string
}

func (t *fakeTranscriber) Transcribe(_ context.Context, _ string, language string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.languages = append(t.languages, language)
	if t.err != nil {
		return "", t.err
	}
	if len(t.texts) == 0 {
		return "", nil
	}
	text := t.texts[0]
	t.texts = t.texts[1:]
	return text, nil
}
