package api

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"blood-helpline/pkg/ivr"
	"blood-helpline/pkg/models"
	"blood-helpline/pkg/services"
	"blood-helpline/pkg/session"
)

type fakeFetcher struct{ err error }

func (f *fakeFetcher) DownloadRecording(_ context.Context, _, destPath string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(destPath, []byte("ID3"), 0o644)
}

type fakeConverter struct{}

func (fakeConverter) Convert(_ context.Context, _, dstPath string) error {
	return os.WriteFile(dstPath, []byte("RIFF"), 0o644)
}

type fakeTranscriber struct {
	mu    sync.Mutex
	texts []string
}

func (t *fakeTranscriber) Transcribe(context.Context, string, string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.texts) == 0 {
		return "", nil
	}
	text := t.texts[0]
	t.texts = t.texts[1:]
	return text, nil
}

type memoryRecords struct {
	mu   sync.Mutex
	rows []models.IntakeRecord
}

func (m *memoryRecords) AppendRecord(_ context.Context, r models.IntakeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, r)
	return nil
}

type staticDonors []models.DonorRecord

func (d staticDonors) ListDonors(context.Context) ([]models.DonorRecord, error) {
	return d, nil
}

type recordingSender struct {
	mu  sync.Mutex
	sms []string
}

func (s *recordingSender) SendSMS(_ context.Context, to, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sms = append(s.sms, to)
	return "SM1", nil
}

type testServer struct {
	router  *gin.Engine
	records *memoryRecords
	sender  *recordingSender
	fetcher *fakeFetcher
	signer  *ivr.Signer
}

func newTestServer(t *testing.T, secret, operator string, transcripts ...string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		records: &memoryRecords{},
		sender:  &recordingSender{},
		fetcher: &fakeFetcher{},
		signer:  ivr.NewSigner(secret),
	}
	stats := &services.Stats{}
	donors := staticDonors{{Name: "Asha", Phone: "9000000001", BloodGroup: "O+"}}
	finalizer := services.NewFinalizer(ts.records, donors, services.NewDispatcher(ts.sender, "+91", 2, stats))
	intake := services.NewIntakeService(
		ivr.NewMachine(3),
		session.NewStore(time.Hour),
		ts.fetcher,
		fakeConverter{},
		&fakeTranscriber{texts: transcripts},
		finalizer,
		stats,
		services.IntakeConfig{RecordingsDir: t.TempDir()},
	)

	ts.router = gin.New()
	RegisterRoutes(ts.router, NewHandlers(intake, ts.signer, operator))
	return ts
}

func (ts *testServer) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

var (
	redirectPattern = regexp.MustCompile(`<Redirect[^>]*>([^<]+)</Redirect>`)
	actionPattern   = regexp.MustCompile(`action="([^"]+)"`)
)

func match(t *testing.T, re *regexp.Regexp, body string) string {
	t.Helper()
	m := re.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("no %s in response:\n%s", re, body)
	}
	return html.UnescapeString(m[1])
}

func call(digits string) url.Values {
	v := url.Values{"CallSid": {"CALLSID123"}}
	if digits != "" {
		v.Set("Digits", digits)
	}
	return v
}

func TestVoice(t *testing.T) {
	ts := newTestServer(t, "", "")
	w := ts.post("/voice", call(""))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("content type = %s", ct)
	}
	body := w.Body.String()
	if match(t, actionPattern, body) != "/language" {
		t.Errorf("gather action wrong:\n%s", body)
	}
	for _, want := range []string{"Blood Emergency Helpline", "No input received. Goodbye.", "<Hangup"} {
		if !strings.Contains(body, want) {
			t.Errorf("response missing %q:\n%s", want, body)
		}
	}
}

func TestFullCallFlow(t *testing.T) {
	ts := newTestServer(t, "s3cret", "", "Rahul", "Apollo Hospital")

	next := match(t, redirectPattern, ts.post("/language", call("1")).Body.String())
	if !strings.HasPrefix(next, "/register?") || !strings.Contains(next, "step=name") || !strings.Contains(next, "sig=") {
		t.Fatalf("language redirect = %s", next)
	}

	body := ts.post(next, call("")).Body.String()
	if !strings.Contains(body, "patient&#39;s name") && !strings.Contains(body, "patient's name") {
		t.Errorf("name prompt missing:\n%s", body)
	}
	if !strings.Contains(body, `maxLength="6"`) {
		t.Errorf("record verb missing:\n%s", body)
	}
	recordAction := match(t, actionPattern, body)

	rec := call("")
	rec.Set("RecordingUrl", "https://api.twilio.com/rec/RE1")
	next = match(t, redirectPattern, ts.post(recordAction, rec).Body.String())
	if !strings.Contains(next, "step=phone") {
		t.Fatalf("after name redirect = %s", next)
	}

	phoneAction := match(t, actionPattern, ts.post(next, call("")).Body.String())
	if !strings.HasPrefix(phoneAction, "/confirm_phone?") {
		t.Fatalf("phone action = %s", phoneAction)
	}
	body = ts.post(phoneAction, call("9876543210")).Body.String()
	if !strings.Contains(body, "9 8 7 6 5 4 3 2 1 0") {
		t.Errorf("readback missing:\n%s", body)
	}
	decisionAction := match(t, actionPattern, body)

	next = match(t, redirectPattern, ts.post(decisionAction, call("1")).Body.String())
	if !strings.Contains(next, "step=blood") {
		t.Fatalf("after confirm redirect = %s", next)
	}

	bloodAction := match(t, actionPattern, ts.post(next, call("")).Body.String())
	next = match(t, redirectPattern, ts.post(bloodAction, call("5")).Body.String())
	if !strings.Contains(next, "step=hospital") {
		t.Fatalf("after blood redirect = %s", next)
	}

	hospitalAction := match(t, actionPattern, ts.post(next, call("")).Body.String())
	w := ts.post(hospitalAction, rec)
	if !strings.Contains(w.Body.String(), "Thank you. Your details are recorded") {
		t.Errorf("completion missing:\n%s", w.Body.String())
	}

	want := models.IntakeRecord{CallID: "CALLSID123", Name: "Rahul", Phone: "9876543210", BloodGroup: "O+", Hospital: "Apollo Hospital"}
	if len(ts.records.rows) != 1 || ts.records.rows[0] != want {
		t.Fatalf("rows = %+v", ts.records.rows)
	}
	if len(ts.sender.sms) != 1 || ts.sender.sms[0] != "+919000000001" {
		t.Errorf("sms = %v", ts.sender.sms)
	}

	w = ts.post(hospitalAction, rec)
	if !strings.Contains(w.Body.String(), "already been recorded") || len(ts.records.rows) != 1 {
		t.Errorf("duplicate submission: rows = %d\n%s", len(ts.records.rows), w.Body.String())
	}
}

func TestContinuationSignature(t *testing.T) {
	ts := newTestServer(t, "s3cret", "")

	w := ts.post("/register?lang=en-IN&step=phone&sig=deadbeef", call(""))
	if w.Code != http.StatusForbidden {
		t.Errorf("forged sig: status = %d, want 403", w.Code)
	}

	sig := ts.signer.Sign("OTHERCALL", "en-IN", "phone")
	w = ts.post("/register?lang=en-IN&step=phone&sig="+sig, call(""))
	if w.Code != http.StatusForbidden {
		t.Errorf("sig for another call: status = %d, want 403", w.Code)
	}

	sig = ts.signer.Sign("CALLSID123", "en-IN", "phone")
	w = ts.post("/blood_choice?lang=en-IN&step=phone&sig="+sig, call("5"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("wrong endpoint for step: status = %d, want 400", w.Code)
	}
}

func TestRegisterUnsigned(t *testing.T) {
	ts := newTestServer(t, "", "")

	req := httptest.NewRequest(http.MethodGet, "/register?lang=hi-IN&step=blood&CallSid=CA9", nil)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	body := w.Body.String()
	if w.Code != http.StatusOK || !strings.Contains(body, `numDigits="1"`) || !strings.Contains(body, `language="hi-IN"`) {
		t.Errorf("status = %d\n%s", w.Code, body)
	}
	if match(t, actionPattern, body) != "/blood_choice?lang=hi-IN&step=blood" {
		t.Errorf("unsigned action = %s", match(t, actionPattern, body))
	}

	if w := ts.post("/register?lang=en-IN&step=dob", call("")); w.Code != http.StatusBadRequest {
		t.Errorf("unknown step: status = %d, want 400", w.Code)
	}
}

func TestConfirmPhoneRetryAndEscalation(t *testing.T) {
	ts := newTestServer(t, "", "+919999999999")

	body := ts.post("/confirm_phone?lang=en-IN&step=phone", call("12345")).Body.String()
	if !strings.Contains(body, "Invalid phone number") || !strings.Contains(match(t, redirectPattern, body), "step=phone") {
		t.Errorf("retry response:\n%s", body)
	}
	ts.post("/confirm_phone?lang=en-IN&step=phone", call("12345"))
	body = ts.post("/confirm_phone?lang=en-IN&step=phone", call("12345")).Body.String()
	if !strings.Contains(body, "<Dial") || !strings.Contains(body, "+919999999999") {
		t.Errorf("escalation response:\n%s", body)
	}
}

func TestPhoneDecisionReenter(t *testing.T) {
	ts := newTestServer(t, "", "")
	ts.post("/confirm_phone?lang=en-IN&step=phone", call("9876543210"))

	next := match(t, redirectPattern, ts.post("/phone_decision?lang=en-IN&step=phone", call("2")).Body.String())
	if !strings.Contains(next, "step=phone") {
		t.Errorf("re-enter redirect = %s", next)
	}
}

func TestProcessRecordingErrors(t *testing.T) {
	ts := newTestServer(t, "", "")

	w := ts.post("/process_recording?lang=en-IN&step=name", call(""))
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing RecordingUrl: status = %d, want 400", w.Code)
	}

	rec := call("")
	rec.Set("RecordingUrl", "https://api.twilio.com/rec/RE1")
	w = ts.post("/process_recording?lang=en-IN&step=blood", rec)
	if w.Code != http.StatusBadRequest {
		t.Errorf("keypad step: status = %d, want 400", w.Code)
	}

	ts.fetcher.err = errors.New("404 not found")
	w = ts.post("/process_recording?lang=en-IN&step=name", rec)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("download failure: status = %d, want 500", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %s", ct)
	}
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, "", "")
	ts.post("/language", call("2"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var got struct {
		Status         string                 `json:"status"`
		ActiveSessions int                    `json:"active_sessions"`
		Stats          services.StatsSnapshot `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if got.Status != "ok" || got.ActiveSessions != 1 {
		t.Errorf("health = %+v", got)
	}
}

func TestLanguageRequiresCallSid(t *testing.T) {
	ts := newTestServer(t, "", "")

	w := ts.post("/language", url.Values{"Digits": {"1"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), `"active_sessions":0`) {
		t.Errorf("no session should be created: %s", w.Body.String())
	}
}
