package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"blood-helpline/pkg/ivr"
	"blood-helpline/pkg/models"
	"blood-helpline/pkg/session"
	"blood-helpline/pkg/utils"
)

// ErrNotVoiceStep is returned when a recording is posted for a keypad step
var ErrNotVoiceStep = errors.New("step does not take a voice recording")

// Outcome is the result of feeding one caller input through the intake
type Outcome struct {
	Transition ivr.Transition
	Session    models.CallSession
	// Duplicate is set when the final step was submitted again for a call
	// that was already finalized; nothing was re-appended or re-sent.
	Duplicate bool
	Result    FinalizeResult
}

// RecordingInput is a voice answer delivered by the telephony webhook
type RecordingInput struct {
	CallID       string
	RecordingURL string
	Step         models.Step
	Locale       models.Locale
}

// DefaultFinalizeTimeout bounds storing the record and alerting donors
const DefaultFinalizeTimeout = 2 * time.Minute

// IntakeConfig holds the intake's local file handling and finalization options
type IntakeConfig struct {
	RecordingsDir   string
	KeepRecordings  bool
	// FinalizeTimeout bounds finalization, which outlives the webhook request
	FinalizeTimeout time.Duration
}

// IntakeService drives a call through the intake state machine, keeping
// the per-call answers in the session store.
type IntakeService struct {
	machine     *ivr.Machine
	store       *session.Store
	fetcher     RecordingFetcher
	converter   AudioConverter
	transcriber Transcriber
	finalizer   *Finalizer
	stats       *Stats
	config      IntakeConfig
}

// NewIntakeService creates a new intake service
func NewIntakeService(
	machine *ivr.Machine,
	store *session.Store,
	fetcher RecordingFetcher,
	converter AudioConverter,
	transcriber Transcriber,
	finalizer *Finalizer,
	stats *Stats,
	config IntakeConfig,
) *IntakeService {
	if config.FinalizeTimeout <= 0 {
		config.FinalizeTimeout = DefaultFinalizeTimeout
	}
	if config.RecordingsDir == "" {
		config.RecordingsDir = "recordings"
	}
	if stats == nil {
		stats = &Stats{}
	}
	return &IntakeService{
		machine:     machine,
		store:       store,
		fetcher:     fetcher,
		converter:   converter,
		transcriber: transcriber,
		finalizer:   finalizer,
		stats:       stats,
		config:      config,
	}
}

// Stats returns the service counters
func (s *IntakeService) Stats() *Stats {
	return s.stats
}

// ActiveSessions returns the number of call sessions held in memory
func (s *IntakeService) ActiveSessions() int {
	return s.store.Len()
}

// advance runs one machine step for callID atomically against its session
func (s *IntakeService) advance(callID string, state ivr.State, input ivr.Input) (Outcome, error) {
	var (
		t   ivr.Transition
		err error
	)
	sess := s.store.Update(callID, func(cs *models.CallSession) {
		in := input
		in.PendingPhone = cs.PendingPhone
		in.PhoneAttempts = cs.PhoneAttempts
		t, err = s.machine.Next(state, in)
		if err == nil {
			t.Apply(cs)
		}
	})
	if err != nil {
		return Outcome{Session: sess}, err
	}
	return Outcome{Transition: t, Session: sess}, nil
}

// SelectLanguage records the caller's language choice
func (s *IntakeService) SelectLanguage(callID, digits string) (Outcome, error) {
	out, err := s.advance(callID, ivr.StateAwaitingLanguage, ivr.Input{Digits: digits})
	if err == nil {
		log.Printf("Language selected for call %s: %s", callID, out.Session.Locale)
	}
	return out, err
}

// SubmitPhone validates the keyed contact number and holds it for confirmation
func (s *IntakeService) SubmitPhone(callID, digits string) (Outcome, error) {
	out, err := s.advance(callID, ivr.StatePhone, ivr.Input{Digits: digits})
	if err != nil {
		return out, err
	}
	switch {
	case out.Transition.Escalate:
		log.Printf("Phone entry attempts exhausted for call %s", callID)
	case out.Transition.Retry:
		log.Printf("Invalid phone number for call %s (%d digits), attempt %d", callID, len(digits), out.Session.PhoneAttempts)
	default:
		log.Printf("Phone number received for call %s: %s", callID, utils.MaskPhone(digits))
	}
	return out, nil
}

// DecidePhone confirms the pending number on "1" or sends the caller back to re-enter it
func (s *IntakeService) DecidePhone(callID, digits string) (Outcome, error) {
	return s.advance(callID, ivr.StatePhoneConfirm, ivr.Input{Digits: digits})
}

// SubmitBloodGroup maps the keypad choice to a blood group
func (s *IntakeService) SubmitBloodGroup(callID, digits string) (Outcome, error) {
	out, err := s.advance(callID, ivr.StateBlood, ivr.Input{Digits: digits})
	if err == nil {
		log.Printf("Blood group received for call %s: %s", callID, out.Session.BloodGroup)
	}
	return out, err
}

// ProcessRecording downloads, converts and transcribes a voice answer, stores
// it, and finalizes the call when the answer was the last step.
func (s *IntakeService) ProcessRecording(ctx context.Context, in RecordingInput) (Outcome, error) {
	if in.CallID == "" || in.RecordingURL == "" {
		return Outcome{}, ErrMissingRecording
	}
	state, ok := ivr.StateForStep(in.Step)
	if !ok || (state != ivr.StateName && state != ivr.StateHospital) {
		return Outcome{}, fmt.Errorf("%w: %q", ErrNotVoiceStep, in.Step)
	}

	if state == ivr.StateHospital {
		if existing, ok := s.store.Get(in.CallID); ok && existing.Finalized {
			return s.duplicate(existing), nil
		}
	}

	text, err := s.transcribeRecording(ctx, in)
	if err != nil {
		return Outcome{}, err
	}

	out, err := s.advance(in.CallID, state, ivr.Input{Transcript: text})
	if err != nil {
		return out, err
	}
	if !out.Transition.Finalize {
		return out, nil
	}

	sess, won := s.store.MarkFinalized(in.CallID)
	if !won {
		return s.duplicate(sess), nil
	}

	// Finalization outlives the webhook request; only FinalizeTimeout bounds it.
	finalizeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.FinalizeTimeout)
	defer cancel()

	result, err := s.finalizer.Finalize(finalizeCtx, sess)
	if err != nil {
		// Leave the call open so a retried webhook can persist it
		s.store.ClearFinalized(in.CallID)
		return out, err
	}
	s.stats.finalized.Add(1)

	out.Session = sess
	out.Result = result
	return out, nil
}

func (s *IntakeService) duplicate(sess models.CallSession) Outcome {
	log.Printf("Ignoring repeated final submission for call %s", sess.CallID)
	s.stats.duplicates.Add(1)
	return Outcome{
		Transition: ivr.Transition{From: ivr.StateHospital, To: ivr.StateComplete},
		Session:    sess,
		Duplicate:  true,
	}
}

func (s *IntakeService) transcribeRecording(ctx context.Context, in RecordingInput) (string, error) {
	base := fmt.Sprintf("%s_%s", safeName(in.CallID), in.Step)
	mp3Path := filepath.Join(s.config.RecordingsDir, base+".mp3")
	wavPath := filepath.Join(s.config.RecordingsDir, base+".wav")

	recordingURL := in.RecordingURL
	if !strings.HasSuffix(recordingURL, ".mp3") {
		recordingURL += ".mp3"
	}

	if err := os.MkdirAll(s.config.RecordingsDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if !s.config.KeepRecordings {
		defer removeQuietly(mp3Path)
		defer removeQuietly(wavPath)
	}
	if err := s.fetcher.DownloadRecording(ctx, recordingURL, mp3Path); err != nil {
		log.Printf("Error downloading audio for call %s: %v", in.CallID, err)
		return "", fmt.Errorf("%w: %v", ErrDownload, err)
	}

	if err := s.converter.Convert(ctx, mp3Path, wavPath); err != nil {
		log.Printf("Error converting audio for call %s: %v", in.CallID, err)
		return "", fmt.Errorf("%w: %v", ErrConversion, err)
	}

	hint := ivr.TranscriptionHint(in.Locale)
	text, err := s.transcriber.Transcribe(ctx, wavPath, hint)
	if err != nil {
		log.Printf("Error transcribing audio for call %s: %v", in.CallID, err)
		return "", fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	return text, nil
}

// safeName keeps call ids usable as file names
func safeName(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Error removing %s: %v", path, err)
	}
}
