package services

import "errors"

// Call-leg failures. Each is terminal for the webhook that hit it; the
// session keeps whatever was written before the failure.
var (
	ErrMissingRecording = errors.New("missing call sid or recording url")
	ErrDownload         = errors.New("recording download failed")
	ErrConversion       = errors.New("audio conversion failed")
	ErrTranscription    = errors.New("transcription failed")
	ErrPersistence      = errors.New("record persistence failed")
)
