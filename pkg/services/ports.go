package services

import (
	"context"

	"blood-helpline/pkg/models"
)

// Transcriber turns a recorded answer into text
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}

// RecordingFetcher downloads a call recording to a local file
type RecordingFetcher interface {
	DownloadRecording(ctx context.Context, recordingURL, destPath string) error
}

// AudioConverter converts a downloaded recording into a transcribable WAV
type AudioConverter interface {
	Convert(ctx context.Context, srcPath, dstPath string) error
}

// RecordStore appends completed intake records
type RecordStore interface {
	AppendRecord(ctx context.Context, record models.IntakeRecord) error
}

// DonorDirectory lists registered donors
type DonorDirectory interface {
	ListDonors(ctx context.Context) ([]models.DonorRecord, error)
}

// SMSSender delivers one text message and returns the provider message id
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}
