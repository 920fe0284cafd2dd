package audio

import "context"

// TargetSampleRate is the sample rate the transcriber works best with
const TargetSampleRate = 16000

// Converter turns a downloaded call recording into 16-bit PCM WAV
type Converter interface {
	Convert(ctx context.Context, srcPath, dstPath string) error
}

var (
	_ Converter = (*FFmpegConverter)(nil)
	_ Converter = (*MP3Converter)(nil)
)
