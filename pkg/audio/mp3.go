package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// MP3Converter decodes MP3 recordings in-process, for hosts without ffmpeg
type MP3Converter struct {
	sampleRate int
}

// NewMP3Converter creates a pure-Go MP3 to WAV converter
func NewMP3Converter() *MP3Converter {
	return &MP3Converter{sampleRate: TargetSampleRate}
}

// Convert decodes the MP3 at srcPath, downmixes to mono, resamples and writes a WAV
func (c *MP3Converter) Convert(ctx context.Context, srcPath, dstPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("error opening recording: %w", err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return fmt.Errorf("error decoding mp3: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return fmt.Errorf("error decoding mp3: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(raw)%4 != 0 {
		return fmt.Errorf("unexpected decoded mp3 length %d", len(raw))
	}

	// go-mp3 always yields 16-bit little endian stereo
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}

	mono := downmix(samples, 2)
	out := resample(mono, dec.SampleRate(), c.sampleRate)
	return WriteWAV(dstPath, out, c.sampleRate)
}

func downmix(samples []int16, channels int) []int16 {
	if channels <= 1 {
		return samples
	}
	out := make([]int16, len(samples)/channels)
	for i := range out {
		sum := 0
		for ch := 0; ch < channels; ch++ {
			sum += int(samples[i*channels+ch])
		}
		out[i] = int16(sum / channels)
	}
	return out
}

// resample converts between sample rates with linear interpolation
func resample(in []int16, inRate, outRate int) []int16 {
	if inRate == outRate || len(in) == 0 {
		return append([]int16(nil), in...)
	}
	ratio := float64(outRate) / float64(inRate)
	outLen := int(math.Round(float64(len(in)) * ratio))
	if outLen <= 1 {
		return []int16{}
	}
	out := make([]int16, outLen)
	for i := range out {
		pos := float64(i) / ratio
		i0 := int(math.Floor(pos))
		if i0 >= len(in) {
			i0 = len(in) - 1
		}
		i1 := i0 + 1
		if i1 >= len(in) {
			i1 = len(in) - 1
		}
		frac := pos - float64(i0)
		v := float64(in[i0])*(1-frac) + float64(in[i1])*frac
		out[i] = int16(math.Max(math.MinInt16, math.Min(math.MaxInt16, v)))
	}
	return out
}
