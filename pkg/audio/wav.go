package audio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
)

// WriteWAV writes mono 16-bit PCM samples as a canonical 44-byte-header WAV file
func WriteWAV(path string, pcm []int16, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating wav: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	dataSize := uint32(len(pcm) * 2)

	header := []interface{}{
		[]byte("RIFF"),
		uint32(36) + dataSize,
		[]byte("WAVE"),
		[]byte("fmt "),
		uint32(16),             // fmt chunk size
		uint16(1),              // PCM
		uint16(1),              // mono
		uint32(sampleRate),     // sample rate
		uint32(sampleRate * 2), // byte rate
		uint16(2),              // block align
		uint16(16),             // bits per sample
		[]byte("data"),
		dataSize,
	}
	for _, field := range header {
		if err := binary.Write(w, binary.LittleEndian, field); err != nil {
			return fmt.Errorf("error writing wav header: %w", err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, pcm); err != nil {
		return fmt.Errorf("error writing wav samples: %w", err)
	}
	return w.Flush()
}
