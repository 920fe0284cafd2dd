package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ErrFFmpegNotFound is returned when the configured ffmpeg executable does not exist
var ErrFFmpegNotFound = errors.New("ffmpeg executable not found")

// FFmpegConverter converts recordings by shelling out to ffmpeg
type FFmpegConverter struct {
	command    string
	sampleRate int
}

// NewFFmpegConverter creates a converter using the ffmpeg at command
func NewFFmpegConverter(command string) *FFmpegConverter {
	return &FFmpegConverter{command: command, sampleRate: TargetSampleRate}
}

func (c *FFmpegConverter) args(srcPath, dstPath string) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", srcPath,
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(c.sampleRate),
		dstPath,
	}
}

// Convert runs ffmpeg on srcPath, writing a PCM WAV to dstPath
func (c *FFmpegConverter) Convert(ctx context.Context, srcPath, dstPath string) error {
	if c.command == "" {
		return fmt.Errorf("%w: FFMPEG_PATH is not set", ErrFFmpegNotFound)
	}
	// A bare command name is resolved through PATH; an explicit path must exist
	if strings.ContainsRune(c.command, os.PathSeparator) {
		if _, err := os.Stat(c.command); err != nil {
			return fmt.Errorf("%w at %q", ErrFFmpegNotFound, c.command)
		}
	} else if _, err := exec.LookPath(c.command); err != nil {
		return fmt.Errorf("%w: %q is not on PATH", ErrFFmpegNotFound, c.command)
	}

	cmd := exec.CommandContext(ctx, c.command, c.args(srcPath, dstPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
