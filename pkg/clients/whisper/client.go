package whisper

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is the OpenAI transcription model used when none is configured
const DefaultModel = openai.Whisper1

// Client defines the interface for speech-to-text transcription
type Client interface {
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
}

type clientImpl struct {
	client *openai.Client
	model  string
}

// NewClient creates a Whisper client for the given API key and model
func NewClient(apiKey, model string) Client {
	return NewClientWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewClientWithConfig creates a Whisper client from a go-openai config, e.g. a custom BaseURL
func NewClientWithConfig(config openai.ClientConfig, model string) Client {
	if model == "" {
		model = DefaultModel
	}
	return &clientImpl{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Transcribe returns the recognized text of audioPath. An empty string is a
// valid result for a silent recording.
func (c *clientImpl) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: audioPath,
		Language: language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("error transcribing audio: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	log.Printf("Transcribed %s (%s): %q", audioPath, language, text)
	return text, nil
}
