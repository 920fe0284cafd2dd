package twilio

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Client defines the interface for interacting with the Twilio Programmable Voice and SMS APIs
type Client interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
	PlaceCall(ctx context.Context, to, webhookURL string) (string, error)
	DownloadRecording(ctx context.Context, recordingURL, destPath string) error
}

type clientImpl struct {
	client     *twilio.RestClient
	accountSid string
	authToken  string
	fromNumber string
	httpClient *http.Client
}

// NewClient creates a new Twilio client sending from fromNumber
func NewClient(accountSid, authToken, fromNumber string) Client {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &clientImpl{
		client:     client,
		accountSid: accountSid,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *clientImpl) SendSMS(ctx context.Context, to, body string) (string, error) {
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.fromNumber)
	params.SetBody(body)

	resp, err := c.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("error sending sms: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	log.Printf("Sent SMS %s", sid)
	return sid, nil
}

func (c *clientImpl) PlaceCall(ctx context.Context, to, webhookURL string) (string, error) {
	params := &openapi.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(c.fromNumber)
	params.SetUrl(webhookURL)
	params.SetMethod(http.MethodPost)

	resp, err := c.client.Api.CreateCall(params)
	if err != nil {
		return "", fmt.Errorf("error placing call: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	log.Printf("Placed call %s to webhook %s", sid, webhookURL)
	return sid, nil
}

// DownloadRecording fetches a call recording with account credentials and writes it to destPath
func (c *clientImpl) DownloadRecording(ctx context.Context, recordingURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recordingURL, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.SetBasicAuth(c.accountSid, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error downloading recording: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("error from Twilio recordings API: %d %s", resp.StatusCode, string(body))
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("error creating recordings directory: %w", err)
	}
	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("error creating recording file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("error writing recording: %w", err)
	}
	return nil
}
