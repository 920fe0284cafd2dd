package textmagic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// Client defines the interface for sending SMS through the TextMagic API
type Client interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

type clientImpl struct {
	apiKey     string
	username   string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new TextMagic client
func NewClient(username, apiKey string) Client {
	return NewClientWithBaseURL(username, apiKey, "https://rest.textmagic.com/api/v2")
}

// NewClientWithBaseURL creates a TextMagic client against a custom API root
func NewClientWithBaseURL(username, apiKey, baseURL string) Client {
	return &clientImpl{
		apiKey:     apiKey,
		username:   username,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// cleanPhone strips formatting characters TextMagic rejects
func cleanPhone(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, "(", "")
	phone = strings.ReplaceAll(phone, ")", "")
	return strings.TrimPrefix(phone, "+")
}

// SendSMS sends body to a single phone number and returns the TextMagic message id
func (c *clientImpl) SendSMS(ctx context.Context, to, body string) (string, error) {
	sendURL := fmt.Sprintf("%s/messages", c.baseURL)

	// Create payload
	payload := map[string]interface{}{
		"phones": cleanPhone(to),
		"text":   body,
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error creating payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	// Add authentication headers
	req.Header.Add("X-TM-Username", c.username)
	req.Header.Add("X-TM-Key", c.apiKey)
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending message: %w", err)
	}
	defer resp.Body.Close()

	// Read response body
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("error from TextMagic API: %s", string(respBody))
	}

	var sendResponse struct {
		ID        int `json:"id"`
		MessageID int `json:"messageId"`
	}
	if err := json.Unmarshal(respBody, &sendResponse); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}

	id := sendResponse.MessageID
	if id == 0 {
		id = sendResponse.ID
	}
	messageID := strconv.Itoa(id)
	log.Printf("Successfully sent TextMagic message %s", messageID)
	return messageID, nil
}
