package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"blood-helpline/pkg/models"
)

// Client defines the interface for the intake and donor tables kept in Airtable
type Client interface {
	AppendRecord(ctx context.Context, record models.IntakeRecord) error
	ListDonors(ctx context.Context) ([]models.DonorRecord, error)
}

type clientImpl struct {
	apiKey       string
	baseID       string
	baseURL      string
	recordsTable string
	donorsTable  string
	httpClient   *http.Client
}

// NewClient creates a new Airtable client
func NewClient(apiKey, baseID, recordsTable, donorsTable string) Client {
	return NewClientWithBaseURL(apiKey, baseID, recordsTable, donorsTable, "https://api.airtable.com/v0")
}

// NewClientWithBaseURL creates an Airtable client against a custom API root
func NewClientWithBaseURL(apiKey, baseID, recordsTable, donorsTable, baseURL string) Client {
	return &clientImpl{
		apiKey:       apiKey,
		baseID:       baseID,
		baseURL:      strings.TrimRight(baseURL, "/"),
		recordsTable: recordsTable,
		donorsTable:  donorsTable,
		httpClient:   &http.Client{},
	}
}

func (c *clientImpl) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table))
}

// AppendRecord creates one row in the intake records table
func (c *clientImpl) AppendRecord(ctx context.Context, record models.IntakeRecord) error {
	fields := make(map[string]interface{}, len(models.RecordColumns))
	for i, value := range record.Row() {
		fields[models.RecordColumns[i]] = value
	}

	// Format data for Airtable API
	payload := map[string]interface{}{
		"records": []map[string]interface{}{
			{
				"fields": fields,
			},
		},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error creating payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tableURL(c.recordsTable), bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	// Add authentication and content type headers
	req.Header.Add("Authorization", "Bearer "+c.apiKey)
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error creating Airtable record: %w", err)
	}
	defer resp.Body.Close()

	// Read response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("error from Airtable API: %s", string(body))
	}

	log.Printf("Successfully created record in Airtable table: %s", c.recordsTable)
	return nil
}

// ListDonors reads every row of the donor table, following pagination offsets
func (c *clientImpl) ListDonors(ctx context.Context) ([]models.DonorRecord, error) {
	var donors []models.DonorRecord
	offset := ""

	for {
		page, next, err := c.listDonorPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		donors = append(donors, page...)
		if next == "" {
			break
		}
		offset = next
	}

	log.Printf("Read %d donors from Airtable table: %s", len(donors), c.donorsTable)
	return donors, nil
}

func (c *clientImpl) listDonorPage(ctx context.Context, offset string) ([]models.DonorRecord, string, error) {
	listURL := c.tableURL(c.donorsTable)
	if offset != "" {
		listURL += "?offset=" + url.QueryEscape(offset)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("error creating request: %w", err)
	}

	// Add authentication header
	req.Header.Add("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("error listing Airtable donors: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("error from Airtable API: %s", string(body))
	}

	// Parse response
	var response struct {
		Records []struct {
			ID     string                 `json:"id"`
			Fields map[string]interface{} `json:"fields"`
		} `json:"records"`
		Offset string `json:"offset"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return nil, "", fmt.Errorf("error parsing response: %w", err)
	}

	donors := make([]models.DonorRecord, 0, len(response.Records))
	for _, rec := range response.Records {
		group, _ := rec.Fields["BloodGroup"].(string)
		name, _ := rec.Fields["DonorName"].(string)
		donors = append(donors, models.DonorRecord{
			Name:       name,
			Phone:      models.CellString(rec.Fields["DonorPhone"]),
			BloodGroup: group,
		})
	}
	return donors, response.Offset, nil
}
