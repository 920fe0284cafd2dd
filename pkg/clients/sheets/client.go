package sheets

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"blood-helpline/pkg/models"
)

// Client defines the interface for the intake and donor worksheets of a Google spreadsheet
type Client interface {
	AppendRecord(ctx context.Context, record models.IntakeRecord) error
	ListDonors(ctx context.Context) ([]models.DonorRecord, error)
}

type clientImpl struct {
	service       *gsheets.Service
	spreadsheetID string
	recordsRange  string
	donorsRange   string
}

// NewClient creates a Sheets client authenticated with a service account key file
func NewClient(ctx context.Context, credentialsFile, spreadsheetID, recordsRange, donorsRange string) (Client, error) {
	return NewClientWithOptions(ctx, spreadsheetID, recordsRange, donorsRange,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
}

// NewClientWithOptions creates a Sheets client with explicit API options
func NewClientWithOptions(ctx context.Context, spreadsheetID, recordsRange, donorsRange string, opts ...option.ClientOption) (Client, error) {
	service, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating sheets service: %w", err)
	}
	return &clientImpl{
		service:       service,
		spreadsheetID: spreadsheetID,
		recordsRange:  recordsRange,
		donorsRange:   donorsRange,
	}, nil
}

// AppendRecord appends the record as a new row after the last filled row
func (c *clientImpl) AppendRecord(ctx context.Context, record models.IntakeRecord) error {
	row := make([]interface{}, 0, len(models.RecordColumns))
	for _, value := range record.Row() {
		row = append(row, value)
	}

	vr := &gsheets.ValueRange{Values: [][]interface{}{row}}
	_, err := c.service.Spreadsheets.Values.Append(c.spreadsheetID, c.recordsRange, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("error appending row to %s: %w", c.recordsRange, err)
	}

	log.Printf("Appended intake row to sheet range: %s", c.recordsRange)
	return nil
}

// ListDonors reads the donor worksheet, using its first row as headers
func (c *clientImpl) ListDonors(ctx context.Context) ([]models.DonorRecord, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, c.donorsRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("error reading donor sheet %s: %w", c.donorsRange, err)
	}
	return donorsFromValues(resp.Values), nil
}

// donorsFromValues maps worksheet rows to donor records by header name
func donorsFromValues(values [][]interface{}) []models.DonorRecord {
	if len(values) == 0 {
		return nil
	}

	columns := make(map[string]int)
	for i, header := range values[0] {
		columns[strings.TrimSpace(fmt.Sprint(header))] = i
	}
	cell := func(row []interface{}, name string) interface{} {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return nil
		}
		return row[i]
	}

	donors := make([]models.DonorRecord, 0, len(values)-1)
	for _, row := range values[1:] {
		donors = append(donors, models.DonorRecord{
			Name:       models.CellString(cell(row, "DonorName")),
			Phone:      models.CellString(cell(row, "DonorPhone")),
			BloodGroup: models.CellString(cell(row, "BloodGroup")),
		})
	}
	return donors
}
