package cli

import (
	"context"
	"fmt"
	"log"

	"blood-helpline/pkg/audio"
	"blood-helpline/pkg/clients/airtable"
	"blood-helpline/pkg/clients/sheets"
	"blood-helpline/pkg/clients/textmagic"
	"blood-helpline/pkg/clients/twilio"
	"blood-helpline/pkg/config"
	"blood-helpline/pkg/services"
	"blood-helpline/pkg/storage/sqlite"
)

// storage is the configured record store and donor directory
type storage struct {
	records services.RecordStore
	donors  services.DonorDirectory
	close   func() error
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.StoreBackend {
	case config.BackendSheets:
		client, err := sheets.NewClient(ctx, cfg.GoogleCredentialsFile, cfg.SheetsSpreadsheetID, cfg.SheetsRecordsRange, cfg.SheetsDonorsRange)
		if err != nil {
			return nil, err
		}
		return &storage{records: client, donors: client, close: func() error { return nil }}, nil

	case config.BackendAirtable:
		client := airtable.NewClient(cfg.AirtableAPIKey, cfg.AirtableBaseID, cfg.AirtableRecordsTable, cfg.AirtableDonorsTable)
		return &storage{records: client, donors: client, close: func() error { return nil }}, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storage{records: db, donors: db, close: db.Close}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func newSMSSender(cfg *config.Config, twilioClient twilio.Client) services.SMSSender {
	if cfg.SMSProvider == config.SMSTextMagic {
		return textmagic.NewClient(cfg.TextMagicUsername, cfg.TextMagicAPIKey)
	}
	return twilioClient
}

func newConverter(cfg *config.Config) audio.Converter {
	if cfg.AudioConverter == config.ConverterNative {
		return audio.NewMP3Converter()
	}
	return audio.NewFFmpegConverter(cfg.FFmpegPath)
}

func logBackends(cfg *config.Config) {
	log.Printf("Storage backend: %s, SMS provider: %s, audio converter: %s", cfg.StoreBackend, cfg.SMSProvider, cfg.AudioConverter)
}
