package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends for intake records and the donor directory
const (
	BackendSheets   = "sheets"
	BackendAirtable = "airtable"
	BackendSQLite   = "sqlite"
)

// SMS providers
const (
	SMSTwilio    = "twilio"
	SMSTextMagic = "textmagic"
)

// Audio converters
const (
	ConverterFFmpeg = "ffmpeg"
	ConverterNative = "native"
)

// Config holds all application configuration values
type Config struct {
	// Server
	Port          string
	PublicBaseURL string

	// Twilio
	TwilioSID              string
	TwilioAuthToken        string
	TwilioPhoneNumber      string
	TwilioValidateWebhooks bool
	TestPhoneNumber        string

	// Transcription and audio
	OpenAIAPIKey       string
	TranscriptionModel string
	FFmpegPath         string
	AudioConverter     string
	RecordingsDir      string
	KeepRecordings     bool

	// Storage
	StoreBackend          string
	GoogleCredentialsFile string
	SheetsSpreadsheetID   string
	SheetsRecordsRange    string
	SheetsDonorsRange     string
	AirtableAPIKey        string
	AirtableBaseID        string
	AirtableRecordsTable  string
	AirtableDonorsTable   string
	SQLitePath            string

	// SMS
	SMSProvider       string
	TextMagicUsername string
	TextMagicAPIKey   string
	CountryCode       string

	// Call flow
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	MaxPhoneAttempts     int
	OperatorNumber       string
	ContinuationSecret   string
	NotifyConcurrency    int
}

// LoadConfig reads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "5000"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),

		TwilioSID:              os.Getenv("TWILIO_SID"),
		TwilioAuthToken:        os.Getenv("TWILIO_AUTH"),
		TwilioPhoneNumber:      os.Getenv("TWILIO_PHONE_NUMBER"),
		TwilioValidateWebhooks: getEnvBool("TWILIO_VALIDATE_WEBHOOKS", false),
		TestPhoneNumber:        os.Getenv("YOUR_PHONE_NUMBER"),

		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		TranscriptionModel: getEnv("TRANSCRIPTION_MODEL", "whisper-1"),
		FFmpegPath:         getEnv("FFMPEG_PATH", "ffmpeg"),
		AudioConverter:     strings.ToLower(getEnv("AUDIO_CONVERTER", ConverterFFmpeg)),
		RecordingsDir:      getEnv("RECORDINGS_DIR", "recordings"),
		KeepRecordings:     getEnvBool("KEEP_RECORDINGS", false),

		StoreBackend:          strings.ToLower(getEnv("STORE_BACKEND", BackendSheets)),
		GoogleCredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", "credentials.json"),
		SheetsSpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
		SheetsRecordsRange:    getEnv("SHEETS_RECORDS_RANGE", "Sheet1!A:E"),
		SheetsDonorsRange:     getEnv("SHEETS_DONORS_RANGE", "DonorDatabase!A:C"),
		AirtableAPIKey:        os.Getenv("AIRTABLE_API_KEY"),
		AirtableBaseID:        os.Getenv("AIRTABLE_BASE_ID"),
		AirtableRecordsTable:  getEnv("AIRTABLE_RECORDS_TABLE", "Requests"),
		AirtableDonorsTable:   getEnv("AIRTABLE_DONORS_TABLE", "Donors"),
		SQLitePath:            getEnv("SQLITE_PATH", "helpline.db"),

		SMSProvider:       strings.ToLower(getEnv("SMS_PROVIDER", SMSTwilio)),
		TextMagicUsername: os.Getenv("TEXTMAGIC_USERNAME"),
		TextMagicAPIKey:   os.Getenv("TEXTMAGIC_API_KEY"),
		CountryCode:       getEnv("COUNTRY_CODE", "+91"),

		SessionTTL:           getEnvDuration("SESSION_TTL", 2*time.Hour),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		MaxPhoneAttempts:     getEnvInt("MAX_PHONE_ATTEMPTS", 0),
		OperatorNumber:       os.Getenv("OPERATOR_NUMBER"),
		ContinuationSecret:   os.Getenv("CONTINUATION_SECRET"),
		NotifyConcurrency:    getEnvInt("NOTIFY_CONCURRENCY", 4),
	}

	return cfg, cfg.Validate()
}

// Validate checks the enumerated and numeric settings
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendSheets, BackendAirtable, BackendSQLite:
	default:
		return fmt.Errorf("STORE_BACKEND must be sheets, airtable or sqlite, got %q", c.StoreBackend)
	}
	switch c.SMSProvider {
	case SMSTwilio, SMSTextMagic:
	default:
		return fmt.Errorf("SMS_PROVIDER must be twilio or textmagic, got %q", c.SMSProvider)
	}
	switch c.AudioConverter {
	case ConverterFFmpeg, ConverterNative:
	default:
		return fmt.Errorf("AUDIO_CONVERTER must be ffmpeg or native, got %q", c.AudioConverter)
	}
	if c.MaxPhoneAttempts < 0 {
		return fmt.Errorf("MAX_PHONE_ATTEMPTS must be >= 0, got %d", c.MaxPhoneAttempts)
	}
	if c.NotifyConcurrency < 1 || c.NotifyConcurrency > 64 {
		return fmt.Errorf("NOTIFY_CONCURRENCY must be 1-64, got %d", c.NotifyConcurrency)
	}
	if c.SessionTTL < 0 || c.SessionSweepInterval <= 0 {
		return errors.New("SESSION_TTL must be >= 0 and SESSION_SWEEP_INTERVAL > 0")
	}
	return nil
}

// RequireServer checks the settings the webhook server cannot start without
func (c *Config) RequireServer() error {
	var m missing
	m.need("OPENAI_API_KEY", c.OpenAIAPIKey)
	m.need("TWILIO_SID", c.TwilioSID)
	m.need("TWILIO_AUTH", c.TwilioAuthToken)

	switch c.StoreBackend {
	case BackendSheets:
		m.need("SHEETS_SPREADSHEET_ID", c.SheetsSpreadsheetID)
	case BackendAirtable:
		m.need("AIRTABLE_API_KEY", c.AirtableAPIKey)
		m.need("AIRTABLE_BASE_ID", c.AirtableBaseID)
	}

	switch c.SMSProvider {
	case SMSTwilio:
		m.need("TWILIO_PHONE_NUMBER", c.TwilioPhoneNumber)
	case SMSTextMagic:
		m.need("TEXTMAGIC_USERNAME", c.TextMagicUsername)
		m.need("TEXTMAGIC_API_KEY", c.TextMagicAPIKey)
	}

	if c.TwilioValidateWebhooks {
		m.need("PUBLIC_BASE_URL", c.PublicBaseURL)
	}
	return m.err()
}

// RequireOutboundCall checks the settings needed to place a test call
func (c *Config) RequireOutboundCall() error {
	var m missing
	m.need("TWILIO_SID", c.TwilioSID)
	m.need("TWILIO_AUTH", c.TwilioAuthToken)
	m.need("TWILIO_PHONE_NUMBER", c.TwilioPhoneNumber)
	return m.err()
}

type missing []string

func (m *missing) need(name, value string) {
	if value == "" {
		*m = append(*m, name)
	}
}

func (m missing) err() error {
	if len(m) == 0 {
		return nil
	}
	return fmt.Errorf("missing required settings: %s", strings.Join(m, ", "))
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
