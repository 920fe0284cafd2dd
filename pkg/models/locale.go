package models

// Locale selects prompt language and transcription hint
type Locale string

const (
	English Locale = "en-IN"
	Hindi   Locale = "hi-IN"
	Telugu  Locale = "te-IN"

	DefaultLocale = English
)

// ParseLocale returns the matching locale, or DefaultLocale for anything unrecognized
func ParseLocale(tag string) Locale {
	switch Locale(tag) {
	case English, Hindi, Telugu:
		return Locale(tag)
	default:
		return DefaultLocale
	}
}
