package ivr

import "blood-helpline/pkg/models"

var languageDigits = map[string]models.Locale{
	"1": models.English,
	"2": models.Hindi,
	"3": models.Telugu,
}

// SelectLocale maps the language menu keypress to a locale.
// Invalid or missing digits fall back to English; the call still proceeds.
func SelectLocale(digit string) models.Locale {
	if locale, ok := languageDigits[digit]; ok {
		return locale
	}
	return models.DefaultLocale
}

// TranscriptionHints is the language hint handed to the transcriber per locale.
// Telugu answers are transcribed with the English hint.
var TranscriptionHints = map[models.Locale]string{
	models.English: "en",
	models.Hindi:   "hi",
	models.Telugu:  "en",
}

// TranscriptionHint returns the transcriber language for locale, defaulting to "en"
func TranscriptionHint(locale models.Locale) string {
	if hint, ok := TranscriptionHints[locale]; ok {
		return hint
	}
	return "en"
}
