package ivr

import (
	"fmt"
	"strings"
	"time"

	"blood-helpline/pkg/models"
)

// InputKind is how the caller answers a prompt
type InputKind string

const (
	InputRecordVoice   InputKind = "record-voice"
	InputCollectDigits InputKind = "collect-digits"
)

const (
	// RecordingMaxLength caps every voice answer
	RecordingMaxLength = 6 * time.Second
	// RecordingSilenceTimeout ends a recording after this much silence
	RecordingSilenceTimeout = 3 * time.Second
	// PhoneDigits is the length of a local contact number
	PhoneDigits = 10
)

// InputMode describes the expected answer for a step
type InputMode struct {
	Kind           InputKind
	Digits         int
	MaxLength      time.Duration
	SilenceTimeout time.Duration
}

// Prompt is a resolved, localized step prompt
type Prompt struct {
	Text string
	Mode InputMode
}

var stepModes = map[models.Step]InputMode{
	models.StepName:     {Kind: InputRecordVoice, MaxLength: RecordingMaxLength, SilenceTimeout: RecordingSilenceTimeout},
	models.StepPhone:    {Kind: InputCollectDigits, Digits: PhoneDigits},
	models.StepBlood:    {Kind: InputCollectDigits, Digits: 1},
	models.StepHospital: {Kind: InputRecordVoice, MaxLength: RecordingMaxLength, SilenceTimeout: RecordingSilenceTimeout},
}

// Telugu entries are romanized so the caller's answers can be transcribed with the English hint.
var stepPrompts = map[models.Step]map[models.Locale]string{
	models.StepName: {
		models.English: "Please say the patient's name after the beep.",
		models.Hindi:   "कृपया बीप के बाद मरीज़ का नाम बताएं।",
		models.Telugu:  "Dayachesi beep taruvata rogi peru cheppandi.",
	},
	models.StepPhone: {
		models.English: "Please enter the 10-digit contact phone number using your keypad.",
		models.Hindi:   "कृपया कीपैड से 10 अंकों का संपर्क नंबर दर्ज करें।",
		models.Telugu:  "Dayachesi Keypad Upayoginchukoni Mobile number nu Type chyandi.",
	},
	models.StepBlood: {
		models.English: "Press the number for required blood group: 1 for A positive, 2 for A negative, 3 for B positive, 4 for B negative, 5 for O positive, 6 for O negative, 7 for A B positive, 8 for A B negative.",
		models.Hindi:   "जरूरी ब्लड ग्रुप के लिए नंबर दबाएं: 1 ए पॉजिटिव के लिए, 2 ए नेगेटिव के लिए, 3 बी पॉजिटिव के लिए, 4 बी नेगेटिव के लिए, 5 ओ पॉजिटिव के लिए, 6 ओ नेगेटिव के लिए, 7 एबी पॉजिटिव के लिए, 8 एबी नेगेटिव के लिए।",
		models.Telugu:  "Miku Kavlasina Blood group : A positive kosam okati nokkandi , A negative Kosam rendu nokkandi, B positive Kosam moodu nokkandi , B negative kosam Naalugu Nokkandi , O Positive kosam Ayidhu nokkandi , O Negative Kosam Aaaru nokkandi , A B positive kosam yeedu nokkandi , A B Negative kosam Yenimidhiii nokkandi.",
	},
	models.StepHospital: {
		models.English: "Say the hospital and location.",
		models.Hindi:   "अस्पताल और स्थान बताएं।",
		models.Telugu:  "Hospital Address cheppandi.",
	},
}

// Resolve returns the prompt for step in locale. Missing translations fall
// back to English; ok is false only when step itself is unknown.
func Resolve(step models.Step, locale models.Locale) (Prompt, bool) {
	texts, ok := stepPrompts[step]
	if !ok {
		return Prompt{}, false
	}
	return Prompt{Text: localized(texts, locale), Mode: stepModes[step]}, true
}

// PhraseKey names the auxiliary messages spoken outside the step prompts
type PhraseKey string

const (
	PhraseWelcome         PhraseKey = "welcome"
	PhraseNoInput         PhraseKey = "no_input"
	PhraseInvalidPhone    PhraseKey = "invalid_phone"
	PhraseConfirmPhone    PhraseKey = "confirm_phone"
	PhraseCompleted       PhraseKey = "completed"
	PhraseOperator        PhraseKey = "operator"
	PhraseAttemptsOver    PhraseKey = "attempts_exhausted"
	PhraseYouEntered      PhraseKey = "you_entered"
	PhraseAlreadyRecorded PhraseKey = "already_recorded"
)

var phrases = map[PhraseKey]map[models.Locale]string{
	PhraseWelcome: {
		models.English: "Welcome to the Blood Emergency Helpline. For English, press 1. Hindi ke liye, dho dhabayiye. Telugu kosam, moodu nokkandi.",
	},
	PhraseNoInput: {
		models.English: "No input received. Goodbye.",
		models.Hindi:   "कोई इनपुट नहीं मिला। अलविदा।",
		models.Telugu:  "Input raledu. Selavu.",
	},
	PhraseInvalidPhone: {
		models.English: "Invalid phone number. Let's try again.",
		models.Hindi:   "अमान्य फ़ोन नंबर। फिर से कोशिश करें।",
		models.Telugu:  "Tappu phone number. Malli prayatninchandi.",
	},
	PhraseYouEntered: {
		models.English: "You entered",
		models.Hindi:   "आपने दर्ज किया",
		models.Telugu:  "Meeru type chesina number",
	},
	PhraseConfirmPhone: {
		models.English: "To confirm the number, press 1. To re-enter, press 2.",
		models.Hindi:   "नंबर की पुष्टि के लिए 1 दबाएं। दोबारा दर्ज करने के लिए 2 दबाएं।",
		models.Telugu:  "Number confirm cheyataniki okati nokkandi. Malli type cheyataniki rendu nokkandi.",
	},
	PhraseCompleted: {
		models.English: "Thank you. Your details are recorded and an alert has been sent to potential donors. Goodbye!",
		models.Hindi:   "धन्यवाद। आपका विवरण दर्ज हो गया है और संभावित दाताओं को सूचना भेज दी गई है। अलविदा!",
		models.Telugu:  "Dhanyavadalu. Mee vivaralu namodu chesamu, donors ki alert pampinchamu. Selavu!",
	},
	PhraseAlreadyRecorded: {
		models.English: "Your request has already been recorded. Goodbye!",
		models.Hindi:   "आपका अनुरोध पहले ही दर्ज हो चुका है। अलविदा!",
		models.Telugu:  "Mee request inthaku mundhe namodu ayyindi. Selavu!",
	},
	PhraseOperator: {
		models.English: "We could not read the phone number. Connecting you to an operator.",
		models.Hindi:   "फ़ोन नंबर समझ नहीं आया। आपको ऑपरेटर से जोड़ा जा रहा है।",
		models.Telugu:  "Phone number ardham kaledu. Operator ki connect chestunnamu.",
	},
	PhraseAttemptsOver: {
		models.English: "We could not read the phone number. Please call again. Goodbye.",
		models.Hindi:   "फ़ोन नंबर समझ नहीं आया। कृपया दोबारा कॉल करें। अलविदा।",
		models.Telugu:  "Phone number ardham kaledu. Dayachesi malli call cheyandi. Selavu.",
	},
}

// Phrase returns an auxiliary message in locale, falling back to English
func Phrase(key PhraseKey, locale models.Locale) string {
	return localized(phrases[key], locale)
}

// PhoneReadback builds the confirmation readback, speaking digits one at a time
func PhoneReadback(phone string, locale models.Locale) string {
	spaced := strings.Join(strings.Split(phone, ""), " ")
	return fmt.Sprintf("%s %s. %s", Phrase(PhraseYouEntered, locale), spaced, Phrase(PhraseConfirmPhone, locale))
}

func localized(texts map[models.Locale]string, locale models.Locale) string {
	if text, ok := texts[locale]; ok {
		return text
	}
	return texts[models.DefaultLocale]
}
