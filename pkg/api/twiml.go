package api

import (
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/twilio/twilio-go/twiml"

	"blood-helpline/pkg/ivr"
	"blood-helpline/pkg/models"
)

const stepPause = "1.5"

// respond renders verbs as a TwiML document
func respond(c *gin.Context, verbs ...twiml.Element) {
	doc, err := twiml.Voice(verbs)
	if err != nil {
		log.Printf("Error rendering TwiML: %v", err)
		c.String(http.StatusInternalServerError, "Error rendering response")
		return
	}
	c.Data(http.StatusOK, "application/xml", []byte(doc))
}

func say(text string, locale models.Locale) *twiml.VoiceSay {
	return &twiml.VoiceSay{Message: text, Language: string(locale)}
}

func redirect(target string) *twiml.VoiceRedirect {
	return &twiml.VoiceRedirect{Url: target, Method: http.MethodPost}
}

// gatherDigits collects n keypad digits, followed by the no-input goodbye
func gatherDigits(n int, action string, locale models.Locale, prompt string) []twiml.Element {
	return []twiml.Element{
		&twiml.VoiceGather{
			NumDigits:     strconv.Itoa(n),
			Action:        action,
			Method:        http.MethodPost,
			InnerElements: []twiml.Element{say(prompt, locale)},
		},
		say(ivr.Phrase(ivr.PhraseNoInput, locale), locale),
		&twiml.VoiceHangup{},
	}
}

func record(mode ivr.InputMode, action string) *twiml.VoiceRecord {
	return &twiml.VoiceRecord{
		MaxLength: strconv.Itoa(int(mode.MaxLength.Seconds())),
		Timeout:   strconv.Itoa(int(mode.SilenceTimeout.Seconds())),
		PlayBeep:  "true",
		Action:    action,
		Method:    http.MethodPost,
	}
}

// goodbye speaks text and ends the call
func goodbye(text string, locale models.Locale) []twiml.Element {
	return []twiml.Element{say(text, locale), &twiml.VoiceHangup{}}
}

// continuationURL builds a webhook URL carrying the call's locale and step,
// signed for callID when continuation signing is enabled.
func (h *Handlers) continuationURL(path, callID string, locale models.Locale, step models.Step) string {
	q := url.Values{}
	q.Set("lang", string(locale))
	q.Set("step", string(step))
	if sig := h.signer.Sign(callID, string(locale), string(step)); sig != "" {
		q.Set("sig", sig)
	}
	return path + "?" + q.Encode()
}

// continuation is the call position round-tripped through webhook URLs
type continuation struct {
	callID string
	locale models.Locale
	step   models.Step
}

// readContinuation extracts and verifies the continuation of a webhook. It
// writes the error response and returns false when the request is rejected.
func (h *Handlers) readContinuation(c *gin.Context, defaultStep models.Step) (continuation, bool) {
	rawLang := c.Query("lang")
	rawStep := c.Query("step")
	callID := c.Request.FormValue("CallSid")

	if !h.signer.Verify(callID, rawLang, rawStep, c.Query("sig")) {
		log.Printf("Rejected continuation for call %s: bad signature", callID)
		c.String(http.StatusForbidden, "Invalid continuation")
		return continuation{}, false
	}

	step := models.Step(rawStep)
	if step == "" {
		step = defaultStep
	}
	if !step.Valid() {
		c.String(http.StatusBadRequest, "Unknown step")
		return continuation{}, false
	}

	return continuation{callID: callID, locale: models.ParseLocale(rawLang), step: step}, true
}

// expectStep rejects continuations posted to the wrong endpoint
func expectStep(c *gin.Context, cont continuation, step models.Step) bool {
	if cont.step != step {
		c.String(http.StatusBadRequest, "Unexpected step")
		return false
	}
	return true
}
