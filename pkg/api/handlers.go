package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twilio/twilio-go/twiml"

	"blood-helpline/pkg/ivr"
	"blood-helpline/pkg/models"
	"blood-helpline/pkg/services"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	intake         *services.IntakeService
	signer         *ivr.Signer
	operatorNumber string
}

// NewHandlers creates a new Handlers instance. operatorNumber may be empty,
// in which case callers who exhaust their phone attempts are sent off with an apology.
func NewHandlers(intake *services.IntakeService, signer *ivr.Signer, operatorNumber string) *Handlers {
	return &Handlers{
		intake:         intake,
		signer:         signer,
		operatorNumber: operatorNumber,
	}
}

// RegisterRoutes mounts the webhook and health endpoints. webhook middleware
// applies to the telephony endpoints only.
func RegisterRoutes(router gin.IRouter, h *Handlers, webhook ...gin.HandlerFunc) {
	router.GET("/health", h.HealthCheck)

	calls := router.Group("/", webhook...)
	calls.POST("/voice", h.Voice)
	calls.POST("/language", h.Language)
	calls.GET("/register", h.Register)
	calls.POST("/register", h.Register)
	calls.POST("/confirm_phone", h.ConfirmPhone)
	calls.POST("/phone_decision", h.PhoneDecision)
	calls.POST("/blood_choice", h.BloodChoice)
	calls.POST("/process_recording", h.ProcessRecording)
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"active_sessions": h.intake.ActiveSessions(),
		"stats":           h.intake.Stats().Snapshot(),
	})
}

// Voice answers a new call with the language menu
func (h *Handlers) Voice(c *gin.Context) {
	log.Printf("Incoming call %s", c.PostForm("CallSid"))
	locale := models.DefaultLocale
	respond(c, append(
		[]twiml.Element{&twiml.VoiceGather{
			NumDigits:     "1",
			Action:        "/language",
			Method:        http.MethodPost,
			Timeout:       "5",
			InnerElements: []twiml.Element{say(ivr.Phrase(ivr.PhraseWelcome, locale), locale)},
		}},
		goodbye(ivr.Phrase(ivr.PhraseNoInput, locale), locale)...,
	)...)
}

// Language stores the chosen locale and starts the intake at the name step
func (h *Handlers) Language(c *gin.Context) {
	callID := c.PostForm("CallSid")
	if callID == "" {
		c.String(http.StatusBadRequest, "Missing CallSid")
		return
	}
	out, err := h.intake.SelectLanguage(callID, c.PostForm("Digits"))
	if err != nil {
		log.Printf("Error selecting language for call %s: %v", callID, err)
		c.String(http.StatusInternalServerError, "Error selecting language")
		return
	}
	locale := out.Session.Locale
	respond(c, redirect(h.continuationURL("/register", callID, locale, models.StepName)))
}

// Register speaks the prompt for the requested step and collects the answer
func (h *Handlers) Register(c *gin.Context) {
	cont, ok := h.readContinuation(c, models.StepName)
	if !ok {
		return
	}
	prompt, ok := ivr.Resolve(cont.step, cont.locale)
	if !ok {
		c.String(http.StatusBadRequest, "Unknown step")
		return
	}

	verbs := []twiml.Element{&twiml.VoicePause{Length: stepPause}}

	if prompt.Mode.Kind == ivr.InputCollectDigits {
		action := "/confirm_phone"
		if cont.step == models.StepBlood {
			action = "/blood_choice"
		}
		target := h.continuationURL(action, cont.callID, cont.locale, cont.step)
		respond(c, append(verbs, gatherDigits(prompt.Mode.Digits, target, cont.locale, prompt.Text)...)...)
		return
	}

	target := h.continuationURL("/process_recording", cont.callID, cont.locale, cont.step)
	respond(c, append(verbs, say(prompt.Text, cont.locale), record(prompt.Mode, target))...)
}

// ConfirmPhone checks the keyed number and reads it back for confirmation
func (h *Handlers) ConfirmPhone(c *gin.Context) {
	cont, ok := h.readContinuation(c, "")
	if !ok || !expectStep(c, cont, models.StepPhone) {
		return
	}

	out, err := h.intake.SubmitPhone(cont.callID, c.PostForm("Digits"))
	if err != nil {
		log.Printf("Error handling phone for call %s: %v", cont.callID, err)
		c.String(http.StatusInternalServerError, "Error handling phone number")
		return
	}

	switch {
	case out.Transition.Escalate:
		if h.operatorNumber != "" {
			respond(c,
				say(ivr.Phrase(ivr.PhraseOperator, cont.locale), cont.locale),
				&twiml.VoiceDial{Number: h.operatorNumber},
			)
			return
		}
		respond(c, goodbye(ivr.Phrase(ivr.PhraseAttemptsOver, cont.locale), cont.locale)...)

	case out.Transition.Retry:
		respond(c,
			say(ivr.Phrase(ivr.PhraseInvalidPhone, cont.locale), cont.locale),
			redirect(h.continuationURL("/register", cont.callID, cont.locale, models.StepPhone)),
		)

	default:
		target := h.continuationURL("/phone_decision", cont.callID, cont.locale, models.StepPhone)
		readback := ivr.PhoneReadback(out.Session.PendingPhone, cont.locale)
		respond(c, gatherDigits(1, target, cont.locale, readback)...)
	}
}

// PhoneDecision confirms the number or sends the caller back to re-enter it
func (h *Handlers) PhoneDecision(c *gin.Context) {
	cont, ok := h.readContinuation(c, "")
	if !ok || !expectStep(c, cont, models.StepPhone) {
		return
	}

	out, err := h.intake.DecidePhone(cont.callID, c.PostForm("Digits"))
	if err != nil {
		log.Printf("Error confirming phone for call %s: %v", cont.callID, err)
		c.String(http.StatusInternalServerError, "Error confirming phone number")
		return
	}
	h.redirectToState(c, cont, out.Transition.To)
}

// BloodChoice stores the keyed blood group
func (h *Handlers) BloodChoice(c *gin.Context) {
	cont, ok := h.readContinuation(c, "")
	if !ok || !expectStep(c, cont, models.StepBlood) {
		return
	}

	out, err := h.intake.SubmitBloodGroup(cont.callID, c.PostForm("Digits"))
	if err != nil {
		log.Printf("Error storing blood group for call %s: %v", cont.callID, err)
		c.String(http.StatusInternalServerError, "Error storing blood group")
		return
	}
	h.redirectToState(c, cont, out.Transition.To)
}

// ProcessRecording transcribes a voice answer and moves the call on
func (h *Handlers) ProcessRecording(c *gin.Context) {
	cont, ok := h.readContinuation(c, "")
	if !ok {
		return
	}
	recordingURL := c.PostForm("RecordingUrl")
	if cont.callID == "" || recordingURL == "" {
		c.String(http.StatusBadRequest, "Missing CallSid or RecordingUrl")
		return
	}

	out, err := h.intake.ProcessRecording(c.Request.Context(), services.RecordingInput{
		CallID:       cont.callID,
		RecordingURL: recordingURL,
		Step:         cont.step,
		Locale:       cont.locale,
	})
	if err != nil {
		log.Printf("Error processing recording for call %s: %v", cont.callID, err)
		if errors.Is(err, services.ErrMissingRecording) || errors.Is(err, services.ErrNotVoiceStep) {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		c.String(http.StatusInternalServerError, "Error processing recording")
		return
	}

	switch {
	case out.Duplicate:
		respond(c, goodbye(ivr.Phrase(ivr.PhraseAlreadyRecorded, cont.locale), cont.locale)...)
	case out.Transition.Finalize:
		respond(c, goodbye(ivr.Phrase(ivr.PhraseCompleted, cont.locale), cont.locale)...)
	default:
		h.redirectToState(c, cont, out.Transition.To)
	}
}

func (h *Handlers) redirectToState(c *gin.Context, cont continuation, state ivr.State) {
	step, ok := state.Step()
	if !ok {
		respond(c, goodbye(ivr.Phrase(ivr.PhraseCompleted, cont.locale), cont.locale)...)
		return
	}
	respond(c, redirect(h.continuationURL("/register", cont.callID, cont.locale, step)))
}
