package ivr

import (
	"errors"
	"fmt"

	"blood-helpline/pkg/models"
)

var (
	ErrCallComplete = errors.New("call intake already complete")
	ErrUnknownState = errors.New("unknown call state")
)

// State is a position in the intake dialogue
type State string

const (
	StateAwaitingLanguage State = "awaiting_language"
	StateName             State = "name"
	StatePhone            State = "phone"
	StatePhoneConfirm     State = "phone_confirm"
	StateBlood            State = "blood"
	StateHospital         State = "hospital"
	StateComplete         State = "complete"
)

// StateForStep returns the state in which step's prompt is answered
func StateForStep(step models.Step) (State, bool) {
	switch step {
	case models.StepName:
		return StateName, true
	case models.StepPhone:
		return StatePhone, true
	case models.StepBlood:
		return StateBlood, true
	case models.StepHospital:
		return StateHospital, true
	}
	return "", false
}

// Step returns the dialogue step rendered for s, if any
func (s State) Step() (models.Step, bool) {
	switch s {
	case StateName:
		return models.StepName, true
	case StatePhone:
		return models.StepPhone, true
	case StateBlood:
		return models.StepBlood, true
	case StateHospital:
		return models.StepHospital, true
	}
	return "", false
}

// Field is the session field a transition writes
type Field string

const (
	FieldNone         Field = ""
	FieldLocale       Field = "Locale"
	FieldName         Field = "Name"
	FieldPendingPhone Field = "PendingPhone"
	FieldPhone        Field = "Phone"
	FieldBloodGroup   Field = "BloodGroup"
	FieldHospital     Field = "Hospital"
)

// Input is what the caller sent for the current state
type Input struct {
	Digits     string
	Transcript string
	// PendingPhone is the number awaiting confirmation, read from the session
	PendingPhone string
	// PhoneAttempts counts consecutive invalid phone entries; a valid entry resets it
	PhoneAttempts int
}

// Transition is the machine's decision for one caller input
type Transition struct {
	From  State
	To    State
	Field Field
	Value string
	// Retry marks a self-loop caused by invalid input
	Retry bool
	// Escalate ends the call because phone entry kept failing
	Escalate bool
	// Finalize asks for the completed record to be persisted and broadcast
	Finalize bool
}

// Apply writes the transition's field into the session. Writes are
// last-write-wins; applying the same transition twice is harmless.
func (t Transition) Apply(s *models.CallSession) {
	switch t.Field {
	case FieldLocale:
		s.Locale = models.ParseLocale(t.Value)
	case FieldName:
		s.Name = t.Value
	case FieldPendingPhone:
		s.PendingPhone = t.Value
		s.PhoneAttempts = 0
	case FieldPhone:
		s.Phone = t.Value
	case FieldBloodGroup:
		s.BloodGroup = models.BloodGroup(t.Value)
	case FieldHospital:
		s.Hospital = t.Value
	}
	if t.Retry {
		s.PhoneAttempts++
	}
	s.State = string(t.To)
}

// Machine decides the next state of a call from the current state and input
type Machine struct {
	// MaxPhoneAttempts bounds invalid phone entries; zero means unbounded
	MaxPhoneAttempts int
}

// NewMachine creates a machine with the given phone retry ceiling
func NewMachine(maxPhoneAttempts int) *Machine {
	return &Machine{MaxPhoneAttempts: maxPhoneAttempts}
}

// Next computes the transition out of state for input
func (m *Machine) Next(state State, in Input) (Transition, error) {
	t := Transition{From: state}

	switch state {
	case StateAwaitingLanguage:
		t.To = StateName
		t.Field = FieldLocale
		t.Value = string(SelectLocale(in.Digits))

	case StateName:
		t.To = StatePhone
		t.Field = FieldName
		t.Value = in.Transcript

	case StatePhone:
		if ValidPhone(in.Digits) {
			t.To = StatePhoneConfirm
			t.Field = FieldPendingPhone
			t.Value = in.Digits
			return t, nil
		}
		t.Retry = true
		t.To = StatePhone
		if m.MaxPhoneAttempts > 0 && in.PhoneAttempts+1 >= m.MaxPhoneAttempts {
			t.To = StateComplete
			t.Escalate = true
		}

	case StatePhoneConfirm:
		if in.Digits == "1" {
			t.To = StateBlood
			t.Field = FieldPhone
			t.Value = in.PendingPhone
			return t, nil
		}
		t.To = StatePhone

	case StateBlood:
		t.To = StateHospital
		t.Field = FieldBloodGroup
		t.Value = string(models.BloodGroupFromDigit(in.Digits))

	case StateHospital:
		t.To = StateComplete
		t.Field = FieldHospital
		t.Value = in.Transcript
		t.Finalize = true

	case StateComplete:
		return t, ErrCallComplete

	default:
		return t, fmt.Errorf("%w: %q", ErrUnknownState, state)
	}

	return t, nil
}

// ValidPhone reports whether digits is exactly a 10-digit number
func ValidPhone(digits string) bool {
	if len(digits) != PhoneDigits {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
