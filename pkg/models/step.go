package models

// Step is one stage of the intake dialogue
type Step string

const (
	StepName     Step = "name"
	StepPhone    Step = "phone"
	StepBlood    Step = "blood"
	StepHospital Step = "hospital"
)

// Steps is the fixed order in which a caller is walked through the intake
var Steps = []Step{StepName, StepPhone, StepBlood, StepHospital}

// Next returns the step after s. ok is false for the last step or an unknown one.
func (s Step) Next() (Step, bool) {
	for i, step := range Steps {
		if step == s && i+1 < len(Steps) {
			return Steps[i+1], true
		}
	}
	return "", false
}

// Valid reports whether s is one of the defined steps
func (s Step) Valid() bool {
	for _, step := range Steps {
		if step == s {
			return true
		}
	}
	return false
}
