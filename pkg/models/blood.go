package models

// BloodGroup is the blood group requested for a patient
type BloodGroup string

const (
	APositive   BloodGroup = "A+"
	ANegative   BloodGroup = "A-"
	BPositive   BloodGroup = "B+"
	BNegative   BloodGroup = "B-"
	OPositive   BloodGroup = "O+"
	ONegative   BloodGroup = "O-"
	ABPositive  BloodGroup = "AB+"
	ABNegative  BloodGroup = "AB-"
	UnknownType BloodGroup = "Unknown"
)

// bloodGroupDigits mirrors the order read out in the blood group prompt
var bloodGroupDigits = map[string]BloodGroup{
	"1": APositive,
	"2": ANegative,
	"3": BPositive,
	"4": BNegative,
	"5": OPositive,
	"6": ONegative,
	"7": ABPositive,
	"8": ABNegative,
}

// BloodGroupFromDigit maps a keypad digit to a blood group.
// Anything outside 1-8 yields UnknownType rather than an error.
func BloodGroupFromDigit(digit string) BloodGroup {
	if group, ok := bloodGroupDigits[digit]; ok {
		return group
	}
	return UnknownType
}
