package models

import "time"

// CallSession accumulates the answers given during one phone call
type CallSession struct {
	CallID        string
	Name          string
	Phone         string
	PendingPhone  string // entered but not yet confirmed
	BloodGroup    BloodGroup
	Hospital      string
	Locale        Locale
	State         string
	PhoneAttempts int
	Finalized     bool
	UpdatedAt     time.Time
}

// Record assembles the row persisted once the intake is complete
func (s CallSession) Record() IntakeRecord {
	return IntakeRecord{
		CallID:     s.CallID,
		Name:       s.Name,
		Phone:      s.Phone,
		BloodGroup: string(s.BloodGroup),
		Hospital:   s.Hospital,
	}
}

// RecordColumns is the column order of the intake record table
var RecordColumns = []string{"CallID", "Name", "Phone", "BloodGroup", "Hospital"}

// IntakeRecord is one completed helpline request
type IntakeRecord struct {
	CallID     string `json:"CallID"`
	Name       string `json:"Name"`
	Phone      string `json:"Phone"`
	BloodGroup string `json:"BloodGroup"`
	Hospital   string `json:"Hospital"`
}

// Row returns the record values in RecordColumns order
func (r IntakeRecord) Row() []string {
	return []string{r.CallID, r.Name, r.Phone, r.BloodGroup, r.Hospital}
}
