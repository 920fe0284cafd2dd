package services

import (
	"context"
	"fmt"
	"log"

	"blood-helpline/pkg/matching"
	"blood-helpline/pkg/models"
)

// FinalizeResult describes what happened after the record was stored
type FinalizeResult struct {
	Matched int
	Report  DispatchReport
}

// Finalizer persists a completed intake and alerts matching donors
type Finalizer struct {
	records    RecordStore
	donors     DonorDirectory
	dispatcher *Dispatcher
}

// NewFinalizer creates a finalizer
func NewFinalizer(records RecordStore, donors DonorDirectory, dispatcher *Dispatcher) *Finalizer {
	return &Finalizer{records: records, donors: donors, dispatcher: dispatcher}
}

// Finalize appends the session's record, then matches and alerts donors. The
// steps are not atomic: once the row is written, problems reading the donor
// directory or sending alerts are logged and do not fail the call.
func (f *Finalizer) Finalize(ctx context.Context, session models.CallSession) (FinalizeResult, error) {
	record := session.Record()
	if err := f.records.AppendRecord(ctx, record); err != nil {
		return FinalizeResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	log.Printf("Stored intake record for call %s", session.CallID)

	donors, err := f.donors.ListDonors(ctx)
	if err != nil {
		log.Printf("Error reading donor directory for call %s: %v", session.CallID, err)
		return FinalizeResult{}, nil
	}

	matched := matching.Match(donors, session.BloodGroup)
	log.Printf("Found %d matched donors for blood group %s", len(matched), session.BloodGroup)
	if len(matched) == 0 {
		return FinalizeResult{}, nil
	}

	report := f.dispatcher.Dispatch(ctx, matched, Alert{
		BloodGroup:   session.BloodGroup,
		Hospital:     session.Hospital,
		PatientName:  session.Name,
		ContactPhone: session.Phone,
	})
	if len(report.Failures) > 0 {
		log.Printf("Alert delivery for call %s: %d delivered, %d failed", session.CallID, report.Delivered, len(report.Failures))
	}

	return FinalizeResult{Matched: len(matched), Report: report}, nil
}
