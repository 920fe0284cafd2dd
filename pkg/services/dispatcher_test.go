package services

import (
	"context"
	"strings"
	"testing"

	"blood-helpline/pkg/models"
)

func TestAlertMessage(t *testing.T) {
	a := Alert{BloodGroup: models.OPositive, Hospital: "Apollo Hospital", PatientName: "Rahul", ContactPhone: "9876543210"}
	want := "Urgent: Blood donation request for O+ at Apollo Hospital. Patient Name: Rahul. Please contact 9876543210 for details and to assist."
	if got := a.Message(); got != want {
		t.Errorf("Message() = %q\nwant %q", got, want)
	}
}

func TestDispatchContinuesPastFailures(t *testing.T) {
	sender := newFakeSender("+919000000002")
	stats := &Stats{}
	d := NewDispatcher(sender, "+91", 2, stats)

	donors := []models.DonorRecord{
		{Name: "Asha", Phone: "9000000001", BloodGroup: "O+"},
		{Name: "Bala", Phone: "9000000002", BloodGroup: "O+"},
		{Name: "Chitra", Phone: "+919000000003", BloodGroup: "O+"},
		{Name: "NoPhone", Phone: "", BloodGroup: "O+"},
	}
	report := d.Dispatch(context.Background(), donors, Alert{BloodGroup: models.OPositive, Hospital: "Apollo"})

	if report.Attempted != 3 || report.Delivered != 2 || report.Skipped != 1 {
		t.Errorf("report = %+v", report)
	}
	if len(report.Failures) != 1 || report.Failures[0].DonorName != "Bala" {
		t.Fatalf("failures = %+v", report.Failures)
	}
	if _, ok := sender.sent["+919000000001"]; !ok {
		t.Error("10-digit number should be sent with the country code")
	}
	if body := sender.sent["+919000000003"]; !strings.Contains(body, "Apollo") {
		t.Errorf("body = %q", body)
	}

	snap := stats.Snapshot()
	if snap.AlertsDelivered != 2 || snap.AlertsFailed != 1 {
		t.Errorf("stats = %+v", snap)
	}
}

func TestDispatchNoDonors(t *testing.T) {
	sender := newFakeSender()
	report := NewDispatcher(sender, "", 0, nil).Dispatch(context.Background(), nil, Alert{})
	if report.Attempted != 0 || sender.count() != 0 {
		t.Errorf("report = %+v, sent = %d", report, sender.count())
	}
}
