package matching

import (
	"testing"

	"blood-helpline/pkg/models"
)

func directory() []models.DonorRecord {
	return []models.DonorRecord{
		{Name: "Asha", Phone: "9000000001", BloodGroup: " o+ "},
		{Name: "Bala", Phone: "9000000002", BloodGroup: "O-"},
		{Name: "Chitra", Phone: "9000000003", BloodGroup: "O+"},
		{Name: "Dev", Phone: "9000000004", BloodGroup: "ab+"},
		{Name: "Esha", Phone: "9000000005", BloodGroup: "O+\t"},
	}
}

func TestMatchNormalizesCaseAndWhitespace(t *testing.T) {
	got := Match(directory(), models.OPositive)

	want := []string{"Asha", "Chitra", "Esha"}
	if len(got) != len(want) {
		t.Fatalf("Match() returned %d donors, want %d: %+v", len(got), len(want), got)
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("got[%d] = %s, want %s (order must follow the directory)", i, got[i].Name, name)
		}
	}
}

func TestMatchIsExactNotCompatible(t *testing.T) {
	got := Match(directory(), models.ONegative)
	if len(got) != 1 || got[0].Name != "Bala" {
		t.Errorf("Match(O-) = %+v, want only Bala", got)
	}
}

func TestMatchZeroResults(t *testing.T) {
	got := Match(directory(), models.ABNegative)
	if got == nil {
		t.Fatal("Match() should return an empty slice, not nil")
	}
	if len(got) != 0 {
		t.Errorf("Match(AB-) = %+v, want none", got)
	}

	if got := Match(nil, models.OPositive); len(got) != 0 {
		t.Errorf("Match(nil) = %+v", got)
	}
}

func TestMatchUnknownGroup(t *testing.T) {
	donors := []models.DonorRecord{{Name: "X", BloodGroup: "unknown"}, {Name: "Y", BloodGroup: "A+"}}
	got := Match(donors, models.UnknownType)
	if len(got) != 1 || got[0].Name != "X" {
		t.Errorf("Match(Unknown) = %+v", got)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9876543210", "+919876543210"},
		{"919876543210", "919876543210"},
		{"+919876543210", "+919876543210"},
		{"98765", "98765"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in, DefaultCountryCode); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
