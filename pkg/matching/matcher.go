package matching

import (
	"strings"

	"blood-helpline/pkg/models"
)

// DefaultCountryCode is prefixed to local 10-digit donor numbers
const DefaultCountryCode = "+91"

// Match returns the donors whose blood group equals group after trimming and
// upper-casing. Groups are compared exactly: an O- donor is not offered for an
// O+ request. Directory order is preserved.
func Match(donors []models.DonorRecord, group models.BloodGroup) []models.DonorRecord {
	target := normalizeGroup(string(group))
	matched := make([]models.DonorRecord, 0)
	for _, d := range donors {
		if normalizeGroup(d.BloodGroup) == target {
			matched = append(matched, d)
		}
	}
	return matched
}

func normalizeGroup(group string) string {
	return strings.ToUpper(strings.TrimSpace(group))
}

// NormalizePhone turns a donor phone into the form handed to the SMS
// provider. A value of exactly 10 characters is taken as a local number and
// gets countryCode prefixed; anything else is assumed to already be
// international and is returned unchanged. Digit content is not validated.
func NormalizePhone(phone, countryCode string) string {
	if len(phone) == 10 {
		return countryCode + phone
	}
	return phone
}
