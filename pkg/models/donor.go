package models

import (
	"fmt"
	"strconv"
)

// DonorRecord is a registered donor from the donor directory
type DonorRecord struct {
	Name       string `json:"DonorName"`
	Phone      string `json:"DonorPhone"`
	BloodGroup string `json:"BloodGroup"`
}

// CellString renders a donor directory cell as text. Spreadsheet and Airtable
// backends may hand numbers back as float64, which must not be printed in
// exponent form.
func CellString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}
