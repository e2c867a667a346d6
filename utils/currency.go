package utils

import (
	"fmt"
	"strings"
)

// FormatRupiah formats an amount as Indonesian Rupiah with thousand
// separators, e.g. 15000 -> "Rp 15.000".
func FormatRupiah(amount float64) string {
	whole := int64(amount)
	cents := int64(amount*100+0.5) - whole*100

	digits := fmt.Sprintf("%d", whole)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	if cents > 0 {
		return fmt.Sprintf("Rp %s,%02d", strings.Join(groups, "."), cents)
	}
	return "Rp " + strings.Join(groups, ".")
}
