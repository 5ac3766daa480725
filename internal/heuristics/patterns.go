package heuristics

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// A 1-2 digit day/month pair with a 4 digit year, in either order,
	// separated by dot, slash or hyphen.
	reDateShape = regexp.MustCompile(`\d{1,2}[./-]\d{1,2}[./-]\d{4}|\d{4}[./-]\d{1,2}[./-]\d{1,2}`)

	reDigits = regexp.MustCompile(`\d+`)
	reTaxID  = regexp.MustCompile(`[\d-]+`)

	// IBAN-shaped: structural match only, no checksum validation.
	reIBAN = regexp.MustCompile(`[A-Z]{2}\d{2}[A-Z0-9]{10,30}`)

	// Currency-shaped amount. The 3-digit integer cap is inherited from the
	// documents this parser was tuned on; totals >= 1000 without a separator
	// are matched partially.
	reMoney = regexp.MustCompile(`\$?\s?(\d{1,3}(?:[.,]\d{2})?)`)

	reItemStart   = regexp.MustCompile(`^\d+\.\s`)
	reItemStrict  = regexp.MustCompile(`^\d+\.\s(.+?)\s(\d{1,3}[.,]\d{2})$`)
	reDecimal     = regexp.MustCompile(`\d{1,3}[.,]\d{2}`)
	reDecimalOnly = regexp.MustCompile(`^\d{1,3}[.,]\d{2}$`)
)

// parseDecimal reads a decimal token that may use a comma separator.
func parseDecimal(s string) float64 {
	v, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return v
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
