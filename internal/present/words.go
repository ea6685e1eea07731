package present

import (
	"math"
	"strings"
)

var (
	onesWords = []string{
		"", "ONE", "TWO", "THREE", "FOUR", "FIVE", "SIX", "SEVEN", "EIGHT", "NINE",
		"TEN", "ELEVEN", "TWELVE", "THIRTEEN", "FOURTEEN", "FIFTEEN", "SIXTEEN",
		"SEVENTEEN", "EIGHTEEN", "NINETEEN",
	}
	tensWords = []string{
		"", "", "TWENTY", "THIRTY", "FORTY", "FIFTY", "SIXTY", "SEVENTY", "EIGHTY", "NINETY",
	}
)

const (
	crore    = 10000000
	lac      = 100000
	thousand = 1000
)

// NumberToWords spells a non-negative amount in the Indian numbering system
// (Thousand, Lac, Crore) in upper case. Zero is "Zero"; negative or
// non-finite input yields "".
//
//	NumberToWords(150000)   // "ONE LAC FIFTY THOUSAND"
//	NumberToWords(10000000) // "ONE CRORE"
func NumberToWords(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return ""
	}
	v := int64(math.Round(n))
	if v == 0 {
		return "Zero"
	}
	return spellIndian(v)
}

func spellIndian(n int64) string {
	var parts []string

	// Crore counts above 99 are spelled recursively: 123 crore is "ONE HUNDRED TWENTY THREE CRORE".
	if c := n / crore; c > 0 {
		parts = append(parts, spellIndian(c)+" CRORE")
	}
	n %= crore

	if l := n / lac; l > 0 {
		parts = append(parts, spellBelowHundred(l)+" LAC")
	}
	n %= lac

	if t := n / thousand; t > 0 {
		parts = append(parts, spellBelowHundred(t)+" THOUSAND")
	}
	n %= thousand

	if n > 0 {
		parts = append(parts, spellBelowThousand(n))
	}
	return strings.Join(parts, " ")
}

func spellBelowThousand(n int64) string {
	if n < 100 {
		return spellBelowHundred(n)
	}
	out := onesWords[n/100] + " HUNDRED"
	if rest := n % 100; rest > 0 {
		out += " " + spellBelowHundred(rest)
	}
	return out
}

func spellBelowHundred(n int64) string {
	if n < 20 {
		return onesWords[n]
	}
	out := tensWords[n/10]
	if n%10 > 0 {
		out += " " + onesWords[n%10]
	}
	return out
}

// FormatCurrencyWithWords renders pct percent of v as rupees with the amount in words:
// FormatCurrencyWithWords(1000000, 100) == "₹ 10,00,000/- (TEN LAC)".
// Non-numeric input and negative amounts yield "NA".
func FormatCurrencyWithWords(v any, pct float64) string {
	n, ok := ParseNumber(v)
	if !ok {
		return NotAvailable
	}
	amount := math.Round(n * pct / 100)
	if amount < 0 {
		return NotAvailable
	}
	return "₹ " + FormatIndianNumber(amount) + "/- (" + NumberToWords(amount) + ")"
}

// RupeesInWords is the companion text for a monetary field: "Rupees TEN LAC Only".
// It returns "" when v is not a positive number.
func RupeesInWords(v any) string {
	n, ok := ParseNumber(v)
	if !ok || math.Round(n) <= 0 {
		return ""
	}
	return "Rupees " + NumberToWords(n) + " Only"
}
