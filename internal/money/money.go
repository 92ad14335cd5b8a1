// Package money holds the monetary derivations feeding an invoice: nearest
// whole-unit rounding, the signed round-off delta and the amount-in-words
// conversion using the Indian numbering scale.
package money

import (
	"math"
	"strings"
)

// RoundNearest rounds an amount to the nearest whole currency unit, halves
// away from zero.
func RoundNearest(amount float64) float64 {
	return math.Round(amount)
}

// RoundOff is the signed difference between an amount and its rounding to the
// nearest whole unit, reported to two decimal places. Display only; the net
// amount itself comes from RoundNearest.
func RoundOff(amount float64) float64 {
	return math.Round((math.Round(amount)-amount)*100) / 100
}

var (
	ones  = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}
	tens  = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
	teens = []string{"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
)

func belowThousand(n int) string {
	switch {
	case n == 0:
		return ""
	case n < 10:
		return ones[n]
	case n < 20:
		return teens[n-10]
	case n < 100:
		s := tens[n/10]
		if n%10 != 0 {
			s += " " + ones[n%10]
		}
		return s
	default:
		s := ones[n/100] + " Hundred"
		if n%100 != 0 {
			s += " " + belowThousand(n%100)
		}
		return s
	}
}

// AmountInWords renders a non-negative amount in words on the Indian short
// scale: Crore (10^7), Lakh (10^5), Thousand, Hundred, then tens and ones.
// A fractional part is rounded to two digits and appended as paise. Every
// result ends with "Only". Negative input is a precondition violation.
func AmountInWords(amount float64) string {
	n := int64(math.Floor(amount))
	paise := int(math.Round((amount - math.Floor(amount)) * 100))

	var parts []string
	if n >= 1e7 {
		parts = append(parts, belowThousand(int(n/1e7)), "Crore")
		n %= 1e7
	}
	if n >= 1e5 {
		parts = append(parts, belowThousand(int(n/1e5)), "Lakh")
		n %= 1e5
	}
	if n >= 1000 {
		parts = append(parts, belowThousand(int(n/1000)), "Thousand")
		n %= 1000
	}
	if n > 0 {
		parts = append(parts, belowThousand(int(n)))
	}

	result := strings.Join(parts, " ")
	if result == "" {
		result = "Zero"
	}
	if paise > 0 {
		result += " and " + belowThousand(paise) + " Paise"
	}
	return result + " Only"
}
