// Package feature derives comparable features from raw room rows:
// the normalized descriptive text used for embedding, and the numeric
// occupancy, area and price fields parsed out of free text.
package feature

import (
	"regexp"
	"strconv"
	"strings"
)

// Phrases the booking feed uses (Czech locale) to mark rate conditions.
const (
	markerBreakfast  = "snídaně v ceně"
	markerNonref     = "nevratná rezervace"
	markerFreeCancel = "zrušení zdarma"
)

var (
	digitRun  = regexp.MustCompile(`\d+`)
	nonAlnum  = regexp.MustCompile(`[^a-z0-9\s]`)
	areaRegex = regexp.MustCompile(`(\d+)\s*m²`)
	nonPrice  = regexp.MustCompile(`[^\d,.]`)
)

// CleanText lower-cases s and strips every character that is not an ASCII
// alphanumeric or whitespace. Pure and total.
func CleanText(s string) string {
	return strings.TrimSpace(nonAlnum.ReplaceAllString(strings.ToLower(s), ""))
}

// Descriptor builds the normalized descriptive text for one room row:
// lower-cased room type, the "br" marker if breakfast is included, the
// "nonref" marker if the rate is non-refundable, the first integer found
// in the occupancy text, then the highlights — all cleaned. Missing
// optional fields are simply omitted; the result is always a string.
func Descriptor(roomType string, breakfast, nonref bool, occupancyText, highlights string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(roomType))
	if breakfast {
		b.WriteString(" br")
	}
	if nonref {
		b.WriteString(" nonref")
	}
	if m := digitRun.FindString(occupancyText); m != "" {
		b.WriteString(" ")
		b.WriteString(m)
	}
	if highlights != "" {
		b.WriteString(" ")
		b.WriteString(highlights)
	}
	return CleanText(b.String())
}

// ExtractOccupancy finds the first run of digits in the occupancy text.
// Absent or non-numeric input yields nil, never zero: nil encodes "unknown"
// and participates specially in scoring.
func ExtractOccupancy(s string) *int {
	m := digitRun.FindString(s)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

// ExtractArea scans highlight entries for the first "<N> m²" occurrence
// and returns the area in square meters, or nil when none is present.
func ExtractArea(highlights []string) *float64 {
	for _, h := range highlights {
		m := areaRegex.FindStringSubmatch(h)
		if m == nil {
			continue
		}
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		return &n
	}
	return nil
}

// ExtractPrice strips everything but digits and decimal separators from a
// price cell and parses the remainder. Unparseable input yields nil.
func ExtractPrice(s string) *float64 {
	num := nonPrice.ReplaceAllString(s, "")
	num = strings.ReplaceAll(num, ",", ".")
	// keep only the first decimal point so "1.234.50" stays parseable
	if i := strings.Index(num, "."); i >= 0 {
		num = num[:i+1] + strings.ReplaceAll(num[i+1:], ".", "")
	}
	if num == "" || num == "." {
		return nil
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return nil
	}
	return &v
}

// HasBreakfast reports whether the raw rate info mentions breakfast
// being included, case-insensitively.
func HasBreakfast(info string) bool {
	return containsFold(info, markerBreakfast)
}

// IsNonRefundable reports whether the raw rate info marks the rate as
// non-refundable, case-insensitively.
func IsNonRefundable(info string) bool {
	return containsFold(info, markerNonref)
}

// HasFreeCancellation reports whether the raw rate info advertises free
// cancellation, case-insensitively.
func HasFreeCancellation(info string) bool {
	return containsFold(info, markerFreeCancel)
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
