package canonical

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISODate is the canonical date layout.
const ISODate = "2006-01-02"

var dateLayouts = []string{
	ISODate,
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"2006/01/02",
	time.RFC3339,
}

var (
	slashDate = regexp.MustCompile(`^\s*(\d{1,2})/(\d{1,2})/(\d{4})\s*$`)
	isoShape  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Date returns the ISO form of raw. Calendar-valid dates in any known layout
// are reformatted; strings shaped like M/D/YYYY that are not valid dates are
// zero-padded and reordered anyway. ok is false when neither applies, in
// which case raw is returned unchanged.
func Date(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return raw, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(ISODate), true
		}
	}
	if m := slashDate.FindStringSubmatch(value); m != nil {
		return SlashToISO(m[1], m[2], m[3]), true
	}
	// Output of the M/D/YYYY fallback is already canonical even when it is
	// not a real calendar date.
	if isoShape.MatchString(value) {
		return value, true
	}
	return raw, false
}

// SlashToISO zero-pads month and day and orders the parts as YYYY-MM-DD.
func SlashToISO(month, day, year string) string {
	mm, _ := strconv.Atoi(month)
	dd, _ := strconv.Atoi(day)
	return fmt.Sprintf("%s-%02d-%02d", year, mm, dd)
}
