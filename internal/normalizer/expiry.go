package normalizer

import (
	"regexp"
	"strconv"
	"time"
)

// vnZone is Indochina Time; deadlines on Vietnamese sites are local dates.
var vnZone = time.FixedZone("ICT", 7*60*60)

var (
	dmyRe = regexp.MustCompile(`(\d{1,2})[/.-](\d{1,2})[/.-](\d{4})`)
	ymdRe = regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`)
)

// ParseExpiry reads a deadline date from free text and returns the last
// second of that day, or nil when no date is present.
func ParseExpiry(text string) *time.Time {
	var y, m, d int

	if match := ymdRe.FindStringSubmatch(text); match != nil {
		y, _ = strconv.Atoi(match[1])
		m, _ = strconv.Atoi(match[2])
		d, _ = strconv.Atoi(match[3])
	} else if match := dmyRe.FindStringSubmatch(text); match != nil {
		d, _ = strconv.Atoi(match[1])
		m, _ = strconv.Atoi(match[2])
		y, _ = strconv.Atoi(match[3])
	} else {
		return nil
	}

	if m < 1 || m > 12 || d < 1 || d > 31 {
		return nil
	}

	t := time.Date(y, time.Month(m), d, 23, 59, 59, 0, vnZone)
	// time.Date normalizes 31/02 into March; reject those.
	if t.Day() != d {
		return nil
	}
	utc := t.UTC()
	return &utc
}
