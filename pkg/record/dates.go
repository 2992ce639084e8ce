package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date layouts recognized during auto-detection.
const (
	layoutISO = "2006-01-02"
	layoutMDY = "01/02/2006"
	layoutDMY = "02/01/2006"
)

// ParseDate parses a date string. When layout is empty it
// auto-detects among YYYY-MM-DD, MM/DD/YYYY and DD/MM/YYYY.
//
// Slash dates are ambiguous when both leading numbers are <= 12; the
// US ordering MM/DD/YYYY wins then. A first number above 12 switches
// detection to DD/MM/YYYY.
func ParseDate(s, layout string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if layout != "" {
		return time.Parse(layout, s)
	}

	if strings.Contains(s, "-") {
		return time.Parse(layoutISO, s)
	}

	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
	}
	if len(parts[2]) != 4 {
		return time.Time{}, fmt.Errorf("two-digit years are not supported: %q", s)
	}

	first, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
	}

	if first > 12 {
		return time.Parse(layoutDMY, s)
	}
	return time.Parse(layoutMDY, s)
}
