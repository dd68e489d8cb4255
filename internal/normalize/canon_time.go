package normalize

import (
	"fmt"
	"strconv"
	"strings"
)

// timeResult is the metadata bag §4.6.1 describes for a TIME entity.
type timeResult struct {
	hour                 int
	minute               int
	hhmm24               string
	hhmmAMPM             string
	minutesSinceMidnight int
}

func normalizeTime(text, tag string) (timeResult, error) {
	switch tag {
	case "TIME_KEYWORD":
		switch strings.ToLower(strings.TrimSpace(text)) {
		case "noon":
			return timeFromHM(12, 0), nil
		case "midnight":
			return timeFromHM(0, 0), nil
		default:
			return timeResult{}, fmt.Errorf("time: unrecognized keyword %q", text)
		}
	case "TIME_24H":
		parts := strings.SplitN(text, ":", 2)
		if len(parts) != 2 {
			return timeResult{}, fmt.Errorf("time: malformed 24h time %q", text)
		}
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || h > 23 || m > 59 {
			return timeResult{}, fmt.Errorf("time: out-of-range 24h time %q", text)
		}
		return timeFromHM(h, m), nil
	case "TIME_12H":
		clean := strings.TrimSpace(text)
		clean = strings.ReplaceAll(clean, ".", "")
		upper := strings.ToUpper(clean)
		isPM := strings.HasSuffix(upper, "PM")
		isAM := strings.HasSuffix(upper, "AM")
		if !isPM && !isAM {
			return timeResult{}, fmt.Errorf("time: missing AM/PM in %q", text)
		}
		numeric := strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(upper, "PM"), "AM"))
		parts := strings.SplitN(numeric, ":", 2)
		if len(parts) != 2 {
			return timeResult{}, fmt.Errorf("time: malformed 12h time %q", text)
		}
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil || h < 1 || h > 12 || m > 59 {
			return timeResult{}, fmt.Errorf("time: out-of-range 12h time %q", text)
		}
		if isPM && h != 12 {
			h += 12
		}
		if isAM && h == 12 {
			h = 0
		}
		return timeFromHM(h, m), nil
	default:
		return timeResult{}, fmt.Errorf("time: unknown detector tag %q", tag)
	}
}

func timeFromHM(h, m int) timeResult {
	ampm := "AM"
	h12 := h
	switch {
	case h == 0:
		h12 = 12
	case h == 12:
		ampm = "PM"
	case h > 12:
		h12 = h - 12
		ampm = "PM"
	}
	return timeResult{
		hour:                 h,
		minute:               m,
		hhmm24:               fmt.Sprintf("%02d:%02d", h, m),
		hhmmAMPM:             fmt.Sprintf("%d:%02d %s", h12, m, ampm),
		minutesSinceMidnight: h*60 + m,
	}
}
