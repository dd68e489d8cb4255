package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateResult is the metadata bag §4.6.1 describes for a DATE entity. Fields
// that don't apply to a given precision (a bare year has no day-of-week)
// are left at their zero value.
type dateResult struct {
	iso              string
	year, month, day int
	weekday          string
	quarter          string
	fiscalYear       int
	relative         string
	hasFullDate      bool
}

var longMonthLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan. 2, 2006",
	"Sept 2, 2006",
	"Sept. 2, 2006",
}

// normalizeDate canonicalizes a DATE raw entity's text according to the
// sub-pattern that matched it (tag), the configured ambiguous-date policy,
// and the fiscal year anchor month.
func normalizeDate(text, tag string, opts Options) (dateResult, error) {
	switch tag {
	case "DATE_ISO":
		t, err := time.Parse("2006-01-02", text)
		if err != nil {
			return dateResult{}, fmt.Errorf("date: %w", err)
		}
		return fullDate(t, opts), nil
	case "DATE_LONG":
		clean := strings.TrimSpace(strings.ReplaceAll(text, ",", ","))
		var t time.Time
		var err error
		for _, layout := range longMonthLayouts {
			t, err = time.Parse(layout, clean)
			if err == nil {
				break
			}
		}
		if err != nil {
			return dateResult{}, fmt.Errorf("date: unrecognized long-form date %q", text)
		}
		return fullDate(t, opts), nil
	case "DATE_NUMERIC":
		parts := strings.Split(text, "/")
		if len(parts) != 3 {
			return dateResult{}, fmt.Errorf("date: malformed numeric date %q", text)
		}
		a, err1 := strconv.Atoi(parts[0])
		b, err2 := strconv.Atoi(parts[1])
		y, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return dateResult{}, fmt.Errorf("date: non-numeric component in %q", text)
		}
		month, day := a, b
		if opts.AmbiguousDatePolicy == "dmy" {
			month, day = b, a
		}
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return dateResult{}, fmt.Errorf("date: out-of-range numeric date %q", text)
		}
		t := time.Date(y, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		return fullDate(t, opts), nil
	case "DATE_YEAR":
		y, err := strconv.Atoi(text)
		if err != nil {
			return dateResult{}, fmt.Errorf("date: non-numeric year %q", text)
		}
		r := dateResult{year: y, fiscalYear: fiscalYearFor(y, 1, opts.FiscalYearAnchorMonth)}
		if y < opts.ingestYear() {
			r.relative = "past"
		} else if y > opts.ingestYear() {
			r.relative = "future"
		} else {
			r.relative = "present"
		}
		return r, nil
	default:
		return dateResult{}, fmt.Errorf("date: unknown detector tag %q", tag)
	}
}

func fullDate(t time.Time, opts Options) dateResult {
	r := dateResult{
		iso:         t.Format("2006-01-02"),
		year:        t.Year(),
		month:       int(t.Month()),
		day:         t.Day(),
		weekday:     t.Weekday().String(),
		quarter:     quarterFor(int(t.Month())),
		fiscalYear:  fiscalYearFor(t.Year(), int(t.Month()), opts.FiscalYearAnchorMonth),
		hasFullDate: true,
	}
	ingestDay := time.Date(opts.IngestTimestamp.Year(), opts.IngestTimestamp.Month(), opts.IngestTimestamp.Day(), 0, 0, 0, 0, time.UTC)
	candidate := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case candidate.Before(ingestDay):
		r.relative = "past"
	case candidate.After(ingestDay):
		r.relative = "future"
	default:
		r.relative = "present"
	}
	return r
}

func quarterFor(month int) string {
	return fmt.Sprintf("Q%d", (month-1)/3+1)
}

// fiscalYearFor applies the configured anchor month. With the default
// anchor (January), the fiscal year equals the calendar year. With any
// later anchor, a month at or after the anchor belongs to the following
// fiscal year (the convention of naming a fiscal year by its ending year).
func fiscalYearFor(year, month, anchor int) int {
	if anchor > 1 && month >= anchor {
		return year + 1
	}
	return year
}
