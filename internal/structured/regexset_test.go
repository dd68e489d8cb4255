package structured

import "testing"

func TestCompile(t *testing.T) {
	if _, err := Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
}

func TestScanRangeDash(t *testing.T) {
	rs, err := Compile()
	if err != nil {
		t.Fatal(err)
	}
	text := []byte("Handrail height 30-37 inches (76-94 cm)")
	entities := rs.Scan(text)

	var measures, ranges int
	for _, e := range entities {
		switch e.DetectorTag {
		case "MEASUREMENT_RANGE_LEFT", "MEASUREMENT_RANGE_RIGHT":
			measures++
		case "RANGE_INDICATOR":
			ranges++
		}
	}
	if measures != 4 {
		t.Errorf("measures = %d, want 4", measures)
	}
	if ranges != 2 {
		t.Errorf("ranges = %d, want 2", ranges)
	}
}

func TestScanMoneyLongestWins(t *testing.T) {
	rs, err := Compile()
	if err != nil {
		t.Fatal(err)
	}
	entities := rs.Scan([]byte("Revenue of $5.2 million in 2024."))
	var moneyCount, dateCount int
	for _, e := range entities {
		if e.DetectorTag == "MONEY" {
			moneyCount++
			if e.Text != "$5.2 million" {
				t.Errorf("money text = %q, want %q", e.Text, "$5.2 million")
			}
		}
		if e.DetectorTag == "DATE_YEAR" {
			dateCount++
		}
	}
	if moneyCount != 1 {
		t.Errorf("moneyCount = %d, want 1", moneyCount)
	}
	if dateCount != 1 {
		t.Errorf("dateCount = %d, want 1", dateCount)
	}
}

func TestScanRegulation(t *testing.T) {
	rs, err := Compile()
	if err != nil {
		t.Fatal(err)
	}
	entities := rs.Scan([]byte("OSHA issued 29 CFR 1926.1050 on March 15, 1991."))
	var reg, date int
	for _, e := range entities {
		if e.DetectorTag == "REGULATION" {
			reg++
			if e.Text != "29 CFR 1926.1050" {
				t.Errorf("regulation text = %q", e.Text)
			}
		}
		if e.DetectorTag == "DATE_LONG" {
			date++
		}
	}
	if reg != 1 {
		t.Errorf("reg = %d, want 1", reg)
	}
	if date != 1 {
		t.Errorf("date = %d, want 1", date)
	}
}

func TestScanPercentAsMeasurement(t *testing.T) {
	rs, err := Compile()
	if err != nil {
		t.Fatal(err)
	}
	entities := rs.Scan([]byte("fines rise 10% per repeat"))
	found := false
	for _, e := range entities {
		if e.DetectorTag == "MEASUREMENT" && e.Text == "10%" {
			found = true
			if e.Kind != "" && string(e.Kind) != "MEASUREMENT" {
				t.Errorf("kind = %v, want MEASUREMENT", e.Kind)
			}
		}
	}
	if !found {
		t.Error("expected a MEASUREMENT entity for 10%")
	}
}
