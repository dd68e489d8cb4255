package classify

import (
	"testing"

	"github.com/hyperjump/docintel/internal/control"
)

func TestClassifyEmptyInputNeverErrors(t *testing.T) {
	bundle, err := control.Init("../corpus/testdata/manifest.yaml", nil)
	if err != nil {
		t.Fatalf("control.Init: %v", err)
	}
	vec := Classify([]byte(""), bundle)
	if vec.PrimaryDomain != "" {
		t.Errorf("expected no primary domain for empty input, got %q", vec.PrimaryDomain)
	}
	if vec.PrimaryDocType != "" {
		t.Errorf("expected no primary doc type for empty input, got %q", vec.PrimaryDocType)
	}
}

func TestClassifyRegulatoryFiling(t *testing.T) {
	bundle, err := control.Init("../corpus/testdata/manifest.yaml", nil)
	if err != nil {
		t.Fatalf("control.Init: %v", err)
	}
	md := []byte("This filing cites 29 CFR 1926.1050. The agency issued the regulation after an OSHA inspection.")
	vec := Classify(md, bundle)
	if vec.PrimaryDocType != "regulatory_filing" {
		t.Errorf("expected primary doc type regulatory_filing, got %q", vec.PrimaryDocType)
	}
	if vec.PrimaryDomain != "legal" && vec.PrimaryDomain != "safety" {
		t.Errorf("expected legal or safety as primary domain, got %q", vec.PrimaryDomain)
	}
}

func TestClassifyPercentagesSumToHundred(t *testing.T) {
	bundle, err := control.Init("../corpus/testdata/manifest.yaml", nil)
	if err != nil {
		t.Fatalf("control.Init: %v", err)
	}
	md := []byte("revenue grew this fiscal quarter while the agency issued a cfr update")
	vec := Classify(md, bundle)
	var sum float64
	for _, v := range vec.DocTypes {
		sum += v
	}
	if len(vec.DocTypes) > 0 {
		if sum < 99.0 || sum > 101.0 {
			t.Errorf("expected doc type percentages to sum to ~100, got %v (%v)", sum, vec.DocTypes)
		}
	}
}
