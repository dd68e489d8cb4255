package corpus

import "testing"

func TestLoadSeedManifest(t *testing.T) {
	c, err := Load("testdata/manifest.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Gazetteers) == 0 {
		t.Error("expected gazetteer entries")
	}
	if _, ok := c.DomainWeights["legal"]; !ok {
		t.Error("expected legal domain weight")
	}
	if _, ok := c.DocTypeWeights["regulatory_filing"]; !ok {
		t.Error("expected regulatory_filing doc type weight")
	}
	if c.OrgAcronyms["OSHA"] == "" {
		t.Error("expected OSHA acronym expansion")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("testdata/does-not-exist.yaml"); err == nil {
		t.Error("expected an error for a missing manifest")
	}
}
