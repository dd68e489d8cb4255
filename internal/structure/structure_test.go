package structure

import "testing"

func TestDeriveHeadersListsTables(t *testing.T) {
	md := []byte("# Title\n\n- item one\n- item two\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	flags := Derive(md)
	if !flags.HasHeaders {
		t.Error("expected HasHeaders")
	}
	if !flags.HasLists {
		t.Error("expected HasLists")
	}
	if !flags.HasTables {
		t.Error("expected HasTables")
	}
	if flags.HasCodeFences {
		t.Error("did not expect HasCodeFences")
	}
}

func TestDeriveCodeFence(t *testing.T) {
	md := []byte("```go\nfunc main() {}\n```\n")
	flags := Derive(md)
	if !flags.HasCodeFences {
		t.Error("expected HasCodeFences")
	}
	if flags.LanguageGuess != "go" {
		t.Errorf("expected language guess go, got %q", flags.LanguageGuess)
	}
}

func TestDeriveFrontMatter(t *testing.T) {
	md := []byte("---\ntitle: test\n---\n\nbody\n")
	flags := Derive(md)
	if !flags.HasFrontMatter {
		t.Error("expected HasFrontMatter")
	}
}

func TestDeriveEmptyInputNeverPanics(t *testing.T) {
	flags := Derive([]byte(""))
	if flags.HasHeaders || flags.HasLists || flags.HasTables || flags.HasCodeFences || flags.HasFrontMatter {
		t.Error("expected all flags false for empty input")
	}
}
