package utils

import (
	"testing"
)

func TestNewProductionLogger(t *testing.T) {
	logger, err := NewProductionLogger()
	if err != nil {
		t.Fatalf("NewProductionLogger() error: %v", err)
	}
	if logger == nil {
		t.Fatal("NewProductionLogger() returned nil logger")
	}
	_ = logger.Sync()
}
