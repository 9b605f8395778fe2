package main

import (
	"testing"

	"go.uber.org/fx"
)

// TestAppGraphValidity verifies the dependency graph is resolvable.
// This catches a forgotten fx.Provide for a required interface without
// touching D-Bus or the network.
func TestAppGraphValidity(t *testing.T) {
	if err := fx.ValidateApp(AppOptions); err != nil {
		t.Errorf("dependency graph is not valid: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger()
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	if logger == nil {
		t.Fatal("logger should not be nil")
	}
	logger.Info("test logger initialization")
}
