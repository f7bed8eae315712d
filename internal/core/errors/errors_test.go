package errors

import (
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeNotFound, "tool not found")
		if err.Error() != "[NOT_FOUND] tool not found" {
			t.Errorf("expected [NOT_FOUND] tool not found, got %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("exit status 1")
		err := Wrap(original, CodeGenerationFailure, "generator failed")
		expected := "[GENERATION_FAILURE] generator failed: exit status 1"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeDataUnavailable, "node count sidecar missing")
		if !IsCode(err, CodeDataUnavailable) {
			t.Error("expected IsCode to return true for CodeDataUnavailable")
		}
		if IsCode(err, CodeIO) {
			t.Error("expected IsCode to return false for CodeIO")
		}
	})

	t.Run("IsCodeWithWrapped", func(t *testing.T) {
		original := errors.New("permission denied")
		err := Wrap(original, CodeIO, "delete stale artifact")
		if !IsCode(err, CodeIO) {
			t.Error("expected IsCode to return true for wrapped CodeIO")
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := New(CodeConfiguration, "missing stanza")
		err = AddContext(err, CtxPath, "graphindex.toml")
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatal("expected DomainError")
		}
		if de.Context[CtxPath] != "graphindex.toml" {
			t.Errorf("expected context path graphindex.toml, got %v", de.Context[CtxPath])
		}
	})
}
