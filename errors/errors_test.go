package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestError_Format(t *testing.T) {
	err := New(PhaseLower, KindEmbeddedNul).
		Detail("string contains NUL byte at position %d", 3).
		Build()

	s := err.Error()
	if !strings.Contains(s, "[lower]") {
		t.Errorf("missing phase in %q", s)
	}
	if !strings.Contains(s, "embedded_nul") {
		t.Errorf("missing kind in %q", s)
	}
	if !strings.Contains(s, "position 3") {
		t.Errorf("missing detail in %q", s)
	}
}

func TestError_NativeFormat(t *testing.T) {
	err := Native("cv_line_descriptor_BinaryDescriptor_detect", -215, "empty image")
	s := err.Error()
	if !strings.Contains(s, "cv_line_descriptor_BinaryDescriptor_detect") {
		t.Errorf("missing symbol in %q", s)
	}
	if !strings.Contains(s, "code -215") {
		t.Errorf("missing code in %q", s)
	}
	if !strings.Contains(s, "empty image") {
		t.Errorf("missing message in %q", s)
	}
}

func TestError_Is(t *testing.T) {
	err := EmbeddedNul(0)
	target := &Error{Phase: PhaseLower, Kind: KindEmbeddedNul}
	if !stderrors.Is(err, target) {
		t.Error("expected Is match on phase+kind")
	}

	other := &Error{Phase: PhaseCall, Kind: KindEmbeddedNul}
	if stderrors.Is(err, other) {
		t.Error("unexpected Is match with different phase")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := stderrors.New("underlying")
	err := Load("compile glue module", cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected unwrap chain to reach cause")
	}
	if !strings.Contains(err.Error(), "caused by: underlying") {
		t.Errorf("missing cause in %q", err.Error())
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		phase Phase
		kind  Kind
	}{
		{"AllocationFailed", AllocationFailed(16, 8, nil), PhaseLower, KindAllocation},
		{"OutOfBounds", OutOfBounds(PhaseLift, 100, 4), PhaseLift, KindOutOfBounds},
		{"NotFound", NotFound("export", "cv_Mat_delete"), PhaseCall, KindNotFound},
		{"NotInitialized", NotInitialized("instance"), PhaseRuntime, KindNotInitialized},
		{"Released", Released("Mat"), PhaseRuntime, KindReleased},
		{"InvalidInput", InvalidInput(PhaseLoad, "not a wasm binary"), PhaseLoad, KindInvalidInput},
	}

	for _, tt := range tests {
		if tt.err.Phase != tt.phase {
			t.Errorf("%s: phase = %q, want %q", tt.name, tt.err.Phase, tt.phase)
		}
		if tt.err.Kind != tt.kind {
			t.Errorf("%s: kind = %q, want %q", tt.name, tt.err.Kind, tt.kind)
		}
	}
}
