// ABOUTME: Tests for tagged error normalization.
// ABOUTME: Covers Normalize fallbacks, kind dispatch, and field errors.
package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantMsg  string
		wantNil  bool
		wantKind Kind
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "plain", err: errors.New("boom"), wantMsg: "boom", wantKind: KindData},
		{name: "empty message", err: errors.New("  "), wantMsg: "fallback", wantKind: KindData},
		{name: "wrapped app error", err: fmt.Errorf("ctx: %w", New(KindAuth, "bad")), wantMsg: "bad", wantKind: KindData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(KindData, tt.err, "fallback")
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if got.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMsg)
			}
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got.Kind, tt.wantKind)
			}
		})
	}
}

func TestIs(t *testing.T) {
	if !Is(New(KindAuth, "x"), KindAuth) {
		t.Error("expected auth error to match KindAuth")
	}
	if Is(New(KindAuth, "x"), KindData) {
		t.Error("expected auth error not to match KindData")
	}
	if !Is(FieldErrors{"email": "Email is required"}, KindValidation) {
		t.Error("expected field errors to match KindValidation")
	}
	if Is(errors.New("plain"), KindData) {
		t.Error("expected plain error not to match")
	}
}

func TestFieldErrors(t *testing.T) {
	fe := FieldErrors{}
	if fe.OrNil() != nil {
		t.Error("expected empty field errors to be nil")
	}

	fe.Add("password", "Password is required")
	fe.Add("password", "ignored")
	fe.Add("email", "Email is required")

	if fe["password"] != "Password is required" {
		t.Errorf("first message should win, got %q", fe["password"])
	}
	want := "email: Email is required; password: Password is required"
	if got := fe.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
