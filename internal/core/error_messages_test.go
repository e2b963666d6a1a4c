package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"duplicate account", fmt.Errorf("create user: %w", ErrUserExists), "USR001"},
		{"user not found", ErrUserNotFound, "USR002"},
		{"role not found", fmt.Errorf("update role: %w", ErrRoleNotFound), "USR003"},
		{"invalid status", fmt.Errorf("%w: %q", ErrInvalidStatus, "banned"), "USR005"},
		{"no changes", ErrNoChanges, "USR006"},
		{"import busy", ErrTooManyImports, "IMP001"},
		{"encoding error", fmt.Errorf("%w: encoding error near byte 3", ErrInvalidInput), "IMP002"},
		{"empty file", fmt.Errorf("%w: empty file, no header line", ErrInvalidInput), "IMP003"},
		{"invalid csv", fmt.Errorf("%w: invalid csv: bare quote", ErrInvalidInput), "IMP004"},
		{"bare invalid input", ErrInvalidInput, "IMP005"},
		{"body too large", errors.New("http: request body too large"), "IMP006"},
		{"invalid email", ValidationErrors{{Field: "email", Message: "must be a valid email address"}}, "VAL001"},
		{"invalid document", ValidationErrors{{Field: "cpf_cnpj", Message: "invalid cpf_cnpj check digits"}}, "VAL002"},
		{"required field", ValidationErrors{{Field: "role", Message: "required field is empty"}}, "VAL004"},
		{"unique violation", errors.New("ERROR: duplicate key value violates unique constraint"), "DB001"},
		{"connection refused", errors.New("dial tcp: connection refused"), "DB003"},
		{"deadline", context.DeadlineExceeded, "ERR001"},
		{"cancelled", context.Canceled, "ERR002"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"case insensitive", errors.New("DEADLOCK detected"), "DB005"},
		{"unknown error returns default", errors.New("some random internal error"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err); got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrUserExists)
	want := "A user with this email already exists (Code: USR001). Use a different email or edit the existing user"
	if got != want {
		t.Errorf("FormatUserError = %q, want %q", got, want)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	if !IsUserFacing(ErrUserNotFound) {
		t.Error("ErrUserNotFound should be user facing")
	}
	if IsUserFacing(errors.New("segfault in module xyz")) {
		t.Error("unknown errors should not be user facing")
	}
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
}

func TestNewUserError(t *testing.T) {
	if NewUserError(nil) != nil {
		t.Error("NewUserError(nil) should be nil")
	}

	base := fmt.Errorf("create user: %w", ErrUserExists)
	ue := NewUserError(base)

	if !errors.Is(ue, ErrUserExists) {
		t.Error("UserError should unwrap to the technical error")
	}
	if ue.User.Code != "USR001" {
		t.Errorf("Code = %q, want USR001", ue.User.Code)
	}
	if strings.Contains(ue.Error(), "create user") {
		t.Errorf("Error() should show the user message, got %q", ue.Error())
	}
}

func TestErrorPatternsHaveCodes(t *testing.T) {
	for _, ep := range errorPatterns {
		if ep.pattern != strings.ToLower(ep.pattern) {
			t.Errorf("pattern %q must be lower case", ep.pattern)
		}
		if ep.msg.Code == "" || ep.msg.Message == "" || ep.msg.Action == "" {
			t.Errorf("pattern %q has incomplete message %+v", ep.pattern, ep.msg)
		}
	}
}
