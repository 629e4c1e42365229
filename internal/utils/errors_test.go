package utils

import (
	"errors"
	"fmt"
	"testing"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeAuthInvalid, ExitAuthInvalid},
		{ErrCodeNotFound, ExitNotFound},
		{ErrCodeServerError, ExitServerError},
		{ErrCodeQueueError, ExitQueueError},
		{ErrCodeLocked, ExitLocked},
		{ErrCodeUnknown, ExitUnknown},
		{"SOMETHING_ELSE", ExitUnknown},
	}
	for _, tt := range tests {
		if got := GetExitCode(tt.code); got != tt.want {
			t.Errorf("GetExitCode(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestCLIErrorBuilder(t *testing.T) {
	cliErr := NewCLIError(ErrCodeNotFound, "library not found").
		WithHTTPStatus(404).
		WithRetryable(false).
		WithContext("libraryId", "abc").
		Build()

	if cliErr.Code != ErrCodeNotFound || cliErr.HTTPStatus != 404 {
		t.Errorf("Build() = %+v", cliErr)
	}
	if cliErr.Context["libraryId"] != "abc" {
		t.Errorf("Context = %v", cliErr.Context)
	}
}

func TestExitCodeFor(t *testing.T) {
	cause := errors.New("exit status 2")
	appErr := WrapAppError(NewCLIError(ErrCodeQueueError, "qstat failed").Build(), cause)
	wrapped := fmt.Errorf("wait for queue: %w", appErr)

	if got := ExitCodeFor(wrapped); got != ExitQueueError {
		t.Errorf("ExitCodeFor() = %d, want %d", got, ExitQueueError)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("cause should stay reachable through errors.Is")
	}
	if got := ExitCodeFor(nil); got != ExitSuccess {
		t.Errorf("ExitCodeFor(nil) = %d", got)
	}
	if got := ExitCodeFor(errors.New("boom")); got != ExitUnknown {
		t.Errorf("ExitCodeFor(plain) = %d", got)
	}
}

func TestToCLIError(t *testing.T) {
	cliErr := ToCLIError(NewAppError(NewCLIError(ErrCodeInvalidPath, "missing root").Build()))
	if cliErr.ExitCode != ExitInvalidPath {
		t.Errorf("ExitCode = %d, want %d", cliErr.ExitCode, ExitInvalidPath)
	}

	plain := ToCLIError(errors.New("boom"))
	if plain.Code != ErrCodeUnknown || plain.Message != "boom" {
		t.Errorf("ToCLIError(plain) = %+v", plain)
	}
}
