package httpx

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMap_Resolve(t *testing.T) {
	errMissing := errors.New("thing not found")
	errTaken := errors.New("name already exists")
	m := ErrorMap{
		{Target: errMissing, Build: ErrNotFound},
		{Target: errTaken, Build: ErrAlreadyExists},
	}

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"sentinel", errMissing, CodeNotFound, "thing not found"},
		{"wrapped sentinel", fmt.Errorf("lookup: %w", errTaken), CodeAlreadyExists, "name already exists"},
		{"app error passes through", ErrProtected("nope"), CodeProtected, "nope"},
		{"unknown", errors.New("boom"), CodeInternalError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Resolve(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMsg)
			}
		})
	}
}
