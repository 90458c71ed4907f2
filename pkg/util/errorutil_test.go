package util

import (
	"errors"
	"net/http"
	"testing"
)

var errSentinel = errors.New("email already registered")

func TestWrap_PreservesSentinel(t *testing.T) {
	err := Wrap(CodeConflict, http.StatusConflict, errSentinel)

	if !errors.Is(err, errSentinel) {
		t.Fatalf("errors.Is(%v, sentinel) = false, want true", err)
	}
	de := ToDomainError(err)
	if de.HTTPStatus != http.StatusConflict {
		t.Errorf("HTTPStatus = %d, want %d", de.HTTPStatus, http.StatusConflict)
	}
	if de.Message != errSentinel.Error() {
		t.Errorf("Message = %q, want %q", de.Message, errSentinel.Error())
	}
	if de.Error() != errSentinel.Error() {
		t.Errorf("Error() = %q, want message without duplicated cause", de.Error())
	}
}

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{name: "validation", err: NewValidationError("bad input", nil), wantCode: CodeValidation, wantStatus: http.StatusBadRequest},
		{name: "unauthorized", err: NewUnauthorized("no"), wantCode: CodeUnauthorized, wantStatus: http.StatusUnauthorized},
		{name: "upstream", err: NewUpstreamError("platform unavailable", errors.New("dial tcp")), wantCode: CodeUpstream, wantStatus: http.StatusBadGateway},
		{name: "unavailable", err: NewServiceUnavailable("not configured"), wantCode: CodeServiceUnavailable, wantStatus: http.StatusServiceUnavailable},
		{name: "plain error is internal", err: errors.New("boom"), wantCode: CodeInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			if de.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", de.Code, tt.wantCode)
			}
			if de.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", de.HTTPStatus, tt.wantStatus)
			}
		})
	}
}

func TestInternalError_HidesCause(t *testing.T) {
	de := ToDomainError(errors.New("pq: connection refused"))
	if de.Message != "internal server error" {
		t.Errorf("Message = %q, want generic message", de.Message)
	}
	if de.Err == nil {
		t.Error("Err = nil, want cause kept for logging")
	}
}

func TestToDomainError_Nil(t *testing.T) {
	if got := ToDomainError(nil); got != nil {
		t.Errorf("ToDomainError(nil) = %v, want nil", got)
	}
}
