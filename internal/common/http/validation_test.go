package http

import (
	"net/http"
	"strings"
	"testing"

	commonerrors "blogspace/internal/common/errors"
)

type sampleRequest struct {
	Username string `validate:"required,min=3,max=32"`
	Email    string `validate:"required,email"`
}

func TestValidateStruct_Valid(t *testing.T) {
	err := ValidateStruct(sampleRequest{Username: "alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStruct_Failures(t *testing.T) {
	testCases := []struct {
		name        string
		req         sampleRequest
		wantMessage string
	}{
		{
			name:        "missing username",
			req:         sampleRequest{Email: "alice@example.com"},
			wantMessage: "username is required",
		},
		{
			name:        "username too short",
			req:         sampleRequest{Username: "ab", Email: "alice@example.com"},
			wantMessage: "username must be at least 3 characters",
		},
		{
			name:        "username too long",
			req:         sampleRequest{Username: strings.Repeat("a", 33), Email: "alice@example.com"},
			wantMessage: "username must be at most 32 characters",
		},
		{
			name:        "bad email",
			req:         sampleRequest{Username: "alice", Email: "not-an-email"},
			wantMessage: "email must be a valid email address",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(tc.req)
			if err == nil {
				t.Fatal("expected an error")
			}

			domainErr, ok := commonerrors.AsDomainError(err)
			if !ok {
				t.Fatalf("expected a domain error, got %T", err)
			}
			if domainErr.Code() != "VALIDATION_FAILED" {
				t.Errorf("expected VALIDATION_FAILED, got %s", domainErr.Code())
			}
			if domainErr.HTTPStatus() != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", domainErr.HTTPStatus())
			}
			if domainErr.Message() != tc.wantMessage {
				t.Errorf("expected message %q, got %q", tc.wantMessage, domainErr.Message())
			}
		})
	}
}
