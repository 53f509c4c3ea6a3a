package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/JonMunkholm/feedmap/internal/mapping"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"unparsable document", fmt.Errorf("%w: bad char", mapping.ErrUnparsableDocument), "DOC001"},
		{"wrapped fetch status", fmt.Errorf("fetch sample: %w", fmt.Errorf("%w: 503", ErrFetchStatus)), "SRC002"},
		{"body too large", ErrBodyTooLarge, "SRC003"},
		{"invalid source", fmt.Errorf("%w: url has no host", ErrInvalidSource), "SRC001"},
		{"unknown host", errors.New("fetch sample: fetch https://x.invalid: dial tcp: lookup x.invalid: no such host"), "SRC004"},
		{"transport failure", errors.New("fetch sample: fetch https://x: EOF"), "SRC004"},
		{"busy", ErrTooManyFetches, "SRC005"},
		{"integration not found", ErrIntegrationNotFound, "INT001"},
		{"duplicate integration", fmt.Errorf("create integration: %w", ErrDuplicateIntegration), "INT002"},
		{"invalid id", fmt.Errorf("%w: bad uuid", ErrInvalidID), "INT003"},
		{"entity not found", ErrEntityNotFound, "INT004"},
		{"validation", invalidf("integration name is required"), "MAP001"},
		{"duplicate key", errors.New("ERROR: duplicate key value violates unique constraint"), "DB001"},
		{"db connection refused", errors.New("list integrations: dial tcp: connection refused"), "DB004"},
		{"cancelled", errors.New("context canceled"), "REQ001"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"oversized request", errors.New("http: request body too large"), "REQ002"},
		{"unknown", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Error("MapError() returned empty message")
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrIntegrationNotFound)
	if !strings.Contains(got, "(Code: INT001)") {
		t.Errorf("FormatUserError() = %q, want code INT001", got)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if !IsUserFacing(ErrBodyTooLarge) {
		t.Error("ErrBodyTooLarge should be user facing")
	}
	if IsUserFacing(errors.New("weird internal failure")) {
		t.Error("unmatched error should not be user facing")
	}
}

func TestNewUserError(t *testing.T) {
	if NewUserError(nil) != nil {
		t.Fatal("NewUserError(nil) should be nil")
	}

	tech := fmt.Errorf("get: %w", ErrIntegrationNotFound)
	ue := NewUserError(tech)
	if ue.Error() != "Integration not found" {
		t.Errorf("Error() = %q", ue.Error())
	}
	if !errors.Is(ue, ErrIntegrationNotFound) {
		t.Error("UserError should unwrap to the technical error")
	}
}
