package apierr

import (
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/yungbote/salesagent-backend/internal/pkg/errors"
)

func TestFrom(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid", fmt.Errorf("missing user_id: %w", pkgerrors.ErrInvalidArgument), http.StatusBadRequest, "invalid_argument"},
		{"not found", fmt.Errorf("session: %w", pkgerrors.ErrNotFound), http.StatusNotFound, "not_found"},
		{"forbidden", fmt.Errorf("session s1: %w", pkgerrors.ErrForbidden), http.StatusForbidden, "forbidden"},
		{"unavailable", pkgerrors.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{"passthrough", New(http.StatusConflict, "conflict", nil), http.StatusConflict, "conflict"},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := From(tc.err)
			if got.Status != tc.status || got.Code != tc.code {
				t.Fatalf("From: want=%d/%s got=%d/%s", tc.status, tc.code, got.Status, got.Code)
			}
		})
	}
	if From(nil) != nil {
		t.Fatalf("From(nil): want nil")
	}
}
