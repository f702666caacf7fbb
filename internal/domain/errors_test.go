package domain

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestUpstreamError_Status(t *testing.T) {
	err := NewUpstreamError(503, nil)
	if !errors.Is(err, ErrUpstream) {
		t.Fatal("expected errors.Is(err, ErrUpstream)")
	}
	if !strings.Contains(err.Error(), "status 503") {
		t.Errorf("error = %q", err)
	}

	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Status != 503 {
		t.Errorf("errors.As failed or wrong status: %+v", ue)
	}
}

func TestUpstreamError_Cause(t *testing.T) {
	err := NewUpstreamError(0, context.DeadlineExceeded)
	if !errors.Is(err, ErrUpstream) {
		t.Error("expected ErrUpstream")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected cause to be preserved")
	}
	if !strings.Contains(err.Error(), "deadline") {
		t.Errorf("error = %q", err)
	}
}
