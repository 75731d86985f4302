package models

import (
	"errors"
	"testing"
	"time"
)

func pendingRequest() *ReplacementRequest {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &ReplacementRequest{
		ID:              "req-1",
		BookingID:       "b1",
		OriginalAgentID: "orig",
		Status:          ReplacementPending,
		RequestedAt:     now,
		UpdatedAt:       now,
	}
}

func TestReplacementLifecycle(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	req := pendingRequest()
	if err := req.Propose("agent-a", now); err != nil {
		t.Fatalf("Propose failed: %v", err)
	}
	if req.Status != ReplacementPending {
		t.Fatalf("proposing should keep the request pending, got %s", req.Status)
	}
	if req.ProposedAt == nil || !req.ProposedAt.Equal(now) {
		t.Fatal("ProposedAt not recorded")
	}

	if err := req.Accept(now.Add(time.Minute)); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if req.Status != ReplacementAccepted {
		t.Fatalf("expected accepted, got %s", req.Status)
	}

	if err := req.Cancel(now.Add(2 * time.Minute)); err != nil {
		t.Fatalf("Cancel after accept failed: %v", err)
	}
	if req.Status != ReplacementCancelled {
		t.Fatalf("expected cancelled, got %s", req.Status)
	}
}

func TestAcceptRequiresProposedAgent(t *testing.T) {
	req := pendingRequest()

	err := req.Accept(time.Now())
	if !errors.Is(err, ErrNoReplacementAgent) {
		t.Fatalf("expected ErrNoReplacementAgent, got %v", err)
	}
	if req.Status != ReplacementPending {
		t.Fatalf("failed accept must not change status, got %s", req.Status)
	}
}

func TestReproposeReplacesCandidate(t *testing.T) {
	now := time.Now()
	req := pendingRequest()

	if err := req.Propose("agent-a", now); err != nil {
		t.Fatalf("first propose failed: %v", err)
	}
	if err := req.Propose("agent-b", now.Add(time.Minute)); err != nil {
		t.Fatalf("re-propose failed: %v", err)
	}
	if req.ReplacementAgentID != "agent-b" {
		t.Fatalf("expected agent-b, got %s", req.ReplacementAgentID)
	}
}

func TestAcceptedCanOnlyCancel(t *testing.T) {
	now := time.Now()
	req := pendingRequest()
	if err := req.Propose("agent-a", now); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if err := req.Accept(now); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	var transitionErr *InvalidTransitionError
	if err := req.Accept(now); !errors.As(err, &transitionErr) {
		t.Fatalf("double accept should fail with InvalidTransitionError, got %v", err)
	}
	if err := req.Decline("too late", now); !errors.As(err, &transitionErr) {
		t.Fatalf("declining an accepted request should fail, got %v", err)
	}
	if err := req.Propose("agent-b", now); !errors.As(err, &transitionErr) {
		t.Fatalf("proposing on an accepted request should fail, got %v", err)
	}
}

func TestTerminalStatesRejectTransitions(t *testing.T) {
	now := time.Now()

	declined := pendingRequest()
	if err := declined.Decline("busy that day", now); err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if declined.DeclineReason != "busy that day" {
		t.Fatalf("decline reason not recorded, got %q", declined.DeclineReason)
	}

	cancelled := pendingRequest()
	if err := cancelled.Cancel(now); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	for _, req := range []*ReplacementRequest{declined, cancelled} {
		var transitionErr *InvalidTransitionError
		if err := req.Accept(now); !errors.As(err, &transitionErr) {
			t.Fatalf("%s: accept should fail, got %v", req.Status, err)
		}
		if err := req.Decline("again", now); !errors.As(err, &transitionErr) {
			t.Fatalf("%s: decline should fail, got %v", req.Status, err)
		}
		if err := req.Cancel(now); !errors.As(err, &transitionErr) {
			t.Fatalf("%s: cancel should fail, got %v", req.Status, err)
		}
		if err := req.Propose("agent-b", now); !errors.As(err, &transitionErr) {
			t.Fatalf("%s: propose should fail, got %v", req.Status, err)
		}
	}
}

func TestActiveStatuses(t *testing.T) {
	cases := []struct {
		status ReplacementStatus
		active bool
	}{
		{ReplacementPending, true},
		{ReplacementAccepted, true},
		{ReplacementDeclined, false},
		{ReplacementCancelled, false},
	}
	for _, tc := range cases {
		if got := tc.status.Active(); got != tc.active {
			t.Errorf("%s.Active() = %v, want %v", tc.status, got, tc.active)
		}
	}
}
