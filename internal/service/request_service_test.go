package service

import (
	"errors"
	"testing"

	"go-procurement-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newRequestService(env *approvalEnv) RequestService {
	return NewRequestService(env.requests, env.suppliers, env.history, env.svc)
}

func TestCreateRequestStartsInProgress(t *testing.T) {
	env := newApprovalEnv()
	alice, _, _, _, _ := env.seedHierarchy()
	svc := newRequestService(env)

	req, err := svc.CreateRequest(&CreateRequestInput{
		Title:       "Standing desks",
		TotalAmount: decimal.NewFromInt(1200),
	}, alice.ID)
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if req.Status != model.StatusInProgress {
		t.Fatalf("status = %s, want IN_PROGRESS", req.Status)
	}
	if req.RequesterID != alice.ID {
		t.Fatalf("requester = %s, want %s", req.RequesterID, alice.ID)
	}
}

func TestCreateRequestUnknownSupplier(t *testing.T) {
	env := newApprovalEnv()
	alice, _, _, _, _ := env.seedHierarchy()
	svc := newRequestService(env)

	ghost := uuid.New()
	_, err := svc.CreateRequest(&CreateRequestInput{
		Title:       "Standing desks",
		TotalAmount: decimal.NewFromInt(1200),
		SupplierID:  &ghost,
	}, alice.ID)
	if err == nil {
		t.Fatal("expected error for unknown supplier")
	}
}

func TestSubmitRequestOnlyByRequester(t *testing.T) {
	env := newApprovalEnv()
	alice, bob, _, _, _ := env.seedHierarchy()
	svc := newRequestService(env)
	req := env.newRequest(alice, nil)

	_, err := svc.SubmitRequest(req.ID, bob.ID)
	if !errors.Is(err, ErrNotRequester) {
		t.Fatalf("expected ErrNotRequester, got %v", err)
	}
	stored, _ := env.requests.FindByID(req.ID)
	if stored.Status != model.StatusInProgress {
		t.Fatalf("status = %s, draft should be untouched", stored.Status)
	}
}

func TestSubmitRequestRoutesDraft(t *testing.T) {
	env := newApprovalEnv()
	alice, bob, _, _, _ := env.seedHierarchy()
	svc := newRequestService(env)
	req := env.newRequest(alice, nil)

	routed, err := svc.SubmitRequest(req.ID, alice.ID)
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}
	if routed.Status != model.StatusPending {
		t.Fatalf("status = %s, want PENDING", routed.Status)
	}
	if routed.CurrentApproverID == nil || *routed.CurrentApproverID != bob.ID {
		t.Fatalf("current approver = %v, want %s", routed.CurrentApproverID, bob.ID)
	}
}

func TestSubmitRequestTwice(t *testing.T) {
	env := newApprovalEnv()
	alice, _, _, _, _ := env.seedHierarchy()
	svc := newRequestService(env)
	req := env.newRequest(alice, nil)

	if _, err := svc.SubmitRequest(req.ID, alice.ID); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := svc.SubmitRequest(req.ID, alice.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on resubmit, got %v", err)
	}
}
