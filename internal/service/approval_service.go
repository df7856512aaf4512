package service

import (
	"errors"
	"fmt"
	"log"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"
	"go-procurement-ws/pkg/mailer"

	"github.com/google/uuid"
)

var (
	ErrRequestNotFound     = errors.New("request not found")
	ErrForbidden           = errors.New("not authorized to act on this request")
	ErrInvalidState        = errors.New("request is not awaiting approval")
	ErrSupplierNotApproved = errors.New("supplier is not approved for purchasing")
)

// ApprovalService drives a purchase request from pending to approved or
// rejected, enforcing supplier-eligibility gating and writing the audit
// trail before mutating state.
type ApprovalService interface {
	// RouteRequest computes the next approver for a request leaving
	// IN_PROGRESS and transitions it to PENDING (or straight to APPROVED on
	// the auto-approval path). Notification dispatch is handed off to the
	// task queue; the durable transition alone decides success.
	RouteRequest(requestID uuid.UUID) (*model.PurchaseRequest, error)

	// ProcessApproval applies an actor's approve/reject decision to a
	// PENDING request. The history row is written before the status
	// mutation; an approval blocked on supplier eligibility leaves that row
	// standing while the request stays PENDING.
	ProcessApproval(requestID, actorID uuid.UUID, action model.ApprovalAction, comments string) (*model.PurchaseRequest, error)
}

type approvalService struct {
	requestRepo  repository.RequestRepository
	supplierRepo repository.SupplierRepository
	historyRepo  repository.ApprovalHistoryRepository
	router       ApprovalRouter
	guard        AuthorizationGuard
	notifier     NotificationService
	queue        TaskQueue
	mail         mailer.Mailer
}

func NewApprovalService(
	requestRepo repository.RequestRepository,
	supplierRepo repository.SupplierRepository,
	historyRepo repository.ApprovalHistoryRepository,
	router ApprovalRouter,
	guard AuthorizationGuard,
	notifier NotificationService,
	queue TaskQueue,
	mail mailer.Mailer,
) ApprovalService {
	return &approvalService{
		requestRepo:  requestRepo,
		supplierRepo: supplierRepo,
		historyRepo:  historyRepo,
		router:       router,
		guard:        guard,
		notifier:     notifier,
		queue:        queue,
		mail:         mail,
	}
}

func (s *approvalService) RouteRequest(requestID uuid.UUID) (*model.PurchaseRequest, error) {
	req, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		return nil, ErrRequestNotFound
	}
	requester := req.Requester

	approver, err := s.router.NextApprover(req.RequesterID)
	if err != nil {
		return nil, err
	}

	switch {
	case approver != nil:
		// Chain has a next approver: park the request on them.
		if err := s.requestRepo.SetRouting(req.ID, model.StatusPending, &approver.ID); err != nil {
			return nil, err
		}
		req.Status = model.StatusPending
		req.CurrentApproverID = &approver.ID

		target := *approver
		s.queue.Enqueue("notify-approver", func() {
			s.notifyApprover(req, requester, &target)
		})
		s.queue.Enqueue("notify-stakeholders", func() {
			s.notifier.NotifyStakeholders(req, requester, Event{
				Type:     model.NotifRequestSubmitted,
				Title:    "New purchase request",
				Message:  fmt.Sprintf("%s submitted %q for %s", requester.FullName, req.Title, req.TotalAmount.StringFixed(2)),
				Metadata: requestMetadata(req),
				Email:    true,
			}, map[uuid.UUID]bool{target.ID: true})
		})

	case s.supplierBlocked(req):
		// Nobody can act and the supplier is ineligible: hold PENDING with
		// no approver assigned until the supplier clears review.
		if err := s.requestRepo.SetRouting(req.ID, model.StatusPending, nil); err != nil {
			return nil, err
		}
		req.Status = model.StatusPending
		req.CurrentApproverID = nil

		s.queue.Enqueue("notify-stakeholders", func() {
			s.notifier.NotifyStakeholders(req, requester, Event{
				Type:     model.NotifSupplierRequest,
				Title:    "Purchase request blocked on supplier review",
				Message:  fmt.Sprintf("%q is waiting for supplier approval", req.Title),
				Metadata: requestMetadata(req),
				Email:    false,
			}, nil)
		})

	default:
		// Auto-approval path: a chain-terminal requester with an eligible
		// (or absent) supplier. No history row is written here.
		if err := s.requestRepo.SetRouting(req.ID, model.StatusApproved, nil); err != nil {
			return nil, err
		}
		req.Status = model.StatusApproved
		req.CurrentApproverID = nil

		if req.Supplier != nil && req.Supplier.Email != "" {
			supplier := *req.Supplier
			s.queue.Enqueue("notify-supplier", func() {
				s.sendPurchaseNotification(req, &supplier)
			})
		}
		s.queue.Enqueue("notify-stakeholders", func() {
			s.notifier.NotifyStakeholders(req, requester, Event{
				Type:     model.NotifRequestApproved,
				Title:    "Purchase request approved",
				Message:  fmt.Sprintf("%q was approved automatically", req.Title),
				Metadata: requestMetadata(req),
				Email:    true,
			}, nil)
		})
	}

	return req, nil
}

func (s *approvalService) ProcessApproval(requestID, actorID uuid.UUID, action model.ApprovalAction, comments string) (*model.PurchaseRequest, error) {
	// 1. Authorization gate; no state or history change on failure.
	if !s.guard.CanApprove(actorID, requestID) {
		return nil, ErrForbidden
	}

	req, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		return nil, ErrRequestNotFound
	}

	// 2. Only PENDING requests accept decisions.
	if req.Status != model.StatusPending {
		return nil, ErrInvalidState
	}

	// 3. Audit trail first: the history row must be durable before the
	// status mutation is considered complete.
	entry := &model.ApprovalHistory{
		RequestID:  req.ID,
		ApproverID: actorID,
		Action:     action,
		Comments:   comments,
	}
	if err := s.historyRepo.Create(entry); err != nil {
		return nil, fmt.Errorf("append approval history: %w", err)
	}

	// 4. Supplier-eligibility gate on approval only. The history row just
	// written stands as a record of the attempted approval.
	if action == model.ActionApprove && s.supplierBlocked(req) {
		return nil, ErrSupplierNotApproved
	}

	to := model.StatusRejected
	notifType := model.NotifRequestRejected
	verb := "rejected"
	if action == model.ActionApprove {
		to = model.StatusApproved
		notifType = model.NotifRequestApproved
		verb = "approved"
	}

	// 5. Locked transition with a PENDING recheck; a concurrent decision
	// that won the race surfaces as InvalidState.
	if err := s.requestRepo.Transition(req.ID, model.StatusPending, to, actorID); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrInvalidState
		}
		return nil, err
	}
	req.Status = to
	req.ApproverID = &actorID
	req.CurrentApproverID = nil

	requesterID := req.RequesterID
	title := fmt.Sprintf("Purchase request %s", verb)
	message := fmt.Sprintf("Your request %q was %s", req.Title, verb)
	if comments != "" {
		message = fmt.Sprintf("%s: %s", message, comments)
	}
	meta := requestMetadata(req)
	meta["action"] = string(action)
	s.queue.Enqueue("notify-requester", func() {
		if err := s.notifier.Notify(requesterID, Event{
			Type:     notifType,
			Title:    title,
			Message:  message,
			Metadata: meta,
			Email:    true,
		}); err != nil {
			log.Printf("approval: notify requester %s: %v", requesterID, err)
		}
	})

	return req, nil
}

// supplierBlocked reports whether the request carries a supplier outside
// the approved set.
func (s *approvalService) supplierBlocked(req *model.PurchaseRequest) bool {
	if req.SupplierID == nil {
		return false
	}
	supplier := req.Supplier
	if supplier == nil {
		loaded, err := s.supplierRepo.FindByID(*req.SupplierID)
		if err != nil {
			// Unresolvable supplier blocks completion.
			return true
		}
		supplier = loaded
	}
	return !supplier.Status.Approved()
}

func (s *approvalService) notifyApprover(req *model.PurchaseRequest, requester *model.User, approver *model.User) {
	err := s.notifier.Notify(approver.ID, Event{
		Type:     model.NotifApprovalRequired,
		Title:    "Approval required",
		Message:  fmt.Sprintf("%s submitted %q for %s and needs your approval", requester.FullName, req.Title, req.TotalAmount.StringFixed(2)),
		Metadata: requestMetadata(req),
		Email:    true,
		EmailTo:  approver.Email,
	})
	if err != nil {
		log.Printf("approval: notify approver %s: %v", approver.ID, err)
	}
}

func (s *approvalService) sendPurchaseNotification(req *model.PurchaseRequest, supplier *model.Supplier) {
	subject := fmt.Sprintf("Purchase order: %s", req.Title)
	text := fmt.Sprintf("A purchase of %s has been approved for %q.", req.TotalAmount.StringFixed(2), req.Title)
	html := fmt.Sprintf("<h2>%s</h2><p>%s</p>", subject, text)
	if result := s.mail.Send(supplier.Email, subject, html, text); !result.Sent {
		log.Printf("approval: supplier notification to %s not sent: %s", supplier.Email, result.Error)
	}
}
