package service

import (
	"errors"
	"fmt"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"
	"go-procurement-ws/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotRequester = errors.New("only the requester may submit this request")

type RequestService interface {
	CreateRequest(req *CreateRequestInput, requesterID uuid.UUID) (*model.PurchaseRequest, error)
	SubmitRequest(requestID, actorID uuid.UUID) (*model.PurchaseRequest, error)
	GetRequest(id uuid.UUID) (*model.PurchaseRequest, error)
	GetAllRequests() ([]model.PurchaseRequest, error)
	GetRequestsByRequester(requesterID uuid.UUID) ([]model.PurchaseRequest, error)
	GetApprovalHistory(requestID uuid.UUID) ([]model.ApprovalHistory, error)
}

type CreateRequestInput struct {
	Title          string          `json:"title" validate:"required"`
	Description    string          `json:"description"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	SupplierID     *uuid.UUID      `json:"supplier_id"`
	BudgetCategory string          `json:"budget_category"`
}

type requestService struct {
	requestRepo  repository.RequestRepository
	supplierRepo repository.SupplierRepository
	historyRepo  repository.ApprovalHistoryRepository
	approvals    ApprovalService
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	supplierRepo repository.SupplierRepository,
	historyRepo repository.ApprovalHistoryRepository,
	approvals ApprovalService,
) RequestService {
	return &requestService{
		requestRepo:  requestRepo,
		supplierRepo: supplierRepo,
		historyRepo:  historyRepo,
		approvals:    approvals,
	}
}

func (s *requestService) CreateRequest(input *CreateRequestInput, requesterID uuid.UUID) (*model.PurchaseRequest, error) {
	if errs := validator.ValidateStruct(input); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}
	if input.TotalAmount.IsNegative() {
		return nil, errors.New("total_amount cannot be negative")
	}

	if input.SupplierID != nil {
		if _, err := s.supplierRepo.FindByID(*input.SupplierID); err != nil {
			return nil, errors.New("supplier not found")
		}
	}

	req := &model.PurchaseRequest{
		RequesterID:    requesterID,
		Status:         model.StatusInProgress,
		Title:          input.Title,
		Description:    input.Description,
		TotalAmount:    input.TotalAmount,
		SupplierID:     input.SupplierID,
		BudgetCategory: input.BudgetCategory,
	}
	req.CreatedBy = requesterID.String()
	req.UpdatedBy = requesterID.String()

	if err := s.requestRepo.Create(req); err != nil {
		return nil, err
	}
	return req, nil
}

// SubmitRequest moves a draft into the approval chain. Routing failures on
// the draft itself surface; downstream notification dispatch does not.
func (s *requestService) SubmitRequest(requestID, actorID uuid.UUID) (*model.PurchaseRequest, error) {
	req, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		return nil, ErrRequestNotFound
	}
	if req.RequesterID != actorID {
		return nil, ErrNotRequester
	}
	if req.Status != model.StatusInProgress {
		return nil, ErrInvalidState
	}
	return s.approvals.RouteRequest(requestID)
}

func (s *requestService) GetRequest(id uuid.UUID) (*model.PurchaseRequest, error) {
	return s.requestRepo.FindByID(id)
}

func (s *requestService) GetAllRequests() ([]model.PurchaseRequest, error) {
	return s.requestRepo.FindAll()
}

func (s *requestService) GetRequestsByRequester(requesterID uuid.UUID) ([]model.PurchaseRequest, error) {
	return s.requestRepo.FindByRequester(requesterID)
}

func (s *requestService) GetApprovalHistory(requestID uuid.UUID) ([]model.ApprovalHistory, error) {
	return s.historyRepo.FindByRequest(requestID)
}
