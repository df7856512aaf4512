package service

import (
	"errors"
	"log"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrRequestNotApproved = errors.New("orders can only be placed against approved requests")
	ErrInvalidOrderAmount = errors.New("order amount must be positive")
)

type OrderService interface {
	CreateOrder(input *CreateOrderInput, creatorID uuid.UUID) (*model.PurchaseOrder, error)
	UpdateOrderStatus(orderID uuid.UUID, status model.OrderStatus) (*model.PurchaseOrder, error)
	GetAllOrders() ([]model.PurchaseOrder, error)
}

type CreateOrderInput struct {
	RequestID uuid.UUID       `json:"request_id" validate:"uuid_required"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note"`
}

type orderService struct {
	orderRepo   repository.OrderRepository
	requestRepo repository.RequestRepository
	userRepo    repository.UserRepository
	monitor     BudgetMonitor
	queue       TaskQueue
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	requestRepo repository.RequestRepository,
	userRepo repository.UserRepository,
	monitor BudgetMonitor,
	queue TaskQueue,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		requestRepo: requestRepo,
		userRepo:    userRepo,
		monitor:     monitor,
		queue:       queue,
	}
}

func (s *orderService) CreateOrder(input *CreateOrderInput, creatorID uuid.UUID) (*model.PurchaseOrder, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidOrderAmount
	}

	req, err := s.requestRepo.FindByID(input.RequestID)
	if err != nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != model.StatusApproved {
		return nil, ErrRequestNotApproved
	}

	order := &model.PurchaseOrder{
		RequestID: input.RequestID,
		Amount:    input.Amount,
		Status:    model.OrderOpen,
		Note:      input.Note,
	}
	order.CreatedBy = creatorID.String()
	order.UpdatedBy = creatorID.String()

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	s.enqueueThresholdCheck(req)
	return order, nil
}

func (s *orderService) UpdateOrderStatus(orderID uuid.UUID, status model.OrderStatus) (*model.PurchaseOrder, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		return nil, err
	}
	order.Status = status

	if order.Request != nil {
		s.enqueueThresholdCheck(order.Request)
	}
	return order, nil
}

func (s *orderService) GetAllOrders() ([]model.PurchaseOrder, error) {
	return s.orderRepo.FindAll()
}

// enqueueThresholdCheck re-evaluates the owning department's budget as an
// async side effect; its failures are logged, never surfaced to the caller.
func (s *orderService) enqueueThresholdCheck(req *model.PurchaseRequest) {
	requester := req.Requester
	if requester == nil {
		loaded, err := s.userRepo.FindByID(req.RequesterID)
		if err != nil {
			log.Printf("order: resolve requester %s: %v", req.RequesterID, err)
			return
		}
		requester = loaded
	}
	if requester.DepartmentID == nil {
		return
	}
	departmentID := *requester.DepartmentID

	s.queue.Enqueue("budget-threshold-check", func() {
		if err := s.monitor.CheckDepartmentThreshold(departmentID); err != nil {
			log.Printf("order: threshold check for department %s: %v", departmentID, err)
		}
	})
}
