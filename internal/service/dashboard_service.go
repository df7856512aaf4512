package service

import (
	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"

	"github.com/shopspring/decimal"
)

// RequestStats is the request-pipeline overview.
type RequestStats struct {
	InProgress int64 `json:"in_progress"`
	Pending    int64 `json:"pending"`
	Approved   int64 `json:"approved"`
	Rejected   int64 `json:"rejected"`
}

// DepartmentSpend reports a department's committed spend against budget.
type DepartmentSpend struct {
	DepartmentID   string          `json:"department_id"`
	DepartmentName string          `json:"department_name"`
	Budget         decimal.Decimal `json:"budget"`
	Spend          decimal.Decimal `json:"spend"`
	Percentage     decimal.Decimal `json:"percentage"`
}

type DashboardService interface {
	GetRequestStats() (*RequestStats, error)
	GetDepartmentSpend() ([]DepartmentSpend, error)
}

type dashboardService struct {
	requestRepo    repository.RequestRepository
	departmentRepo repository.DepartmentRepository
	orderRepo      repository.OrderRepository
}

func NewDashboardService(
	requestRepo repository.RequestRepository,
	departmentRepo repository.DepartmentRepository,
	orderRepo repository.OrderRepository,
) DashboardService {
	return &dashboardService{
		requestRepo:    requestRepo,
		departmentRepo: departmentRepo,
		orderRepo:      orderRepo,
	}
}

func (s *dashboardService) GetRequestStats() (*RequestStats, error) {
	var stats RequestStats
	counts := []struct {
		status model.RequestStatus
		dest   *int64
	}{
		{model.StatusInProgress, &stats.InProgress},
		{model.StatusPending, &stats.Pending},
		{model.StatusApproved, &stats.Approved},
		{model.StatusRejected, &stats.Rejected},
	}
	for _, c := range counts {
		n, err := s.requestRepo.CountByStatus(c.status)
		if err != nil {
			return nil, err
		}
		*c.dest = n
	}
	return &stats, nil
}

func (s *dashboardService) GetDepartmentSpend() ([]DepartmentSpend, error) {
	depts, err := s.departmentRepo.FindAll()
	if err != nil {
		return nil, err
	}

	results := make([]DepartmentSpend, 0, len(depts))
	for _, dept := range depts {
		byDepartment, err := s.orderRepo.SumByRequesterDepartment(dept.ID)
		if err != nil {
			return nil, err
		}
		byCategory, err := s.orderRepo.SumByBudgetCategory(dept.Name)
		if err != nil {
			return nil, err
		}
		spend := byDepartment
		if byCategory.GreaterThan(spend) {
			spend = byCategory
		}

		percentage := decimal.Zero
		if !dept.Budget.IsZero() {
			percentage = spend.Div(dept.Budget).Mul(decimal.NewFromInt(100)).Round(1)
		}

		results = append(results, DepartmentSpend{
			DepartmentID:   dept.ID.String(),
			DepartmentName: dept.Name,
			Budget:         dept.Budget,
			Spend:          spend,
			Percentage:     percentage,
		})
	}
	return results, nil
}
