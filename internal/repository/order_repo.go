package repository

import (
	"go-procurement-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.PurchaseOrder) error
	FindByID(id uuid.UUID) (*model.PurchaseOrder, error)
	FindAll() ([]model.PurchaseOrder, error)
	UpdateStatus(id uuid.UUID, status model.OrderStatus) error

	// SumByRequesterDepartment totals non-cancelled orders whose request's
	// requester belongs to the department.
	SumByRequesterDepartment(departmentID uuid.UUID) (decimal.Decimal, error)

	// SumByBudgetCategory totals non-cancelled orders whose request carries
	// the legacy free-text budget category.
	SumByBudgetCategory(category string) (decimal.Decimal, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(order *model.PurchaseOrder) error {
	return r.db.Create(order).Error
}

func (r *orderRepo) FindByID(id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	err := r.db.Preload("Request").Preload("Request.Requester").First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindAll() ([]model.PurchaseOrder, error) {
	var orders []model.PurchaseOrder
	err := r.db.Preload("Request").Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) UpdateStatus(id uuid.UUID, status model.OrderStatus) error {
	return r.db.Model(&model.PurchaseOrder{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepo) SumByRequesterDepartment(departmentID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.Model(&model.PurchaseOrder{}).
		Joins("JOIN purchase_requests ON purchase_requests.id = purchase_orders.request_id").
		Joins("JOIN users ON users.id = purchase_requests.requester_id").
		Where("purchase_orders.status <> ?", model.OrderCancelled).
		Where("users.department_id = ?", departmentID).
		Select("SUM(purchase_orders.amount)").
		Scan(&total).Error
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

func (r *orderRepo) SumByBudgetCategory(category string) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.Model(&model.PurchaseOrder{}).
		Joins("JOIN purchase_requests ON purchase_requests.id = purchase_orders.request_id").
		Where("purchase_orders.status <> ?", model.OrderCancelled).
		Where("purchase_requests.budget_category = ?", category).
		Select("SUM(purchase_orders.amount)").
		Scan(&total).Error
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}
