package repository

import (
	"errors"

	"go-procurement-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrStatusConflict is returned when a guarded transition finds the request
// no longer in the expected status (a concurrent action won the race).
var ErrStatusConflict = errors.New("request is not in the expected status")

type RequestRepository interface {
	Create(req *model.PurchaseRequest) error
	FindByID(id uuid.UUID) (*model.PurchaseRequest, error)
	FindAll() ([]model.PurchaseRequest, error)
	FindByRequester(requesterID uuid.UUID) ([]model.PurchaseRequest, error)
	CountByStatus(status model.RequestStatus) (int64, error)

	// SetRouting moves a request out of IN_PROGRESS after routing computed
	// the next approver (or none). Guarded by a row lock.
	SetRouting(id uuid.UUID, status model.RequestStatus, currentApproverID *uuid.UUID) error

	// Transition atomically moves a request from one status to another and
	// records the acting approver. The from-status is rechecked under a row
	// lock; ErrStatusConflict is returned if it no longer holds.
	Transition(id uuid.UUID, from, to model.RequestStatus, approverID uuid.UUID) error
}

type requestRepo struct {
	db *gorm.DB
}

func NewRequestRepo(db *gorm.DB) RequestRepository {
	return &requestRepo{db}
}

func (r *requestRepo) Create(req *model.PurchaseRequest) error {
	return r.db.Create(req).Error
}

func (r *requestRepo) FindByID(id uuid.UUID) (*model.PurchaseRequest, error) {
	var req model.PurchaseRequest
	err := r.db.Preload("Requester").Preload("Requester.Department").Preload("Supplier").Preload("CurrentApprover").
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepo) FindAll() ([]model.PurchaseRequest, error) {
	var reqs []model.PurchaseRequest
	err := r.db.Preload("Requester").Preload("Supplier").Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *requestRepo) FindByRequester(requesterID uuid.UUID) ([]model.PurchaseRequest, error) {
	var reqs []model.PurchaseRequest
	err := r.db.Preload("Supplier").Where("requester_id = ?", requesterID).Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *requestRepo) CountByStatus(status model.RequestStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.PurchaseRequest{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *requestRepo) SetRouting(id uuid.UUID, status model.RequestStatus, currentApproverID *uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing model.PurchaseRequest
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&existing, "id = ?", id).Error; err != nil {
			return err
		}
		if existing.Status.Terminal() {
			return ErrStatusConflict
		}
		return tx.Model(&existing).Updates(map[string]interface{}{
			"status":              status,
			"current_approver_id": currentApproverID,
		}).Error
	})
}

func (r *requestRepo) Transition(id uuid.UUID, from, to model.RequestStatus, approverID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing model.PurchaseRequest
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&existing, "id = ?", id).Error; err != nil {
			return err
		}
		if existing.Status != from {
			return ErrStatusConflict
		}
		return tx.Model(&existing).Updates(map[string]interface{}{
			"status":              to,
			"approver_id":         approverID,
			"current_approver_id": nil,
		}).Error
	})
}
