package repository

import (
	"go-procurement-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalHistoryRepository is append-only; rows are never updated or
// deleted once written.
type ApprovalHistoryRepository interface {
	Create(entry *model.ApprovalHistory) error
	FindByRequest(requestID uuid.UUID) ([]model.ApprovalHistory, error)
}

type historyRepo struct {
	db *gorm.DB
}

func NewApprovalHistoryRepo(db *gorm.DB) ApprovalHistoryRepository {
	return &historyRepo{db}
}

func (r *historyRepo) Create(entry *model.ApprovalHistory) error {
	return r.db.Create(entry).Error
}

func (r *historyRepo) FindByRequest(requestID uuid.UUID) ([]model.ApprovalHistory, error) {
	var entries []model.ApprovalHistory
	err := r.db.Preload("Approver").Where("request_id = ?", requestID).Order("created_at ASC").Find(&entries).Error
	return entries, err
}
