package repository

import (
	"errors"
	"time"

	"go-procurement-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BudgetAlertRepository tracks when each (department, tier) last fired so
// the monitor can suppress duplicates without scanning notification history.
type BudgetAlertRepository interface {
	LastAlertedAt(departmentID uuid.UUID, tier model.ThresholdTier) (*time.Time, error)
	Touch(departmentID uuid.UUID, tier model.ThresholdTier, at time.Time) error
}

type budgetAlertRepo struct {
	db *gorm.DB
}

func NewBudgetAlertRepo(db *gorm.DB) BudgetAlertRepository {
	return &budgetAlertRepo{db}
}

func (r *budgetAlertRepo) LastAlertedAt(departmentID uuid.UUID, tier model.ThresholdTier) (*time.Time, error) {
	var alert model.BudgetAlert
	err := r.db.Where("department_id = ? AND tier = ?", departmentID, tier).First(&alert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &alert.LastAlertedAt, nil
}

func (r *budgetAlertRepo) Touch(departmentID uuid.UUID, tier model.ThresholdTier, at time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var alert model.BudgetAlert
		err := tx.Where("department_id = ? AND tier = ?", departmentID, tier).First(&alert).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&model.BudgetAlert{
				DepartmentID:  departmentID,
				Tier:          tier,
				LastAlertedAt: at,
			}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&alert).Update("last_alerted_at", at).Error
	})
}
