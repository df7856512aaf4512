package model

import (
	"time"

	"github.com/google/uuid"
)

// ThresholdTier classifies how far department spend has progressed against
// budget. Tiers are evaluated highest-first; only the single highest crossed
// tier fires per check.
type ThresholdTier string

const (
	TierWarning  ThresholdTier = "WARNING"  // ratio >= 0.8
	TierCritical ThresholdTier = "CRITICAL" // ratio >= 0.9
	TierExceeded ThresholdTier = "EXCEEDED" // ratio >= 1.0
)

// NotificationType returns the notification kind emitted for this tier.
func (t ThresholdTier) NotificationType() NotificationType {
	switch t {
	case TierExceeded:
		return NotifBudgetExceeded
	case TierCritical:
		return NotifBudgetCritical
	default:
		return NotifBudgetWarning
	}
}

// BudgetAlert records the last time a threshold tier fired for a department.
// One row per (department, tier); the monitor suppresses re-alerts inside
// the rolling window by consulting LastAlertedAt instead of scanning
// notification history.
type BudgetAlert struct {
	BaseModel
	DepartmentID  uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_budget_alert_dept_tier" json:"department_id"`
	Tier          ThresholdTier `gorm:"type:varchar(10);not null;uniqueIndex:idx_budget_alert_dept_tier" json:"tier"`
	LastAlertedAt time.Time     `gorm:"not null" json:"last_alerted_at"`
}
