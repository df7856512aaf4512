package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotifSystemAlert      NotificationType = "SYSTEM_ALERT"
	NotifBudgetWarning    NotificationType = "BUDGET_WARNING"
	NotifBudgetCritical   NotificationType = "BUDGET_CRITICAL"
	NotifBudgetExceeded   NotificationType = "BUDGET_EXCEEDED"
	NotifRequestSubmitted NotificationType = "REQUEST_SUBMITTED"
	NotifApprovalRequired NotificationType = "APPROVAL_REQUIRED"
	NotifRequestApproved  NotificationType = "REQUEST_APPROVED"
	NotifRequestRejected  NotificationType = "REQUEST_REJECTED"
	NotifSupplierRequest  NotificationType = "SUPPLIER_REQUEST"
)

// Metadata is a structured key/value payload correlating a notification to
// its source event (request_id, department_id, ...). Stored as jsonb.
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("metadata: unsupported scan type")
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, m)
}

// Notification is an in-app notification record. It is the source of truth
// for notification history; push and email delivery are best-effort copies.
type Notification struct {
	BaseModel
	UserID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type     NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Title    string           `gorm:"type:varchar(255);not null" json:"title"`
	Message  string           `gorm:"type:text" json:"message"`
	Metadata Metadata         `gorm:"type:jsonb" json:"metadata,omitempty"`
	Read     bool             `gorm:"not null;default:false" json:"read"`
}
