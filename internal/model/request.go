package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestStatus is the state of a purchase request. Transitions are
// monotonic: IN_PROGRESS -> PENDING -> {APPROVED, REJECTED}; APPROVED and
// REJECTED are terminal.
type RequestStatus string

const (
	StatusInProgress RequestStatus = "IN_PROGRESS"
	StatusPending    RequestStatus = "PENDING"
	StatusApproved   RequestStatus = "APPROVED"
	StatusRejected   RequestStatus = "REJECTED"
)

// Terminal reports whether no further transition is permitted.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// PurchaseRequest is a request for goods or services moving through the
// approval chain. CurrentApproverID is who is expected to act next;
// ApproverID is who last acted.
type PurchaseRequest struct {
	BaseModel
	RequesterID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"requester_id" validate:"uuid_required"`
	Requester         *User           `gorm:"foreignKey:RequesterID" json:"requester,omitempty" validate:"-"`
	Status            RequestStatus   `gorm:"type:varchar(20);not null;default:'IN_PROGRESS'" json:"status"`
	CurrentApproverID *uuid.UUID      `gorm:"type:uuid;index" json:"current_approver_id"`
	CurrentApprover   *User           `gorm:"foreignKey:CurrentApproverID" json:"current_approver,omitempty" validate:"-"`
	ApproverID        *uuid.UUID      `gorm:"type:uuid" json:"approver_id"`
	Title             string          `gorm:"type:varchar(255);not null" json:"title" validate:"required"`
	Description       string          `gorm:"type:text" json:"description"`
	TotalAmount       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_amount"`
	SupplierID        *uuid.UUID      `gorm:"type:uuid;index" json:"supplier_id"`
	Supplier          *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty" validate:"-"`
	BudgetCategory    string          `gorm:"type:varchar(255)" json:"budget_category"` // Legacy free-text department name
}
