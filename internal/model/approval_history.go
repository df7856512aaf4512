package model

import "github.com/google/uuid"

type ApprovalAction string

const (
	ActionApprove ApprovalAction = "APPROVE"
	ActionReject  ApprovalAction = "REJECT"
)

// ApprovalHistory is the append-only audit trail of approval actions. One
// row per action taken; rows are never mutated or deleted. A row may record
// an attempted approval that was blocked on supplier eligibility, in which
// case the request stays PENDING.
type ApprovalHistory struct {
	BaseModel
	RequestID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"request_id"`
	ApproverID uuid.UUID      `gorm:"type:uuid;not null" json:"approver_id"`
	Approver   *User          `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	Action     ApprovalAction `gorm:"type:varchar(10);not null" json:"action"`
	Comments   string         `gorm:"type:text" json:"comments"`
}
