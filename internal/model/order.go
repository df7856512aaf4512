package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderOpen      OrderStatus = "OPEN"
	OrderFulfilled OrderStatus = "FULFILLED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// PurchaseOrder is committed spend against an approved request. Cancelled
// orders are excluded from department spend aggregation.
type PurchaseOrder struct {
	BaseModel
	RequestID uuid.UUID        `gorm:"type:uuid;not null;index" json:"request_id" validate:"uuid_required"`
	Request   *PurchaseRequest `gorm:"foreignKey:RequestID" json:"request,omitempty" validate:"-"`
	Amount    decimal.Decimal  `gorm:"type:numeric(14,2);not null" json:"amount"`
	Status    OrderStatus      `gorm:"type:varchar(20);not null;default:'OPEN'" json:"status"`
	Note      string           `json:"note"`
}
