package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Department groups users for approval routing and budget monitoring.
// A zero budget disables threshold monitoring for the department.
type Department struct {
	BaseModel
	Name     string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
	Budget   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"budget"`
	ParentID *uuid.UUID      `gorm:"type:uuid;index" json:"parent_id"`
	Parent   *Department     `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
}
