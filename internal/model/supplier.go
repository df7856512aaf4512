package model

import "strings"

// SupplierStatus is the normalized lifecycle status of a supplier. Legacy
// records carry free-form strings; ParseSupplierStatus converts them once at
// ingestion so eligibility checks never re-normalize.
type SupplierStatus string

const (
	SupplierStandard      SupplierStatus = "STANDARD"
	SupplierPreferred     SupplierStatus = "PREFERRED"
	SupplierActive        SupplierStatus = "ACTIVE"
	SupplierReviewPending SupplierStatus = "REVIEW_PENDING"
	SupplierSuspended     SupplierStatus = "SUSPENDED"
)

// ParseSupplierStatus normalizes a free-form status value. Unrecognized
// values map to REVIEW_PENDING, which is never in the approved set.
func ParseSupplierStatus(raw string) SupplierStatus {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", "_")) {
	case "STANDARD":
		return SupplierStandard
	case "PREFERRED":
		return SupplierPreferred
	case "ACTIVE":
		return SupplierActive
	case "SUSPENDED":
		return SupplierSuspended
	default:
		return SupplierReviewPending
	}
}

// Approved reports whether a request backed by this supplier may be completed.
func (s SupplierStatus) Approved() bool {
	switch s {
	case SupplierStandard, SupplierPreferred, SupplierActive:
		return true
	}
	return false
}

// Supplier is a vendor that purchase requests may be placed against.
// Email, when set, is the contact channel for purchase notifications.
type Supplier struct {
	BaseModel
	Name   string         `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Status SupplierStatus `gorm:"type:varchar(30);not null;default:'REVIEW_PENDING'" json:"status"`
	Email  string         `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
}
