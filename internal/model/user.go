package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role classifies a user's place in the approval hierarchy.
type Role string

const (
	RoleMember        Role = "MEMBER"
	RoleManager       Role = "MANAGER"
	RoleSeniorManager Role = "SENIOR_MANAGER"
	RoleSystemAdmin   Role = "SYSTEM_ADMIN"
)

// User represents an authenticated user in the system.
// ManagerID points at the direct supervisor; a MEMBER's approval chain
// terminates there, a MANAGER's chain terminates at a SENIOR_MANAGER or
// SYSTEM_ADMIN, and a SENIOR_MANAGER is chain-terminal.
type User struct {
	BaseModel
	Email        string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password     string      `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	FullName     string      `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	Role         Role        `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role" validate:"required,oneof=MEMBER MANAGER SENIOR_MANAGER SYSTEM_ADMIN"`
	DepartmentID *uuid.UUID  `gorm:"type:uuid;index" json:"department_id"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	ManagerID    *uuid.UUID  `gorm:"type:uuid;index" json:"manager_id"`
	Manager      *User       `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	RoleGrants   []RoleGrant `gorm:"foreignKey:UserID" json:"role_grants,omitempty"`
	IsActive     bool        `gorm:"default:true" json:"is_active"`
	TokenVersion string      `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
	LastSeenAt   *time.Time  `json:"last_seen_at,omitempty"`                // For user presence
}

// RoleGrant gives a user manager/senior-manager authority in a department
// that is not their primary one.
type RoleGrant struct {
	BaseModel
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	DepartmentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"department_id"`
	Department   Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty" validate:"-"`
	Role         Role       `gorm:"type:varchar(20);not null" json:"role" validate:"required,oneof=MANAGER SENIOR_MANAGER"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// HasGrantIn reports whether the user holds an additional role grant of one
// of the given roles scoped to the department.
func (u *User) HasGrantIn(departmentID uuid.UUID, roles ...Role) bool {
	for _, g := range u.RoleGrants {
		if g.DepartmentID != departmentID {
			continue
		}
		for _, r := range roles {
			if g.Role == r {
				return true
			}
		}
	}
	return false
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	FullName     string      `json:"full_name"`
	Role         Role        `json:"role"`
	DepartmentID *uuid.UUID  `json:"department_id,omitempty"`
	Department   *Department `json:"department,omitempty"`
	ManagerID    *uuid.UUID  `json:"manager_id,omitempty"`
	RoleGrants   []RoleGrant `json:"role_grants"`
	IsActive     bool        `json:"is_active"`
	LastSeenAt   *time.Time  `json:"last_seen_at,omitempty"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
		Department:   u.Department,
		ManagerID:    u.ManagerID,
		RoleGrants:   u.RoleGrants,
		IsActive:     u.IsActive,
		LastSeenAt:   u.LastSeenAt,
	}
}
