package service

import (
	"errors"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrRequesterNotFound = errors.New("requester not found")

// ApprovalRouter computes the next approver for a requester by walking the
// management hierarchy: member -> direct manager, manager -> department
// senior manager or any system admin, senior manager -> none.
type ApprovalRouter interface {
	// NextApprover returns nil (no error) when the chain terminates and the
	// request should be routed for auto-resolution.
	NextApprover(requesterID uuid.UUID) (*model.User, error)
}

type approvalRouter struct {
	userRepo repository.UserRepository
}

func NewApprovalRouter(userRepo repository.UserRepository) ApprovalRouter {
	return &approvalRouter{userRepo: userRepo}
}

func (r *approvalRouter) NextApprover(requesterID uuid.UUID) (*model.User, error) {
	requester, err := r.userRepo.FindByID(requesterID)
	if err != nil {
		return nil, ErrRequesterNotFound
	}

	switch requester.Role {
	case model.RoleMember:
		if requester.Manager != nil {
			return requester.Manager, nil
		}
		if requester.ManagerID != nil {
			return r.userRepo.FindByID(*requester.ManagerID)
		}
		return nil, nil

	case model.RoleManager:
		if requester.DepartmentID != nil {
			senior, err := r.userRepo.FindSeniorManagerByDepartment(*requester.DepartmentID)
			if err == nil {
				return senior, nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
		admin, err := r.userRepo.FindFirstByRole(model.RoleSystemAdmin)
		if err == nil {
			return admin, nil
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	// Senior managers and admins are chain-terminal.
	return nil, nil
}
