package service

import (
	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"

	"github.com/google/uuid"
)

// AuthorizationGuard decides whether an actor may approve or reject a
// specific request. It never errors for "not authorized": unresolved
// lookups also yield false.
type AuthorizationGuard interface {
	CanApprove(actorID, requestID uuid.UUID) bool
}

type authorizationGuard struct {
	userRepo    repository.UserRepository
	requestRepo repository.RequestRepository
}

func NewAuthorizationGuard(userRepo repository.UserRepository, requestRepo repository.RequestRepository) AuthorizationGuard {
	return &authorizationGuard{userRepo: userRepo, requestRepo: requestRepo}
}

func (g *authorizationGuard) CanApprove(actorID, requestID uuid.UUID) bool {
	actor, err := g.userRepo.FindByID(actorID)
	if err != nil {
		return false
	}

	// System admins may act on any request.
	if actor.Role == model.RoleSystemAdmin {
		return true
	}

	req, err := g.requestRepo.FindByID(requestID)
	if err != nil {
		return false
	}
	requester := req.Requester
	if requester == nil {
		requester, err = g.userRepo.FindByID(req.RequesterID)
		if err != nil {
			return false
		}
	}

	switch actor.Role {
	case model.RoleSeniorManager:
		if requester.DepartmentID == nil {
			return false
		}
		if actor.DepartmentID != nil && *actor.DepartmentID == *requester.DepartmentID {
			return true
		}
		return actor.HasGrantIn(*requester.DepartmentID, model.RoleManager, model.RoleSeniorManager)

	case model.RoleManager:
		// Direct reports only; transitive reports are not authorized.
		return requester.ManagerID != nil && *requester.ManagerID == actor.ID
	}

	return false
}
