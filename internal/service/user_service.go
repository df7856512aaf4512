package service

import (
	"errors"
	"fmt"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"
	"go-procurement-ws/pkg/validator"

	"github.com/google/uuid"
)

var (
	ErrEmailExists       = errors.New("email already exists")
	ErrManagerNotFound   = errors.New("manager not found")
	ErrSelfManager       = errors.New("a user cannot be their own manager")
	ErrUnknownDepartment = errors.New("department not found")
)

type UserService interface {
	CreateUser(req *CreateUserRequest, creatorID string) (*model.User, error)
	UpdateUser(userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error)
	DeleteUser(userID uuid.UUID) error
	UpdateRoleGrants(userID uuid.UUID, grants []RoleGrantInput, updaterID string) (*model.User, error)
	GetAllUsers() ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
}

type CreateUserRequest struct {
	Email        string     `json:"email" validate:"required,email"`
	Password     string     `json:"password" validate:"required,min=6"`
	FullName     string     `json:"full_name" validate:"required"`
	Role         model.Role `json:"role" validate:"required,oneof=MEMBER MANAGER SENIOR_MANAGER SYSTEM_ADMIN"`
	DepartmentID *uuid.UUID `json:"department_id"`
	ManagerID    *uuid.UUID `json:"manager_id"`
}

type UpdateUserRequest struct {
	Email        string     `json:"email" validate:"required,email"`
	Password     *string    `json:"password,omitempty" validate:"omitempty,min=6"` // Optional
	FullName     string     `json:"full_name" validate:"required"`
	Role         model.Role `json:"role" validate:"required,oneof=MEMBER MANAGER SENIOR_MANAGER SYSTEM_ADMIN"`
	DepartmentID *uuid.UUID `json:"department_id"`
	ManagerID    *uuid.UUID `json:"manager_id"`
	IsActive     *bool      `json:"is_active"`
}

type RoleGrantInput struct {
	DepartmentID uuid.UUID  `json:"department_id" validate:"uuid_required"`
	Role         model.Role `json:"role" validate:"required,oneof=MANAGER SENIOR_MANAGER"`
}

type userService struct {
	userRepo       repository.UserRepository
	departmentRepo repository.DepartmentRepository
}

func NewUserService(userRepo repository.UserRepository, departmentRepo repository.DepartmentRepository) UserService {
	return &userService{
		userRepo:       userRepo,
		departmentRepo: departmentRepo,
	}
}

func (s *userService) CreateUser(req *CreateUserRequest, creatorID string) (*model.User, error) {
	// 1. Validate request
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	// 2. Check if email already exists
	existing, _ := s.userRepo.FindByEmail(req.Email)
	if existing != nil {
		return nil, ErrEmailExists
	}

	// 3. Validate referenced department and manager
	if err := s.checkReferences(req.DepartmentID, req.ManagerID, nil); err != nil {
		return nil, err
	}

	// 4. Create user
	user := &model.User{
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
		ManagerID:    req.ManagerID,
		IsActive:     true,
	}
	user.CreatedBy = creatorID
	user.UpdatedBy = creatorID

	// 5. Set password
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	// 6. Save to database
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) UpdateUser(userID uuid.UUID, req *UpdateUserRequest, updaterID string) (*model.User, error) {
	// 1. Validate request
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	// 2. Find existing user
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// 3. Check if email is being changed and already exists
	if req.Email != user.Email {
		existing, _ := s.userRepo.FindByEmail(req.Email)
		if existing != nil {
			return nil, ErrEmailExists
		}
	}

	// 4. Validate referenced department and manager
	if err := s.checkReferences(req.DepartmentID, req.ManagerID, &userID); err != nil {
		return nil, err
	}

	// 5. Update user fields
	user.Email = req.Email
	user.FullName = req.FullName
	user.Role = req.Role
	user.DepartmentID = req.DepartmentID
	user.ManagerID = req.ManagerID
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	user.UpdatedBy = updaterID

	// 6. Update password if provided
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
	}

	// 7. Save to database
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return s.userRepo.FindByID(userID)
}

func (s *userService) DeleteUser(userID uuid.UUID) error {
	return s.userRepo.Delete(userID)
}

// UpdateRoleGrants replaces a user's additional cross-department role grants.
func (s *userService) UpdateRoleGrants(userID uuid.UUID, inputs []RoleGrantInput, updaterID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	grants := make([]model.RoleGrant, 0, len(inputs))
	for _, input := range inputs {
		if errs := validator.ValidateStruct(&input); len(errs) > 0 {
			firstErr := errs[0]
			return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
		}
		if _, err := s.departmentRepo.FindByID(input.DepartmentID); err != nil {
			return nil, ErrUnknownDepartment
		}
		grants = append(grants, model.RoleGrant{
			DepartmentID: input.DepartmentID,
			Role:         input.Role,
		})
	}

	if err := s.userRepo.ReplaceRoleGrants(userID, grants); err != nil {
		return nil, err
	}

	user.UpdatedBy = updaterID
	s.userRepo.Update(user)

	return s.userRepo.FindByID(userID)
}

func (s *userService) GetAllUsers() ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll()
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) checkReferences(departmentID, managerID, selfID *uuid.UUID) error {
	if departmentID != nil {
		if _, err := s.departmentRepo.FindByID(*departmentID); err != nil {
			return ErrUnknownDepartment
		}
	}
	if managerID != nil {
		if selfID != nil && *managerID == *selfID {
			return ErrSelfManager
		}
		if _, err := s.userRepo.FindByID(*managerID); err != nil {
			return ErrManagerNotFound
		}
	}
	return nil
}
