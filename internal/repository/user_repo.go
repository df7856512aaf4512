package repository

import (
	"go-procurement-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByEmail(email string) (*model.User, error)
	FindByID(id uuid.UUID) (*model.User, error)
	Create(user *model.User) error
	Update(user *model.User) error
	Delete(id uuid.UUID) error
	UpdatePassword(userID uuid.UUID, hashedPassword string) error
	FindAll() ([]model.User, error)
	UpdateTokenVersion(userID uuid.UUID, version string) error
	UpdateLastSeen(userID uuid.UUID) error

	// Approval-routing queries
	FindSeniorManagerByDepartment(departmentID uuid.UUID) (*model.User, error)
	FindFirstByRole(role model.Role) (*model.User, error)
	FindByRole(role model.Role) ([]model.User, error)
	FindDepartmentApprovers(departmentID uuid.UUID) ([]model.User, error)
	ReplaceRoleGrants(userID uuid.UUID, grants []model.RoleGrant) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Department").Preload("RoleGrants").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.Preload("Department").Preload("Manager").Preload("RoleGrants").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepo) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *userRepo) UpdatePassword(userID uuid.UUID, hashedPassword string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("password", hashedPassword).Error
}

func (r *userRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.User{}, "id = ?", id).Error
}

func (r *userRepo) FindAll() ([]model.User, error) {
	var users []model.User
	if err := r.db.Preload("Department").Preload("RoleGrants").Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) UpdateTokenVersion(userID uuid.UUID, version string) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("token_version", version).Error
}

func (r *userRepo) UpdateLastSeen(userID uuid.UUID) error {
	return r.db.Model(&model.User{}).Where("id = ?", userID).Update("last_seen_at", gorm.Expr("NOW()")).Error
}

// FindSeniorManagerByDepartment returns the senior manager whose primary
// department matches, oldest account first.
func (r *userRepo) FindSeniorManagerByDepartment(departmentID uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.Where("role = ? AND department_id = ? AND is_active = ?", model.RoleSeniorManager, departmentID, true).
		Order("created_at ASC").
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindFirstByRole returns the oldest active user holding the role, giving a
// stable tie-break when several candidates exist.
func (r *userRepo) FindFirstByRole(role model.Role) (*model.User, error) {
	var user model.User
	err := r.db.Where("role = ? AND is_active = ?", role, true).
		Order("created_at ASC").
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByRole(role model.Role) ([]model.User, error) {
	var users []model.User
	err := r.db.Where("role = ? AND is_active = ?", role, true).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

// FindDepartmentApprovers returns every manager/senior manager whose primary
// department matches, plus every user holding a manager/senior-manager role
// grant scoped to the department.
func (r *userRepo) FindDepartmentApprovers(departmentID uuid.UUID) ([]model.User, error) {
	var users []model.User
	err := r.db.
		Where("is_active = ?", true).
		Where(
			r.db.Where("role IN ? AND department_id = ?", []model.Role{model.RoleManager, model.RoleSeniorManager}, departmentID).
				Or("id IN (?)", r.db.Model(&model.RoleGrant{}).
					Select("user_id").
					Where("department_id = ? AND role IN ?", departmentID, []model.Role{model.RoleManager, model.RoleSeniorManager})),
		).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) ReplaceRoleGrants(userID uuid.UUID, grants []model.RoleGrant) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&model.RoleGrant{}).Error; err != nil {
			return err
		}
		for i := range grants {
			grants[i].UserID = userID
		}
		if len(grants) == 0 {
			return nil
		}
		return tx.Create(&grants).Error
	})
}
