package repository

import (
	"go-procurement-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DepartmentRepository interface {
	Create(dept *model.Department) error
	Update(dept *model.Department) error
	Delete(id uuid.UUID) error
	FindByID(id uuid.UUID) (*model.Department, error)
	FindByName(name string) (*model.Department, error)
	FindAll() ([]model.Department, error)
}

type departmentRepo struct {
	db *gorm.DB
}

func NewDepartmentRepo(db *gorm.DB) DepartmentRepository {
	return &departmentRepo{db}
}

func (r *departmentRepo) Create(dept *model.Department) error {
	return r.db.Create(dept).Error
}

func (r *departmentRepo) Update(dept *model.Department) error {
	return r.db.Save(dept).Error
}

func (r *departmentRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Department{}, "id = ?", id).Error
}

func (r *departmentRepo) FindByID(id uuid.UUID) (*model.Department, error) {
	var dept model.Department
	if err := r.db.First(&dept, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) FindByName(name string) (*model.Department, error) {
	var dept model.Department
	if err := r.db.Where("name = ?", name).First(&dept).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepo) FindAll() ([]model.Department, error) {
	var depts []model.Department
	err := r.db.Order("name ASC").Find(&depts).Error
	return depts, err
}
