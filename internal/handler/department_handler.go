package handler

import (
	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"
	"go-procurement-ws/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type DepartmentHandler struct {
	departmentRepo repository.DepartmentRepository
}

func NewDepartmentHandler(departmentRepo repository.DepartmentRepository) *DepartmentHandler {
	return &DepartmentHandler{departmentRepo: departmentRepo}
}

// GetDepartments lists all departments
// GET /api/v1/departments
func (h *DepartmentHandler) GetDepartments(c *fiber.Ctx) error {
	departments, err := h.departmentRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch departments"})
	}
	return c.JSON(departments)
}

// CreateDepartment creates a department
// POST /api/v1/departments
func (h *DepartmentHandler) CreateDepartment(c *fiber.Ctx) error {
	var dept model.Department
	if err := c.BodyParser(&dept); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(&dept); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Department name is required"})
	}
	if dept.Budget.IsNegative() {
		return c.Status(400).JSON(fiber.Map{"error": "Budget cannot be negative"})
	}

	dept.CreatedBy = getUserID(c)
	dept.UpdatedBy = getUserID(c)
	if err := h.departmentRepo.Create(&dept); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Department created", "data": dept})
}

// UpdateDepartment updates a department's name, budget, or parent
// PUT /api/v1/departments/:id
func (h *DepartmentHandler) UpdateDepartment(c *fiber.Ctx) error {
	departmentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid department ID"})
	}

	existing, err := h.departmentRepo.FindByID(departmentID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Department not found"})
	}

	var body model.Department
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if body.Budget.IsNegative() {
		return c.Status(400).JSON(fiber.Map{"error": "Budget cannot be negative"})
	}

	existing.Name = body.Name
	existing.Budget = body.Budget
	existing.ParentID = body.ParentID
	existing.UpdatedBy = getUserID(c)

	if err := h.departmentRepo.Update(existing); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Department updated", "data": existing})
}

// DeleteDepartment removes a department
// DELETE /api/v1/departments/:id
func (h *DepartmentHandler) DeleteDepartment(c *fiber.Ctx) error {
	departmentID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid department ID"})
	}
	if err := h.departmentRepo.Delete(departmentID); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Department deleted"})
}
