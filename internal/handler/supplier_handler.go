package handler

import (
	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type SupplierHandler struct {
	supplierRepo repository.SupplierRepository
}

func NewSupplierHandler(supplierRepo repository.SupplierRepository) *SupplierHandler {
	return &SupplierHandler{supplierRepo: supplierRepo}
}

type supplierBody struct {
	Name   string `json:"name"`
	Status string `json:"status"` // free-form; normalized on ingestion
	Email  string `json:"email"`
}

// GetSuppliers lists all suppliers
// GET /api/v1/suppliers
func (h *SupplierHandler) GetSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.supplierRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch suppliers"})
	}
	return c.JSON(suppliers)
}

// CreateSupplier registers a supplier, normalizing its legacy status value
// POST /api/v1/suppliers
func (h *SupplierHandler) CreateSupplier(c *fiber.Ctx) error {
	var body supplierBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if body.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Supplier name is required"})
	}

	supplier := &model.Supplier{
		Name:   body.Name,
		Status: model.ParseSupplierStatus(body.Status),
		Email:  body.Email,
	}
	supplier.CreatedBy = getUserID(c)
	supplier.UpdatedBy = getUserID(c)

	if err := h.supplierRepo.Create(supplier); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(201).JSON(fiber.Map{"message": "Supplier created", "data": supplier})
}

// UpdateSupplier updates a supplier record
// PUT /api/v1/suppliers/:id
func (h *SupplierHandler) UpdateSupplier(c *fiber.Ctx) error {
	supplierID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid supplier ID"})
	}

	existing, err := h.supplierRepo.FindByID(supplierID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Supplier not found"})
	}

	var body supplierBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if body.Name != "" {
		existing.Name = body.Name
	}
	if body.Status != "" {
		existing.Status = model.ParseSupplierStatus(body.Status)
	}
	existing.Email = body.Email
	existing.UpdatedBy = getUserID(c)

	if err := h.supplierRepo.Update(existing); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Supplier updated", "data": existing})
}
