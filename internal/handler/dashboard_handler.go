package handler

import (
	"go-procurement-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetRequestStats returns the request-pipeline overview
// GET /api/v1/dashboard/requests
func (h *DashboardHandler) GetRequestStats(c *fiber.Ctx) error {
	stats, err := h.service.GetRequestStats()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch request stats"})
	}
	return c.JSON(stats)
}

// GetDepartmentSpend returns spend-vs-budget per department
// GET /api/v1/dashboard/spend
func (h *DashboardHandler) GetDepartmentSpend(c *fiber.Ctx) error {
	spend, err := h.service.GetDepartmentSpend()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch department spend"})
	}
	return c.JSON(spend)
}
