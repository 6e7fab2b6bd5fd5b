package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/fenilmodi00/scholarship-backend/services"
)

type ScholarshipHandler struct {
	Store *services.ScholarshipStore
}

func NewScholarshipHandler(store *services.ScholarshipStore) *ScholarshipHandler {
	return &ScholarshipHandler{Store: store}
}

func (h *ScholarshipHandler) GetScholarships(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	scholarships, err := h.Store.GetScholarships(c.Context(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    scholarships,
	})
}

func (h *ScholarshipHandler) GetScholarshipByID(c *fiber.Ctx) error {
	id := c.Params("id")

	scholarship, err := h.Store.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
	if scholarship == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Scholarship not found",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    scholarship,
	})
}
