package controllers

import (
	"thaitour_go/database"
	"thaitour_go/models"
	"thaitour_go/utils"

	"github.com/gofiber/fiber/v2"
)

type FAQController struct {
	Notifier *ChangeNotifier
}

type FAQRequest struct {
	TripID    *uint   `json:"trip_id"`
	Question  *string `json:"question"`
	Answer    *string `json:"answer"`
	SortOrder *int    `json:"sort_order"`
	IsActive  *bool   `json:"is_active"`
}

func (req FAQRequest) apply(f *models.FAQ) {
	if req.TripID != nil {
		f.TripID = optionalID(*req.TripID)
	}
	if req.Question != nil {
		f.Question = utils.SanitizeString(*req.Question)
	}
	if req.Answer != nil {
		f.Answer = utils.SanitizeString(*req.Answer)
	}
	if req.SortOrder != nil {
		f.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		f.IsActive = *req.IsActive
	}
}

// GetFAQs lists FAQs; trip_id=0 selects the general ones
func (fc *FAQController) GetFAQs(c *fiber.Ctx) error {
	query := database.DB.Model(&models.FAQ{})
	switch tripID := c.Query("trip_id"); tripID {
	case "":
	case "0":
		query = query.Where("trip_id IS NULL")
	default:
		query = query.Where("trip_id = ?", tripID)
	}

	var faqs []models.FAQ
	if err := query.Order("sort_order ASC, id ASC").Find(&faqs).Error; err != nil {
		return respondError(c, err, "Failed to fetch FAQs")
	}
	return c.JSON(fiber.Map{"faqs": faqs})
}

func (fc *FAQController) CreateFAQ(c *fiber.Ctx) error {
	var req FAQRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	faq := models.FAQ{IsActive: true}
	req.apply(&faq)
	if faq.Question == "" || faq.Answer == "" {
		return badRequest(c, "question and answer are required")
	}

	if err := database.DB.Create(&faq).Error; err != nil {
		return respondError(c, err, "Failed to create FAQ")
	}

	fc.Notifier.Changed(c, "CREATE", "faqs", faq.ID, nil)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "FAQ created successfully", "faq": faq})
}

func (fc *FAQController) UpdateFAQ(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var faq models.FAQ
	if err := database.DB.First(&faq, id).Error; err != nil {
		return notFound(c, "FAQ")
	}

	var req FAQRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.apply(&faq)
	if faq.Question == "" || faq.Answer == "" {
		return badRequest(c, "question and answer are required")
	}

	if err := database.DB.Save(&faq).Error; err != nil {
		return respondError(c, err, "Failed to update FAQ")
	}

	fc.Notifier.Changed(c, "UPDATE", "faqs", faq.ID, nil)
	return c.JSON(fiber.Map{"message": "FAQ updated successfully", "faq": faq})
}

func (fc *FAQController) DeleteFAQ(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	result := database.DB.Delete(&models.FAQ{}, id)
	if result.Error != nil {
		return respondError(c, result.Error, "Failed to delete FAQ")
	}
	if result.RowsAffected == 0 {
		return notFound(c, "FAQ")
	}

	fc.Notifier.Changed(c, "DELETE", "faqs", id, nil)
	return c.JSON(fiber.Map{"message": "FAQ deleted successfully"})
}
