package controllers

import (
	"strings"

	"thaitour_go/database"
	"thaitour_go/models"
	"thaitour_go/utils"

	"github.com/gofiber/fiber/v2"
)

type CountryController struct {
	Notifier *ChangeNotifier
}

type CountryRequest struct {
	NameTh    *string `json:"name_th"`
	NameEn    *string `json:"name_en"`
	Flag      *string `json:"flag"`
	Code      *string `json:"code"`
	SortOrder *int    `json:"sort_order"`
	IsActive  *bool   `json:"is_active"`
}

func (req CountryRequest) apply(country *models.Country) {
	if req.NameTh != nil {
		country.NameTh = utils.SanitizeString(*req.NameTh)
	}
	if req.NameEn != nil {
		country.NameEn = utils.SanitizeString(*req.NameEn)
	}
	if req.Flag != nil {
		country.Flag = strings.TrimSpace(*req.Flag)
	}
	if req.Code != nil {
		country.Code = strings.ToUpper(strings.TrimSpace(*req.Code))
	}
	if req.SortOrder != nil {
		country.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		country.IsActive = *req.IsActive
	}
}

func validateCountry(country models.Country) string {
	switch {
	case country.NameTh == "":
		return "name_th is required"
	case country.NameEn == "":
		return "name_en is required"
	case len(country.Code) < 2 || len(country.Code) > 10:
		return "code must be 2-10 characters"
	}
	return ""
}

// GetCountries lists every country for the back office, inactive ones included
func (cc *CountryController) GetCountries(c *fiber.Ctx) error {
	var countries []models.Country
	query := database.DB.Order("sort_order ASC, name_en ASC")
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}
	if err := query.Find(&countries).Error; err != nil {
		return respondError(c, err, "Failed to fetch countries")
	}
	return c.JSON(fiber.Map{"countries": countries})
}

func (cc *CountryController) GetCountry(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}
	var country models.Country
	if err := database.DB.First(&country, id).Error; err != nil {
		return notFound(c, "Country")
	}
	return c.JSON(fiber.Map{"country": country})
}

func (cc *CountryController) CreateCountry(c *fiber.Ctx) error {
	var req CountryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	country := models.Country{IsActive: true}
	req.apply(&country)
	if msg := validateCountry(country); msg != "" {
		return badRequest(c, msg)
	}

	if err := database.DB.Create(&country).Error; err != nil {
		return respondError(c, err, "Failed to create country")
	}

	cc.Notifier.Changed(c, "CREATE", "countries", country.ID, fiber.Map{"code": country.Code})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Country created successfully", "country": country})
}

func (cc *CountryController) UpdateCountry(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var country models.Country
	if err := database.DB.First(&country, id).Error; err != nil {
		return notFound(c, "Country")
	}

	var req CountryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.apply(&country)
	if msg := validateCountry(country); msg != "" {
		return badRequest(c, msg)
	}

	if err := database.DB.Save(&country).Error; err != nil {
		return respondError(c, err, "Failed to update country")
	}

	cc.Notifier.Changed(c, "UPDATE", "countries", country.ID, req)
	return c.JSON(fiber.Map{"message": "Country updated successfully", "country": country})
}

// DeleteCountry refuses while trips still reference the country
func (cc *CountryController) DeleteCountry(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var tripCount int64
	database.DB.Model(&models.Trip{}).Where("country_id = ?", id).Count(&tripCount)
	if tripCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":      "Country still has trips",
			"trip_count": tripCount,
		})
	}

	result := database.DB.Delete(&models.Country{}, id)
	if result.Error != nil {
		return respondError(c, result.Error, "Failed to delete country")
	}
	if result.RowsAffected == 0 {
		return notFound(c, "Country")
	}

	cc.Notifier.Changed(c, "DELETE", "countries", id, nil)
	return c.JSON(fiber.Map{"message": "Country deleted successfully"})
}
