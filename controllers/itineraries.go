package controllers

import (
	"thaitour_go/database"
	"thaitour_go/models"
	"thaitour_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ItineraryController edits the day by day program of a trip
type ItineraryController struct {
	Notifier *ChangeNotifier
}

type ItineraryDayRequest struct {
	DayNumber     *int    `json:"day_number"`
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Meals         *string `json:"meals"`
	Accommodation *string `json:"accommodation"`
}

type ItineraryActivityRequest struct {
	TimeLabel   *string `json:"time_label"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
}

func (req ItineraryDayRequest) apply(day *models.ItineraryDay) {
	if req.DayNumber != nil {
		day.DayNumber = *req.DayNumber
	}
	if req.Title != nil {
		day.Title = utils.SanitizeString(*req.Title)
	}
	if req.Description != nil {
		day.Description = *req.Description
	}
	if req.Meals != nil {
		day.Meals = utils.SanitizeString(*req.Meals)
	}
	if req.Accommodation != nil {
		day.Accommodation = utils.SanitizeString(*req.Accommodation)
	}
}

func (req ItineraryActivityRequest) apply(a *models.ItineraryActivity) {
	if req.TimeLabel != nil {
		a.TimeLabel = utils.SanitizeString(*req.TimeLabel)
	}
	if req.Title != nil {
		a.Title = utils.SanitizeString(*req.Title)
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.SortOrder != nil {
		a.SortOrder = *req.SortOrder
	}
}

func dayNumberTaken(tripID uint, dayNumber int, exceptID uint) bool {
	var count int64
	database.DB.Model(&models.ItineraryDay{}).
		Where("trip_id = ? AND day_number = ? AND id <> ?", tripID, dayNumber, exceptID).
		Count(&count)
	return count > 0
}

func (ic *ItineraryController) GetDays(c *fiber.Ctx) error {
	tripID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var days []models.ItineraryDay
	if err := database.DB.Where("trip_id = ?", tripID).
		Preload("Activities", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		Order("day_number ASC").
		Find(&days).Error; err != nil {
		return respondError(c, err, "Failed to fetch itinerary")
	}
	return c.JSON(fiber.Map{"days": days})
}

func (ic *ItineraryController) CreateDay(c *fiber.Ctx) error {
	tripID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var trip models.Trip
	if err := database.DB.First(&trip, tripID).Error; err != nil {
		return notFound(c, "Trip")
	}

	var req ItineraryDayRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	day := models.ItineraryDay{TripID: trip.ID}
	req.apply(&day)
	if day.DayNumber < 1 {
		var last int
		database.DB.Model(&models.ItineraryDay{}).Where("trip_id = ?", trip.ID).
			Select("COALESCE(MAX(day_number), 0)").Scan(&last)
		day.DayNumber = last + 1
	}
	if day.Title == "" {
		return badRequest(c, "title is required")
	}
	if dayNumberTaken(trip.ID, day.DayNumber, 0) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Day number already exists for this trip"})
	}

	if err := database.DB.Create(&day).Error; err != nil {
		return respondError(c, err, "Failed to create itinerary day")
	}

	ic.Notifier.Changed(c, "CREATE", "itinerary_days", day.ID, fiber.Map{"trip_id": trip.ID, "day_number": day.DayNumber})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Itinerary day created", "day": day})
}

func (ic *ItineraryController) UpdateDay(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var day models.ItineraryDay
	if err := database.DB.First(&day, id).Error; err != nil {
		return notFound(c, "Itinerary day")
	}

	var req ItineraryDayRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.apply(&day)
	if day.DayNumber < 1 || day.Title == "" {
		return badRequest(c, "day_number and title are required")
	}
	if req.DayNumber != nil && dayNumberTaken(day.TripID, day.DayNumber, day.ID) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Day number already exists for this trip"})
	}

	if err := database.DB.Omit("Activities").Save(&day).Error; err != nil {
		return respondError(c, err, "Failed to update itinerary day")
	}

	ic.Notifier.Changed(c, "UPDATE", "itinerary_days", day.ID, req)
	return c.JSON(fiber.Map{"message": "Itinerary day updated", "day": day})
}

func (ic *ItineraryController) DeleteDay(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var day models.ItineraryDay
	if err := database.DB.First(&day, id).Error; err != nil {
		return notFound(c, "Itinerary day")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("itinerary_day_id = ?", day.ID).Delete(&models.ItineraryActivity{}).Error; err != nil {
			return err
		}
		return tx.Delete(&day).Error
	})
	if err != nil {
		return respondError(c, err, "Failed to delete itinerary day")
	}

	ic.Notifier.Changed(c, "DELETE", "itinerary_days", day.ID, fiber.Map{"trip_id": day.TripID})
	return c.JSON(fiber.Map{"message": "Itinerary day deleted"})
}

func (ic *ItineraryController) CreateActivity(c *fiber.Ctx) error {
	dayID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var day models.ItineraryDay
	if err := database.DB.First(&day, dayID).Error; err != nil {
		return notFound(c, "Itinerary day")
	}

	var req ItineraryActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	activity := models.ItineraryActivity{ItineraryDayID: day.ID}
	req.apply(&activity)
	if activity.Title == "" {
		return badRequest(c, "title is required")
	}

	if err := database.DB.Create(&activity).Error; err != nil {
		return respondError(c, err, "Failed to create activity")
	}

	ic.Notifier.Changed(c, "CREATE", "itinerary_activities", activity.ID, fiber.Map{"itinerary_day_id": day.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Activity created", "activity": activity})
}

func (ic *ItineraryController) UpdateActivity(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var activity models.ItineraryActivity
	if err := database.DB.First(&activity, id).Error; err != nil {
		return notFound(c, "Activity")
	}

	var req ItineraryActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.apply(&activity)
	if activity.Title == "" {
		return badRequest(c, "title is required")
	}

	if err := database.DB.Save(&activity).Error; err != nil {
		return respondError(c, err, "Failed to update activity")
	}

	ic.Notifier.Changed(c, "UPDATE", "itinerary_activities", activity.ID, req)
	return c.JSON(fiber.Map{"message": "Activity updated", "activity": activity})
}

func (ic *ItineraryController) DeleteActivity(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	result := database.DB.Delete(&models.ItineraryActivity{}, id)
	if result.Error != nil {
		return respondError(c, result.Error, "Failed to delete activity")
	}
	if result.RowsAffected == 0 {
		return notFound(c, "Activity")
	}

	ic.Notifier.Changed(c, "DELETE", "itinerary_activities", id, nil)
	return c.JSON(fiber.Map{"message": "Activity deleted"})
}
