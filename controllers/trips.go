package controllers

import (
	"strings"

	"thaitour_go/database"
	"thaitour_go/models"
	"thaitour_go/storage"
	"thaitour_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TripController struct {
	Notifier *ChangeNotifier
	Storage  *storage.StorageService
}

type TripRequest struct {
	Title          *string  `json:"title"`
	Slug           *string  `json:"slug"`
	Summary        *string  `json:"summary"`
	Description    *string  `json:"description"`
	CountryID      *uint    `json:"country_id"`
	PricePerPerson *float64 `json:"price_per_person"`
	PriceText      *string  `json:"price_text"`
	TripType       *string  `json:"trip_type"`
	CoverImage     *string  `json:"cover_image"`
	IsActive       *bool    `json:"is_active"`
	IsFeatured     *bool    `json:"is_featured"`
	SortOrder      *int     `json:"sort_order"`
}

func (req TripRequest) apply(trip *models.Trip) {
	if req.Title != nil {
		trip.Title = utils.SanitizeString(*req.Title)
	}
	if req.Slug != nil {
		trip.Slug = strings.ToLower(strings.TrimSpace(*req.Slug))
	}
	if req.Summary != nil {
		trip.Summary = utils.SanitizeString(*req.Summary)
	}
	if req.Description != nil {
		trip.Description = *req.Description
	}
	if req.CountryID != nil {
		trip.CountryID = *req.CountryID
	}
	if req.PricePerPerson != nil {
		trip.PricePerPerson = *req.PricePerPerson
	} else if req.PriceText != nil {
		trip.PricePerPerson = utils.ParsePrice(*req.PriceText)
	}
	if req.TripType != nil {
		trip.TripType = strings.ToLower(strings.TrimSpace(*req.TripType))
	}
	if req.CoverImage != nil {
		trip.CoverImage = strings.TrimSpace(*req.CoverImage)
	}
	if req.IsActive != nil {
		trip.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		trip.IsFeatured = *req.IsFeatured
	}
	if req.SortOrder != nil {
		trip.SortOrder = *req.SortOrder
	}
	if trip.Slug == "" {
		trip.Slug = utils.Slugify(trip.Title)
	}
}

func validateTrip(trip models.Trip) string {
	switch {
	case trip.Title == "":
		return "title is required"
	case !utils.IsValidSlug(trip.Slug):
		return "slug must be lowercase letters, digits and dashes"
	case trip.CountryID == 0:
		return "country_id is required"
	case trip.PricePerPerson < 0:
		return "price_per_person must not be negative"
	case !utils.IsValidTripType(trip.TripType):
		return "trip_type must be group or private"
	}
	return ""
}

func countryExists(id uint) bool {
	var count int64
	database.DB.Model(&models.Country{}).Where("id = ?", id).Count(&count)
	return count > 0
}

// GetTrips lists trips for the back office with their country and next departures
func (tc *TripController) GetTrips(c *fiber.Ctx) error {
	page, limit, offset := pagination(c, 20)

	query := database.DB.Model(&models.Trip{})
	if countryID := c.Query("country_id"); countryID != "" {
		query = query.Where("country_id = ?", countryID)
	}
	if tripType := c.Query("trip_type"); tripType != "" {
		query = query.Where("trip_type = ?", tripType)
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR slug LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var trips []models.Trip
	if err := query.Preload("Country").
		Preload("Schedules", func(db *gorm.DB) *gorm.DB { return db.Order("departure_date ASC") }).
		Order("sort_order ASC, id DESC").
		Offset(offset).Limit(limit).
		Find(&trips).Error; err != nil {
		return respondError(c, err, "Failed to fetch trips")
	}

	today := tc.Notifier.today()
	out := make([]utils.TripSummary, 0, len(trips))
	for _, t := range trips {
		out = append(out, utils.ToTripSummary(t, today))
	}
	return c.JSON(fiber.Map{"trips": out, "total": total, "page": page, "limit": limit})
}

// GetTrip returns the editable trip with every schedule, day and FAQ
func (tc *TripController) GetTrip(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var trip models.Trip
	if err := database.DB.Preload("Country").
		Preload("Schedules", func(db *gorm.DB) *gorm.DB { return db.Order("departure_date ASC") }).
		Preload("ItineraryDays", func(db *gorm.DB) *gorm.DB { return db.Order("day_number ASC") }).
		Preload("ItineraryDays.Activities", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		Preload("FAQs", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		First(&trip, id).Error; err != nil {
		return notFound(c, "Trip")
	}

	today := tc.Notifier.today()
	schedules := make([]utils.ScheduleView, 0, len(trip.Schedules))
	for _, s := range trip.Schedules {
		schedules = append(schedules, utils.ToScheduleView(s, today))
	}
	return c.JSON(fiber.Map{"trip": trip, "schedules": schedules, "price_display": utils.FormatPrice(trip.PricePerPerson)})
}

func (tc *TripController) CreateTrip(c *fiber.Ctx) error {
	var req TripRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	trip := models.Trip{TripType: models.TripTypeGroup, IsActive: true}
	req.apply(&trip)
	if msg := validateTrip(trip); msg != "" {
		return badRequest(c, msg)
	}
	if !countryExists(trip.CountryID) {
		return badRequest(c, "Country not found")
	}

	if err := database.DB.Create(&trip).Error; err != nil {
		return respondError(c, err, "Failed to create trip")
	}

	tc.Notifier.Changed(c, "CREATE", "trips", trip.ID, fiber.Map{"slug": trip.Slug})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Trip created successfully", "trip": trip})
}

func (tc *TripController) UpdateTrip(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var trip models.Trip
	if err := database.DB.First(&trip, id).Error; err != nil {
		return notFound(c, "Trip")
	}

	var req TripRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.apply(&trip)
	if msg := validateTrip(trip); msg != "" {
		return badRequest(c, msg)
	}
	if req.CountryID != nil && !countryExists(trip.CountryID) {
		return badRequest(c, "Country not found")
	}

	if err := database.DB.Omit("Country", "Schedules", "ItineraryDays", "FAQs").Save(&trip).Error; err != nil {
		return respondError(c, err, "Failed to update trip")
	}

	tc.Notifier.Changed(c, "UPDATE", "trips", trip.ID, req)
	return c.JSON(fiber.Map{"message": "Trip updated successfully", "trip": trip})
}

// DeleteTrip soft deletes the trip together with its schedules
func (tc *TripController) DeleteTrip(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var trip models.Trip
	if err := database.DB.First(&trip, id).Error; err != nil {
		return notFound(c, "Trip")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trip_id = ?", trip.ID).Delete(&models.TripSchedule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&trip).Error
	})
	if err != nil {
		return respondError(c, err, "Failed to delete trip")
	}

	tc.Notifier.Changed(c, "DELETE", "trips", trip.ID, fiber.Map{"slug": trip.Slug})
	return c.JSON(fiber.Map{"message": "Trip deleted successfully"})
}

// UploadCover replaces the trip cover image with the multipart "cover" file
func (tc *TripController) UploadCover(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var trip models.Trip
	if err := database.DB.First(&trip, id).Error; err != nil {
		return notFound(c, "Trip")
	}

	url, err := uploadFormImage(c, tc.Storage, "cover", storage.FolderTrips, trip.ID)
	if err != nil {
		return respondError(c, err, "Failed to upload cover image")
	}

	previous := trip.CoverImage
	if err := database.DB.Model(&trip).Update("cover_image", url).Error; err != nil {
		return respondError(c, err, "Failed to save cover image")
	}
	removeStoredFile(tc.Storage, previous)

	tc.Notifier.Changed(c, "UPLOAD_COVER", "trips", trip.ID, fiber.Map{"cover_image": url})
	return c.JSON(fiber.Map{"message": "Cover image uploaded", "cover_image": url})
}
