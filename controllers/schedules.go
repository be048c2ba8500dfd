package controllers

import (
	"strings"

	"thaitour_go/config"
	"thaitour_go/database"
	"thaitour_go/models"
	"thaitour_go/services"
	"thaitour_go/utils"

	"github.com/gofiber/fiber/v2"
)

// ScheduleController manages trip departures and their seat counts
type ScheduleController struct {
	Notifier  *ChangeNotifier
	Schedules *services.ScheduleService
}

type AdjustSeatsRequest struct {
	Delta int `json:"delta"`
}

// ParseScheduleRequest carries pasted legacy text to preview
type ParseScheduleRequest struct {
	Dates string `json:"dates"`
	Slots string `json:"slots"`
	Price string `json:"price"`
	Year  int    `json:"year"`
}

func seasonYear() int {
	if config.AppConfig != nil && config.AppConfig.SeasonYear > 0 {
		return config.AppConfig.SeasonYear
	}
	return 0
}

// GetTripSchedules lists all departures of a trip ordered by date
func (sc *ScheduleController) GetTripSchedules(c *fiber.Ctx) error {
	tripID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var schedules []models.TripSchedule
	query := database.DB.Where("trip_id = ?", tripID)
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}
	if err := query.Order("departure_date ASC").Find(&schedules).Error; err != nil {
		return respondError(c, err, "Failed to fetch schedules")
	}

	today := sc.Notifier.today()
	out := make([]utils.ScheduleView, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, utils.ToScheduleView(s, today))
	}
	return c.JSON(fiber.Map{"schedules": out, "total": len(out)})
}

func (sc *ScheduleController) CreateSchedule(c *fiber.Ctx) error {
	tripID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var trip models.Trip
	if err := database.DB.First(&trip, tripID).Error; err != nil {
		return notFound(c, "Trip")
	}

	var req services.ScheduleInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	schedule := models.TripSchedule{TripID: trip.ID, IsActive: true}
	if err := services.ApplyScheduleInput(&schedule, req, seasonYear()); err != nil {
		return respondError(c, err, "Invalid schedule")
	}

	if err := database.DB.Omit("Trip").Create(&schedule).Error; err != nil {
		return respondError(c, err, "Failed to create schedule")
	}

	sc.Notifier.Changed(c, "CREATE", "schedules", schedule.ID, fiber.Map{
		"trip_id":   trip.ID,
		"departure": schedule.DepartureDate.Format(utils.ISODateLayout),
	})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Schedule created successfully",
		"schedule": utils.ToScheduleView(schedule, sc.Notifier.today()),
	})
}

func (sc *ScheduleController) GetSchedule(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var schedule models.TripSchedule
	if err := database.DB.First(&schedule, id).Error; err != nil {
		return notFound(c, "Schedule")
	}
	return c.JSON(fiber.Map{"schedule": utils.ToScheduleView(schedule, sc.Notifier.today())})
}

func (sc *ScheduleController) UpdateSchedule(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var schedule models.TripSchedule
	if err := database.DB.First(&schedule, id).Error; err != nil {
		return notFound(c, "Schedule")
	}

	var req services.ScheduleInput
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := services.ApplyScheduleInput(&schedule, req, seasonYear()); err != nil {
		return respondError(c, err, "Invalid schedule")
	}

	if err := database.DB.Omit("Trip").Save(&schedule).Error; err != nil {
		return respondError(c, err, "Failed to update schedule")
	}

	sc.Notifier.Changed(c, "UPDATE", "schedules", schedule.ID, req)
	return c.JSON(fiber.Map{
		"message":  "Schedule updated successfully",
		"schedule": utils.ToScheduleView(schedule, sc.Notifier.today()),
	})
}

func (sc *ScheduleController) DeleteSchedule(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	result := database.DB.Delete(&models.TripSchedule{}, id)
	if result.Error != nil {
		return respondError(c, result.Error, "Failed to delete schedule")
	}
	if result.RowsAffected == 0 {
		return notFound(c, "Schedule")
	}

	sc.Notifier.Changed(c, "DELETE", "schedules", id, nil)
	return c.JSON(fiber.Map{"message": "Schedule deleted successfully"})
}

// AdjustSeats books (negative delta) or releases seats on a departure
func (sc *ScheduleController) AdjustSeats(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, "")
	}

	var req AdjustSeatsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Delta == 0 {
		return badRequest(c, "delta must not be zero")
	}

	schedule, err := sc.Schedules.AdjustSeats(c.UserContext(), id, req.Delta)
	if err != nil {
		return respondError(c, err, "Failed to adjust seats")
	}

	sc.Notifier.Changed(c, "ADJUST_SEATS", "schedules", schedule.ID, fiber.Map{
		"delta":     req.Delta,
		"available": schedule.AvailableSeats,
	})
	return c.JSON(fiber.Map{
		"message":  "Seats updated",
		"schedule": utils.ToScheduleView(*schedule, sc.Notifier.today()),
	})
}

// ParsePreview shows how pasted legacy text would be read without saving anything
func (sc *ScheduleController) ParsePreview(c *fiber.Ctx) error {
	var req ParseScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Dates) == "" && strings.TrimSpace(req.Slots) == "" && strings.TrimSpace(req.Price) == "" {
		return badRequest(c, "Provide dates, slots or price to preview")
	}

	year := req.Year
	if year == 0 {
		year = seasonYear()
	}

	resp := fiber.Map{"year": year}

	if text := strings.TrimSpace(req.Dates); text != "" {
		r, ok := utils.ParseThaiDateRange(text, year)
		dates := fiber.Map{"input": text, "recognized": ok}
		if ok {
			duration := utils.DurationBetween(r.DepartureTime(), r.ReturnTime())
			dates["departure_date"] = r.Departure
			dates["return_date"] = r.Return
			dates["shape"] = r.Shape.String()
			dates["display"] = utils.FormatThaiDateRangeTime(r.DepartureTime(), r.ReturnTime())
			dates["duration"] = duration
			dates["duration_display"] = duration.Thai()
		}
		resp["dates"] = dates
	}

	if text := strings.TrimSpace(req.Slots); text != "" {
		available, total := services.SeatsFromSlotsText(text, services.DefaultLegacyTotalSeats)
		resp["slots"] = fiber.Map{
			"input":           text,
			"available_seats": available,
			"total_seats":     total,
			"display":         utils.FormatSlotsDisplay(available, total),
		}
	}

	if text := strings.TrimSpace(req.Price); text != "" {
		price := utils.ParsePrice(text)
		resp["price"] = fiber.Map{
			"input":   text,
			"value":   price,
			"display": utils.FormatPrice(price),
		}
	}

	return c.JSON(resp)
}
