package utils

import (
	"time"

	"thaitour_go/models"
)

// CountryShort is the compact country shape embedded in trip listings
type CountryShort struct {
	ID     uint   `json:"id"`
	Code   string `json:"code"`
	NameTh string `json:"name_th"`
	NameEn string `json:"name_en"`
	Flag   string `json:"flag,omitempty"`
}

// ScheduleView is a schedule with its Thai display strings
type ScheduleView struct {
	ID                   uint         `json:"id"`
	TripID               uint         `json:"trip_id"`
	DepartureDate        string       `json:"departure_date"`
	ReturnDate           string       `json:"return_date"`
	RegistrationDeadline *string      `json:"registration_deadline"`
	DateRangeDisplay     string       `json:"date_range_display"`
	Duration             TripDuration `json:"duration"`
	DurationDisplay      string       `json:"duration_display"`
	TotalSeats           int          `json:"total_seats"`
	AvailableSeats       int          `json:"available_seats"`
	SlotsDisplay         string       `json:"slots_display"`
	IsFull               bool         `json:"is_full"`
	IsActive             bool         `json:"is_active"`
	RegistrationOpen     bool         `json:"registration_open"`
	Note                 string       `json:"note,omitempty"`
}

// TripSummary is the listing card shape of a trip
type TripSummary struct {
	ID              uint          `json:"id"`
	Title           string        `json:"title"`
	Slug            string        `json:"slug"`
	Summary         string        `json:"summary"`
	TripType        string        `json:"trip_type"`
	CoverImage      string        `json:"cover_image"`
	PricePerPerson  float64       `json:"price_per_person"`
	PriceDisplay    string        `json:"price_display"`
	IsFeatured      bool          `json:"is_featured"`
	Country         CountryShort  `json:"country"`
	DurationDisplay string        `json:"duration_display,omitempty"`
	NextDeparture   *ScheduleView `json:"next_departure,omitempty"`
	UpcomingCount   int           `json:"upcoming_count"`
}

// TripDetail is the full public trip page
type TripDetail struct {
	TripSummary
	Description string                `json:"description"`
	Schedules   []ScheduleView        `json:"schedules"`
	Itinerary   []models.ItineraryDay `json:"itinerary"`
	FAQs        []models.FAQ          `json:"faqs"`
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ToCountryShort maps a country to its compact form
func ToCountryShort(c models.Country) CountryShort {
	return CountryShort{ID: c.ID, Code: c.Code, NameTh: c.NameTh, NameEn: c.NameEn, Flag: c.Flag}
}

// ToScheduleView renders a schedule relative to today (the site's local date).
func ToScheduleView(s models.TripSchedule, today time.Time) ScheduleView {
	duration := DurationBetween(s.DepartureDate, s.ReturnDate)
	v := ScheduleView{
		ID:               s.ID,
		TripID:           s.TripID,
		DepartureDate:    s.DepartureDate.Format(ISODateLayout),
		ReturnDate:       s.ReturnDate.Format(ISODateLayout),
		DateRangeDisplay: FormatThaiDateRangeTime(s.DepartureDate, s.ReturnDate),
		Duration:         duration,
		DurationDisplay:  duration.Thai(),
		TotalSeats:       s.TotalSeats,
		AvailableSeats:   s.AvailableSeats,
		SlotsDisplay:     FormatSlotsDisplay(s.AvailableSeats, s.TotalSeats),
		IsFull:           s.AvailableSeats <= 0,
		IsActive:         s.IsActive,
		Note:             s.Note,
	}

	day := dateOnly(today)
	open := s.IsActive && !v.IsFull && day.Before(dateOnly(s.DepartureDate))
	if s.RegistrationDeadline != nil {
		deadline := s.RegistrationDeadline.Format(ISODateLayout)
		v.RegistrationDeadline = &deadline
		if day.After(dateOnly(*s.RegistrationDeadline)) {
			open = false
		}
	}
	v.RegistrationOpen = open
	return v
}

// UpcomingSchedules keeps active schedules departing today or later, in input order.
func UpcomingSchedules(schedules []models.TripSchedule, today time.Time) []ScheduleView {
	day := dateOnly(today)
	out := make([]ScheduleView, 0, len(schedules))
	for _, s := range schedules {
		if !s.IsActive || dateOnly(s.DepartureDate).Before(day) {
			continue
		}
		out = append(out, ToScheduleView(s, today))
	}
	return out
}

// ToTripSummary expects Country and Schedules (ordered by departure) to be preloaded.
func ToTripSummary(t models.Trip, today time.Time) TripSummary {
	summary := TripSummary{
		ID:             t.ID,
		Title:          t.Title,
		Slug:           t.Slug,
		Summary:        t.Summary,
		TripType:       t.TripType,
		CoverImage:     t.CoverImage,
		PricePerPerson: t.PricePerPerson,
		PriceDisplay:   FormatPrice(t.PricePerPerson),
		IsFeatured:     t.IsFeatured,
		Country:        ToCountryShort(t.Country),
	}

	upcoming := UpcomingSchedules(t.Schedules, today)
	summary.UpcomingCount = len(upcoming)
	for i := range upcoming {
		if !upcoming[i].IsFull {
			next := upcoming[i]
			summary.NextDeparture = &next
			break
		}
	}
	switch {
	case summary.NextDeparture != nil:
		summary.DurationDisplay = summary.NextDeparture.DurationDisplay
	case len(upcoming) > 0:
		summary.DurationDisplay = upcoming[0].DurationDisplay
	case len(t.ItineraryDays) > 0:
		days := len(t.ItineraryDays)
		summary.DurationDisplay = FormatDurationThai(days, days-1)
	}
	return summary
}

// ToTripDetail expects Country, Schedules, ItineraryDays.Activities and FAQs to be preloaded.
func ToTripDetail(t models.Trip, today time.Time) TripDetail {
	detail := TripDetail{
		TripSummary: ToTripSummary(t, today),
		Description: t.Description,
		Schedules:   UpcomingSchedules(t.Schedules, today),
		Itinerary:   t.ItineraryDays,
		FAQs:        make([]models.FAQ, 0, len(t.FAQs)),
	}
	for _, f := range t.FAQs {
		if f.IsActive {
			detail.FAQs = append(detail.FAQs, f)
		}
	}
	if detail.Itinerary == nil {
		detail.Itinerary = []models.ItineraryDay{}
	}
	return detail
}
