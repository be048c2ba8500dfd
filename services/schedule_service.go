package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"thaitour_go/database"
	"thaitour_go/models"
	"thaitour_go/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ValidationError is returned for input the client has to correct.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err (or anything it wraps) is a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ScheduleInput is the admin payload for creating or updating a departure.
// Dates may be given in ISO form or as a compact Thai range in DateRangeText;
// seats may be given as numbers or as a legacy slots text in SlotsText.
type ScheduleInput struct {
	DepartureDate        string  `json:"departure_date"`
	ReturnDate           string  `json:"return_date"`
	DateRangeText        string  `json:"date_range_text"`
	Year                 int     `json:"year"`
	RegistrationDeadline *string `json:"registration_deadline"`
	TotalSeats           *int    `json:"total_seats"`
	AvailableSeats       *int    `json:"available_seats"`
	SlotsText            string  `json:"slots_text"`
	IsActive             *bool   `json:"is_active"`
	Note                 *string `json:"note"`
}

// ApplyScheduleInput merges in into s and validates the result. seasonYear is
// used when DateRangeText carries no year of its own.
func ApplyScheduleInput(s *models.TripSchedule, in ScheduleInput, seasonYear int) error {
	if text := strings.TrimSpace(in.DateRangeText); text != "" {
		year := in.Year
		if year == 0 {
			year = seasonYear
		}
		r, ok := utils.ParseThaiDateRange(text, year)
		if !ok {
			return invalid("date_range_text", "unrecognized date range %q", text)
		}
		s.DepartureDate = r.DepartureTime()
		s.ReturnDate = r.ReturnTime()
	} else {
		if in.DepartureDate != "" {
			t, err := utils.ParseISODate(in.DepartureDate)
			if err != nil {
				return invalid("departure_date", "expected YYYY-MM-DD")
			}
			s.DepartureDate = t
		}
		if in.ReturnDate != "" {
			t, err := utils.ParseISODate(in.ReturnDate)
			if err != nil {
				return invalid("return_date", "expected YYYY-MM-DD")
			}
			s.ReturnDate = t
		}
	}

	if in.RegistrationDeadline != nil {
		if strings.TrimSpace(*in.RegistrationDeadline) == "" {
			s.RegistrationDeadline = nil
		} else {
			t, err := utils.ParseISODate(*in.RegistrationDeadline)
			if err != nil {
				return invalid("registration_deadline", "expected YYYY-MM-DD")
			}
			s.RegistrationDeadline = &t
		}
	}

	if in.TotalSeats != nil {
		s.TotalSeats = *in.TotalSeats
	}
	if in.AvailableSeats != nil {
		s.AvailableSeats = *in.AvailableSeats
	}
	if text := strings.TrimSpace(in.SlotsText); text != "" {
		available, total := SeatsFromSlotsText(text, s.TotalSeats)
		s.AvailableSeats = available
		if in.TotalSeats == nil {
			s.TotalSeats = total
		}
	}

	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
	if in.Note != nil {
		s.Note = utils.SanitizeString(*in.Note)
	}

	return ValidateSchedule(*s)
}

// SeatsFromSlotsText reads a legacy slots cell. "รับ 10 ท่าน" announces the
// whole capacity, so it sets both counts; other forms only set available
// seats and total grows to fit them.
func SeatsFromSlotsText(text string, currentTotal int) (available, total int) {
	available = utils.ParseSlots(text)
	total = currentTotal
	if strings.HasPrefix(strings.TrimSpace(text), "รับ") {
		total = available
	}
	if total < available {
		total = available
	}
	return available, total
}

// ValidateSchedule checks the invariants of a departure.
func ValidateSchedule(s models.TripSchedule) error {
	if s.DepartureDate.IsZero() {
		return invalid("departure_date", "is required")
	}
	if s.ReturnDate.IsZero() {
		return invalid("return_date", "is required")
	}
	if s.ReturnDate.Before(s.DepartureDate) {
		return invalid("return_date", "must not be before departure date")
	}
	if s.TotalSeats < 0 {
		return invalid("total_seats", "must not be negative")
	}
	if s.AvailableSeats < 0 {
		return invalid("available_seats", "must not be negative")
	}
	if s.AvailableSeats > s.TotalSeats {
		return invalid("available_seats", "must not exceed total seats (%d)", s.TotalSeats)
	}
	if s.RegistrationDeadline != nil && s.RegistrationDeadline.After(s.DepartureDate) {
		return invalid("registration_deadline", "must be on or before departure date")
	}
	return nil
}

// ScheduleService runs maintenance over trip departures
type ScheduleService struct {
	db      *gorm.DB
	catalog *CatalogService
	events  EventPublisher
}

// EventPublisher receives admin change notifications
type EventPublisher interface {
	Publish(event ChangeEvent)
}

// ChangeEvent describes a write to catalog data.
type ChangeEvent struct {
	Type       string    `json:"type"`
	Resource   string    `json:"resource"`
	ResourceID uint      `json:"resource_id,omitempty"`
	Count      int64     `json:"count,omitempty"`
	Username   string    `json:"username,omitempty"`
	At         time.Time `json:"at"`
}

func NewScheduleService(catalog *CatalogService, events EventPublisher) *ScheduleService {
	return &ScheduleService{db: database.DB, catalog: catalog, events: events}
}

// DeactivateDeparted switches off active schedules whose departure date is before today.
func (s *ScheduleService) DeactivateDeparted(ctx context.Context, today time.Time) (int64, error) {
	cutoff := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)
	result := s.db.WithContext(ctx).
		Model(&models.TripSchedule{}).
		Where("is_active = ? AND departure_date < ?", true, cutoff.Format(utils.ISODateLayout)).
		Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("deactivate departed schedules: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		logrus.WithField("count", result.RowsAffected).Info("Deactivated departed schedules")
		if s.catalog != nil {
			s.catalog.Invalidate(ctx)
		}
		if s.events != nil {
			s.events.Publish(ChangeEvent{Type: "sweep", Resource: "schedules", Count: result.RowsAffected, At: time.Now()})
		}
	}
	return result.RowsAffected, nil
}

// AdjustSeats books (delta < 0) or releases (delta > 0) seats without leaving 0..total.
func (s *ScheduleService) AdjustSeats(ctx context.Context, scheduleID uint, delta int) (*models.TripSchedule, error) {
	var schedule models.TripSchedule
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&schedule, scheduleID).Error; err != nil {
			return err
		}
		next := schedule.AvailableSeats + delta
		if next < 0 {
			return invalid("available_seats", "only %d seats left", schedule.AvailableSeats)
		}
		if next > schedule.TotalSeats {
			return invalid("available_seats", "cannot exceed total seats (%d)", schedule.TotalSeats)
		}
		schedule.AvailableSeats = next
		return tx.Model(&schedule).Update("available_seats", next).Error
	})
	if err != nil {
		return nil, err
	}
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
	return &schedule, nil
}
