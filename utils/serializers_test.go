package utils

import (
	"testing"
	"time"

	"thaitour_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func schedule(id uint, dep, ret time.Time, available, total int) models.TripSchedule {
	s := models.TripSchedule{
		TripID:         1,
		DepartureDate:  dep,
		ReturnDate:     ret,
		AvailableSeats: available,
		TotalSeats:     total,
		IsActive:       true,
	}
	s.ID = id
	return s
}

func TestToScheduleView(t *testing.T) {
	today := day(2026, time.January, 10)
	v := ToScheduleView(schedule(7, day(2026, time.February, 13), day(2026, time.February, 20), 4, 10), today)

	assert.Equal(t, "2026-02-13", v.DepartureDate)
	assert.Equal(t, "2026-02-20", v.ReturnDate)
	assert.Equal(t, "13-20 ก.พ.", v.DateRangeDisplay)
	assert.Equal(t, "8 วัน 7 คืน", v.DurationDisplay)
	assert.Equal(t, "เหลือ 4 ที่", v.SlotsDisplay)
	assert.False(t, v.IsFull)
	assert.True(t, v.RegistrationOpen)
	assert.Nil(t, v.RegistrationDeadline)
}

func TestToScheduleViewRegistrationClosed(t *testing.T) {
	today := day(2026, time.February, 5)

	full := ToScheduleView(schedule(1, day(2026, time.February, 13), day(2026, time.February, 20), 0, 10), today)
	assert.True(t, full.IsFull)
	assert.Equal(t, "เต็ม", full.SlotsDisplay)
	assert.False(t, full.RegistrationOpen)

	s := schedule(2, day(2026, time.February, 13), day(2026, time.February, 20), 5, 10)
	deadline := day(2026, time.February, 1)
	s.RegistrationDeadline = &deadline
	late := ToScheduleView(s, today)
	require.NotNil(t, late.RegistrationDeadline)
	assert.Equal(t, "2026-02-01", *late.RegistrationDeadline)
	assert.False(t, late.RegistrationOpen)

	departed := ToScheduleView(schedule(3, day(2026, time.February, 5), day(2026, time.February, 9), 5, 10), today)
	assert.False(t, departed.RegistrationOpen)
}

func TestUpcomingSchedulesSkipsPastAndInactive(t *testing.T) {
	today := day(2026, time.February, 10)
	past := schedule(1, day(2026, time.February, 1), day(2026, time.February, 5), 5, 10)
	inactive := schedule(2, day(2026, time.March, 1), day(2026, time.March, 5), 5, 10)
	inactive.IsActive = false
	departingToday := schedule(3, today, day(2026, time.February, 15), 5, 10)
	later := schedule(4, day(2026, time.April, 1), day(2026, time.April, 5), 5, 10)

	out := UpcomingSchedules([]models.TripSchedule{past, inactive, departingToday, later}, today)
	require.Len(t, out, 2)
	assert.Equal(t, uint(3), out[0].ID)
	assert.Equal(t, uint(4), out[1].ID)
}

func TestToTripSummaryPicksFirstOpenDeparture(t *testing.T) {
	today := day(2026, time.January, 10)
	trip := models.Trip{
		Title:          "ฮอกไกโด",
		Slug:           "hokkaido",
		TripType:       models.TripTypeGroup,
		PricePerPerson: 65900,
		Country:        models.Country{Code: "JP", NameTh: "ญี่ปุ่น", NameEn: "Japan"},
		Schedules: []models.TripSchedule{
			schedule(1, day(2026, time.February, 4), day(2026, time.February, 11), 0, 10),
			schedule(2, day(2026, time.February, 13), day(2026, time.February, 17), 3, 10),
		},
	}

	summary := ToTripSummary(trip, today)
	assert.Equal(t, "฿65,900", summary.PriceDisplay)
	assert.Equal(t, "JP", summary.Country.Code)
	assert.Equal(t, 2, summary.UpcomingCount)
	require.NotNil(t, summary.NextDeparture)
	assert.Equal(t, uint(2), summary.NextDeparture.ID)
	assert.Equal(t, "5 วัน 4 คืน", summary.DurationDisplay)
}

func TestToTripSummaryFallsBackToItinerary(t *testing.T) {
	trip := models.Trip{ItineraryDays: make([]models.ItineraryDay, 6)}
	summary := ToTripSummary(trip, day(2026, time.January, 10))
	assert.Nil(t, summary.NextDeparture)
	assert.Equal(t, "6 วัน 5 คืน", summary.DurationDisplay)
}

func TestToTripDetailKeepsActiveFAQs(t *testing.T) {
	trip := models.Trip{
		FAQs: []models.FAQ{
			{Question: "a", IsActive: true},
			{Question: "b", IsActive: false},
		},
	}
	detail := ToTripDetail(trip, day(2026, time.January, 10))
	require.Len(t, detail.FAQs, 1)
	assert.Equal(t, "a", detail.FAQs[0].Question)
	assert.NotNil(t, detail.Itinerary)
	assert.Empty(t, detail.Schedules)
}
