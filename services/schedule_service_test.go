package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"thaitour_go/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func localDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestApplyScheduleInputFromThaiRange(t *testing.T) {
	var s models.TripSchedule
	err := ApplyScheduleInput(&s, ScheduleInput{
		DateRangeText: "29 ธ.ค. - 6 ม.ค.",
		SlotsText:     "รับ 8 ท่าน",
	}, 2026)
	require.NoError(t, err)

	assert.Equal(t, localDate(2025, time.December, 29), s.DepartureDate)
	assert.Equal(t, localDate(2026, time.January, 6), s.ReturnDate)
	assert.Equal(t, 8, s.TotalSeats)
	assert.Equal(t, 8, s.AvailableSeats)
}

func TestApplyScheduleInputExplicitYearWins(t *testing.T) {
	var s models.TripSchedule
	require.NoError(t, ApplyScheduleInput(&s, ScheduleInput{DateRangeText: "13-20 ก.พ.", Year: 2027, TotalSeats: intPtr(10)}, 2026))
	assert.Equal(t, localDate(2027, time.February, 13), s.DepartureDate)
}

func TestApplyScheduleInputISODates(t *testing.T) {
	s := models.TripSchedule{TotalSeats: 12, AvailableSeats: 12}
	err := ApplyScheduleInput(&s, ScheduleInput{
		DepartureDate:        "2026-03-01",
		ReturnDate:           "2026-03-05",
		RegistrationDeadline: strPtr("2026-02-15"),
		SlotsText:            "เหลือ 4 ที่",
		Note:                 strPtr("  early bird  "),
	}, 2026)
	require.NoError(t, err)

	assert.Equal(t, 12, s.TotalSeats)
	assert.Equal(t, 4, s.AvailableSeats)
	require.NotNil(t, s.RegistrationDeadline)
	assert.Equal(t, localDate(2026, time.February, 15), *s.RegistrationDeadline)
	assert.Equal(t, "early bird", s.Note)
}

func TestApplyScheduleInputClearsDeadline(t *testing.T) {
	deadline := localDate(2026, time.February, 1)
	s := models.TripSchedule{
		DepartureDate:        localDate(2026, time.March, 1),
		ReturnDate:           localDate(2026, time.March, 3),
		RegistrationDeadline: &deadline,
	}
	require.NoError(t, ApplyScheduleInput(&s, ScheduleInput{RegistrationDeadline: strPtr("")}, 2026))
	assert.Nil(t, s.RegistrationDeadline)
}

func TestApplyScheduleInputErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    ScheduleInput
		field string
	}{
		{"unrecognized range", ScheduleInput{DateRangeText: "next week"}, "date_range_text"},
		{"bad iso", ScheduleInput{DepartureDate: "01/03/2026"}, "departure_date"},
		{"missing dates", ScheduleInput{TotalSeats: intPtr(5)}, "departure_date"},
		{"reversed", ScheduleInput{DepartureDate: "2026-03-05", ReturnDate: "2026-03-01"}, "return_date"},
		{"overbooked", ScheduleInput{DateRangeText: "1-3 มี.ค.", TotalSeats: intPtr(5), AvailableSeats: intPtr(6)}, "available_seats"},
		{"negative total", ScheduleInput{DateRangeText: "1-3 มี.ค.", TotalSeats: intPtr(-1)}, "total_seats"},
		{"late deadline", ScheduleInput{DateRangeText: "1-3 มี.ค.", RegistrationDeadline: strPtr("2026-03-02")}, "registration_deadline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s models.TripSchedule
			err := ApplyScheduleInput(&s, tt.in, 2026)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tt.field, err.(*ValidationError).Field)
		})
	}
}

func TestSeatsFromSlotsText(t *testing.T) {
	tests := []struct {
		text          string
		currentTotal  int
		wantAvailable int
		wantTotal     int
	}{
		{"รับ 10 ท่าน", 0, 10, 10},
		{"รับ 6 ท่าน", 20, 6, 6},
		{"เหลือ 4 ที่", 10, 4, 10},
		{"เหลือ 12 ที่", 10, 12, 12},
		{"เต็ม", 10, 0, 10},
		{"เหลือ ๓ ที่", 8, 3, 8},
	}
	for _, tt := range tests {
		available, total := SeatsFromSlotsText(tt.text, tt.currentTotal)
		assert.Equal(t, tt.wantAvailable, available, tt.text)
		assert.Equal(t, tt.wantTotal, total, tt.text)
	}
}

func TestValidateScheduleSameDayTrip(t *testing.T) {
	day := localDate(2026, time.May, 1)
	assert.NoError(t, ValidateSchedule(models.TripSchedule{DepartureDate: day, ReturnDate: day, RegistrationDeadline: &day}))
}

func TestDeactivateDeparted(t *testing.T) {
	db, mock := newMockDB(t)
	events := &recordingPublisher{}
	svc := &ScheduleService{db: db, events: events}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `trip_schedules` SET `is_active`=?")).
		WithArgs(false, sqlmock.AnyArg(), true, "2026-03-10").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := svc.DeactivateDeparted(context.Background(), time.Date(2026, time.March, 10, 15, 30, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.Len(t, events.events, 1)
	assert.Equal(t, "sweep", events.events[0].Type)
	assert.Equal(t, int64(3), events.events[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateDepartedNothingToDo(t *testing.T) {
	db, mock := newMockDB(t)
	events := &recordingPublisher{}
	svc := &ScheduleService{db: db, events: events}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `trip_schedules`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	n, err := svc.DeactivateDeparted(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, events.events)
}
