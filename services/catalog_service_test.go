package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripFilterNormalize(t *testing.T) {
	f := TripFilter{CountryCode: " jp ", TripType: "GROUP", Page: -2, Limit: 1000}.Normalize()
	assert.Equal(t, "JP", f.CountryCode)
	assert.Equal(t, "group", f.TripType)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, maxPageLimit, f.Limit)

	assert.Equal(t, defaultPageLimit, TripFilter{}.Normalize().Limit)
}

func TestTripFilterCacheKeyDistinguishesFilters(t *testing.T) {
	yes, no := true, false
	a := TripFilter{Featured: &yes}.Normalize().cacheKey()
	b := TripFilter{Featured: &no}.Normalize().cacheKey()
	c := TripFilter{}.Normalize().cacheKey()
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, c, TripFilter{Page: 1, Limit: defaultPageLimit}.Normalize().cacheKey())
}

func TestMonthRange(t *testing.T) {
	start, end, err := MonthRange("2026-12", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), end)

	_, _, err = MonthRange("12/2026", time.UTC)
	assert.Error(t, err)
}

func TestMonthBoundsUseSiteTimezone(t *testing.T) {
	ict := time.FixedZone("ICT", 7*3600)
	svc := NewCatalogServiceWith(nil, nil, 0, ict)
	start, end, err := svc.monthBounds("2026-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, ict), start)
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, ict), end)
	assert.Equal(t, ict, start.Location())
}

func TestListTripsRejectsBadFilters(t *testing.T) {
	svc := NewCatalogServiceWith(nil, nil, 0, time.UTC)
	_, err := svc.ListTrips(context.Background(), TripFilter{TripType: "cruise"})
	assert.Error(t, err)
	_, err = svc.ListTrips(context.Background(), TripFilter{Month: "next"})
	assert.Error(t, err)
}

func TestListCountriesWithoutCache(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCatalogServiceWith(db, nil, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `countries` WHERE is_active = ?")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name_th", "name_en", "code", "flag", "is_active"}).
			AddRow(1, "ญี่ปุ่น", "Japan", "JP", "🇯🇵", true).
			AddRow(2, "เกาหลีใต้", "South Korea", "KR", "🇰🇷", true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT country_id, COUNT(*) AS total FROM `trips`")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"country_id", "total"}).AddRow(1, 4))

	countries, err := svc.ListCountries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 2)
	assert.Equal(t, "JP", countries[0].Code)
	assert.Equal(t, int64(4), countries[0].TripCount)
	assert.Equal(t, int64(0), countries[1].TripCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTripBySlugEmpty(t *testing.T) {
	svc := NewCatalogServiceWith(nil, nil, 0, time.UTC)
	_, err := svc.GetTripBySlug(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogToday(t *testing.T) {
	bangkok := time.FixedZone("ICT", 7*3600)
	svc := NewCatalogServiceWith(nil, nil, 0, bangkok)
	svc.now = func() time.Time { return time.Date(2026, time.March, 9, 20, 0, 0, 0, time.UTC) }
	assert.Equal(t, 10, svc.Today().Day())
}
