package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"thaitour_go/config"
	"thaitour_go/database"
	"thaitour_go/models"
	"thaitour_go/utils"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	catalogVersionKey = "catalog:version"
	defaultPageLimit  = 12
	maxPageLimit      = 100
)

var ErrNotFound = errors.New("not found")

// CatalogService serves the public trip catalog and caches rendered pages in Redis.
type CatalogService struct {
	db    *gorm.DB
	redis *redis.Client
	ttl   time.Duration
	loc   *time.Location
	now   func() time.Time
}

// NewCatalogService wires the service to the global database and Redis clients.
func NewCatalogService() *CatalogService {
	ttl := 5 * time.Minute
	loc := time.Local
	if config.AppConfig != nil {
		ttl = config.AppConfig.CatalogCacheTTL
		loc = config.AppConfig.Location()
	}
	return NewCatalogServiceWith(database.DB, database.GetRedisClient(), ttl, loc)
}

// NewCatalogServiceWith allows explicit dependencies; rc may be nil to disable caching.
func NewCatalogServiceWith(db *gorm.DB, rc *redis.Client, ttl time.Duration, loc *time.Location) *CatalogService {
	if loc == nil {
		loc = time.Local
	}
	return &CatalogService{db: db, redis: rc, ttl: ttl, loc: loc, now: time.Now}
}

// monthBounds resolves a "YYYY-MM" filter in the site timezone.
func (s *CatalogService) monthBounds(month string) (time.Time, time.Time, error) {
	return MonthRange(month, s.loc)
}

// Today returns the current date in the site timezone.
func (s *CatalogService) Today() time.Time {
	return s.now().In(s.loc)
}

// TripFilter narrows the public trip listing
type TripFilter struct {
	CountryCode string
	TripType    string
	Month       string // YYYY-MM, trips with an active departure in that month
	Featured    *bool
	Page        int
	Limit       int
}

// Normalize clamps pagination and canonicalises filter values.
func (f TripFilter) Normalize() TripFilter {
	f.CountryCode = strings.ToUpper(strings.TrimSpace(f.CountryCode))
	f.TripType = strings.ToLower(strings.TrimSpace(f.TripType))
	f.Month = strings.TrimSpace(f.Month)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageLimit
	}
	if f.Limit > maxPageLimit {
		f.Limit = maxPageLimit
	}
	return f
}

func (f TripFilter) cacheKey() string {
	featured := "any"
	if f.Featured != nil {
		featured = fmt.Sprintf("%t", *f.Featured)
	}
	return fmt.Sprintf("trips:c=%s:t=%s:m=%s:f=%s:p=%d:l=%d", f.CountryCode, f.TripType, f.Month, featured, f.Page, f.Limit)
}

// MonthRange parses "YYYY-MM" into [first day, first day of next month).
func MonthRange(month string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01", month, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}
	return start, start.AddDate(0, 1, 0), nil
}

// TripPage is one page of the public listing
type TripPage struct {
	Trips []utils.TripSummary `json:"trips"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

// ListTrips returns active trips matching the filter.
func (s *CatalogService) ListTrips(ctx context.Context, filter TripFilter) (*TripPage, error) {
	f := filter.Normalize()
	if f.TripType != "" && !utils.IsValidTripType(f.TripType) {
		return nil, invalid("type", "unknown trip type %q", f.TripType)
	}
	var monthStart, monthEnd time.Time
	if f.Month != "" {
		var err error
		if monthStart, monthEnd, err = s.monthBounds(f.Month); err != nil {
			return nil, invalid("month", "%s", err.Error())
		}
	}

	page := &TripPage{Page: f.Page, Limit: f.Limit}
	err := s.remember(ctx, f.cacheKey(), page, func() error {
		db := s.db.WithContext(ctx)
		query := db.Model(&models.Trip{}).Where("is_active = ?", true)
		if f.CountryCode != "" {
			query = query.Where("country_id IN (?)", db.Model(&models.Country{}).Select("id").Where("code = ?", f.CountryCode))
		}
		if f.TripType != "" {
			query = query.Where("trip_type = ?", f.TripType)
		}
		if f.Featured != nil {
			query = query.Where("is_featured = ?", *f.Featured)
		}
		if f.Month != "" {
			query = query.Where("id IN (?)", db.Model(&models.TripSchedule{}).Select("trip_id").
				Where("is_active = ? AND departure_date >= ? AND departure_date < ?", true, monthStart, monthEnd))
		}

		if err := query.Count(&page.Total).Error; err != nil {
			return fmt.Errorf("count trips: %w", err)
		}

		var trips []models.Trip
		err := query.
			Preload("Country").
			Preload("Schedules", func(tx *gorm.DB) *gorm.DB {
				return tx.Where("is_active = ?", true).Order("departure_date ASC")
			}).
			Order("is_featured DESC, sort_order ASC, id DESC").
			Offset((f.Page - 1) * f.Limit).
			Limit(f.Limit).
			Find(&trips).Error
		if err != nil {
			return fmt.Errorf("list trips: %w", err)
		}

		today := s.Today()
		page.Trips = make([]utils.TripSummary, 0, len(trips))
		for _, t := range trips {
			page.Trips = append(page.Trips, utils.ToTripSummary(t, today))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// GetTripBySlug returns the public detail page of an active trip.
func (s *CatalogService) GetTripBySlug(ctx context.Context, slug string) (*utils.TripDetail, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, ErrNotFound
	}

	detail := &utils.TripDetail{}
	err := s.remember(ctx, "trip:"+slug, detail, func() error {
		var trip models.Trip
		err := s.db.WithContext(ctx).
			Preload("Country").
			Preload("Schedules", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("departure_date ASC")
			}).
			Preload("ItineraryDays", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("day_number ASC")
			}).
			Preload("ItineraryDays.Activities", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("sort_order ASC, id ASC")
			}).
			Preload("FAQs", func(tx *gorm.DB) *gorm.DB {
				return tx.Order("sort_order ASC, id ASC")
			}).
			Where("slug = ? AND is_active = ?", slug, true).
			First(&trip).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get trip %s: %w", slug, err)
		}
		*detail = utils.ToTripDetail(trip, s.Today())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// CountryListing is a public country with its number of active trips
type CountryListing struct {
	utils.CountryShort
	TripCount int64 `json:"trip_count"`
}

// ListCountries returns active countries ordered for display.
func (s *CatalogService) ListCountries(ctx context.Context) ([]CountryListing, error) {
	var out []CountryListing
	err := s.remember(ctx, "countries", &out, func() error {
		var countries []models.Country
		if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("sort_order ASC, name_en ASC").Find(&countries).Error; err != nil {
			return fmt.Errorf("list countries: %w", err)
		}

		type countRow struct {
			CountryID uint
			Total     int64
		}
		var rows []countRow
		if err := s.db.WithContext(ctx).Model(&models.Trip{}).
			Select("country_id, COUNT(*) AS total").
			Where("is_active = ?", true).
			Group("country_id").
			Scan(&rows).Error; err != nil {
			return fmt.Errorf("count trips per country: %w", err)
		}
		counts := make(map[uint]int64, len(rows))
		for _, r := range rows {
			counts[r.CountryID] = r.Total
		}

		out = make([]CountryListing, 0, len(countries))
		for _, c := range countries {
			out = append(out, CountryListing{CountryShort: utils.ToCountryShort(c), TripCount: counts[c.ID]})
		}
		return nil
	})
	return out, err
}

// Departure is one upcoming schedule together with its trip, used by chat replies.
type Departure struct {
	Trip     utils.TripSummary
	Schedule utils.ScheduleView
}

// FindCountry matches a country by code or by Thai/English name (case-insensitive).
func (s *CatalogService) FindCountry(ctx context.Context, query string) (*models.Country, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrNotFound
	}
	var country models.Country
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("UPPER(code) = ? OR name_th = ? OR LOWER(name_en) = ?", strings.ToUpper(q), q, strings.ToLower(q)).
		First(&country).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &country, nil
}

// UpcomingDepartures lists open departures of a country's active trips, soonest first.
func (s *CatalogService) UpcomingDepartures(ctx context.Context, countryID uint, limit int) ([]Departure, error) {
	today := s.Today()
	db := s.db.WithContext(ctx)
	var schedules []models.TripSchedule
	err := db.
		Preload("Trip").
		Preload("Trip.Country").
		Where("is_active = ? AND departure_date >= ?", true, today.Format(utils.ISODateLayout)).
		Where("trip_id IN (?)", db.Model(&models.Trip{}).Select("id").Where("country_id = ? AND is_active = ?", countryID, true)).
		Order("departure_date ASC").
		Limit(limit).
		Find(&schedules).Error
	if err != nil {
		return nil, fmt.Errorf("upcoming departures: %w", err)
	}

	out := make([]Departure, 0, len(schedules))
	for _, sc := range schedules {
		trip := sc.Trip
		trip.Schedules = nil
		out = append(out, Departure{
			Trip:     utils.ToTripSummary(trip, today),
			Schedule: utils.ToScheduleView(sc, today),
		})
	}
	return out, nil
}

// Invalidate drops every cached catalog page by bumping the key version.
func (s *CatalogService) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Incr(ctx, catalogVersionKey).Err(); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate catalog cache")
	}
}

func (s *CatalogService) versionedKey(ctx context.Context, key string) string {
	version, err := s.redis.Get(ctx, catalogVersionKey).Int64()
	if err != nil && err != redis.Nil {
		logrus.WithError(err).Debug("catalog version lookup failed")
	}
	return fmt.Sprintf("catalog:v%d:%s", version, key)
}

// remember serves dest from Redis when possible, otherwise calls load (which
// must fill dest) and caches the result.
func (s *CatalogService) remember(ctx context.Context, key string, dest interface{}, load func() error) error {
	if s.redis == nil || s.ttl <= 0 {
		return load()
	}

	fullKey := s.versionedKey(ctx, key)
	if data, err := s.redis.Get(ctx, fullKey).Bytes(); err == nil {
		if err := json.Unmarshal(data, dest); err == nil {
			return nil
		}
	}

	if err := load(); err != nil {
		return err
	}

	data, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	if err := s.redis.Set(ctx, fullKey, data, s.ttl).Err(); err != nil {
		logrus.WithError(err).Debug("catalog cache write failed")
	}
	return nil
}
