package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"thaitour_go/database"
	"thaitour_go/models"
	"thaitour_go/utils"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// DefaultLegacyTotalSeats is used when a legacy row carries no capacity.
const DefaultLegacyTotalSeats = 10

var errEmptySheet = errors.New("file has no data rows")

// legacyColumnAliases maps accepted header spellings to canonical keys.
var legacyColumnAliases = map[string]string{
	"trip":        "trip",
	"trip_slug":   "trip",
	"slug":        "trip",
	"ทริป":        "trip",
	"dates":       "dates",
	"date_range":  "dates",
	"วันเดินทาง":  "dates",
	"วันที่":      "dates",
	"slots":       "slots",
	"ที่นั่ง":     "slots",
	"ที่ว่าง":     "slots",
	"total":       "total",
	"total_seats": "total",
	"จำนวนรับ":    "total",
	"price":       "price",
	"ราคา":        "price",
	"year":        "year",
	"ปี":          "year",
	"note":        "note",
	"หมายเหตุ":    "note",
}

// LegacyScheduleRow is one raw row of a legacy schedule sheet.
type LegacyScheduleRow struct {
	Line     int
	TripSlug string
	Dates    string
	Slots    string
	Total    string
	Price    string
	Year     string
	Note     string
}

// ParsedLegacySchedule is a legacy row converted to structured values.
type ParsedLegacySchedule struct {
	Line           int             `json:"line"`
	TripSlug       string          `json:"trip_slug"`
	Range          utils.DateRange `json:"range"`
	Shape          string          `json:"shape"`
	Duration       string          `json:"duration"`
	AvailableSeats int             `json:"available_seats"`
	TotalSeats     int             `json:"total_seats"`
	Price          float64         `json:"price"`
	Note           string          `json:"note,omitempty"`
}

// ImportOptions controls a legacy import run
type ImportOptions struct {
	SeasonYear   int
	DefaultTotal int
	DryRun       bool
}

// ImportReport summarises a legacy import run.
type ImportReport struct {
	DryRun   bool                   `json:"dry_run"`
	Rows     int                    `json:"rows"`
	Inserted int                    `json:"inserted"`
	Updated  int                    `json:"updated"`
	Skipped  int                    `json:"skipped"`
	Errors   []string               `json:"errors"`
	Parsed   []ParsedLegacySchedule `json:"parsed,omitempty"`
}

// ReadCSVRows reads every record of a CSV stream.
func ReadCSVRows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

// ReadXLSXRows returns the rows of the first sheet of a workbook.
func ReadXLSXRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		sheet = "Sheet1"
	}
	return f.GetRows(sheet)
}

// RowsFromSheet maps a header row plus data rows to legacy rows. Blank rows are dropped.
func RowsFromSheet(sheet [][]string) ([]LegacyScheduleRow, error) {
	if len(sheet) < 2 {
		return nil, errEmptySheet
	}

	col := map[string]int{}
	for idx, h := range sheet[0] {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canonical, ok := legacyColumnAliases[key]; ok {
			if _, seen := col[canonical]; !seen {
				col[canonical] = idx
			}
		}
	}
	for _, required := range []string{"trip", "dates"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	get := func(row []string, key string) string {
		if idx, ok := col[key]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []LegacyScheduleRow
	for i, raw := range sheet[1:] {
		if isBlankRow(raw) {
			continue
		}
		rows = append(rows, LegacyScheduleRow{
			Line:     i + 2,
			TripSlug: get(raw, "trip"),
			Dates:    get(raw, "dates"),
			Slots:    get(raw, "slots"),
			Total:    get(raw, "total"),
			Price:    get(raw, "price"),
			Year:     get(raw, "year"),
			Note:     get(raw, "note"),
		})
	}
	if len(rows) == 0 {
		return nil, errEmptySheet
	}
	return rows, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ParseLegacyScheduleRow converts the display strings of one legacy row.
func ParseLegacyScheduleRow(row LegacyScheduleRow, seasonYear, defaultTotal int) (ParsedLegacySchedule, error) {
	slug := strings.ToLower(strings.TrimSpace(row.TripSlug))
	if slug == "" {
		return ParsedLegacySchedule{}, fmt.Errorf("line %d: trip is required", row.Line)
	}

	year, ok := utils.ResolveYear(row.Year, seasonYear)
	if !ok {
		return ParsedLegacySchedule{}, fmt.Errorf("line %d: invalid year %q", row.Line, row.Year)
	}

	r, ok := utils.ParseThaiDateRange(row.Dates, year)
	if !ok {
		return ParsedLegacySchedule{}, fmt.Errorf("line %d: unrecognized dates %q", row.Line, row.Dates)
	}
	duration, err := utils.CalculateDuration(r.Departure, r.Return)
	if err != nil {
		return ParsedLegacySchedule{}, fmt.Errorf("line %d: %w", row.Line, err)
	}

	total := defaultTotal
	if strings.TrimSpace(row.Total) != "" {
		total = utils.ParseSlots(row.Total)
	}
	available := total
	if strings.TrimSpace(row.Slots) != "" {
		available, total = SeatsFromSlotsText(row.Slots, total)
	}

	return ParsedLegacySchedule{
		Line:           row.Line,
		TripSlug:       slug,
		Range:          r,
		Shape:          r.Shape.String(),
		Duration:       duration.Thai(),
		AvailableSeats: available,
		TotalSeats:     total,
		Price:          utils.ParsePrice(row.Price),
		Note:           utils.SanitizeString(row.Note),
	}, nil
}

// LegacyImportService loads legacy schedule sheets into trip schedules
type LegacyImportService struct {
	db      *gorm.DB
	catalog *CatalogService
	events  EventPublisher
}

func NewLegacyImportService(catalog *CatalogService, events EventPublisher) *LegacyImportService {
	return &LegacyImportService{db: database.DB, catalog: catalog, events: events}
}

// Import parses every row and, unless opts.DryRun, upserts schedules in one
// transaction keyed by trip and departure date. Rows that fail to parse or
// name an unknown trip are reported and skipped.
func (s *LegacyImportService) Import(ctx context.Context, rows []LegacyScheduleRow, opts ImportOptions) (*ImportReport, error) {
	if opts.DefaultTotal <= 0 {
		opts.DefaultTotal = DefaultLegacyTotalSeats
	}
	report := &ImportReport{DryRun: opts.DryRun, Rows: len(rows), Errors: []string{}}

	var parsed []ParsedLegacySchedule
	for _, row := range rows {
		p, err := ParseLegacyScheduleRow(row, opts.SeasonYear, opts.DefaultTotal)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
			report.Skipped++
			continue
		}
		parsed = append(parsed, p)
	}

	if opts.DryRun {
		report.Parsed = parsed
		return report, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		trips := map[string]*models.Trip{}
		for _, p := range parsed {
			trip, ok := trips[p.TripSlug]
			if !ok {
				var t models.Trip
				if err := tx.Where("slug = ?", p.TripSlug).First(&t).Error; err != nil {
					if !errors.Is(err, gorm.ErrRecordNotFound) {
						return err
					}
					trips[p.TripSlug] = nil
				} else {
					trips[p.TripSlug] = &t
				}
				trip = trips[p.TripSlug]
			}
			if trip == nil {
				report.Errors = append(report.Errors, fmt.Sprintf("line %d: unknown trip %q", p.Line, p.TripSlug))
				report.Skipped++
				continue
			}

			inserted, err := upsertLegacySchedule(tx, trip.ID, p)
			if err != nil {
				return fmt.Errorf("line %d: %w", p.Line, err)
			}
			if inserted {
				report.Inserted++
			} else {
				report.Updated++
			}

			if p.Price > 0 && p.Price != trip.PricePerPerson {
				if err := tx.Model(trip).Update("price_per_person", p.Price).Error; err != nil {
					return fmt.Errorf("line %d: update price: %w", p.Line, err)
				}
				trip.PricePerPerson = p.Price
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"rows":     report.Rows,
		"inserted": report.Inserted,
		"updated":  report.Updated,
		"skipped":  report.Skipped,
	}).Info("Legacy schedule import finished")

	if report.Inserted+report.Updated > 0 {
		if s.catalog != nil {
			s.catalog.Invalidate(ctx)
		}
		if s.events != nil {
			s.events.Publish(ChangeEvent{Type: "import", Resource: "schedules", Count: int64(report.Inserted + report.Updated), At: time.Now()})
		}
	}
	return report, nil
}

func upsertLegacySchedule(tx *gorm.DB, tripID uint, p ParsedLegacySchedule) (bool, error) {
	schedule := models.TripSchedule{
		TripID:         tripID,
		DepartureDate:  p.Range.DepartureTime(),
		ReturnDate:     p.Range.ReturnTime(),
		TotalSeats:     p.TotalSeats,
		AvailableSeats: p.AvailableSeats,
		IsActive:       true,
		Note:           p.Note,
	}
	if err := ValidateSchedule(schedule); err != nil {
		return false, err
	}

	var existing models.TripSchedule
	err := tx.Where("trip_id = ? AND departure_date = ?", tripID, p.Range.Departure).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, tx.Create(&schedule).Error
	}
	if err != nil {
		return false, err
	}

	return false, tx.Model(&existing).Updates(map[string]interface{}{
		"return_date":     schedule.ReturnDate,
		"total_seats":     schedule.TotalSeats,
		"available_seats": schedule.AvailableSeats,
		"note":            schedule.Note,
		"is_active":       true,
	}).Error
}
