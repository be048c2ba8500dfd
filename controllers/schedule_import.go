package controllers

import (
	"strconv"
	"strings"

	"thaitour_go/middleware"
	"thaitour_go/services"
	"thaitour_go/utils"

	"github.com/gofiber/fiber/v2"
)

// ScheduleImportController loads departures from legacy spreadsheets
type ScheduleImportController struct {
	Importer *services.LegacyImportService
}

// Import parses an uploaded CSV/XLSX sheet with trip, dates, slots, price and
// optional total columns. With dry_run=true nothing is written.
func (sic *ScheduleImportController) Import(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "cannot open file")
	}
	defer file.Close()

	filename := strings.ToLower(fileHeader.Filename)
	var sheet [][]string
	switch {
	case strings.HasSuffix(filename, ".csv"):
		sheet, err = services.ReadCSVRows(file)
	case strings.HasSuffix(filename, ".xlsx"):
		sheet, err = services.ReadXLSXRows(file)
	default:
		return badRequest(c, "unsupported file type (csv, xlsx)")
	}
	if err != nil {
		return badRequest(c, err.Error())
	}

	rows, err := services.RowsFromSheet(sheet)
	if err != nil {
		return badRequest(c, err.Error())
	}

	opts := services.ImportOptions{
		SeasonYear:   seasonYear(),
		DefaultTotal: services.DefaultLegacyTotalSeats,
		DryRun:       strings.EqualFold(c.FormValue("dry_run", c.Query("dry_run")), "true"),
	}
	if v := c.FormValue("year"); v != "" {
		year, ok := utils.ResolveYear(v, 0)
		if !ok {
			return badRequest(c, "year must be a Gregorian or Buddhist Era year")
		}
		opts.SeasonYear = year
	}
	if v := c.FormValue("default_total"); v != "" {
		total, err := strconv.Atoi(v)
		if err != nil || total < 1 {
			return badRequest(c, "default_total must be a positive number")
		}
		opts.DefaultTotal = total
	}

	report, err := sic.Importer.Import(c.UserContext(), rows, opts)
	if err != nil {
		return respondError(c, err, "Failed to import schedules")
	}

	if !opts.DryRun {
		middleware.LogActivity(c, "IMPORT", "schedules", 0, fiber.Map{
			"file_name": fileHeader.Filename,
			"inserted":  report.Inserted,
			"updated":   report.Updated,
			"skipped":   report.Skipped,
		})
		middleware.MarkActivityLogged(c)
	}

	return c.JSON(fiber.Map{
		"success":   len(report.Errors) == 0,
		"file_name": fileHeader.Filename,
		"year":      opts.SeasonYear,
		"report":    report,
	})
}
