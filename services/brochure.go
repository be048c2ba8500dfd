package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"thaitour_go/utils"

	"github.com/phpdave11/gofpdf"
)

const brochureFont = "thai"

var ErrBrochureFontMissing = errors.New("brochure font not found")

// BrochureService renders printable trip brochures.
type BrochureService struct {
	fontPath string
	siteName string
}

func NewBrochureService(fontPath, siteName string) *BrochureService {
	return &BrochureService{fontPath: fontPath, siteName: siteName}
}

// Render writes an A4 PDF for trip to w. A Thai-capable TrueType font is
// required because the core PDF fonts have no Thai glyphs.
func (s *BrochureService) Render(w io.Writer, trip utils.TripDetail) error {
	if _, err := os.Stat(s.fontPath); err != nil {
		return fmt.Errorf("%w: %s", ErrBrochureFontMissing, s.fontPath)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(trip.Title, true)
	pdf.SetAuthor(s.siteName, true)
	pdf.AddUTF8Font(brochureFont, "", s.fontPath)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(brochureFont, "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, fmt.Sprintf("%s · %d", s.siteName, pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageWidth - left - right

	pdf.SetFont(brochureFont, "", 20)
	pdf.SetTextColor(20, 60, 110)
	pdf.MultiCell(width, 9, trip.Title, "", "L", false)

	pdf.SetFont(brochureFont, "", 11)
	pdf.SetTextColor(60, 60, 60)
	meta := []string{trip.Country.NameTh}
	if trip.DurationDisplay != "" {
		meta = append(meta, trip.DurationDisplay)
	}
	meta = append(meta, "ราคาเริ่มต้น "+trip.PriceDisplay)
	pdf.CellFormat(width, 7, strings.Join(meta, "  |  "), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if trip.Summary != "" {
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(width, 6, trip.Summary, "", "L", false)
		pdf.Ln(3)
	}

	s.renderSchedules(pdf, width, trip.Schedules)
	s.renderItinerary(pdf, width, trip)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.Output(w)
}

func (s *BrochureService) renderSchedules(pdf *gofpdf.Fpdf, width float64, schedules []utils.ScheduleView) {
	section(pdf, width, "รอบเดินทาง")
	if len(schedules) == 0 {
		pdf.SetFont(brochureFont, "", 11)
		pdf.CellFormat(width, 7, "ยังไม่มีรอบเดินทาง", "", 1, "L", false, 0, "")
		return
	}

	cols := []float64{width * 0.40, width * 0.25, width * 0.35}
	pdf.SetFont(brochureFont, "", 11)
	pdf.SetFillColor(230, 238, 248)
	for i, h := range []string{"วันเดินทาง", "ระยะเวลา", "ที่นั่ง"} {
		pdf.CellFormat(cols[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	for _, sc := range schedules {
		pdf.CellFormat(cols[0], 7, sc.DateRangeDisplay, "1", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 7, sc.DurationDisplay, "1", 0, "C", false, 0, "")
		pdf.CellFormat(cols[2], 7, sc.SlotsDisplay, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(3)
}

func (s *BrochureService) renderItinerary(pdf *gofpdf.Fpdf, width float64, trip utils.TripDetail) {
	if len(trip.Itinerary) == 0 {
		return
	}
	section(pdf, width, "โปรแกรมการเดินทาง")
	for _, day := range trip.Itinerary {
		pdf.SetFont(brochureFont, "", 12)
		pdf.SetTextColor(20, 60, 110)
		pdf.MultiCell(width, 7, fmt.Sprintf("วันที่ %d  %s", day.DayNumber, day.Title), "", "L", false)

		pdf.SetFont(brochureFont, "", 10)
		pdf.SetTextColor(0, 0, 0)
		if day.Description != "" {
			pdf.MultiCell(width, 5.5, day.Description, "", "L", false)
		}
		for _, a := range day.Activities {
			line := a.Title
			if a.TimeLabel != "" {
				line = a.TimeLabel + "  " + line
			}
			pdf.MultiCell(width, 5.5, "• "+line, "", "L", false)
		}
		var extra []string
		if day.Meals != "" {
			extra = append(extra, "อาหาร: "+day.Meals)
		}
		if day.Accommodation != "" {
			extra = append(extra, "ที่พัก: "+day.Accommodation)
		}
		if len(extra) > 0 {
			pdf.SetTextColor(90, 90, 90)
			pdf.MultiCell(width, 5.5, strings.Join(extra, "   "), "", "L", false)
		}
		pdf.Ln(2)
	}
}

func section(pdf *gofpdf.Fpdf, width float64, title string) {
	pdf.SetFont(brochureFont, "", 14)
	pdf.SetTextColor(20, 60, 110)
	pdf.CellFormat(width, 9, title, "B", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetTextColor(0, 0, 0)
}
