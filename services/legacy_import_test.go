package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseLegacyScheduleRow(t *testing.T) {
	tests := []struct {
		name          string
		row           LegacyScheduleRow
		wantDeparture string
		wantReturn    string
		wantShape     string
		wantAvailable int
		wantTotal     int
		wantPrice     float64
	}{
		{
			name:          "same month open",
			row:           LegacyScheduleRow{Line: 2, TripSlug: "Hokkaido-Winter", Dates: "13-20 ก.พ.", Slots: "รับ 10 ท่าน", Price: "฿65,900"},
			wantDeparture: "2026-02-13",
			wantReturn:    "2026-02-20",
			wantShape:     "same_month",
			wantAvailable: 10,
			wantTotal:     10,
			wantPrice:     65900,
		},
		{
			name:          "year transition uses default capacity",
			row:           LegacyScheduleRow{Line: 3, TripSlug: "seoul", Dates: "29 ธ.ค. - 6 ม.ค.", Slots: "เหลือ 4 ที่"},
			wantDeparture: "2025-12-29",
			wantReturn:    "2026-01-06",
			wantShape:     "year_transition",
			wantAvailable: 4,
			wantTotal:     10,
		},
		{
			name:          "cross month full with explicit total",
			row:           LegacyScheduleRow{Line: 4, TripSlug: "taipei", Dates: "28 ก.พ. - 5 มี.ค.", Slots: "เต็ม", Total: "15"},
			wantDeparture: "2026-02-28",
			wantReturn:    "2026-03-05",
			wantShape:     "cross_month",
			wantAvailable: 0,
			wantTotal:     15,
		},
		{
			name:          "buddhist year column",
			row:           LegacyScheduleRow{Line: 5, TripSlug: "tokyo", Dates: "1-5 พ.ค.", Year: "2570"},
			wantDeparture: "2027-05-01",
			wantReturn:    "2027-05-05",
			wantShape:     "same_month",
			wantAvailable: 10,
			wantTotal:     10,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLegacyScheduleRow(tt.row, 2026, DefaultLegacyTotalSeats)
			require.NoError(t, err)
			assert.Equal(t, strings.ToLower(tt.row.TripSlug), got.TripSlug)
			assert.Equal(t, tt.wantDeparture, got.Range.Departure)
			assert.Equal(t, tt.wantReturn, got.Range.Return)
			assert.Equal(t, tt.wantShape, got.Shape)
			assert.Equal(t, tt.wantAvailable, got.AvailableSeats)
			assert.Equal(t, tt.wantTotal, got.TotalSeats)
			assert.Equal(t, tt.wantPrice, got.Price)
		})
	}
}

func TestParseLegacyScheduleRowErrors(t *testing.T) {
	rows := []LegacyScheduleRow{
		{Line: 7, Dates: "13-20 ก.พ."},
		{Line: 8, TripSlug: "x", Dates: "31 ก.พ. - 2 มี.ค."},
		{Line: 9, TripSlug: "x", Dates: "13-20 ก.พ.", Year: "abc"},
	}
	for _, row := range rows {
		_, err := ParseLegacyScheduleRow(row, 2026, 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line ")
	}
}

func TestRowsFromSheet(t *testing.T) {
	sheet := [][]string{
		{"\ufeffทริป", "วันเดินทาง", "ที่นั่ง", "ราคา"},
		{"hokkaido", "13-20 ก.พ.", "เหลือ 4 ที่", "65,900"},
		{"", " ", ""},
		{"seoul", "29 ธ.ค. - 6 ม.ค."},
	}
	rows, err := RowsFromSheet(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, LegacyScheduleRow{Line: 2, TripSlug: "hokkaido", Dates: "13-20 ก.พ.", Slots: "เหลือ 4 ที่", Price: "65,900"}, rows[0])
	assert.Equal(t, 4, rows[1].Line)
	assert.Empty(t, rows[1].Slots)
}

func TestRowsFromSheetErrors(t *testing.T) {
	_, err := RowsFromSheet([][]string{{"trip", "dates"}})
	assert.ErrorIs(t, err, errEmptySheet)

	_, err = RowsFromSheet([][]string{{"trip", "price"}, {"a", "1"}})
	assert.ErrorContains(t, err, "dates")
}

func TestReadCSVRows(t *testing.T) {
	input := "trip,dates,slots\nhokkaido,13-20 ก.พ.,\"รับ 10 ท่าน\"\nseoul,1-5 มี.ค.\n"
	rows, err := ReadCSVRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"seoul", "1-5 มี.ค."}, rows[2])
}

func TestReadXLSXRows(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"trip", "dates", "slots"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"hokkaido", "13-20 ก.พ.", "เต็ม"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := ReadXLSXRows(&buf)
	require.NoError(t, err)
	parsed, err := RowsFromSheet(rows)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "เต็ม", parsed[0].Slots)
}

func TestLegacyImportDryRunDoesNotTouchDatabase(t *testing.T) {
	db, mock := newMockDB(t)
	svc := &LegacyImportService{db: db}

	report, err := svc.Import(context.Background(), []LegacyScheduleRow{
		{Line: 2, TripSlug: "hokkaido", Dates: "13-20 ก.พ.", Slots: "เหลือ 4 ที่"},
		{Line: 3, TripSlug: "seoul", Dates: "someday"},
	}, ImportOptions{SeasonYear: 2026, DryRun: true})
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Parsed, 1)
	assert.Equal(t, 10, report.Parsed[0].TotalSeats)
	assert.Equal(t, "8 วัน 7 คืน", report.Parsed[0].Duration)
	assert.NoError(t, mock.ExpectationsWereMet())
}
