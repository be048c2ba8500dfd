package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"thaitour_go/database"
	"thaitour_go/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func useMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	previous := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = previous
		sqlDB.Close()
	})
	return mock
}

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &services.ValidationError{Field: "slug", Message: "slug is taken"}, fiber.StatusBadRequest},
		{"fiber error", fiber.NewError(fiber.StatusRequestEntityTooLarge, "File too large"), fiber.StatusRequestEntityTooLarge},
		{"not found", services.ErrNotFound, fiber.StatusNotFound},
		{"record not found", gorm.ErrRecordNotFound, fiber.StatusNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, fiber.StatusConflict},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return respondError(c, tc.err, "Failed")
			})
			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.code, resp.StatusCode)
		})
	}
}

func TestPagination(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		page, limit, offset := pagination(c, 20)
		return c.JSON(fiber.Map{"page": page, "limit": limit, "offset": offset})
	})

	cases := map[string][3]float64{
		"/":                   {1, 20, 0},
		"/?page=3&limit=10":   {3, 10, 20},
		"/?page=-1&limit=500": {1, 20, 0},
	}
	for url, want := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", url, nil))
		require.NoError(t, err)
		body := decodeBody(t, resp.Body)
		assert.Equal(t, want[0], body["page"], url)
		assert.Equal(t, want[1], body["limit"], url)
		assert.Equal(t, want[2], body["offset"], url)
	}
}

func TestParseIDParamRejectsZero(t *testing.T) {
	app := fiber.New()
	app.Get("/:id", func(c *fiber.Ctx) error {
		if _, err := parseIDParam(c, "id"); err != nil {
			return respondError(c, err, "")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	for url, code := range map[string]int{"/0": 400, "/abc": 400, "/12": 204} {
		resp, err := app.Test(httptest.NewRequest("GET", url, nil))
		require.NoError(t, err)
		assert.Equal(t, code, resp.StatusCode, url)
	}
}

func newPreviewApp() *fiber.App {
	app := fiber.New()
	sc := &ScheduleController{}
	app.Post("/parse", sc.ParsePreview)
	return app
}

func postJSON(t *testing.T, app *fiber.App, url, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode, decodeBody(t, resp.Body)
}

func TestParsePreviewSameMonth(t *testing.T) {
	code, body := postJSON(t, newPreviewApp(), "/parse",
		`{"dates":"4-11 ก.พ.","slots":"เหลือ 4 ที่","price":"65,900.-","year":2026}`)
	require.Equal(t, fiber.StatusOK, code)

	dates := body["dates"].(map[string]interface{})
	assert.Equal(t, true, dates["recognized"])
	assert.Equal(t, "2026-02-04", dates["departure_date"])
	assert.Equal(t, "2026-02-11", dates["return_date"])
	assert.Equal(t, "same_month", dates["shape"])
	assert.Equal(t, "4-11 ก.พ.", dates["display"])
	assert.Equal(t, "8 วัน 7 คืน", dates["duration_display"])

	slots := body["slots"].(map[string]interface{})
	assert.Equal(t, float64(4), slots["available_seats"])
	assert.Equal(t, float64(services.DefaultLegacyTotalSeats), slots["total_seats"])
	assert.Equal(t, "เหลือ 4 ที่", slots["display"])

	price := body["price"].(map[string]interface{})
	assert.Equal(t, float64(65900), price["value"])
}

func TestParsePreviewYearTransition(t *testing.T) {
	code, body := postJSON(t, newPreviewApp(), "/parse", `{"dates":"29 ธ.ค. - 6 ม.ค.","year":2026}`)
	require.Equal(t, fiber.StatusOK, code)

	dates := body["dates"].(map[string]interface{})
	assert.Equal(t, "2025-12-29", dates["departure_date"])
	assert.Equal(t, "2026-01-06", dates["return_date"])
	assert.Equal(t, "year_transition", dates["shape"])
	assert.Nil(t, body["slots"])
}

func TestParsePreviewReportsUnrecognizedDates(t *testing.T) {
	code, body := postJSON(t, newPreviewApp(), "/parse", `{"dates":"ปลายเดือนหน้า","slots":"รับ 6 ท่าน","year":2026}`)
	require.Equal(t, fiber.StatusOK, code)

	dates := body["dates"].(map[string]interface{})
	assert.Equal(t, false, dates["recognized"])
	assert.Nil(t, dates["departure_date"])

	slots := body["slots"].(map[string]interface{})
	assert.Equal(t, float64(6), slots["available_seats"])
	assert.Equal(t, float64(6), slots["total_seats"])
}

func TestParsePreviewRequiresInput(t *testing.T) {
	code, _ := postJSON(t, newPreviewApp(), "/parse", `{"dates":"  "}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestGetCountries(t *testing.T) {
	mock := useMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `countries`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name_th", "name_en", "code", "sort_order", "is_active"}).
			AddRow(1, "ญี่ปุ่น", "Japan", "JP", 1, true).
			AddRow(2, "เกาหลีใต้", "South Korea", "KR", 2, true))

	app := fiber.New()
	cc := &CountryController{}
	app.Get("/countries", cc.GetCountries)

	resp, err := app.Test(httptest.NewRequest("GET", "/countries", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	countries := body["countries"].([]interface{})
	require.Len(t, countries, 2)
	assert.Equal(t, "JP", countries[0].(map[string]interface{})["code"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCountryWithTripsConflicts(t *testing.T) {
	mock := useMockDB(t)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `trips`").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	app := fiber.New()
	cc := &CountryController{}
	app.Delete("/countries/:id", cc.DeleteCountry)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/countries/5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, float64(3), decodeBody(t, resp.Body)["trip_count"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCountryValidation(t *testing.T) {
	app := fiber.New()
	cc := &CountryController{}
	app.Post("/countries", cc.CreateCountry)

	code, body := postJSON(t, app, "/countries", `{"name_th":"ญี่ปุ่น","name_en":"Japan","code":"J"}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "code must be 2-10 characters", body["error"])
}
