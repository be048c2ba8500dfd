package services

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"thaitour_go/utils"

	"github.com/stretchr/testify/assert"
)

func TestFormatDeparturesMessage(t *testing.T) {
	departures := []Departure{
		{
			Trip: utils.TripSummary{Title: "ฮอกไกโด หิมะ", PriceDisplay: "฿65,900"},
			Schedule: utils.ScheduleView{
				DateRangeDisplay: "13-20 ก.พ.",
				DurationDisplay:  "8 วัน 7 คืน",
				SlotsDisplay:     "เหลือ 4 ที่",
			},
		},
		{
			Trip: utils.TripSummary{Title: "โซล ปีใหม่", PriceDisplay: "฿39,900"},
			Schedule: utils.ScheduleView{
				DateRangeDisplay: "29 ธ.ค. - 6 ม.ค.",
				DurationDisplay:  "9 วัน 8 คืน",
				SlotsDisplay:     "เต็ม",
			},
		},
	}

	msg := FormatDeparturesMessage("🇯🇵 ญี่ปุ่น", departures)
	assert.True(t, strings.HasPrefix(msg, "🇯🇵 ญี่ปุ่น รอบเดินทางที่ใกล้ที่สุด"))
	assert.Contains(t, msg, "ฮอกไกโด หิมะ\n13-20 ก.พ. (8 วัน 7 คืน)\nเหลือ 4 ที่ · ฿65,900")
	assert.Contains(t, msg, "29 ธ.ค. - 6 ม.ค. (9 วัน 8 คืน)\nเต็ม · ฿39,900")
}

func TestFormatDeparturesMessageEmpty(t *testing.T) {
	msg := FormatDeparturesMessage("ญี่ปุ่น", nil)
	assert.Contains(t, msg, "ยังไม่มีรอบเดินทาง")
}

func TestHelpMessageNamesSite(t *testing.T) {
	assert.Contains(t, HelpMessage("Thai Tour"), "Thai Tour")
}

func TestLineReplyWithoutClient(t *testing.T) {
	svc := &LineMessagingService{}
	assert.False(t, svc.Enabled())
	assert.Error(t, svc.Reply("token", "hi"))
}

func TestBrochureRequiresFont(t *testing.T) {
	svc := NewBrochureService("/nonexistent/font.ttf", "Thai Tour")
	var buf bytes.Buffer
	err := svc.Render(&buf, utils.TripDetail{})
	assert.True(t, errors.Is(err, ErrBrochureFontMissing))
	assert.Zero(t, buf.Len())
}
