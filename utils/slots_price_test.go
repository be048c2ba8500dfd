package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSlots(t *testing.T) {
	assert.Equal(t, 0, ParseSlots("เต็ม"))
	assert.Equal(t, 0, ParseSlots("  เต็มแล้ว "))
	assert.Equal(t, 4, ParseSlots("เหลือ 4 ที่"))
	assert.Equal(t, 6, ParseSlots("รับ 6 ท่าน"))
	assert.Equal(t, 12, ParseSlots("เหลือ ๑๒ ที่"))
	assert.Equal(t, 0, ParseSlots("สอบถาม"))
	assert.Equal(t, 0, ParseSlots(""))
}

func TestFormatSlotsDisplay(t *testing.T) {
	assert.Equal(t, "เต็ม", FormatSlotsDisplay(0, 10))
	assert.Equal(t, "เต็ม", FormatSlotsDisplay(-1, 10))
	assert.Equal(t, "รับ 10 ท่าน", FormatSlotsDisplay(10, 10))
	assert.Equal(t, "เหลือ 4 ที่", FormatSlotsDisplay(4, 10))
}

func TestSlotsRoundTrip(t *testing.T) {
	for _, available := range []int{0, 3, 10} {
		assert.Equal(t, available, ParseSlots(FormatSlotsDisplay(available, 10)))
	}
}

func TestParsePrice(t *testing.T) {
	assert.Equal(t, 165900.0, ParsePrice("฿165,900"))
	assert.Equal(t, 165900.0, ParsePrice("165,900 บาท"))
	assert.Equal(t, 59900.5, ParsePrice("฿59,900.50"))
	assert.Equal(t, 0.0, ParsePrice("สอบถาม"))
	assert.Equal(t, 0.0, ParsePrice(""))
	assert.Equal(t, 0.0, ParsePrice("NaN"))
}

func TestParsePriceReadsLeadingNumber(t *testing.T) {
	cases := map[string]float64{
		"65,900.-":        65900,
		"฿65,900 / ท่าน":  65900,
		"ราคา 65,900 บาท": 65900,
		"๖๕,๙๐๐ บาท":      65900,
		"฿39,900.50.-":    39900.5,
		"-฿1,000":         -1000,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParsePrice(in), in)
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "฿165,900", FormatPrice(165900))
	assert.Equal(t, "฿0", FormatPrice(0))
	assert.Equal(t, "฿999", FormatPrice(999))
	assert.Equal(t, "฿1,234,567", FormatPrice(1234567))
	assert.Equal(t, "฿59,900.50", FormatPrice(59900.5))
	assert.Equal(t, "-฿1,000", FormatPrice(-1000))
}

func TestFormatPriceExtremes(t *testing.T) {
	assert.Equal(t, "฿10,000,000,000,000,000,000", FormatPrice(1e19))
	assert.Equal(t, "฿0", FormatPrice(-0.001))
	assert.Equal(t, "-฿0.01", FormatPrice(-0.01))
}

func TestPriceRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 12500, 165900, 59900.5} {
		assert.Equal(t, v, ParsePrice(FormatPrice(v)))
	}
}
