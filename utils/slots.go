package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SlotsFull is the display text for a schedule with no seats left.
const SlotsFull = "เต็ม"

var slotsNumberPattern = regexp.MustCompile(`\d+`)

var thaiDigits = strings.NewReplacer(
	"๐", "0", "๑", "1", "๒", "2", "๓", "3", "๔", "4",
	"๕", "5", "๖", "6", "๗", "7", "๘", "8", "๙", "9",
)

// ReplaceThaiDigits maps Thai numerals (๐-๙) to ASCII digits.
func ReplaceThaiDigits(s string) string {
	return thaiDigits.Replace(s)
}

// ParseSlots reads a free-text availability string ("เต็ม", "เหลือ 4 ที่",
// "รับ 6 ท่าน") and returns the seat count it mentions. Anything without a
// number counts as zero.
func ParseSlots(text string) int {
	text = strings.TrimSpace(ReplaceThaiDigits(text))
	if strings.Contains(text, SlotsFull) {
		return 0
	}
	m := slotsNumberPattern.FindString(text)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// FormatSlotsDisplay is the inverse of ParseSlots.
func FormatSlotsDisplay(available, total int) string {
	switch {
	case available <= 0:
		return SlotsFull
	case available == total:
		return fmt.Sprintf("รับ %d ท่าน", total)
	default:
		return fmt.Sprintf("เหลือ %d ที่", available)
	}
}
