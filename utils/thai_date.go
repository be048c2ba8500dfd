package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISODateLayout is the layout used for every date that crosses the API boundary.
const ISODateLayout = "2006-01-02"

var ErrInvalidDateRange = errors.New("invalid date range")

// DateRangeShape identifies which compact Thai form a range was written in.
type DateRangeShape int

const (
	ShapeUnrecognized DateRangeShape = iota
	ShapeSameMonth                   // "13-20 ก.พ."
	ShapeYearTransition              // "29 ธ.ค. - 6 ม.ค."
	ShapeCrossMonth                  // "28 ก.พ. - 5 มี.ค."
)

func (s DateRangeShape) String() string {
	switch s {
	case ShapeSameMonth:
		return "same_month"
	case ShapeYearTransition:
		return "year_transition"
	case ShapeCrossMonth:
		return "cross_month"
	default:
		return "unrecognized"
	}
}

// DateRange is a departure/return pair in ISO form.
type DateRange struct {
	Departure string         `json:"departure"`
	Return    string         `json:"return"`
	Shape     DateRangeShape `json:"-"`
}

// DepartureTime returns the departure date at local midnight.
func (r DateRange) DepartureTime() time.Time {
	t, _ := ParseISODate(r.Departure)
	return t
}

// ReturnTime returns the return date at local midnight.
func (r DateRange) ReturnTime() time.Time {
	t, _ := ParseISODate(r.Return)
	return t
}

// ParseISODate parses "2006-01-02" at midnight in time.Local, which is the
// location the MySQL driver uses for DATE columns.
func ParseISODate(s string) (time.Time, error) {
	return time.ParseInLocation(ISODateLayout, strings.TrimSpace(s), time.Local)
}

// Abbreviated Thai month names, index 1..12.
var thaiMonthAbbr = [...]string{"", "ม.ค.", "ก.พ.", "มี.ค.", "เม.ย.", "พ.ค.", "มิ.ย.", "ก.ค.", "ส.ค.", "ก.ย.", "ต.ค.", "พ.ย.", "ธ.ค."}

var thaiMonthFull = [...]string{"", "มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน", "กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม"}

var thaiMonthLookup = func() map[string]time.Month {
	m := make(map[string]time.Month, 24)
	for i := 1; i <= 12; i++ {
		m[strings.TrimSuffix(thaiMonthAbbr[i], ".")] = time.Month(i)
		m[thaiMonthFull[i]] = time.Month(i)
	}
	return m
}()

var (
	sameMonthPattern  = regexp.MustCompile(`^(\d{1,2})\s*-\s*(\d{1,2})\s+([^\s\d-]+)(?:\s+(\d{4}|\d{2}))?$`)
	crossMonthPattern = regexp.MustCompile(`^(\d{1,2})\s+([^\s\d-]+)\s*-\s*(\d{1,2})\s+([^\s\d-]+)(?:\s+(\d{4}|\d{2}))?$`)

	rangeNormalizer = strings.NewReplacer("–", "-", "—", "-", "\u00a0", " ")
)

// ThaiMonthAbbr returns the abbreviated Thai name of m ("ก.พ." for February).
func ThaiMonthAbbr(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return thaiMonthAbbr[m]
}

func lookupThaiMonth(token string) (time.Month, bool) {
	m, ok := thaiMonthLookup[strings.TrimSuffix(token, ".")]
	return m, ok
}

// rangeMatcher tries one input shape; the first matcher that accepts wins.
type rangeMatcher func(text string, defaultYear int) (DateRange, bool)

var rangeMatchers = []rangeMatcher{
	matchSameMonth,
	matchYearTransition,
	matchCrossMonth,
}

// ParseThaiDateRange converts a compact Thai range such as "13-20 ก.พ." or
// "29 ธ.ค. - 6 ม.ค." into ISO dates. The shapes are tried in a fixed order:
// same month, year transition (second month earlier than the first), then
// cross month. The boolean is false when no shape matches or the dates do not
// exist on the calendar.
func ParseThaiDateRange(text string, defaultYear int) (DateRange, bool) {
	text = strings.TrimSpace(rangeNormalizer.Replace(ReplaceThaiDigits(text)))
	if text == "" {
		return DateRange{}, false
	}
	for _, match := range rangeMatchers {
		if r, ok := match(text, defaultYear); ok {
			return r, true
		}
	}
	return DateRange{}, false
}

func matchSameMonth(text string, defaultYear int) (DateRange, bool) {
	g := sameMonthPattern.FindStringSubmatch(text)
	if g == nil {
		return DateRange{}, false
	}
	month, ok := lookupThaiMonth(g[3])
	if !ok {
		return DateRange{}, false
	}
	year, ok := ResolveYear(g[4], defaultYear)
	if !ok {
		return DateRange{}, false
	}
	d1, _ := strconv.Atoi(g[1])
	d2, _ := strconv.Atoi(g[2])
	dep, ok1 := calendarDate(year, month, d1)
	ret, ok2 := calendarDate(year, month, d2)
	if !ok1 || !ok2 || ret.Before(dep) {
		return DateRange{}, false
	}
	return newDateRange(dep, ret, ShapeSameMonth), true
}

func matchYearTransition(text string, defaultYear int) (DateRange, bool) {
	d1, m1, d2, m2, year, ok := splitCrossMonth(text, defaultYear)
	if !ok || m2 >= m1 {
		return DateRange{}, false
	}
	dep, ok1 := calendarDate(year-1, m1, d1)
	ret, ok2 := calendarDate(year, m2, d2)
	if !ok1 || !ok2 {
		return DateRange{}, false
	}
	return newDateRange(dep, ret, ShapeYearTransition), true
}

func matchCrossMonth(text string, defaultYear int) (DateRange, bool) {
	d1, m1, d2, m2, year, ok := splitCrossMonth(text, defaultYear)
	if !ok || m2 < m1 {
		return DateRange{}, false
	}
	dep, ok1 := calendarDate(year, m1, d1)
	ret, ok2 := calendarDate(year, m2, d2)
	if !ok1 || !ok2 || ret.Before(dep) {
		return DateRange{}, false
	}
	return newDateRange(dep, ret, ShapeCrossMonth), true
}

func splitCrossMonth(text string, defaultYear int) (d1 int, m1 time.Month, d2 int, m2 time.Month, year int, ok bool) {
	g := crossMonthPattern.FindStringSubmatch(text)
	if g == nil {
		return
	}
	if m1, ok = lookupThaiMonth(g[2]); !ok {
		return
	}
	if m2, ok = lookupThaiMonth(g[4]); !ok {
		return
	}
	if year, ok = ResolveYear(g[5], defaultYear); !ok {
		return
	}
	d1, _ = strconv.Atoi(g[1])
	d2, _ = strconv.Atoi(g[3])
	return
}

// ResolveYear accepts an empty token (use the default), a Buddhist Era year
// ("2569"), a Common Era year ("2026") or a two digit Buddhist Era year ("69").
func ResolveYear(token string, defaultYear int) (int, bool) {
	token = strings.TrimSpace(ReplaceThaiDigits(token))
	if token == "" {
		return defaultYear, defaultYear > 0
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	switch {
	case n < 0:
		return 0, false
	case len(token) == 2:
		return 2500 + n - 543, true
	case n >= 2400:
		return n - 543, true
	case n >= 1900:
		return n, true
	}
	return 0, false
}

func calendarDate(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func newDateRange(dep, ret time.Time, shape DateRangeShape) DateRange {
	return DateRange{
		Departure: dep.Format(ISODateLayout),
		Return:    ret.Format(ISODateLayout),
		Shape:     shape,
	}
}

// FormatThaiDateRange is the inverse of ParseThaiDateRange for ISO input.
func FormatThaiDateRange(departureISO, returnISO string) (string, error) {
	dep, err := time.Parse(ISODateLayout, strings.TrimSpace(departureISO))
	if err != nil {
		return "", fmt.Errorf("%w: departure %q", ErrInvalidDateRange, departureISO)
	}
	ret, err := time.Parse(ISODateLayout, strings.TrimSpace(returnISO))
	if err != nil {
		return "", fmt.Errorf("%w: return %q", ErrInvalidDateRange, returnISO)
	}
	return FormatThaiDateRangeTime(dep, ret), nil
}

// FormatThaiDateRangeTime renders "13-20 ก.พ." when both dates fall in the same
// calendar month and "29 ธ.ค. - 6 ม.ค." otherwise.
func FormatThaiDateRangeTime(dep, ret time.Time) string {
	if dep.Year() == ret.Year() && dep.Month() == ret.Month() {
		return fmt.Sprintf("%d-%d %s", dep.Day(), ret.Day(), ThaiMonthAbbr(dep.Month()))
	}
	return fmt.Sprintf("%d %s - %d %s", dep.Day(), ThaiMonthAbbr(dep.Month()), ret.Day(), ThaiMonthAbbr(ret.Month()))
}

// TripDuration counts calendar days and nights of a trip, both ends inclusive.
type TripDuration struct {
	Days   int `json:"days"`
	Nights int `json:"nights"`
}

// Thai renders the duration as "8 วัน 7 คืน".
func (d TripDuration) Thai() string {
	return FormatDurationThai(d.Days, d.Nights)
}

// CalculateDuration returns days = calendar difference + 1 and nights = days - 1.
func CalculateDuration(departureISO, returnISO string) (TripDuration, error) {
	dep, err := time.Parse(ISODateLayout, strings.TrimSpace(departureISO))
	if err != nil {
		return TripDuration{}, fmt.Errorf("%w: departure %q", ErrInvalidDateRange, departureISO)
	}
	ret, err := time.Parse(ISODateLayout, strings.TrimSpace(returnISO))
	if err != nil {
		return TripDuration{}, fmt.Errorf("%w: return %q", ErrInvalidDateRange, returnISO)
	}
	if ret.Before(dep) {
		return TripDuration{}, fmt.Errorf("%w: return %s before departure %s", ErrInvalidDateRange, returnISO, departureISO)
	}
	return DurationBetween(dep, ret), nil
}

// DurationBetween works on the calendar dates of dep and ret; the clock part
// and location are ignored. A return before departure yields a zero duration.
func DurationBetween(dep, ret time.Time) TripDuration {
	d := time.Date(dep.Year(), dep.Month(), dep.Day(), 0, 0, 0, 0, time.UTC)
	r := time.Date(ret.Year(), ret.Month(), ret.Day(), 0, 0, 0, 0, time.UTC)
	days := int((r.Unix()-d.Unix())/86400) + 1
	if days < 1 {
		return TripDuration{}
	}
	return TripDuration{Days: days, Nights: days - 1}
}

func FormatDurationThai(days, nights int) string {
	return fmt.Sprintf("%d วัน %d คืน", days, nights)
}
