package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/parkrec/campdata/internal/models"
)

var (
	datePattern     = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})$`)
	timePattern     = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp][Mm])$`)
	currencyPattern = regexp.MustCompile(`^\$?\s*(\d{1,3}(?:,\d{3})+|\d+)(\.\d+)?$`)
	agePattern      = regexp.MustCompile(`(?i)^(\d+)\s*years?$`)
)

// ParseDate parses an M/D/Y cell. Two digit years are read as 20YY.
func ParseDate(value string) (models.ParsedDate, error) {
	m := datePattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return models.ParsedDate{}, fmt.Errorf("not a M/D/Y date: %q", value)
	}

	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return models.ParsedDate{}, fmt.Errorf("date out of range: %q", value)
	}

	return models.ParsedDate{
		ISO:       t.Format("2006-01-02"),
		Year:      year,
		Month:     month,
		Day:       day,
		DayOfWeek: int(t.Weekday()),
		Weekday:   t.Weekday().String(),
		MonthName: t.Month().String(),
	}, nil
}

// ParseTime parses an "H:MM AM" cell into 24 hour form.
func ParseTime(value string) (models.ParsedTime, error) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return models.ParsedTime{}, fmt.Errorf("not a H:MM AM/PM time: %q", value)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour < 1 || hour > 12 || minute > 59 {
		return models.ParsedTime{}, fmt.Errorf("time out of range: %q", value)
	}

	period := strings.ToUpper(m[3])
	switch {
	case period == "AM" && hour == 12:
		hour = 0
	case period == "PM" && hour != 12:
		hour += 12
	}

	return models.ParsedTime{
		Formatted:            fmt.Sprintf("%02d:%02d", hour, minute),
		Hour:                 hour,
		Minute:               minute,
		MinutesSinceMidnight: hour*60 + minute,
		Period:               period,
	}, nil
}

// ParseCurrency parses an amount with an optional "$" and comma thousands separators.
func ParseCurrency(value string) (float64, error) {
	m := currencyPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, fmt.Errorf("not a currency amount: %q", value)
	}
	return strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "")+m[2], 64)
}

// ParseAge parses "<N> Years".
func ParseAge(value string) (int, error) {
	m := agePattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, fmt.Errorf("not an age in years: %q", value)
	}
	return strconv.Atoi(m[1])
}

// CamelCase turns a column header such as "Registration Link" into "registrationLink".
func CamelCase(header string) string {
	words := strings.FieldsFunc(header, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	for i, word := range words {
		word = strings.ToLower(word)
		if i == 0 {
			b.WriteString(word)
			continue
		}
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}
