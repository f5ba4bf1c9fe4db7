package spreadsheet

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/order-assistant/constants"
)

var (
	numberMarkRe = regexp.MustCompile(`№\s*(\d+)`)
	anyDigitsRe  = regexp.MustCompile(`\d+`)
	dateMarkRe   = regexp.MustCompile(`от\s+(\d{1,2})\s+(\p{L}+)\s+(\d{4})`)
)

// ParseOrderNumber pulls the order number out of the header sentence
// ("Заказ покупателя № 2351 от 8 декабря 2025 г." -> "2351"). The digits after
// "№" win; otherwise the first run of digits. ok is false when the text has no
// digits at all.
func ParseOrderNumber(text string) (number string, ok bool) {
	if m := numberMarkRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if m := anyDigitsRe.FindString(text); m != "" {
		return m, true
	}
	return "", false
}

// SyntheticOrderNumber is used when the header carries no digits.
func SyntheticOrderNumber(now time.Time) string {
	return "ORDER_" + now.Format("20060102150405")
}

// ParseOrderDate reads "от <day> <month> <year>" with a genitive Russian month
// name. Anything it cannot read, including impossible dates, yields today.
func ParseOrderDate(text string, now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	m := dateMarkRe.FindStringSubmatch(text)
	if m == nil {
		return today
	}
	day, err := strconv.Atoi(m[1])
	if err != nil {
		return today
	}
	month, ok := constants.Months[strings.ToLower(m[2])]
	if !ok {
		return today
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return today
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes 31 февраля into March; reject instead.
	if d.Day() != day || int(d.Month()) != month {
		return today
	}
	return d
}
