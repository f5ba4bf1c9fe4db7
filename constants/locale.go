package constants

// DefaultUnit is the unit written on a line item when the export leaves it blank.
const DefaultUnit = "шт"

// Months maps the genitive month names used by the ERP export header
// ("от 8 декабря 2025 г.") to month numbers.
var Months = map[string]int{
	"января":   1,
	"февраля":  2,
	"марта":    3,
	"апреля":   4,
	"мая":      5,
	"июня":     6,
	"июля":     7,
	"августа":  8,
	"сентября": 9,
	"октября":  10,
	"ноября":   11,
	"декабря":  12,
}
