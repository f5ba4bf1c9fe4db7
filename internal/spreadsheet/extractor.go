package spreadsheet

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/order-assistant/constants"
	"github.com/joseph-ayodele/order-assistant/internal/entity"
)

// ErrUnreadable is returned by Extract when the workbook cannot be opened.
var ErrUnreadable = errors.New("workbook unreadable")

// Extractor turns an order workbook into an entity.Order. It keeps no state
// between calls and is safe for concurrent use.
type Extractor struct {
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock overrides the time source used for synthetic numbers and the
// fallback order date.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now, logger: slog.Default()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Validate performs the pre-flight structural check. It never panics and
// reports problems through the message instead of an error.
func (e *Extractor) Validate(path string) (ok bool, message string) {
	defer func() {
		if r := recover(); r != nil {
			ok, message = false, fmt.Sprintf("Ошибка чтения файла: %v", r)
		}
	}()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return false, fmt.Sprintf("Ошибка чтения файла: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return false, fmt.Sprintf("Ошибка чтения файла: %v", err)
	}
	if len(rows) < MinRows {
		return false, "Файл не содержит достаточно строк"
	}

	header, err := f.GetCellValue(sheet, HeaderCell)
	if err != nil || strings.TrimSpace(header) == "" {
		return false, "Не найден заголовок заказа в строке 3"
	}
	return true, "OK"
}

// Extract reads the order header and every line item. source is recorded as
// the order's source filename.
func (e *Extractor) Extract(path, source string) (*entity.Order, error) {
	start := time.Now()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	// Raw values keep number formats such as "#,##0" out of quantities.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: read rows: %v", ErrUnreadable, err)
	}

	now := e.now()
	header, _ := f.GetCellValue(sheet, HeaderCell)

	number, found := ParseOrderNumber(header)
	if !found {
		number = SyntheticOrderNumber(now)
		e.logger.Warn("spreadsheet.header.no_number", "file", source, "order_number", number)
	}

	order := &entity.Order{
		OrderNumber:    number,
		OrderDate:      ParseOrderDate(header, now),
		Status:         constants.OrderStatusNew,
		SourceFilename: source,
	}

	for r := FirstDataRow; r <= len(rows); r++ {
		item, ok := readItem(rows[r-1], r)
		if !ok {
			continue
		}
		order.Items = append(order.Items, item)
	}
	order.ItemsCount = len(order.Items)

	e.logger.Info("spreadsheet.extract.ok",
		"file", source,
		"order_number", order.OrderNumber,
		"items", order.ItemsCount,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return order, nil
}

// readItem maps one data row. row is the 1-based sheet row, used when the
// sequence marker is not a number.
func readItem(cells []string, row int) (entity.OrderItem, bool) {
	seq := cell(cells, ColSequence)
	name := cell(cells, ColName)
	qty := cell(cells, ColQuantity)
	if seq == "" || name == "" || qty == "" {
		return entity.OrderItem{}, false
	}

	item := entity.OrderItem{
		RowNumber: row,
		Name:      name,
		Quantity:  ParseQuantity(qty),
		Unit:      constants.DefaultUnit,
		Status:    constants.ItemStatusPending,
	}
	if n, ok := wholeNumber(seq); ok {
		item.RowNumber = n
	}
	if u := cell(cells, ColUnit); u != "" {
		item.Unit = u
	}
	if c := cell(cells, ColCode); c != "" {
		item.Code = &c
	}
	return item, true
}

// ParseQuantity coerces a quantity cell to a positive integer. Whole numbers
// written with a fraction ("3.0", "3,0") are accepted; anything else,
// including zero and negatives, becomes 1.
func ParseQuantity(s string) int {
	n, ok := wholeNumber(s)
	if !ok || n <= 0 {
		return 1
	}
	return n
}

func wholeNumber(s string) (int, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, false
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, false
	}
	return int(v), true
}

func cell(cells []string, col int) string {
	if col-1 >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col-1])
}
