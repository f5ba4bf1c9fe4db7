package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/order-assistant/internal/announce"
	"github.com/joseph-ayodele/order-assistant/internal/assembly"
)

// SheetName is the worksheet holding the assembly list.
const SheetName = "Сборка"

// Preparer loads an order annotated for assembly.
type Preparer interface {
	Prepare(ctx context.Context, orderID int64) (*assembly.Sheet, error)
}

// Service produces XLSX assembly sheets.
type Service struct {
	preparer Preparer
	logger   *slog.Logger
}

func NewService(p Preparer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{preparer: p, logger: logger}
}

var headers = []string{
	"№",
	"Наименование",
	"Код",
	"Количество",
	"Ед.",
	"Статус",
	"Озвучивать",
}

// ExportOrderXLSX returns the assembly sheet of an order as XLSX bytes and a
// suggested file name.
func (s *Service) ExportOrderXLSX(ctx context.Context, orderID int64) ([]byte, string, error) {
	start := time.Now()

	sheet, err := s.preparer.Prepare(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	order := sheet.Order

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetName); err != nil {
		return nil, "", err
	}

	title := fmt.Sprintf("Заказ № %s от %s", order.OrderNumber, order.OrderDate.Format("02.01.2006"))
	_ = f.SetCellValue(SheetName, "A1", title)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	row := 4
	for _, it := range sheet.Items {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}
		write(1, it.RowNumber)
		write(2, it.Name)
		if it.Code != nil {
			write(3, *it.Code)
		}
		write(4, it.Quantity)
		write(5, it.Unit)
		write(6, string(it.Status))
		write(7, announceLabel(it))
		row++
	}

	_ = f.SetColWidth(SheetName, "A", "A", 6)
	_ = f.SetColWidth(SheetName, "B", "B", 48)
	_ = f.SetColWidth(SheetName, "C", "C", 16)
	_ = f.SetColWidth(SheetName, "D", "F", 12)
	_ = f.SetColWidth(SheetName, "G", "G", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"order_id", orderID,
		"rows", len(sheet.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), "assembly_" + announce.OrderFileBase(order.OrderNumber) + ".xlsx", nil
}

func announceLabel(it announce.PreparedItem) string {
	if it.ShouldAnnounce {
		return "да"
	}
	return "нет (" + it.MatchedWord + ")"
}
