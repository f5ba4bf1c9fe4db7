// Package sheettest builds order workbooks for tests in other packages.
package sheettest

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/order-assistant/internal/spreadsheet"
)

type Item struct {
	Name     string
	Quantity int
	Code     string
	Unit     string
}

// Write saves a workbook for order number into dir/name with one data row
// per item starting at the first data row.
func Write(t testing.TB, dir, name, number string, items ...Item) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	set := func(col, row int, v any) {
		c, err := excelize.CoordinatesToCellName(col, row)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, c, v))
	}
	require.NoError(t, f.SetCellValue(sheet, spreadsheet.HeaderCell,
		fmt.Sprintf("Заказ покупателя № %s от 1 января 2025 г.", number)))

	row := spreadsheet.FirstDataRow
	for i, it := range items {
		set(spreadsheet.ColSequence, row, i+1)
		set(spreadsheet.ColName, row, it.Name)
		set(spreadsheet.ColQuantity, row, it.Quantity)
		if it.Code != "" {
			set(spreadsheet.ColCode, row, it.Code)
		}
		if it.Unit != "" {
			set(spreadsheet.ColUnit, row, it.Unit)
		}
		row++
	}
	// keep the sheet long enough for the structural check
	if row <= spreadsheet.MinRows {
		set(1, spreadsheet.MinRows, " ")
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}
