// Package spreadsheet reads ERP "customer order" workbooks by fixed cell
// positions. The export has no machine-readable schema: the header sentence
// sits in B3, column titles in row 9 and line items from row 11 onward.
package spreadsheet

// Positions inside the export. Columns are 1-based, as excelize expects.
const (
	HeaderCell   = "B3"
	FirstDataRow = 11
	MinRows      = 11

	ColSequence = 2  // B
	ColName     = 7  // G
	ColCode     = 18 // R
	ColQuantity = 21 // U
	ColUnit     = 24 // X
)
