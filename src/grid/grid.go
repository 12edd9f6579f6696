// backend/src/grid/grid.go
package grid

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies the typed value carried by a cell.
type Kind int

const (
	KindBlank Kind = iota
	KindText
	KindNumber
	KindDate
)

// Cell is a single typed spreadsheet cell. The zero value is a blank cell.
type Cell struct {
	Kind   Kind
	Text   string
	Number float64
	Date   time.Time
}

// Grid is an immutable, row-major view over a decoded spreadsheet.
// Out-of-range access returns a blank cell instead of panicking, because
// the sales export scanner routinely probes past the data it has seen.
type Grid struct {
	rows [][]Cell
	cols int
}

// New builds a grid from decoded rows. The rows slice is not copied; the
// decoders hand over ownership.
func New(rows [][]Cell) *Grid {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return &Grid{rows: rows, cols: cols}
}

func (g *Grid) NumRows() int { return len(g.rows) }

func (g *Grid) NumCols() int { return g.cols }

// At returns the cell at (row, col), or a blank cell when the address is
// outside the grid.
func (g *Grid) At(row, col int) Cell {
	if row < 0 || row >= len(g.rows) {
		return Cell{}
	}
	r := g.rows[row]
	if col < 0 || col >= len(r) {
		return Cell{}
	}
	return r[col]
}

// Blank reports whether the cell carries no value.
func (c Cell) Blank() bool { return c.Kind == KindBlank }

// TrimmedText returns the cell rendered as a trimmed string. Numbers are
// rendered without a trailing ".0" so product codes stored as numeric
// cells compare equal to their dictionary keys.
func (c Cell) TrimmedText() string {
	switch c.Kind {
	case KindText:
		return strings.TrimSpace(c.Text)
	case KindNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case KindDate:
		return c.Date.Format("02/01/2006")
	default:
		return ""
	}
}

// TryNumber coerces the cell to a number the way pandas' to_numeric with
// errors="coerce" does: native numbers pass through, text is normalized
// and parsed, everything else reports no value.
func (c Cell) TryNumber() (float64, bool) {
	switch c.Kind {
	case KindNumber:
		return c.Number, true
	case KindText:
		return parseNumericText(c.Text)
	default:
		return 0, false
	}
}

func parseNumericText(s string) (float64, bool) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.Trim(cleaned, "\"")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return 0, false
	}
	// "1.234,56" style: the comma is the decimal separator, the point a
	// thousands separator. With both present the point is dropped first.
	if strings.Contains(cleaned, ",") {
		if strings.Contains(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var dateLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02-01-2006",
	"02-01-06",
}

// TryDate coerces the cell to a calendar date. Text cells are matched
// against the formats seen in real POS exports; no match reports no value.
func (c Cell) TryDate() (time.Time, bool) {
	switch c.Kind {
	case KindDate:
		return c.Date, true
	case KindText:
		s := strings.TrimSpace(c.Text)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// textCell builds a cell from a raw decoded string, classifying blanks.
// Decoders produce text cells only; numeric and date coercion happens at
// read time so a failed coercion never loses the original value.
func textCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: KindText, Text: s}
}

// FromStrings converts rows of raw strings into a grid, classifying
// blank cells. Decoders and tests build grids through it.
func FromStrings(rows [][]string) *Grid {
	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]Cell, len(row))
		for j, v := range row {
			cells[i][j] = textCell(v)
		}
	}
	return New(cells)
}
