package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/starford/scanbox/internal/session"
)

// maxSheetName is the Excel sheet title length limit.
const maxSheetName = 31

// WriteXLSX writes one sheet per box: fixed header cells for the box
// barcode and comment, then one row per item. Column widths are sized to
// the longest cell. sheetPrefix is prepended to each box barcode to form
// the sheet title.
func WriteXLSX(w io.Writer, s *session.Session, sheetPrefix string) error {
	f := excelize.NewFile()
	defer f.Close()

	boxes := s.BoxList()
	for _, box := range boxes {
		name := sheetName(sheetPrefix, box)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("export: new sheet %q: %w", name, err)
		}
		widths := [3]int{}
		set := func(col int, row int, v any) error {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}
			if n := len(fmt.Sprint(v)); n > widths[col-1] {
				widths[col-1] = n
			}
			return f.SetCellValue(name, cell, v)
		}

		if err := setHeader(set, box); err != nil {
			return err
		}
		row := 3
		if err := set(1, row, "Box comment:"); err != nil {
			return err
		}
		if err := set(3, row, s.Comment(box, "")); err != nil {
			return err
		}
		for _, it := range s.Items(box) {
			row++
			if err := set(1, row, it.Barcode); err != nil {
				return err
			}
			if err := set(2, row, it.Quantity); err != nil {
				return err
			}
			if err := set(3, row, s.Comment(box, it.Barcode)); err != nil {
				return err
			}
		}

		style, err := f.NewStyle(&excelize.Style{
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return fmt.Errorf("export: style: %w", err)
		}
		if err := f.SetCellStyle(name, "A1", "C2", style); err != nil {
			return fmt.Errorf("export: set style: %w", err)
		}
		for i, width := range widths {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return fmt.Errorf("export: column name: %w", err)
			}
			if err := f.SetColWidth(name, col, col, float64(width+2)); err != nil {
				return fmt.Errorf("export: col width: %w", err)
			}
		}
	}

	if len(boxes) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("export: drop default sheet: %w", err)
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func setHeader(set func(col, row int, v any) error, box string) error {
	cells := []struct {
		col, row int
		v        string
	}{
		{1, 1, "Box barcode"},
		{2, 1, box},
		{3, 1, "Comment"},
		{1, 2, "Item barcode"},
		{2, 2, "Quantity"},
		{3, 2, "Comment"},
	}
	for _, c := range cells {
		if err := set(c.col, c.row, c.v); err != nil {
			return fmt.Errorf("export: header cell: %w", err)
		}
	}
	return nil
}

// sheetName builds a legal Excel sheet title from the box barcode.
func sheetName(prefix, box string) string {
	name := prefix + box
	for _, bad := range []string{"[", "]", ":", "*", "?", "/", "\\"} {
		name = strings.ReplaceAll(name, bad, "_")
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}
