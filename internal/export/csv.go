package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/starford/scanbox/internal/apperr"
	"github.com/starford/scanbox/internal/session"
)

// WriteCSV writes the session as one header row plus one row per item.
func WriteCSV(w io.Writer, s *session.Session) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, r := range s.Rows() {
		rec := []string{r.Box, r.BoxComment, r.Item, strconv.Itoa(r.Quantity), r.ItemComment}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses CSV data into raw rows, checking the expected column
// layout. Rows with too few columns are returned as warnings alongside
// the usable rows.
func ReadCSV(r io.Reader) ([]RawRow, []Warning, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w: empty file", apperr.ErrDecode)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperr.ErrDecode, err)
	}
	if len(header) < 4 || header[0] != Header[0] || header[2] != Header[2] || header[3] != Header[3] {
		return nil, nil, fmt.Errorf("%w: unexpected header %v", apperr.ErrDecode, header)
	}

	var rows []RawRow
	var warnings []Warning
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			warnings = append(warnings, Warning{Line: line, Message: err.Error()})
			continue
		}
		if len(rec) < 4 {
			warnings = append(warnings, Warning{Line: line, Message: fmt.Sprintf("expected at least 4 columns, got %d", len(rec))})
			continue
		}
		row := RawRow{
			Line:       line,
			Box:        rec[0],
			BoxComment: rec[1],
			Item:       rec[2],
			Quantity:   rec[3],
		}
		if len(rec) > 4 {
			row.ItemComment = rec[4]
		}
		rows = append(rows, row)
	}
	return rows, warnings, nil
}
