// Package export flattens the session into spreadsheet and CSV shapes
// and reconciles CSV rows back into a session.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/scanbox/internal/barcode"
	"github.com/starford/scanbox/internal/session"
)

// Header is the fixed CSV column layout.
var Header = []string{"Box barcode", "Box comment", "Item barcode", "Quantity", "Item comment"}

// RawRow is one unvalidated CSV data row with its 1-based line number.
type RawRow struct {
	Line        int
	Box         string
	BoxComment  string
	Item        string
	Quantity    string
	ItemComment string
}

// Warning describes a skipped row. Row-level problems never fail an
// import; they accumulate here instead.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Import validates rows under the given strictness and accumulates the
// valid ones into a fresh session. Quantities for a repeated (box, item)
// pair are summed; the last non-empty comment for a key wins. Invalid
// rows are skipped and reported as warnings.
func Import(rows []RawRow, strict bool) (*session.Session, []Warning) {
	s := session.New()
	var warnings []Warning
	skip := func(line int, format string, args ...any) {
		warnings = append(warnings, Warning{Line: line, Message: fmt.Sprintf(format, args...)})
	}

	for _, r := range rows {
		box := strings.TrimSpace(r.Box)
		item := strings.TrimSpace(r.Item)
		if !barcode.Valid(box, barcode.RoleBox, strict) {
			skip(r.Line, "invalid box barcode %q", box)
			continue
		}
		if !barcode.Valid(item, barcode.RoleItem, strict) {
			skip(r.Line, "invalid item barcode %q", item)
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(r.Quantity))
		if err != nil || qty <= 0 {
			skip(r.Line, "invalid quantity %q for item %q in box %q", r.Quantity, item, box)
			continue
		}

		items := s.EnsureBox(box)
		prev, _ := items.Get(item)
		items.Set(item, prev+qty)

		if bc := strings.TrimSpace(r.BoxComment); bc != "" {
			s.SetComment(box, "", bc)
		}
		if ic := strings.TrimSpace(r.ItemComment); ic != "" {
			s.SetComment(box, item, ic)
		}
	}
	return s, warnings
}
