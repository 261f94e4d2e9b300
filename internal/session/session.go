// Package session holds the in-memory packing session: ordered boxes with
// per-item counts, the comment store, and the mutation operations the
// presentation layer calls into.
package session

import (
	"strings"

	om "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/scanbox/internal/apperr"
	"github.com/starford/scanbox/internal/barcode"
)

// Key identifies a comment: Sub is empty for a comment on the box itself,
// or an item barcode for a comment on that item within the box.
type Key struct {
	Box string
	Sub string
}

// Row is one item line of the session view, as rendered and exported.
type Row struct {
	Box         string
	BoxComment  string
	Item        string
	Quantity    int
	ItemComment string
}

// Item is an item barcode with its count inside one box.
type Item struct {
	Barcode  string
	Quantity int
}

// Session is the single-threaded session aggregate. Boxes and the items
// within them keep insertion order; quantities are always >= 1 for
// entries present (a count reaching zero removes the entry).
type Session struct {
	boxes    *om.OrderedMap[string, *om.OrderedMap[string, int]]
	current  string
	search   string
	comments map[Key]string
	strict   bool
}

// New returns an empty session with strict validation enabled.
func New() *Session {
	return &Session{
		boxes:    om.New[string, *om.OrderedMap[string, int]](),
		comments: make(map[Key]string),
		strict:   true,
	}
}

// Strict reports whether strict barcode validation is active.
func (s *Session) Strict() bool { return s.strict }

// SetStrict toggles strict barcode validation.
func (s *Session) SetStrict(v bool) { s.strict = v }

// CurrentBox returns the open box barcode, or "" when no box is open.
func (s *Session) CurrentBox() string { return s.current }

// Search returns the active filter query.
func (s *Session) Search() string { return s.search }

// SetSearch stores the filter query.
func (s *Session) SetSearch(q string) { s.search = q }

// OpenBox normalizes and validates raw as a box barcode, creates the box
// if absent and makes it current. Reopening an existing box is not an
// error. The normalized barcode is returned on success.
func (s *Session) OpenBox(raw string) (string, error) {
	code := barcode.Normalize(strings.TrimSpace(raw), barcode.RoleBox)
	if code == "" {
		return "", apperr.ErrEmptyInput
	}
	if !barcode.Valid(code, barcode.RoleBox, s.strict) {
		return "", apperr.ErrInvalidBarcode
	}
	if _, ok := s.boxes.Get(code); !ok {
		s.boxes.Set(code, om.New[string, int]())
	}
	s.current = code
	return code, nil
}

// ScanItem normalizes and validates raw as an item barcode and increments
// its count in the current box, creating the entry at 1 if new. Repeated
// identical scans accumulate.
func (s *Session) ScanItem(raw string) (string, error) {
	code := barcode.Normalize(strings.TrimSpace(raw), barcode.RoleItem)
	if s.current == "" {
		return "", apperr.ErrNoCurrentBox
	}
	if code == "" {
		return "", apperr.ErrEmptyInput
	}
	if !barcode.Valid(code, barcode.RoleItem, s.strict) {
		return "", apperr.ErrInvalidBarcode
	}
	items, ok := s.boxes.Get(s.current)
	if !ok {
		return "", apperr.ErrNoCurrentBox
	}
	qty, _ := items.Get(code)
	items.Set(code, qty+1)
	return code, nil
}

// SetQuantity sets the absolute count of (box, item). A quantity <= 0
// removes the entry, cascading to the box when it becomes empty. Setting
// a positive quantity on an absent item creates the entry.
func (s *Session) SetQuantity(box, item string, qty int) {
	if qty <= 0 {
		s.DeleteItem(box, item)
		return
	}
	items, ok := s.boxes.Get(box)
	if !ok {
		return
	}
	items.Set(item, qty)
}

// Put creates box if absent and sets item to qty without validation.
// It is the restore path used by the snapshot and import codecs;
// non-positive quantities are ignored.
func (s *Session) Put(box, item string, qty int) {
	if qty <= 0 {
		return
	}
	s.EnsureBox(box).Set(item, qty)
}

// EnsureBox creates box if absent and returns its item map.
func (s *Session) EnsureBox(box string) *om.OrderedMap[string, int] {
	items, ok := s.boxes.Get(box)
	if !ok {
		items = om.New[string, int]()
		s.boxes.Set(box, items)
	}
	return items
}

// SetCurrent marks box as current. It is ignored unless box is "" or an
// existing box, preserving the invariant that current is always a key of
// the box set.
func (s *Session) SetCurrent(box string) {
	if box == "" {
		s.current = ""
		return
	}
	if _, ok := s.boxes.Get(box); ok {
		s.current = box
	}
}

// RenameBox moves old's items and comments under new. Like the in-place
// edit it backs, the renamed box moves to the end of the display order.
func (s *Session) RenameBox(old, new string) error {
	if new == old {
		return nil
	}
	if !barcode.Valid(new, barcode.RoleBox, s.strict) {
		return apperr.ErrInvalidBarcode
	}
	items, ok := s.boxes.Get(old)
	if !ok {
		return apperr.ErrNotFound
	}
	if _, exists := s.boxes.Get(new); exists {
		return apperr.ErrDuplicateBox
	}
	s.boxes.Delete(old)
	s.boxes.Set(new, items)
	for k, text := range s.comments {
		if k.Box == old {
			delete(s.comments, k)
			s.comments[Key{Box: new, Sub: k.Sub}] = text
		}
	}
	if s.current == old {
		s.current = new
	}
	return nil
}

// RenameItem moves (box, old) to (box, new) along with its comment.
func (s *Session) RenameItem(box, old, new string) error {
	if new == old {
		return nil
	}
	if !barcode.Valid(new, barcode.RoleItem, s.strict) {
		return apperr.ErrInvalidBarcode
	}
	items, ok := s.boxes.Get(box)
	if !ok {
		return apperr.ErrNotFound
	}
	qty, ok := items.Get(old)
	if !ok {
		return apperr.ErrNotFound
	}
	if _, exists := items.Get(new); exists {
		return apperr.ErrDuplicateItem
	}
	items.Delete(old)
	items.Set(new, qty)
	if text, ok := s.comments[Key{Box: box, Sub: old}]; ok {
		delete(s.comments, Key{Box: box, Sub: old})
		s.comments[Key{Box: box, Sub: new}] = text
	}
	return nil
}

// DeleteBox removes box, every comment keyed under it, and clears the
// current box if it pointed there.
func (s *Session) DeleteBox(box string) {
	s.boxes.Delete(box)
	for k := range s.comments {
		if k.Box == box {
			delete(s.comments, k)
		}
	}
	if s.current == box {
		s.current = ""
	}
}

// DeleteItem removes (box, item) and its comment. When the box becomes
// empty it is removed through DeleteBox, which also purges the box-level
// comment; deleting a non-last item never touches the box comment.
func (s *Session) DeleteItem(box, item string) {
	items, ok := s.boxes.Get(box)
	if !ok {
		return
	}
	items.Delete(item)
	delete(s.comments, Key{Box: box, Sub: item})
	if items.Len() == 0 {
		s.DeleteBox(box)
	}
}

// SetComment upserts the comment at (box, sub). An empty text is a valid
// comment and clears the previous one.
func (s *Session) SetComment(box, sub, text string) {
	s.comments[Key{Box: box, Sub: sub}] = text
}

// Comment returns the comment at (box, sub), or "" when unset.
func (s *Session) Comment(box, sub string) string {
	return s.comments[Key{Box: box, Sub: sub}]
}

// Comments returns a copy of the comment store.
func (s *Session) Comments() map[Key]string {
	out := make(map[Key]string, len(s.comments))
	for k, v := range s.comments {
		out[k] = v
	}
	return out
}

// BoxList returns the box barcodes in insertion order.
func (s *Session) BoxList() []string {
	out := make([]string, 0, s.boxes.Len())
	for p := s.boxes.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// Items returns the items of box in insertion order.
func (s *Session) Items(box string) []Item {
	items, ok := s.boxes.Get(box)
	if !ok {
		return nil
	}
	out := make([]Item, 0, items.Len())
	for p := items.Oldest(); p != nil; p = p.Next() {
		out = append(out, Item{Barcode: p.Key, Quantity: p.Value})
	}
	return out
}

// Quantity returns the count of (box, item).
func (s *Session) Quantity(box, item string) (int, bool) {
	items, ok := s.boxes.Get(box)
	if !ok {
		return 0, false
	}
	return items.Get(item)
}

// Filter returns one row per item whose box or item barcode contains
// query, case-insensitively. An empty query returns everything. Ordering
// is boxes in insertion order, then items in insertion order within each.
func (s *Session) Filter(query string) []Row {
	q := strings.ToLower(query)
	var rows []Row
	for bp := s.boxes.Oldest(); bp != nil; bp = bp.Next() {
		box := bp.Key
		boxComment := s.comments[Key{Box: box}]
		for ip := bp.Value.Oldest(); ip != nil; ip = ip.Next() {
			if q != "" &&
				!strings.Contains(strings.ToLower(box), q) &&
				!strings.Contains(strings.ToLower(ip.Key), q) {
				continue
			}
			rows = append(rows, Row{
				Box:         box,
				BoxComment:  boxComment,
				Item:        ip.Key,
				Quantity:    ip.Value,
				ItemComment: s.comments[Key{Box: box, Sub: ip.Key}],
			})
		}
	}
	return rows
}

// Rows returns every item row in display order.
func (s *Session) Rows() []Row { return s.Filter("") }

// Summary returns the box count and the total item count summed over all
// quantities.
func (s *Session) Summary() (boxes int, totalItems int) {
	boxes = s.boxes.Len()
	for bp := s.boxes.Oldest(); bp != nil; bp = bp.Next() {
		for ip := bp.Value.Oldest(); ip != nil; ip = ip.Next() {
			totalItems += ip.Value
		}
	}
	return boxes, totalItems
}

// Merge folds other into s: quantities for the same (box, item) are
// summed, new boxes and items are appended in other's order, and the
// last non-empty comment wins.
func (s *Session) Merge(other *Session) {
	for _, box := range other.BoxList() {
		items := s.EnsureBox(box)
		for _, it := range other.Items(box) {
			qty, _ := items.Get(it.Barcode)
			items.Set(it.Barcode, qty+it.Quantity)
		}
	}
	for k, text := range other.comments {
		if text != "" {
			s.comments[k] = text
		}
	}
}

// Reset returns the session to its initial empty state with no box open
// and an empty search query. The strict flag is a setting and survives.
func (s *Session) Reset() {
	s.boxes = om.New[string, *om.OrderedMap[string, int]]()
	s.comments = make(map[Key]string)
	s.current = ""
	s.search = ""
}
