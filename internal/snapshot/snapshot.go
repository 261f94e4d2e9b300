// Package snapshot serializes the session to its durable JSON form and
// restores it, applying defaults for missing fields.
package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	om "github.com/wk8/go-ordered-map/v2"

	"github.com/starford/scanbox/internal/apperr"
	"github.com/starford/scanbox/internal/session"
	"github.com/starford/scanbox/internal/storage"
)

// FileName is the snapshot file name inside the state directory.
const FileName = "state.json"

// commentDelim joins the composite comment key into a flat string key.
const commentDelim = ","

// document is the on-disk shape. Box and item maps keep document order so
// a load/save cycle preserves the display ordering.
type document struct {
	Boxes    *om.OrderedMap[string, *om.OrderedMap[string, int]] `json:"all_boxes"`
	Current  string                                              `json:"current_box_barcode"`
	Search   string                                              `json:"search_query"`
	Comments map[string]string                                   `json:"comments"`
	Strict   *bool                                               `json:"strict_validation_enabled,omitempty"`
}

// Encode serializes s to its snapshot form.
func Encode(s *session.Session) ([]byte, error) {
	boxes := om.New[string, *om.OrderedMap[string, int]]()
	for _, box := range s.BoxList() {
		items := om.New[string, int]()
		for _, it := range s.Items(box) {
			items.Set(it.Barcode, it.Quantity)
		}
		boxes.Set(box, items)
	}
	comments := make(map[string]string)
	for k, text := range s.Comments() {
		comments[k.Box+commentDelim+k.Sub] = text
	}
	strict := s.Strict()
	doc := document{
		Boxes:    boxes,
		Current:  s.CurrentBox(),
		Search:   s.Search(),
		Comments: comments,
		Strict:   &strict,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return data, nil
}

// Decode restores a session from snapshot bytes. Missing fields get
// defaults (empty maps, strict validation on). Comment keys with no box
// component are skipped with a warning; a key without the delimiter
// counts as a box-level comment.
func Decode(data []byte, logger *slog.Logger) (*session.Session, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrDecode, err)
	}

	s := session.New()
	if doc.Strict != nil {
		s.SetStrict(*doc.Strict)
	}
	if doc.Boxes != nil {
		for bp := doc.Boxes.Oldest(); bp != nil; bp = bp.Next() {
			s.EnsureBox(bp.Key)
			if bp.Value == nil {
				continue
			}
			for ip := bp.Value.Oldest(); ip != nil; ip = ip.Next() {
				s.Put(bp.Key, ip.Key, ip.Value)
			}
		}
	}
	for key, text := range doc.Comments {
		box, sub, found := strings.Cut(key, commentDelim)
		if !found {
			sub = ""
		}
		if box == "" {
			logger.Warn("snapshot: skipping comment with empty box key", slog.String("key", key))
			continue
		}
		s.SetComment(box, sub, text)
	}
	s.SetCurrent(doc.Current)
	s.SetSearch(doc.Search)
	return s, nil
}

// Save encodes s and writes it atomically through store.
func Save(store storage.Provider, s *session.Session) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	return store.Write(FileName, data)
}

// Load reads the snapshot through store and decodes it. A missing file is
// not an error: the caller gets a fresh session.
func Load(store storage.Provider, logger *slog.Logger) (*session.Session, error) {
	if !store.Exists(FileName) {
		return session.New(), nil
	}
	data, err := store.Read(FileName)
	if err != nil {
		return nil, err
	}
	return Decode(data, logger)
}
