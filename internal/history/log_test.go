package history

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLog(t *testing.T) *Log {
	t.Helper()
	l := NewLog(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	base := time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local)
	n := 0
	l.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return l
}

func TestAppend_CreatesSessionFileLazily(t *testing.T) {
	l := testLog(t)
	if l.Path() != "" {
		t.Fatal("file should not exist before the first scan")
	}
	if err := l.Append(KindBox, "12345678"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	name := filepath.Base(l.Path())
	if name != "scan_history_20260314_092654.log" {
		t.Errorf("file name = %q", name)
	}
	if err := l.Append(KindItem, "1234567890123"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatal(err)
	}
	want := "2026-03-14 09:26:54 - BOX: 12345678\n" +
		"2026-03-14 09:26:55 - ITEM: 1234567890123\n"
	if string(data) != want {
		t.Errorf("log =\n%s\nwant\n%s", data, want)
	}
}

func TestReadAll_SkipsMalformedLines(t *testing.T) {
	l := testLog(t)
	_ = l.Append(KindBox, "12345678")
	_ = l.Append(KindItem, "OZN123456")

	f, err := os.OpenFile(l.Path(), os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("garbage line\n")
	f.WriteString("also - bad\n")
	f.Close()

	entries, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Kind != KindBox || entries[0].Barcode != "12345678" {
		t.Errorf("entry 0 = %+v", entries[0])
	}
	if entries[1].Kind != KindItem || entries[1].Barcode != "OZN123456" {
		t.Errorf("entry 1 = %+v", entries[1])
	}
}

func TestReadAll_NoFileYet(t *testing.T) {
	l := testLog(t)
	entries, err := l.ReadAll()
	if err != nil || entries != nil {
		t.Errorf("got %v, %v; want nil, nil", entries, err)
	}
}

func TestFilter(t *testing.T) {
	l := testLog(t)
	_ = l.Append(KindBox, "12345678")
	_ = l.Append(KindItem, "OZN123456")
	_ = l.Append(KindItem, "1234567890123")

	got, err := l.Filter("ozn")
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(got) != 1 || got[0].Barcode != "OZN123456" {
		t.Errorf("barcode filter: %+v", got)
	}

	got, _ = l.Filter("item")
	if len(got) != 2 {
		t.Errorf("kind filter matched %d, want 2", len(got))
	}

	got, _ = l.Filter("09:26:5")
	if len(got) != 3 {
		t.Errorf("timestamp filter matched %d, want 3", len(got))
	}

	got, _ = l.Filter("")
	if len(got) != 3 {
		t.Errorf("empty filter matched %d, want 3", len(got))
	}
}

func TestParseLine(t *testing.T) {
	e, ok := parseLine("2026-03-14 09:26:54 - box: 12345678")
	if !ok {
		t.Fatal("lowercase kind should parse")
	}
	if e.Kind != KindBox {
		t.Errorf("kind = %q", e.Kind)
	}
	if _, ok := parseLine("not a log line"); ok {
		t.Error("garbage should not parse")
	}
	if _, ok := parseLine("eleven pm - BOX: 12345678"); ok {
		t.Error("bad timestamp should not parse")
	}
}
