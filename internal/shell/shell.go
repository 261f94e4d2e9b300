// Package shell is the line-based presentation adapter: it maps operator
// input to service calls and renders the refreshed view after every
// mutation. It holds no session state of its own.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/starford/scanbox/internal/scanservice"
	"github.com/starford/scanbox/internal/session"
)

// Shell renders one packing session on a line-oriented terminal.
type Shell struct {
	svc *scanservice.Service
	out io.Writer
}

// New creates a shell around svc writing to out.
func New(svc *scanservice.Service, out io.Writer) *Shell {
	return &Shell{svc: svc, out: out}
}

// ReadLines feeds trimmed input lines into lines until EOF or ctx
// cancellation, then closes the channel.
func ReadLines(ctx context.Context, r io.Reader, lines chan<- string) {
	defer close(lines)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return
		case lines <- strings.TrimSpace(sc.Text()):
		}
	}
}

// Handle executes one input line. A bare line is an item scan; commands
// carry a keyword prefix. Errors are rendered, never returned: every
// failure here is recoverable operator input.
func (sh *Shell) Handle(line string) {
	if line == "" {
		return
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case "help":
		sh.printHelp()
	case "box":
		sh.openBox(fields[1:])
	case "find":
		sh.find(strings.TrimSpace(strings.TrimPrefix(line, "find")))
	case "list":
		sh.printRows(sh.svc.Session().Rows())
		sh.printSummary()
	case "qty":
		sh.setQuantity(fields[1:])
	case "del":
		sh.deleteEntry(fields[1:])
	case "rename":
		sh.rename(fields[1:])
	case "comment":
		sh.comment(fields[1:])
	case "strict":
		sh.strict(fields[1:])
	case "status":
		fmt.Fprintln(sh.out, sh.svc.Status())
		sh.printSummary()
	case "reset":
		sh.report(sh.svc.Reset())
		fmt.Fprintln(sh.out, "session cleared")
	default:
		sh.scanItem(line)
	}
}

// ImportFile merges a dropped CSV file into the session (the hot-folder
// path). The processed file is renamed so it is not picked up again.
func (sh *Shell) ImportFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(sh.out, "import %s: %v\n", path, err)
		return
	}
	warnings, err := sh.svc.ImportCSV(f, true)
	f.Close()
	if err != nil {
		fmt.Fprintf(sh.out, "import %s: %v\n", path, err)
		return
	}
	for _, w := range warnings {
		fmt.Fprintf(sh.out, "import %s: skipped %s\n", path, w)
	}
	if err := os.Rename(path, path+".done"); err != nil {
		fmt.Fprintf(sh.out, "import %s: mark done: %v\n", path, err)
	}
	fmt.Fprintf(sh.out, "imported %s\n", path)
	sh.printSummary()
}

func (sh *Shell) openBox(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(sh.out, "usage: box <barcode>")
		return
	}
	status, err := sh.svc.OpenBox(args[0])
	if err != nil {
		sh.report(err)
		return
	}
	fmt.Fprintln(sh.out, status)
}

func (sh *Shell) scanItem(code string) {
	if err := sh.svc.ScanItem(code); err != nil {
		sh.report(err)
		return
	}
	sh.printRows(sh.svc.Session().Rows())
	sh.printSummary()
}

func (sh *Shell) find(query string) {
	rows := sh.svc.Filter(query)
	sh.printRows(rows)
	fmt.Fprintf(sh.out, "%d row(s)\n", len(rows))
}

func (sh *Shell) setQuantity(args []string) {
	if len(args) != 3 {
		fmt.Fprintln(sh.out, "usage: qty <box> <item> <count>")
		return
	}
	qty, err := strconv.Atoi(args[2])
	if err != nil {
		fmt.Fprintf(sh.out, "bad count %q\n", args[2])
		return
	}
	sh.report(sh.svc.SetQuantity(args[0], args[1], qty))
	sh.printSummary()
}

func (sh *Shell) deleteEntry(args []string) {
	switch len(args) {
	case 1:
		sh.report(sh.svc.DeleteBox(args[0]))
	case 2:
		sh.report(sh.svc.DeleteItem(args[0], args[1]))
	default:
		fmt.Fprintln(sh.out, "usage: del <box> [<item>]")
		return
	}
	sh.printSummary()
}

func (sh *Shell) rename(args []string) {
	switch {
	case len(args) == 3 && args[0] == "box":
		sh.report(sh.svc.RenameBox(args[1], args[2]))
	case len(args) == 4 && args[0] == "item":
		sh.report(sh.svc.RenameItem(args[1], args[2], args[3]))
	default:
		fmt.Fprintln(sh.out, "usage: rename box <old> <new> | rename item <box> <old> <new>")
	}
}

// comment <box> <item|-> <text...>; "-" targets the box itself.
func (sh *Shell) comment(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(sh.out, "usage: comment <box> <item|-> [text]")
		return
	}
	sub := args[1]
	if sub == "-" {
		sub = ""
	}
	sh.report(sh.svc.SetComment(args[0], sub, strings.Join(args[2:], " ")))
}

func (sh *Shell) strict(args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		fmt.Fprintln(sh.out, "usage: strict on|off")
		return
	}
	sh.report(sh.svc.SetStrict(args[0] == "on"))
	fmt.Fprintf(sh.out, "strict validation %s\n", args[0])
}

func (sh *Shell) printRows(rows []session.Row) {
	w := tabwriter.NewWriter(sh.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BOX\tITEM\tQTY\tCOMMENT")
	for _, r := range rows {
		comment := r.ItemComment
		if comment == "" {
			comment = r.BoxComment
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.Box, r.Item, r.Quantity, comment)
	}
	w.Flush()
}

func (sh *Shell) printSummary() {
	boxes, items := sh.svc.Summary()
	fmt.Fprintf(sh.out, "boxes: %d | items: %d\n", boxes, items)
}

func (sh *Shell) report(err error) {
	if err != nil {
		fmt.Fprintln(sh.out, "error:", err)
	}
}

func (sh *Shell) printHelp() {
	fmt.Fprint(sh.out, `commands:
  box <barcode>                     open (or create) a box
  <barcode>                         scan an item into the open box
  list                              show all rows
  find <query>                      filter rows by box or item barcode
  qty <box> <item> <count>          set an absolute count (0 deletes)
  del <box> [<item>]                delete a box or a single item
  rename box <old> <new>            change a box barcode
  rename item <box> <old> <new>     change an item barcode
  comment <box> <item|-> [text]     set a comment ("-" = the box itself)
  strict on|off                     toggle strict barcode validation
  status | reset | help
`)
}
