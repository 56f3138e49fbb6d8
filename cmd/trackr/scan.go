// ABOUTME: Scan command: an interactive check-in/check-out loop over stdin.
// ABOUTME: Each line is an item code or a colon command such as :out or :export.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/riegojerey/ExoidTrackr/internal/export"
	"github.com/riegojerey/ExoidTrackr/internal/models"
	"github.com/riegojerey/ExoidTrackr/internal/session"
	"github.com/riegojerey/ExoidTrackr/internal/ui"
	"github.com/spf13/cobra"
)

var scanCommands = [][2]string{
	{":in", "switch to check-in mode"},
	{":out", "switch to check-out mode"},
	{":mode", "toggle the mode"},
	{":open PATH", "load a different catalog"},
	{":lookup CODE", "show the catalog description"},
	{":qty CODE N", "set the quantity"},
	{":inc CODE [N]", "add one, or N"},
	{":dec CODE [N]", "subtract one, or N"},
	{":rm CODE", "remove from the ledger"},
	{":list", "show the ledger"},
	{":report", "show totals and checked-out items"},
	{":export [PATH]", "write the ledger to a spreadsheet"},
	{":help", "show this help"},
	{":quit", "leave"},
}

const scanColonNote = "Lines starting with \":\" are commands; codes beginning with \":\" cannot be scanned."

// terminalView prints notifications and, on a terminal, the ledger after
// every change.
type terminalView struct {
	out   io.Writer
	table bool
}

func (v *terminalView) Notify(n session.Notification) {
	fmt.Fprintln(v.out, ui.FormatNotification(n))
}

func (v *terminalView) Refresh(rows []models.LedgerEntry) {
	if v.table {
		fmt.Fprint(v.out, ui.FormatLedgerTable(rows))
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

type scanner struct {
	app         *appContext
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	session     *session.Session
}

func newScanCommand(app *appContext) *cobra.Command {
	var modeFlag string
	var promptUnknown bool
	var exportPath string

	cmd := &cobra.Command{
		Use:   "scan [catalog.xlsx]",
		Short: "Check items in and out",
		Long: `Read item codes from a barcode scanner or the keyboard, one per line.
Known codes are checked in or out according to the current mode. Lines starting
with a colon are commands, so a code that begins with ":" cannot be scanned;
type :help to list them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg

			mode := cfg.StartMode()
			if modeFlag != "" {
				m, err := models.ParseMode(modeFlag)
				if err != nil {
					return err
				}
				mode = m
			}
			lenient := cfg.PromptUnknown()
			if cmd.Flags().Changed("prompt-unknown") {
				lenient = promptUnknown
			}

			catalogPath := cfg.Catalog
			if len(args) > 0 {
				catalogPath = args[0]
			}

			in := cmd.InOrStdin()
			sc := &scanner{
				app:         app,
				in:          bufio.NewReader(in),
				out:         cmd.OutOrStdout(),
				interactive: isTerminal(in),
			}
			sc.session = session.New(&terminalView{out: sc.out, table: sc.interactive}, session.Options{
				Mode:          mode,
				PromptUnknown: lenient,
				Prompter:      session.PromptFunc(sc.promptDescription),
				Export:        cfg.ExportOptions(),
				Logger:        app.logger,
			})

			if catalogPath != "" {
				if err := sc.session.SelectFile(catalogPath); err != nil {
					return err
				}
			} else {
				_ = sc.session.SelectFile("")
			}

			if err := sc.run(); err != nil {
				return err
			}
			if exportPath == "" {
				return nil
			}
			err := sc.session.Export(cfg.ExportPath(exportPath))
			if errors.Is(err, session.ErrNothingToExport) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Starting mode: check-in or check-out")
	cmd.Flags().BoolVar(&promptUnknown, "prompt-unknown", false, "Ask for a description of unknown codes and add them to the catalog")
	cmd.Flags().StringVarP(&exportPath, "export", "e", "", "Export the ledger to this file when the session ends")
	return cmd
}

func (sc *scanner) promptDescription(code string) (string, bool) {
	fmt.Fprintf(sc.out, "Item %q is not in the catalog. Description (blank to skip): ", code)
	line, err := readLine(sc.in)
	if err != nil {
		fmt.Fprintln(sc.out)
		return "", false
	}
	return line, true
}

func (sc *scanner) run() error {
	if sc.interactive {
		fmt.Fprint(sc.out, ui.FormatHelp(scanCommands))
		fmt.Fprintln(sc.out, ui.Warning(scanColonNote))
	}
	for {
		if sc.interactive {
			fmt.Fprint(sc.out, ui.Prompt(sc.session.Mode()))
		}
		line, err := readLine(sc.in)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, ":") {
			_ = sc.session.SubmitCode(line)
			continue
		}
		if quit := sc.command(line); quit {
			return nil
		}
	}
}

// lastField splits rest into everything before its final space-separated
// field and that field, so codes containing spaces can precede a count.
func lastField(rest string) (head, last string) {
	i := strings.LastIndexAny(rest, " \t")
	if i < 0 {
		return rest, ""
	}
	return strings.TrimSpace(rest[:i]), rest[i+1:]
}

// command runs one colon command and reports whether the loop should end.
// Arguments after the command name are taken whole, so item codes may contain
// spaces. Failures are already shown as notifications by the session.
func (sc *scanner) command(line string) bool {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case ":q", ":quit", ":exit":
		return true
	case ":in":
		sc.session.SetMode(models.CheckIn)
	case ":out":
		sc.session.SetMode(models.CheckOut)
	case ":mode":
		sc.session.ToggleMode()
	case ":open":
		_ = sc.session.SelectFile(rest)
	case ":lookup":
		if desc, ok := sc.session.LookupItem(rest); ok {
			fmt.Fprint(sc.out, ui.FormatEntry(models.Normalize(rest), desc))
		} else {
			fmt.Fprintln(sc.out, ui.Warning(fmt.Sprintf("Item code %q not found in the catalog.", rest)))
		}
	case ":qty":
		code, qty := lastField(rest)
		_ = sc.session.EditQuantity(code, qty)
	case ":inc", ":dec":
		code, delta := rest, 1
		if head, last := lastField(rest); head != "" {
			if n, err := strconv.Atoi(last); err == nil && n > 0 {
				code, delta = head, n
			}
		}
		if name == ":dec" {
			delta = -delta
		}
		_ = sc.session.AdjustQuantity(code, delta)
	case ":rm":
		_ = sc.session.RemoveItem(rest)
	case ":list":
		fmt.Fprint(sc.out, ui.FormatLedgerTable(sc.session.Rows()))
	case ":report":
		md := ui.SummaryMarkdown(sc.session.Mode(), sc.session.Summary(), sc.session.Rows())
		out, _ := ui.FormatMarkdown(md)
		fmt.Fprint(sc.out, out)
	case ":export":
		path := rest
		if path == "" {
			path = export.DefaultLedgerFile
		}
		_ = sc.session.Export(sc.app.cfg.ExportPath(path))
	case ":help", ":h", ":?":
		fmt.Fprint(sc.out, ui.FormatHelp(scanCommands))
		fmt.Fprintln(sc.out, ui.Warning(scanColonNote))
	default:
		fmt.Fprintln(sc.out, ui.Error(fmt.Sprintf("Unknown command %s; type :help for a list.", name)))
	}
	return false
}
