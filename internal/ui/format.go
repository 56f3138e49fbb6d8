// ABOUTME: Terminal UI formatting for trackr output.
// ABOUTME: Uses go-pretty for ledger tables, glamour for reports, fatih/color for styling.

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/riegojerey/ExoidTrackr/internal/ledger"
	"github.com/riegojerey/ExoidTrackr/internal/models"
	"github.com/riegojerey/ExoidTrackr/internal/session"
)

var (
	faint  = color.New(color.Faint).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

func Success(msg string) string {
	return green("✓ ") + msg
}

func Warning(msg string) string {
	return yellow("! ") + msg
}

func Error(msg string) string {
	return red("✗ ") + msg
}

// FormatNotification picks the marker matching the notification's severity.
func FormatNotification(n session.Notification) string {
	switch n.Severity {
	case session.Error:
		return Error(n.Message)
	case session.Warning:
		return Warning(n.Message)
	default:
		return Success(n.Message)
	}
}

func FormatStatus(s models.Status) string {
	if s == models.CheckedOut {
		return red(s.String())
	}
	return green(s.String())
}

// FormatLedgerTable renders ledger rows in the same column order as the
// exported spreadsheet.
func FormatLedgerTable(rows []models.LedgerEntry) string {
	if len(rows) == 0 {
		return faint("No items scanned yet.") + "\n"
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Item Code", "Description", "Status", "Quantity"})
	for i, r := range rows {
		tw.AppendRow(table.Row{i + 1, r.ItemCode, r.Description, FormatStatus(r.Status), r.Quantity})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render() + "\n"
}

func FormatCatalogTable(entries []models.CatalogEntry) string {
	if len(entries) == 0 {
		return faint("Catalog is empty.") + "\n"
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Item Code", "Description"})
	for _, e := range entries {
		tw.AppendRow(table.Row{e.ItemCode, e.Description})
	}
	return tw.Render() + "\n"
}

func FormatEntry(code, description string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Code:"), bold(code)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Description:"), description))
	return sb.String()
}

// SummaryMarkdown describes the ledger as a markdown report.
func SummaryMarkdown(mode models.Mode, sum ledger.Summary, rows []models.LedgerEntry) string {
	var sb strings.Builder
	sb.WriteString("# Inventory session\n\n")
	sb.WriteString(fmt.Sprintf("Mode: **%s**\n\n", mode))
	sb.WriteString(fmt.Sprintf("- Items tracked: %d\n", sum.Items))
	sb.WriteString(fmt.Sprintf("- Checked in: %d\n", sum.CheckedIn))
	sb.WriteString(fmt.Sprintf("- Checked out: %d\n", sum.CheckedOut))
	sb.WriteString(fmt.Sprintf("- Units on hand: %d\n", sum.Units))

	var out []models.LedgerEntry
	for _, r := range rows {
		if r.Status == models.CheckedOut {
			out = append(out, r)
		}
	}
	if len(out) > 0 {
		sb.WriteString("\n## Checked out\n\n")
		sb.WriteString("| Item Code | Description | Quantity |\n|---|---|---|\n")
		for _, r := range out {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d |\n", r.ItemCode, r.Description, r.Quantity))
		}
	}
	return sb.String()
}

// FormatMarkdown renders markdown for the terminal, returning the raw text
// when rendering is unavailable.
func FormatMarkdown(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, nil //nolint:nilerr // Intentional fallback
	}

	out, err := renderer.Render(content)
	if err != nil {
		return content, nil //nolint:nilerr // Intentional fallback
	}
	return out, nil
}

func ModeBanner(mode models.Mode) string {
	label := fmt.Sprintf("[%s]", mode)
	if mode == models.CheckOut {
		return bold(red(label))
	}
	return bold(green(label))
}

// Prompt is printed before each scan on an interactive terminal.
func Prompt(mode models.Mode) string {
	return ModeBanner(mode) + " " + cyan("scan> ")
}

func Separator() string {
	return faint(strings.Repeat("─", 50)) + "\n"
}

func FormatHelp(commands [][2]string) string {
	var sb strings.Builder
	sb.WriteString(bold("Commands:") + "\n")
	for _, c := range commands {
		sb.WriteString(fmt.Sprintf("  %-18s %s\n", c[0], faint(c[1])))
	}
	return sb.String()
}
