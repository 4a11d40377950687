package commands

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/wonny/clientwatch/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printHeader prints a titled header block
func printHeader(w io.Writer, title, subtitle string) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "  %s\n", title)
	if subtitle != "" {
		fmt.Fprintf(w, "  %s\n", subtitle)
	}
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
}

// printSuccess prints a success message
func printSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// printWarning prints a warning message
func printWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// printInfo prints an info message
func printInfo(w io.Writer, message string) {
	fmt.Fprintf(w, "ℹ️  %s\n", message)
}

// printTable prints a header, a rule and left-aligned rows; widths fit the content
func printTable(w io.Writer, columns []string, rows [][]string) {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = utf8.RuneCountInString(col)
	}
	for _, row := range rows {
		for i, val := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(val))
		}
	}

	printRow(w, columns, widths)
	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", total))
	for _, row := range rows {
		printRow(w, row, widths)
	}
}

func printRow(w io.Writer, values []string, widths []int) {
	var b strings.Builder
	for i, val := range values {
		b.WriteString(val)
		if i < len(values)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(val)+2))
		}
	}
	fmt.Fprintln(w, b.String())
}

// printKeyValue prints an aligned key-value line
func printKeyValue(w io.Writer, key, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// dueLabel renders days_until_due for tables
func dueLabel(a contracts.Alert) string {
	if a.DaysUntilDue == nil {
		return "-"
	}
	switch d := *a.DaysUntilDue; {
	case d == 0:
		return "today"
	case d < 0:
		return fmt.Sprintf("%dd overdue", -d)
	default:
		return fmt.Sprintf("in %dd", d)
	}
}

// priorityLabel renders the priority in upper case with a dismissed marker
func priorityLabel(a contracts.Alert) string {
	label := strings.ToUpper(a.Priority.String())
	if a.Dismissed {
		label += " (dismissed)"
	}
	return label
}
