package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/oslo-sync/internal/core/domain"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	fatalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	headStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
)

// styled reports whether stdout is a terminal. Colour is only used there.
var styled = term.IsTerminal(int(os.Stdout.Fd()))

func paint(s lipgloss.Style, text string) string {
	if !styled {
		return text
	}
	return s.Render(text)
}

func okLine(msg string) string {
	return paint(okStyle, "✓ "+msg)
}

func warnLine(msg string) string {
	return paint(warnStyle, "! "+msg)
}

func errorLine(msg string) string {
	return paint(fatalStyle, "✗ "+msg)
}

func fatalLine(msg string) string {
	return paint(fatalStyle, "✗ FATAL: "+msg)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printBatch renders a BatchResult for sync and push.
func printBatch(cmd *cobra.Command, c domain.Collection, records int, result *domain.BatchResult) error {
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	cmd.Printf("Collection: %s\n", c.Name)
	cmd.Printf("  Records:   %d\n", records)
	cmd.Printf("  Inserted:  %d\n", result.Inserted)
	cmd.Printf("  Updated:   %d\n", result.Updated)
	if result.Skipped > 0 {
		cmd.Printf("  Skipped:   %d\n", result.Skipped)
	}
	cmd.Printf("  Submitted: %d\n", result.Submitted)
	cmd.Printf("  Succeeded: %d\n", result.Succeeded)

	if len(result.Failed) == 0 {
		cmd.Println(okLine("All records reconciled."))
		return nil
	}

	cmd.Println(warnLine(fmt.Sprintf("%d record(s) failed:", len(result.Failed))))
	for _, f := range result.Failed {
		cmd.Printf("  [%d] %s: %s\n", f.Index, f.URI, f.Reason)
	}
	return nil
}

// runsTable renders run history as a bordered table.
func runsTable(runs []domain.SyncRun) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := "ok"
		if r.Error != "" {
			status = "error"
		} else if r.Failed > 0 {
			status = "partial"
		}
		rows = append(rows, []string{
			shortID(r.ID),
			string(r.Mode),
			r.Collection,
			strconv.Itoa(r.Records),
			strconv.Itoa(r.Inserted),
			strconv.Itoa(r.Updated),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Failed),
			status,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Duration().Round(time.Millisecond).String(),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "MODE", "COLLECTION", "RECORDS", "INS", "UPD", "SKIP", "FAIL", "STATUS", "STARTED", "TOOK").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headStyle
			}
			return cellStyle
		}).
		String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// maskSecret shows only the ends of a secret.
func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
