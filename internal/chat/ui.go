/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package chat

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Color codes for terminal output
const (
	ColorReset   = "\033[0m"
	ColorRed     = "\033[31m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorBlue    = "\033[34m"
	ColorMagenta = "\033[35m"
	ColorCyan    = "\033[36m"
	ColorGray    = "\033[90m"
	ColorBold    = "\033[1m"
)

// UI handles terminal output
type UI struct {
	out            io.Writer
	noColor        bool
	RenderMarkdown bool
}

// NewUI creates a UI writing to stdout
func NewUI(noColor bool, renderMarkdown bool) *UI {
	return NewUITo(os.Stdout, noColor, renderMarkdown)
}

// NewUITo creates a UI writing to out
func NewUITo(out io.Writer, noColor bool, renderMarkdown bool) *UI {
	return &UI{
		out:            out,
		noColor:        noColor,
		RenderMarkdown: renderMarkdown,
	}
}

// colorize applies color if colors are enabled
func (ui *UI) colorize(color, text string) string {
	if ui.noColor {
		return text
	}
	return color + text + ColorReset
}

// PrintWelcome prints the welcome message
func (ui *UI) PrintWelcome(version string) {
	banner := fmt.Sprintf(`
  nl2sql-agent %s
  Ask a question about your data in plain English.
  Type 'quit' or 'exit' to leave, '/help' for commands.
`, version)
	fmt.Fprintln(ui.out, ui.colorize(ColorCyan, banner))
}

// GetPrompt returns the prompt string for readline
func (ui *UI) GetPrompt(database string) string {
	if database == "" {
		return ui.colorize(ColorGreen+ColorBold, "You: ")
	}
	return ui.colorize(ColorGreen+ColorBold, fmt.Sprintf("You [%s]: ", database))
}

// PrintSQL prints the generated statement
func (ui *UI) PrintSQL(sql string) {
	fmt.Fprint(ui.out, ui.colorize(ColorBlue, "SQL:\n"))
	ui.printMarkdown("```sql\n" + sql + "\n```\n")
}

// PrintResult prints result rows as a table
func (ui *UI) PrintResult(markdown string) {
	fmt.Fprint(ui.out, ui.colorize(ColorBlue, "Result:\n"))
	ui.printMarkdown(markdown)
}

// PrintSummary prints the result summary
func (ui *UI) PrintSummary(text string) {
	fmt.Fprintln(ui.out, ui.colorize(ColorBlue, "Summary: ")+text)
}

// printMarkdown renders text with glamour when enabled, falling back to
// plain text
func (ui *UI) printMarkdown(text string) {
	if ui.RenderMarkdown {
		style := "dark"
		if ui.noColor {
			style = "notty"
		}

		// Tables become hard to read beyond 120 columns
		width := ui.getTerminalWidth()
		if width > 120 {
			width = 120
		}

		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath(style),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			if rendered, err := r.Render(text); err == nil {
				fmt.Fprint(ui.out, rendered)
				return
			}
		}
	}

	fmt.Fprint(ui.out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(ui.out)
	}
}

// PrintSystemMessage prints a system message
func (ui *UI) PrintSystemMessage(text string) {
	fmt.Fprintln(ui.out, ui.colorize(ColorYellow, "System: ")+text)
}

// PrintError prints an error message
func (ui *UI) PrintError(text string) {
	fmt.Fprintln(ui.out, ui.colorize(ColorRed, "Error: ")+text)
}

// PrintSeparator prints a separator line
func (ui *UI) PrintSeparator() {
	fmt.Fprintln(ui.out, ui.colorize(ColorGray, strings.Repeat("─", 80)))
}

var thinkingActions = []string{
	"Searching table metadata",
	"Reading column descriptions",
	"Following relationships",
	"Consulting business rules",
	"Drafting the query",
	"Joining the dots",
	"Grouping thoughts",
	"Filtering noise",
}

func (ui *UI) getThinkingMaxWidth() int {
	maxWidth := 40
	for _, action := range thinkingActions {
		if width := len(action) + 5; width > maxWidth {
			maxWidth = width
		}
	}
	return maxWidth
}

// getTerminalWidth returns the usable terminal width, or 80 when stdout is
// not a terminal
func (ui *UI) getTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 2 {
		return width - 2
	}
	return 80
}

// ClearThinkingLine clears the thinking animation line
func (ui *UI) ClearThinkingLine() {
	fmt.Fprint(ui.out, "\r"+strings.Repeat(" ", ui.getThinkingMaxWidth())+"\r")
}

// ShowThinking displays an animated indicator until done is closed or ctx
// is cancelled
func (ui *UI) ShowThinking(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	frameIndex := 0
	actionIndex := rand.Intn(len(thinkingActions))
	ticks := 0
	maxWidth := ui.getThinkingMaxWidth()

	draw := func() {
		action := thinkingActions[actionIndex]
		msg := ui.colorize(ColorCyan, frames[frameIndex]) + " " + ui.colorize(ColorGray, action) + "..."
		if padding := maxWidth - len(action) - 5; padding > 0 {
			msg += strings.Repeat(" ", padding)
		}
		fmt.Fprint(ui.out, "\r"+msg)
	}
	draw()

	for {
		select {
		case <-done:
			ui.ClearThinkingLine()
			return
		case <-ctx.Done():
			ui.ClearThinkingLine()
			return
		case <-ticker.C:
			frameIndex = (frameIndex + 1) % len(frames)
			ticks++
			if ticks >= 4 {
				actionIndex = rand.Intn(len(thinkingActions))
				ticks = 0
			}
			draw()
		}
	}
}

// PrintHelp prints the help message
func (ui *UI) PrintHelp() {
	help := `
Available commands:
  help, /help                  - Show this help message
  quit, exit                   - Leave the chat
  clear                        - Clear the screen
  /databases                   - List configured databases
  /database <name>             - Run queries against <name>
  /execute on|off              - Execute generated SQL
  /markdown on|off             - Render SQL and results as markdown
  /show                        - Show current settings

Target a database for one question with "database <name>: <question>" or
"<question> on database <name>". "use database <name>" switches the default.

History navigation:
  Up/Down   - Navigate through command history
  Ctrl+R    - Reverse search history
`
	fmt.Fprintln(ui.out, ui.colorize(ColorCyan, help))
}

// ClearScreen clears the terminal screen
func (ui *UI) ClearScreen() {
	fmt.Fprint(ui.out, "\033[H\033[2J")
}
