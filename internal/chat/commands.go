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
	"fmt"
	"strings"
)

// SlashCommand represents a parsed slash command
type SlashCommand struct {
	Command string
	Args    []string
}

// ParseSlashCommand parses a slash command from user input
func ParseSlashCommand(input string) *SlashCommand {
	if !strings.HasPrefix(input, "/") {
		return nil
	}

	// Remove the leading slash
	input = strings.TrimPrefix(input, "/")

	// Split into command and arguments, respecting quotes
	parts := parseQuotedArgs(input)
	if len(parts) == 0 {
		return nil
	}

	return &SlashCommand{
		Command: parts[0],
		Args:    parts[1:],
	}
}

// parseQuotedArgs splits a string into arguments, respecting quoted strings
func parseQuotedArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)

	// Convert to runes for proper Unicode handling
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case (r == '"' || r == '\'') && !inQuote:
			// Start of quoted string
			inQuote = true
			quoteChar = r
		case r == quoteChar && inQuote:
			// End of quoted string
			inQuote = false
			quoteChar = 0
		case r == ' ' && !inQuote:
			// Space outside quotes - end of argument
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		case r == '\\' && inQuote && i+1 < len(runes):
			// Escape sequence in quoted string
			next := runes[i+1]
			if next == quoteChar || next == '\\' {
				// Skip the backslash, include the escaped character
				current.WriteRune(next)
				i++ // Skip the next character since we've already processed it
			} else {
				// Not a valid escape sequence, include the backslash
				current.WriteRune(r)
			}
		default:
			// Regular character
			current.WriteRune(r)
		}
	}

	// Add the last argument if any
	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args
}

// HandleSlashCommand processes a slash command and reports whether it
// was recognised
func (c *Client) HandleSlashCommand(cmd *SlashCommand) bool {
	if cmd == nil {
		return false
	}

	switch cmd.Command {
	case "help":
		c.ui.PrintHelp()
	case "databases":
		c.listDatabases()
	case "database", "db":
		if len(cmd.Args) == 0 {
			c.ui.PrintSystemMessage(fmt.Sprintf("Database: %s", c.databaseLabel()))
			return true
		}
		c.selectDatabase(cmd.Args[0])
	case "execute":
		if v, ok := c.parseToggle("execute", cmd.Args); ok {
			if v && !c.agent.CanExecute() {
				c.ui.PrintError("No databases are configured; statements cannot be executed")
				return true
			}
			c.execute = v
			c.ui.PrintSystemMessage(fmt.Sprintf("Execute: %s", onOff(c.execute)))
		}
	case "markdown":
		if v, ok := c.parseToggle("markdown", cmd.Args); ok {
			c.ui.RenderMarkdown = v
			c.ui.PrintSystemMessage(fmt.Sprintf("Markdown rendering: %s", onOff(v)))
		}
	case "show":
		c.printSettings()
	default:
		return false
	}
	return true
}

func (c *Client) parseToggle(name string, args []string) (bool, bool) {
	if len(args) != 1 {
		c.ui.PrintError(fmt.Sprintf("Usage: /%s on|off", name))
		return false, false
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "1", "yes":
		return true, true
	case "off", "false", "0", "no":
		return false, true
	default:
		c.ui.PrintError(fmt.Sprintf("Invalid value for %s: %s (use on or off)", name, args[0]))
		return false, false
	}
}

func (c *Client) listDatabases() {
	if c.databases == nil || len(c.databases.ListDatabaseNames()) == 0 {
		c.ui.PrintSystemMessage("No databases configured")
		return
	}
	var sb strings.Builder
	sb.WriteString("Databases:")
	for _, name := range c.databases.ListDatabaseNames() {
		marker := "  "
		if name == c.databaseLabel() {
			marker = "* "
		}
		sb.WriteString("\n  " + marker + name)
	}
	c.ui.PrintSystemMessage(sb.String())
}

func (c *Client) selectDatabase(name string) {
	if c.databases == nil || !c.databases.HasDatabase(name) {
		c.ui.PrintError(fmt.Sprintf("Database '%s' is not configured", name))
		return
	}
	c.database = name
	c.ui.PrintSystemMessage(fmt.Sprintf("Database: %s", name))
}

func (c *Client) printSettings() {
	c.ui.PrintSystemMessage(fmt.Sprintf("Database: %s\n  Execute: %s\n  Markdown rendering: %s",
		c.databaseLabel(), onOff(c.execute), onOff(c.ui.RenderMarkdown)))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
