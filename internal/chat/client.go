/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package chat implements the interactive terminal client
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"nl2sql-agent/internal/database"
	"nl2sql-agent/internal/nl2sql"
)

// ClientVersion is shown in the welcome banner
const ClientVersion = "1.0.0"

// Asker answers questions; *nl2sql.Agent implements it
type Asker interface {
	Ask(ctx context.Context, question, dbName string, execute bool) nl2sql.Answer
	CanExecute() bool
}

// DatabaseLister reports the configured execution targets;
// *database.ClientManager implements it
type DatabaseLister interface {
	ListDatabaseNames() []string
	GetDefaultDatabaseName() string
	HasDatabase(name string) bool
}

// Options configures a chat client
type Options struct {
	HistoryFile    string
	NoColor        bool
	RenderMarkdown bool
	Execute        bool
	Database       string
}

// Client is the interactive question loop
type Client struct {
	agent     Asker
	databases DatabaseLister
	ui        *UI
	opts      Options

	database string
	execute  bool
}

// NewClient creates a chat client. databases may be nil when no execution
// targets are configured.
func NewClient(agent Asker, databases DatabaseLister, opts Options) *Client {
	return newClient(agent, databases, NewUI(opts.NoColor, opts.RenderMarkdown), opts)
}

func newClient(agent Asker, databases DatabaseLister, ui *UI, opts Options) *Client {
	return &Client{
		agent:     agent,
		databases: databases,
		ui:        ui,
		opts:      opts,
		database:  opts.Database,
		execute:   opts.Execute && agent.CanExecute(),
	}
}

// databaseLabel returns the database questions currently run against
func (c *Client) databaseLabel() string {
	if c.database != "" {
		return c.database
	}
	if c.databases != nil {
		return c.databases.GetDefaultDatabaseName()
	}
	return ""
}

// Run prints the banner and reads questions until the user leaves or ctx
// is cancelled
func (c *Client) Run(ctx context.Context) error {
	c.ui.PrintWelcome(ClientVersion)
	if label := c.databaseLabel(); label != "" {
		c.ui.PrintSystemMessage(fmt.Sprintf("Database: %s (execute: %s)", label, onOff(c.execute)))
	} else {
		c.ui.PrintSystemMessage("No databases configured; generated SQL will not be executed")
	}
	c.ui.PrintSeparator()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            c.ui.GetPrompt(c.databaseLabel()),
		HistoryFile:       c.opts.HistoryFile,
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	go func() {
		<-ctx.Done()
		rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) || ctx.Err() != nil {
				fmt.Fprintln(c.ui.out)
				c.ui.PrintSystemMessage("Goodbye!")
				return nil
			}
			return fmt.Errorf("readline error: %w", err)
		}

		if !c.HandleInput(ctx, line) {
			c.ui.PrintSystemMessage("Goodbye!")
			return nil
		}
		rl.SetPrompt(c.ui.GetPrompt(c.databaseLabel()))
	}
}

// HandleInput processes one line of input. It returns false when the user
// asked to leave.
func (c *Client) HandleInput(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	switch strings.ToLower(input) {
	case "quit", "exit":
		return false
	case "help":
		c.ui.PrintHelp()
		return true
	case "clear":
		c.ui.ClearScreen()
		return true
	}

	if cmd := ParseSlashCommand(input); cmd != nil {
		if !c.HandleSlashCommand(cmd) {
			c.ui.PrintError(fmt.Sprintf("Unknown command: /%s (type /help for available commands)", cmd.Command))
		}
		return true
	}

	parsed := database.ParseQueryForDatabase(input)
	if parsed.SetAsDefault {
		c.selectDatabase(parsed.Database)
		return true
	}
	if parsed.Database != "" && (c.databases == nil || !c.databases.HasDatabase(parsed.Database)) {
		c.ui.PrintError(fmt.Sprintf("Database '%s' is not configured", parsed.Database))
		return true
	}

	dbName := c.database
	if parsed.Database != "" {
		dbName = parsed.Database
	}
	c.ask(ctx, parsed.CleanedQuery, dbName)
	c.ui.PrintSeparator()
	return true
}

func (c *Client) ask(ctx context.Context, question, dbName string) {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		c.ui.ShowThinking(ctx, done)
		close(finished)
	}()

	answer := c.agent.Ask(ctx, question, dbName, c.execute)
	close(done)
	<-finished

	if !answer.Outcome.OK() {
		c.ui.PrintError(answer.Outcome.UserMessage())
		return
	}

	c.ui.PrintSQL(answer.Outcome.SQL)
	if !answer.Executed {
		return
	}
	if answer.Err != nil {
		c.ui.PrintError(answer.Err.Error())
		return
	}
	c.ui.PrintResult(ResultMarkdown(answer.Result, DefaultDisplayRows))
	c.ui.PrintSummary(answer.Summary)
}
