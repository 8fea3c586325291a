/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/sijms/go-ora/v2"

	"nl2sql-agent/internal/config"
	"nl2sql-agent/internal/logging"
	"nl2sql-agent/internal/metrics"
	"nl2sql-agent/internal/tsv"
)

const (
	// DefaultMaxRows caps the rows read per statement
	DefaultMaxRows = 1000

	// DefaultQueryTimeout bounds a single statement
	DefaultQueryTimeout = 30 * time.Second

	connectTimeout = 10 * time.Second
	appName        = "nl2sql-agent"
)

// Options control statement execution on a Client
type Options struct {
	MaxRows  int           // Row cap; 0 selects DefaultMaxRows
	ReadOnly bool          // Reject statements other than SELECT and WITH
	Timeout  time.Duration // Per-statement timeout; 0 selects DefaultQueryTimeout
}

// Client executes statements against one named database. It wraps a
// *sql.DB pool and is safe for concurrent use.
type Client struct {
	name    string
	driver  string
	connStr string
	db      *sql.DB
	opts    Options

	mu      sync.Mutex
	active  int  // statements holding the client
	retired bool // replaced by a config reload; closes when idle
}

// NewClient wraps an open pool. It is used by Open and by tests that
// supply their own *sql.DB.
func NewClient(name, driver string, db *sql.DB, opts Options) *Client {
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultQueryTimeout
	}
	return &Client{name: name, driver: driver, db: db, opts: opts}
}

// Open connects to the database described by cfg and verifies the
// connection with a ping
func Open(cfg *config.DatabaseConfig) (*Client, error) {
	startTime := time.Now()

	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	connStr := BuildConnectionString(cfg)

	var db *sql.DB
	switch cfg.Driver {
	case DriverOracle:
		db, err = sql.Open("oracle", connStr)
		if err != nil {
			return nil, fmt.Errorf("opening Oracle connection: %w", err)
		}
	case DriverPostgres:
		db, err = openPostgres(connStr, opts.ReadOnly)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	maxConns := cfg.PoolMaxConns
	if maxConns <= 0 {
		maxConns = 4
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	idle := 30 * time.Minute
	if cfg.PoolMaxConnIdleTime != "" {
		idle, err = time.ParseDuration(cfg.PoolMaxConnIdleTime)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("invalid pool_max_conn_idle_time: %w", err)
		}
	}
	db.SetConnMaxIdleTime(idle)
	LogConnectionDetails(cfg.Name, maxConns, idle)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		LogConnection(cfg.Name, connStr, time.Since(startTime), err)
		return nil, fmt.Errorf("unable to ping database %q: %w", cfg.Name, err)
	}
	LogConnection(cfg.Name, connStr, time.Since(startTime), nil)

	c := NewClient(cfg.Name, cfg.Driver, db, opts)
	c.connStr = connStr
	return c, nil
}

// openPostgres opens a pool through the pgx stdlib driver. Read-only
// clients set default_transaction_read_only on every session.
func openPostgres(connStr string, readOnly bool) (*sql.DB, error) {
	connConfig, err := pgx.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}
	if connConfig.RuntimeParams == nil {
		connConfig.RuntimeParams = make(map[string]string)
	}
	if _, ok := connConfig.RuntimeParams["application_name"]; !ok {
		connConfig.RuntimeParams["application_name"] = appName
	}
	if readOnly {
		connConfig.RuntimeParams["default_transaction_read_only"] = "on"
	}
	return stdlib.OpenDB(*connConfig), nil
}

func optionsFromConfig(cfg *config.DatabaseConfig) (Options, error) {
	opts := Options{
		MaxRows:  cfg.MaxRows,
		ReadOnly: !cfg.AllowWrites,
	}
	if cfg.QueryTimeout != "" {
		d, err := time.ParseDuration(cfg.QueryTimeout)
		if err != nil {
			return opts, fmt.Errorf("invalid query_timeout for database %q: %w", cfg.Name, err)
		}
		opts.Timeout = d
	}
	return opts, nil
}

// BuildConnectionString returns cfg.URL when set, otherwise a URL built
// from the individual fields. If the Postgres password is not set, pgx
// will look it up from the .pgpass file.
func BuildConnectionString(cfg *config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}

	scheme := "postgres"
	if cfg.Driver == DriverOracle {
		scheme = "oracle"
	}

	u := url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Database,
	}
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	} else if cfg.User != "" {
		u.User = url.User(cfg.User)
	}
	if cfg.Driver == DriverPostgres && cfg.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{cfg.SSLMode}}.Encode()
	}
	return u.String()
}

// Name returns the configured database name
func (c *Client) Name() string {
	return c.name
}

// Driver returns the driver name
func (c *Client) Driver() string {
	return c.driver
}

// Close closes the pool
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// acquire marks a statement as running on the client. It returns false
// once the client has been retired.
func (c *Client) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.retired {
		return false
	}
	c.active++
	return true
}

// release ends a statement started with acquire
func (c *Client) release() {
	c.mu.Lock()
	c.active--
	idle := c.retired && c.active == 0
	c.mu.Unlock()
	if idle {
		c.closeRetired()
	}
}

// retire stops new statements and closes the pool once the running ones
// have finished
func (c *Client) retire() {
	c.mu.Lock()
	c.retired = true
	idle := c.active == 0
	c.mu.Unlock()
	if idle {
		c.closeRetired()
	}
}

func (c *Client) closeRetired() {
	if err := c.Close(); err != nil {
		logging.Warn("database_close_failed", "database", c.name, "error", err)
	}
}

// Execute runs stmt and returns at most the configured row cap. Failures
// are returned as *ExecutionError.
func (c *Client) Execute(ctx context.Context, stmt string) (result *ExecutionResult, err error) {
	startTime := time.Now()
	stmt = CleanStatement(stmt)

	defer func() {
		metrics.ObserveExecution(c.name, result.RowCount(), err)
		LogQuery(c.name, stmt, time.Since(startTime), result.RowCount(), err)
	}()

	if c.opts.ReadOnly && !IsReadOnlyStatement(stmt) {
		return nil, &ExecutionError{
			Database: c.name,
			Code:     CodeReadOnly,
			Message:  fmt.Sprintf("only SELECT and WITH statements may be executed, got %s", LeadingKeyword(stmt)),
		}
	}

	LogQueryTrace(c.name, stmt)

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	rows, err := c.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, c.fail(ctx, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, c.fail(ctx, err)
	}

	result = &ExecutionResult{
		Columns: columns,
		Rows:    make([]map[string]string, 0),
	}

	values := make([]interface{}, len(columns))
	scanArgs := make([]interface{}, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if len(result.Rows) >= c.opts.MaxRows {
			result.Truncated = true
			break
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, c.fail(ctx, err)
		}
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			row[col] = tsv.Stringify(values[i])
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, c.fail(ctx, err)
	}

	return result, nil
}

// fail classifies err, reporting a timeout when the statement deadline
// has passed whatever error the driver surfaced
func (c *Client) fail(ctx context.Context, err error) *ExecutionError {
	execErr := classifyError(c.name, err)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		execErr.Code = CodeTimeout
		execErr.Message = fmt.Sprintf("statement exceeded %s", c.opts.Timeout)
	}
	return execErr
}
