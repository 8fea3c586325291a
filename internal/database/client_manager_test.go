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
	"errors"
	"sync"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"nl2sql-agent/internal/config"
)

type mockOpener struct {
	mu     sync.Mutex
	t      *testing.T
	opened map[string]int
	mocks  map[string]sqlmock.Sqlmock
	fail   error
}

func newMockOpener(t *testing.T) *mockOpener {
	return &mockOpener{t: t, opened: map[string]int{}, mocks: map[string]sqlmock.Sqlmock{}}
}

func (o *mockOpener) open(cfg *config.DatabaseConfig) (*Client, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail != nil {
		return nil, o.fail
	}
	db, mock := newSQLMock(o.t)
	o.opened[cfg.Name]++
	o.mocks[cfg.Name] = mock
	return NewClient(cfg.Name, cfg.Driver, db, Options{MaxRows: cfg.MaxRows, ReadOnly: !cfg.AllowWrites}), nil
}

var testDatabases = []config.DatabaseConfig{
	{Name: "fin", Driver: DriverOracle, URL: "oracle://scott:tiger@db:1521/FINPDB"},
	{Name: "ops", Driver: DriverPostgres, URL: "postgres://ops@db/ops"},
}

func TestClientManager_Execute(t *testing.T) {
	opener := newMockOpener(t)
	cm := NewClientManagerWithOpener(testDatabases, opener.open)

	if cm.GetDefaultDatabaseName() != "fin" {
		t.Errorf("default = %q, want fin", cm.GetDefaultDatabaseName())
	}
	if names := cm.ListDatabaseNames(); len(names) != 2 || names[0] != "fin" || names[1] != "ops" {
		t.Errorf("ListDatabaseNames() = %v", names)
	}
	if cm.GetClientCount() != 0 {
		t.Error("expected clients to be opened lazily")
	}

	// Empty name selects the default database
	client, err := cm.GetClient("")
	if err != nil {
		t.Fatalf("GetClient() error = %v", err)
	}
	if client.Name() != "fin" || client.Driver() != DriverOracle {
		t.Errorf("unexpected client %s/%s", client.Name(), client.Driver())
	}

	opener.mocks["fin"].ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"OWNER"}).AddRow("FIN"))

	result, err := cm.Execute(context.Background(), "fin", "SELECT OWNER FROM FIN.TABLESPACE_USAGE")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.RowCount() != 1 || result.Rows[0]["OWNER"] != "FIN" {
		t.Errorf("unexpected result %+v", result)
	}
	if opener.opened["fin"] != 1 {
		t.Errorf("expected one open, got %d", opener.opened["fin"])
	}
	assertSQLMock(t, opener.mocks["fin"])
}

func TestClientManager_UnknownDatabase(t *testing.T) {
	cm := NewClientManagerWithOpener(testDatabases, newMockOpener(t).open)

	_, err := cm.Execute(context.Background(), "hr", "SELECT 1 FROM DUAL")

	var execErr *ExecutionError
	if !errors.As(err, &execErr) || execErr.Code != CodeUnknownDatabase {
		t.Fatalf("expected unknown database error, got %v", err)
	}
	if cm.HasDatabase("hr") || !cm.HasDatabase("ops") {
		t.Error("HasDatabase() mismatch")
	}
}

func TestClientManager_OpenFailure(t *testing.T) {
	opener := newMockOpener(t)
	opener.fail = errors.New("ORA-12541: TNS:no listener")
	cm := NewClientManagerWithOpener(testDatabases, opener.open)

	_, err := cm.GetClient("fin")

	var execErr *ExecutionError
	if !errors.As(err, &execErr) || execErr.Code != CodeConnection {
		t.Fatalf("expected connection error, got %v", err)
	}
	if cm.GetClientCount() != 0 {
		t.Error("failed client must not be cached")
	}
}

func TestClientManager_ConcurrentOpen(t *testing.T) {
	opener := newMockOpener(t)
	cm := NewClientManagerWithOpener(testDatabases, opener.open)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cm.GetClient("ops"); err != nil {
				t.Errorf("GetClient() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if opener.opened["ops"] != 1 {
		t.Errorf("expected a single open, got %d", opener.opened["ops"])
	}
}

func TestClientManager_UpdateDatabaseConfigs(t *testing.T) {
	opener := newMockOpener(t)
	cm := NewClientManagerWithOpener(testDatabases, opener.open)

	for _, name := range []string{"fin", "ops"} {
		if _, err := cm.GetClient(name); err != nil {
			t.Fatalf("GetClient(%s) error = %v", name, err)
		}
	}
	opener.mocks["ops"].ExpectClose()

	// fin unchanged, ops removed, hr added
	cm.UpdateDatabaseConfigs([]config.DatabaseConfig{
		testDatabases[0],
		{Name: "hr", Driver: DriverOracle, URL: "oracle://hr:hr@db:1521/HRPDB"},
	})

	if cm.GetClientCount() != 1 {
		t.Errorf("expected fin client to be kept, have %d clients", cm.GetClientCount())
	}
	assertSQLMock(t, opener.mocks["ops"])

	if cm.HasDatabase("ops") || !cm.HasDatabase("hr") {
		t.Error("configs were not replaced")
	}
	if _, err := cm.GetClient("fin"); err != nil || opener.opened["fin"] != 1 {
		t.Errorf("expected fin client reuse, opens = %d, err = %v", opener.opened["fin"], err)
	}

	// A changed config reopens the client
	finMock := opener.mocks["fin"]
	finMock.ExpectClose()
	changed := testDatabases[0]
	changed.MaxRows = 5
	cm.UpdateDatabaseConfigs([]config.DatabaseConfig{changed})
	assertSQLMock(t, finMock)

	if _, err := cm.GetClient("fin"); err != nil {
		t.Fatalf("GetClient() error = %v", err)
	}
	if opener.opened["fin"] != 2 {
		t.Errorf("expected reopen after change, opens = %d", opener.opened["fin"])
	}
	if cm.GetDefaultDatabaseName() != "fin" {
		t.Errorf("default = %q", cm.GetDefaultDatabaseName())
	}
}

func TestClientManager_ReloadWaitsForRunningStatement(t *testing.T) {
	opener := newMockOpener(t)
	cm := NewClientManagerWithOpener(testDatabases, opener.open)

	client, err := cm.GetClient("fin")
	if err != nil {
		t.Fatalf("GetClient() error = %v", err)
	}
	if !client.acquire() {
		t.Fatal("expected to acquire an open client")
	}

	oldMock := opener.mocks["fin"]
	oldMock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"OWNER"}).AddRow("FIN"))
	oldMock.ExpectClose()

	changed := testDatabases[0]
	changed.MaxRows = 5
	cm.UpdateDatabaseConfigs([]config.DatabaseConfig{changed})

	if client.acquire() {
		t.Error("retired client accepted a new statement")
	}

	// The statement that started before the reload still runs
	if _, err := client.Execute(context.Background(), "SELECT OWNER FROM FIN.TABLESPACE_USAGE"); err != nil {
		t.Fatalf("Execute() on retired client error = %v", err)
	}
	client.release()
	assertSQLMock(t, oldMock)

	// New statements go to a reopened client
	if _, err := cm.GetClient("fin"); err != nil {
		t.Fatalf("GetClient() error = %v", err)
	}
	opener.mocks["fin"].ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"OWNER"}).AddRow("FIN"))
	if _, err := cm.Execute(context.Background(), "fin", "SELECT OWNER FROM FIN.TABLESPACE_USAGE"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if opener.opened["fin"] != 2 {
		t.Errorf("expected reopen after reload, opens = %d", opener.opened["fin"])
	}
	assertSQLMock(t, opener.mocks["fin"])
}

func TestClientManager_CloseAll(t *testing.T) {
	opener := newMockOpener(t)
	cm := NewClientManagerWithOpener(testDatabases, opener.open)

	if _, err := cm.GetClient("fin"); err != nil {
		t.Fatalf("GetClient() error = %v", err)
	}
	opener.mocks["fin"].ExpectClose()

	if err := cm.CloseAll(); err != nil {
		t.Fatalf("CloseAll() error = %v", err)
	}
	if cm.GetClientCount() != 0 {
		t.Error("expected no clients after CloseAll")
	}
	assertSQLMock(t, opener.mocks["fin"])
}
