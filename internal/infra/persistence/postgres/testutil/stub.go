// Package testutil provides a stub database/sql driver for postgres store tests.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

var stubSeq uint64

// StubConn records statements and keeps documents rows in memory.
type StubConn struct {
	mu         sync.Mutex
	Execs      []string
	Documents  map[string]string
	FailPing   bool
	FailExec   bool
	FailBegin  bool
	FailQuery  bool
	FailCommit bool

	tx *stubTx
}

// NewStubDB registers a sql.DB backed by an in-memory stub connection.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{Documents: make(map[string]string)}
	name := fmt.Sprintf("stubpg%d", atomic.AddUint64(&stubSeq, 1))
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

// Document returns the stored payload for name.
func (c *StubConn) Document(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.Documents[name]
	return payload, ok
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) {
	return d.conn, nil
}

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// Ping implements driver.Pinger.
func (c *StubConn) Ping(_ context.Context) error {
	if c.FailPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

// BeginTx implements driver.ConnBeginTx.
func (c *StubConn) BeginTx(_ context.Context, _ driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, fmt.Errorf("begin fail")
	}
	tx := &stubTx{conn: c, pending: make(map[string]string), overwrite: make(map[string]bool)}
	c.mu.Lock()
	c.tx = tx
	c.mu.Unlock()
	return tx, nil
}

// ExecContext implements driver.ExecerContext. Upserts issued while a
// transaction is open are staged until commit.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	c.Execs = append(c.Execs, query)
	c.mu.Unlock()
	if c.FailExec {
		return nil, fmt.Errorf("exec fail")
	}
	up := strings.ToUpper(strings.TrimSpace(query))
	if !strings.HasPrefix(up, "INSERT INTO DOCUMENTS") {
		return driver.RowsAffected(0), nil
	}
	if len(args) != 2 {
		return nil, fmt.Errorf("expected 2 args, got %d", len(args))
	}
	name, _ := args[0].Value.(string)
	payload, _ := args[1].Value.(string)
	overwrite := strings.Contains(up, "DO UPDATE")
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tx != nil {
		c.tx.pending[name] = payload
		c.tx.overwrite[name] = overwrite
		return driver.RowsAffected(1), nil
	}
	if _, exists := c.Documents[name]; exists && !overwrite {
		return driver.RowsAffected(0), nil
	}
	c.Documents[name] = payload
	return driver.RowsAffected(1), nil
}

// QueryContext implements driver.QueryerContext for the single-row document select.
func (c *StubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if c.FailQuery {
		return nil, fmt.Errorf("query fail")
	}
	if !strings.Contains(strings.ToUpper(query), "FROM DOCUMENTS") || len(args) != 1 {
		return nil, fmt.Errorf("cannot parse select: %s", query)
	}
	name, _ := args[0].Value.(string)
	rows := &stubRows{cols: []string{"payload"}}
	if payload, ok := c.Document(name); ok {
		rows.rows = append(rows.rows, []driver.Value{payload})
	}
	return rows, nil
}

type stubTx struct {
	conn      *StubConn
	pending   map[string]string
	overwrite map[string]bool
}

func (t *stubTx) Commit() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	t.conn.tx = nil
	if t.conn.FailCommit {
		return fmt.Errorf("commit fail")
	}
	for name, payload := range t.pending {
		if _, exists := t.conn.Documents[name]; exists && !t.overwrite[name] {
			continue
		}
		t.conn.Documents[name] = payload
	}
	return nil
}

func (t *stubTx) Rollback() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	if t.conn.tx == t {
		t.conn.tx = nil
	}
	return nil
}

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}
