package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var dbTracer = otel.Tracer("centavo.db")

type DB struct {
	*sql.DB
}

func New(connStr string) (*DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// QueryContext wraps sql.DB.QueryContext with tracing.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	ctx, span := startStatementSpan(ctx, "db.Query", query)
	defer span.End()

	rows, err := db.DB.QueryContext(ctx, query, args...)
	recordStatementError(span, err)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with tracing. The span ends
// in Scan, not here, because sql.Row defers all errors (including
// sql.ErrNoRows) to Scan.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *tracedRow {
	ctx, span := startStatementSpan(ctx, "db.QueryRow", query)
	return &tracedRow{
		row:  db.DB.QueryRowContext(ctx, query, args...),
		span: span,
	}
}

// ExecContext wraps sql.DB.ExecContext with tracing.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, span := startStatementSpan(ctx, "db.Exec", query)
	defer span.End()

	result, err := db.DB.ExecContext(ctx, query, args...)
	recordStatementError(span, err)
	return result, err
}

// tracedRow keeps the statement span open until Scan surfaces the result.
type tracedRow struct {
	row  *sql.Row
	span trace.Span
}

func (r *tracedRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if r.span != nil {
		recordStatementError(r.span, err)
		r.span.End()
		r.span = nil
	}
	return err
}

// Tx-bound traced helpers, used by the unit-of-work stores so statements
// inside an open transaction show up in traces the same way pooled ones do.

func execTx(ctx context.Context, tx *sql.Tx, query string, args ...any) (sql.Result, error) {
	ctx, span := startStatementSpan(ctx, "db.Exec", query)
	defer span.End()

	result, err := tx.ExecContext(ctx, query, args...)
	recordStatementError(span, err)
	return result, err
}

func queryRowTx(ctx context.Context, tx *sql.Tx, query string, args ...any) *tracedRow {
	ctx, span := startStatementSpan(ctx, "db.QueryRow", query)
	return &tracedRow{
		row:  tx.QueryRowContext(ctx, query, args...),
		span: span,
	}
}

// startStatementSpan records only the SQL verb, never the statement text,
// so no row data or identifiers can leak into traces.
func startStatementSpan(ctx context.Context, op, query string) (context.Context, trace.Span) {
	return dbTracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", extractSQLVerb(query)),
	))
}

func recordStatementError(span trace.Span, err error) {
	if err == nil || err == sql.ErrNoRows {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func extractSQLVerb(q string) string {
	q = strings.TrimSpace(q)
	if idx := strings.IndexByte(q, ' '); idx > 0 {
		return strings.ToUpper(q[:idx])
	}
	return strings.ToUpper(q)
}
