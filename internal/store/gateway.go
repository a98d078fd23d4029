package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/abhisek/sqldrill/internal/logger"
)

// retryAttempts and retryBaseDelay govern the gateway's transient-error
// retry loop: a fixed base delay multiplied by the attempt number, with
// a capped attempt count.
const (
	retryAttempts  = 3
	retryBaseDelay = 500 * time.Millisecond
)

// Row is one result row keyed by column name (dict-cursor shape).
type Row map[string]any

// Stmt is a parameterized statement for transactional execution.
type Stmt struct {
	SQL  string
	Args []any
}

// Gateway executes parameterized SQL against the connection pool. All
// database failures are translated to readable messages and logged
// here; callers receive wrapped errors, never panics.
type Gateway struct {
	db  *sql.DB
	log *logger.Logger
}

// NewGateway wraps a connection pool.
func NewGateway(db *sql.DB, log *logger.Logger) *Gateway {
	if log == nil {
		log = logger.Nop()
	}
	return &Gateway{db: db, log: log}
}

// Query runs a parameterized query and returns all rows as column-name
// maps.
func (g *Gateway) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	var out []Row
	err := g.withRetry(ctx, func() error {
		rows, err := g.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out, err = scanRows(rows)
		return err
	})
	if err != nil {
		g.log.Error("query failed", "error", translateErr(err))
		return nil, fmt.Errorf("execute query: %w", translateErr(err))
	}
	return out, nil
}

// FetchOne runs a query expected to return at most one row. A missing
// row is (nil, nil), not an error.
func (g *Gateway) FetchOne(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := g.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Insert executes an INSERT and returns the generated id.
func (g *Gateway) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	err := g.withRetry(ctx, func() error {
		res, err := g.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		g.log.Error("insert failed", "error", translateErr(err))
		return 0, fmt.Errorf("execute insert: %w", translateErr(err))
	}
	return id, nil
}

// Exec executes a statement without returning rows.
func (g *Gateway) Exec(ctx context.Context, query string, args ...any) error {
	err := g.withRetry(ctx, func() error {
		_, err := g.db.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		g.log.Error("exec failed", "error", translateErr(err))
		return fmt.Errorf("execute statement: %w", translateErr(err))
	}
	return nil
}

// ExecTx runs all statements in one transaction. Any failure rolls the
// whole batch back; there is no partial application.
func (g *Gateway) ExecTx(ctx context.Context, stmts []Stmt) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		g.log.Error("begin transaction failed", "error", translateErr(err))
		return fmt.Errorf("begin transaction: %w", translateErr(err))
	}

	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s.SQL, s.Args...); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				g.log.Error("rollback failed", "error", rbErr)
			}
			g.log.Error("transaction statement failed", "error", translateErr(err))
			return fmt.Errorf("execute transaction: %w", translateErr(err))
		}
	}

	if err := tx.Commit(); err != nil {
		g.log.Error("commit failed", "error", translateErr(err))
		return fmt.Errorf("commit transaction: %w", translateErr(err))
	}
	return nil
}

// withRetry retries fn on transient failures. Context cancellation and
// SQL-level errors (bad syntax, constraint violations) are not retried.
func (g *Gateway) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}
		if attempt == retryAttempts {
			break
		}

		wait := retryBaseDelay * time.Duration(attempt)
		g.log.Warn("transient database error, retrying",
			"attempt", attempt, "wait", wait, "error", lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return lastErr
}

// isTransient reports whether an error is worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, sql.ErrTxDone) || errors.Is(err, sql.ErrNoRows) {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// Server-side SQL errors are deterministic; only connection
		// loss is worth a retry.
		switch myErr.Number {
		case 1053, 2006, 2013: // shutdown, server gone away, lost connection
			return true
		default:
			return false
		}
	}
	return errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, sql.ErrConnDone)
}

// mysqlErrMessages maps MySQL error numbers to operator-readable
// messages, mirroring the codes the application has actually hit.
var mysqlErrMessages = map[uint16]string{
	1045: "database access denied: check user and password",
	1049: "database does not exist",
	1305: "stored procedure does not exist",
	1370: "stored procedure access denied",
}

// translateErr wraps known MySQL error numbers with a human-readable
// message. Unknown errors pass through unchanged.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if msg, ok := mysqlErrMessages[myErr.Number]; ok {
			return fmt.Errorf("%s: %w", msg, err)
		}
	}
	return err
}

// scanRows reads every row into a column-name map.
func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, c := range cols {
			// The MySQL driver returns strings as []byte.
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Str returns the named column as a string ("" when absent or NULL).
func (r Row) Str(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Int64 returns the named column as an int64 (0 when absent or NULL).
// The string case covers MySQL aggregates like SUM() and DECIMAL
// columns, which the driver returns as []byte and scanRows folds into
// strings.
func (r Row) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// Float returns the named column as a float64 (0 when absent or NULL).
func (r Row) Float(col string) float64 {
	switch v := r[col].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case string:
		var f float64
		_, _ = fmt.Sscanf(v, "%g", &f)
		return f
	default:
		return 0
	}
}

// Bool returns the named column as a bool. Integer columns treat any
// non-zero value as true.
func (r Row) Bool(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case string:
		return v == "1" || v == "true"
	default:
		return false
	}
}
