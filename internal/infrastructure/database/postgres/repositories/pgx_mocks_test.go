package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/turtacn/molsearch/pkg/types/common"
	moleculeTypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// fakeDB records the statements issued by a repository and plays back
// prepared rows, so repository logic is testable without a database.
type fakeDB struct {
	lastSQL  string
	lastArgs []any

	execErr  error
	queryErr error
	rows     *fakeRows
	row      *fakeRow
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL = sql
	f.lastArgs = args
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.lastSQL = sql
	f.lastArgs = args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if f.rows == nil {
		return &fakeRows{}, nil
	}
	return f.rows, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL = sql
	f.lastArgs = args
	if f.row == nil {
		return &fakeRow{err: pgx.ErrNoRows}
	}
	return f.row
}

// fakeRow plays back one row.
type fakeRow struct {
	vals []any
	err  error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assignAll(r.vals, dest)
}

// fakeRows plays back a fixed result set through the pgx.Rows interface.
type fakeRows struct {
	data    [][]any
	cursor  int
	scanErr error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	return r.cursor < len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.data[r.cursor]
	r.cursor++
	return assignAll(row, dest)
}

func assignAll(vals []any, dest []any) error {
	if len(vals) != len(dest) {
		return fmt.Errorf("fake scan: %d values for %d destinations", len(vals), len(dest))
	}
	for i, v := range vals {
		if err := assign(v, dest[i]); err != nil {
			return err
		}
	}
	return nil
}

func assign(src, dst any) error {
	if src == nil {
		return nil
	}
	switch d := dst.(type) {
	case *string:
		*d = src.(string)
	case *common.ID:
		*d = common.ID(src.(string))
	case *moleculeTypes.SearchType:
		*d = moleculeTypes.SearchType(src.(string))
	case *float64:
		*d = src.(float64)
	case *int:
		*d = src.(int)
	case *int64:
		switch v := src.(type) {
		case int64:
			*d = v
		case int:
			*d = int64(v)
		}
	case *[]string:
		*d = src.([]string)
	case *[]byte:
		*d = src.([]byte)
	case *time.Time:
		*d = src.(time.Time)
	default:
		return fmt.Errorf("fake scan: unsupported destination %T", dst)
	}
	return nil
}
