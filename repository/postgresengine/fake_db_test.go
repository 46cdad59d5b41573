package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository/postgresengine/internal/adapters"
)

type executedQuery struct {
	sql         string
	consistency repository.ConsistencyLevel
}

// fakeDB answers queries from a queue of canned row sets.
type fakeDB struct {
	mu       sync.Mutex
	executed []executedQuery
	rowSets  [][][]any
	affected int64
	err      error
}

func (f *fakeDB) thenRows(rows ...[]any) *fakeDB {
	f.rowSets = append(f.rowSets, rows)
	return f
}

func (f *fakeDB) Query(ctx context.Context, query string) (adapters.DBRows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.executed = append(f.executed, executedQuery{sql: query, consistency: repository.GetConsistencyLevel(ctx)})

	if f.err != nil {
		return nil, f.err
	}

	rows := &fakeRows{}
	if len(f.rowSets) > 0 {
		rows.values = f.rowSets[0]
		f.rowSets = f.rowSets[1:]
	}

	return rows, nil
}

func (f *fakeDB) Exec(ctx context.Context, query string) (adapters.DBResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.executed = append(f.executed, executedQuery{sql: query, consistency: repository.GetConsistencyLevel(ctx)})

	if f.err != nil {
		return nil, f.err
	}

	return fakeResult{affected: f.affected}, nil
}

func (f *fakeDB) queries() []executedQuery {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]executedQuery(nil), f.executed...)
}

type fakeRows struct {
	values [][]any
	cursor int
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.cursor >= len(r.values) {
		return false
	}

	r.cursor++

	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.values[r.cursor-1]
	if len(row) != len(dest) {
		return fmt.Errorf("expected %d destinations, got %d", len(row), len(dest))
	}

	for i, value := range row {
		target := reflect.ValueOf(dest[i]).Elem()
		source := reflect.ValueOf(value)

		if !source.Type().AssignableTo(target.Type()) {
			return errors.New("can not scan " + source.Type().String() + " into " + target.Type().String())
		}

		target.Set(source)
	}

	return nil
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

type fakeResult struct {
	affected int64
}

func (r fakeResult) RowsAffected() (int64, error) {
	return r.affected, nil
}
