package memoryengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/ddd-toolkit-go/filter"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository/memoryengine"
)

const kindBook = "book"

var baseTime = time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *memoryengine.RecordStore {
	t.Helper()

	store, err := memoryengine.NewRecordStore()
	require.NoError(t, err)

	return store
}

func bookRecord(id string, offset int, data map[string]any) repository.Record {
	return repository.Record{
		Kind:      kindBook,
		ID:        id,
		CreatedAt: baseTime.Add(time.Duration(offset) * time.Minute),
		Data:      data,
	}
}

func Test_Insert_And_Load(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	stored, err := store.Insert(ctx, bookRecord("b-1", 0, map[string]any{"title": "Dune", "pages": 412}))
	require.NoError(t, err)
	assert.Equal(t, float64(412), stored.Data["pages"], "data is normalised like a JSON column")

	loaded, err := store.Load(ctx, kindBook, "b-1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", loaded.Data["title"])
	assert.Equal(t, baseTime, loaded.CreatedAt)

	loaded.Data["title"] = "tampered"
	again, err := store.Load(ctx, kindBook, "b-1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", again.Data["title"])

	_, err = store.Insert(ctx, bookRecord("b-1", 0, nil))
	assert.ErrorIs(t, err, repository.ErrRecordAlreadyExists)

	_, err = store.Load(ctx, kindBook, "missing")
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)

	_, err = store.Load(ctx, "other-kind", "b-1")
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func Test_Update_ChecksExpectedVersion(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.Insert(ctx, bookRecord("b-1", 0, map[string]any{"title": "Dune"}))
	require.NoError(t, err)

	changed := bookRecord("b-1", 5, map[string]any{"title": "Dune Messiah"})
	changed.Version = 1
	changed.UpdatedAt = baseTime.Add(time.Hour)

	updated, err := store.Update(ctx, changed, 0)
	require.NoError(t, err)
	assert.Equal(t, uint(1), updated.Version)
	assert.Equal(t, baseTime, updated.CreatedAt, "created_at never changes")

	stale := changed
	stale.Version = 2
	_, err = store.Update(ctx, stale, 0)
	assert.ErrorIs(t, err, repository.ErrVersionMismatch)

	loaded, err := store.Load(ctx, kindBook, "b-1")
	require.NoError(t, err)
	assert.Equal(t, uint(1), loaded.Version)
	assert.Equal(t, "Dune Messiah", loaded.Data["title"])

	_, err = store.Update(ctx, bookRecord("missing", 0, nil), 0)
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func Test_Delete(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.Insert(ctx, bookRecord("b-1", 0, nil))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, kindBook, "b-1"))
	assert.Equal(t, 0, store.Len(kindBook))
	assert.ErrorIs(t, store.Delete(ctx, kindBook, "b-1"), repository.ErrRecordNotFound)
}

func Test_DeleteRelated_OnlyDeletesOwnedRecords(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	relation := repository.Relation{Name: "chapters", Kind: "chapter", ForeignKey: "book_id"}

	_, err := store.Insert(ctx, repository.Record{Kind: "chapter", ID: "c-1", Data: map[string]any{"book_id": "b-1"}})
	require.NoError(t, err)
	_, err = store.Insert(ctx, repository.Record{Kind: "chapter", ID: "c-2", Data: map[string]any{"book_id": "b-2"}})
	require.NoError(t, err)

	assert.ErrorIs(t, store.DeleteRelated(ctx, relation, "b-1", "c-2"), repository.ErrRecordNotFound)
	assert.ErrorIs(t, store.DeleteRelated(ctx, relation, "b-1", "c-9"), repository.ErrRecordNotFound)
	require.NoError(t, store.DeleteRelated(ctx, relation, "b-1", "c-1"))

	assert.Equal(t, 1, store.Len("chapter"))
}

func Test_Find_EvaluatesFilters(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	seed := []repository.Record{
		bookRecord("b-3", 2, map[string]any{"title": "Hyperion", "pages": 482, "min": 400, "max": 500}),
		bookRecord("b-1", 0, map[string]any{"title": "Dune", "pages": 412, "genre": "sf", "min": 500, "max": 600}),
		bookRecord("b-2", 1, map[string]any{"title": "Dune Messiah", "pages": 256, "genre": "sf"}),
	}

	for _, record := range seed {
		_, err := store.Insert(ctx, record)
		require.NoError(t, err)
	}

	testCases := []struct {
		description string
		builder     filter.Builder
		expected    []string
	}{
		{description: "no filter returns all ordered by creation", builder: filter.Build(), expected: []string{"b-1", "b-2", "b-3"}},
		{description: "eq", builder: filter.Build().Eq("title", "Dune"), expected: []string{"b-1"}},
		{description: "eq on id", builder: filter.Build().Eq(repository.TargetID, "b-2"), expected: []string{"b-2"}},
		{description: "not eq skips null", builder: filter.Build().NotEq("genre", "fantasy"), expected: []string{"b-1", "b-2"}},
		{description: "gt", builder: filter.Build().Gt("pages", 412), expected: []string{"b-3"}},
		{description: "lte", builder: filter.Build().Lte("pages", 412), expected: []string{"b-1", "b-2"}},
		{description: "between", builder: filter.Build().Between("pages", 300, 450), expected: []string{"b-1"}},
		{description: "not between", builder: filter.Build().NotBetween("pages", 300, 450), expected: []string{"b-2", "b-3"}},
		{description: "between columns", builder: filter.Build().BetweenColumns("pages", "min", "max"), expected: []string{"b-3"}},
		{description: "not between columns", builder: filter.Build().NotBetweenColumns("pages", "min", "max"), expected: []string{"b-1"}},
		{description: "in", builder: filter.Build().In("title", "Dune", "Hyperion"), expected: []string{"b-1", "b-3"}},
		{description: "not in", builder: filter.Build().NotIn("title", "Dune", "Hyperion"), expected: []string{"b-2"}},
		{description: "like", builder: filter.Build().Like("title", "Dune%"), expected: []string{"b-1", "b-2"}},
		{description: "like single char", builder: filter.Build().Like("title", "D_ne"), expected: []string{"b-1"}},
		{description: "like is case sensitive", builder: filter.Build().Like("title", "dune%"), expected: []string{}},
		{description: "not like", builder: filter.Build().NotLike("title", "%Messiah"), expected: []string{"b-1", "b-3"}},
		{description: "is null", builder: filter.Build().IsNull("genre"), expected: []string{"b-3"}},
		{description: "is not null", builder: filter.Build().IsNotNull("genre"), expected: []string{"b-1", "b-2"}},
		{description: "updated_at is null", builder: filter.Build().IsNull(repository.TargetUpdatedAt), expected: []string{"b-1", "b-2", "b-3"}},
		{description: "eq on version", builder: filter.Build().Eq(repository.TargetVersion, 0), expected: []string{"b-1", "b-2", "b-3"}},
		{description: "unknown data key is null", builder: filter.Build().Gte("rating", 1), expected: []string{}},
		{description: "combined with and", builder: filter.Build().Eq("genre", "sf").Gt("pages", 300), expected: []string{"b-1"}},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			serialized, err := tc.builder.ToArray()
			require.NoError(t, err)

			records, err := store.Find(ctx, kindBook, serialized)
			require.NoError(t, err)

			ids := make([]string, 0, len(records))
			for _, record := range records {
				ids = append(ids, record.ID)
			}

			assert.Equal(t, tc.expected, ids)

			count, err := store.Count(ctx, kindBook, serialized)
			require.NoError(t, err)
			assert.Equal(t, len(tc.expected), count)
		})
	}
}

func Test_Find_ComparesTimestamps(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	for i, id := range []string{"b-1", "b-2", "b-3"} {
		_, err := store.Insert(ctx, bookRecord(id, i*10, nil))
		require.NoError(t, err)
	}

	records, err := store.Find(ctx, kindBook, []filter.Serialized{
		{Type: filter.TagGreaterThanOrEqual, Target: repository.TargetCreatedAt, Value: baseTime.Add(10 * time.Minute).Format(time.RFC3339)},
	})
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "b-2", records[0].ID)
}

func Test_Find_ComparesStringFilterValuesAsText(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	_, err := store.Insert(ctx, bookRecord("b-1", 0, map[string]any{"zip": "7"}))
	require.NoError(t, err)
	_, err = store.Insert(ctx, bookRecord("b-2", 1, map[string]any{"zip": "007"}))
	require.NoError(t, err)

	testCases := []struct {
		description string
		builder     filter.Builder
		expected    []string
	}{
		{description: "eq with padded string", builder: filter.Build().Eq("zip", "007"), expected: []string{"b-2"}},
		{description: "eq with plain string", builder: filter.Build().Eq("zip", "7"), expected: []string{"b-1"}},
		{description: "not eq with string", builder: filter.Build().NotEq("zip", "7"), expected: []string{"b-2"}},
		{description: "in with strings", builder: filter.Build().In("zip", "007", "8"), expected: []string{"b-2"}},
		{description: "eq with number", builder: filter.Build().Eq("zip", 7), expected: []string{"b-1", "b-2"}},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			serialized, err := tc.builder.ToArray()
			require.NoError(t, err)

			records, err := store.Find(ctx, kindBook, serialized)
			require.NoError(t, err)

			ids := make([]string, 0, len(records))
			for _, record := range records {
				ids = append(ids, record.ID)
			}

			assert.Equal(t, tc.expected, ids)
		})
	}
}

func Test_Find_RejectsUnknownOperator(t *testing.T) {
	store := newStore(t)
	_, err := store.Insert(context.Background(), bookRecord("b-1", 0, nil))
	require.NoError(t, err)

	_, err = store.Find(context.Background(), kindBook, []filter.Serialized{{Type: "$regex", Target: "title", Value: "x"}})

	assert.ErrorIs(t, err, filter.ErrUnknownOperator)
}
