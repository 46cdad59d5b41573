package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
	"github.com/AntonStoeckl/ddd-toolkit-go/filter"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
)

func seedArticles(t *testing.T, f fixture) {
	t.Helper()

	f.storedArticle(t, "a-1", "Go in practice", 5)
	f.storedArticle(t, "a-2", "Domain modelling", 12)
	f.storedArticle(t, "a-3", "Go generics", 40)

	for _, c := range []*comment{
		newComment(t, "c-1", "a-1", "nice", f.clock.now),
		newComment(t, "c-2", "a-3", "great", f.clock.now),
		newComment(t, "c-3", "a-3", "thanks", f.clock.now),
	} {
		_, err := f.repo.SaveEntity(t.Context(), c)
		require.NoError(t, err)
	}
}

func titlesOf(articles []*article) []string {
	titles := make([]string, 0, len(articles))
	for _, a := range articles {
		titles = append(titles, a.title)
	}

	return titles
}

func Test_FindByID(t *testing.T) {
	f := newFixture(t)
	seedArticles(t, f)

	t.Run("shallow", func(t *testing.T) {
		a, err := repository.FindByID[*article](t.Context(), f.repo, domain.StringID("a-3"), false)
		require.NoError(t, err)

		assert.Equal(t, "Go generics", a.title)
		assert.Equal(t, 40, a.views)
		assert.Equal(t, uint(0), a.PersistedVersion())
		assert.False(t, a.IsDirty())
		assert.False(t, a.HasUncommittedEvents())
		assert.Empty(t, a.comments)
	})

	t.Run("deep", func(t *testing.T) {
		a, err := repository.FindByID[*article](t.Context(), f.repo, domain.StringID("a-3"), true)
		require.NoError(t, err)

		require.Len(t, a.comments, 2)
		assert.Equal(t, "great", a.comments[0].body)
		assert.Equal(t, "thanks", a.comments[1].body)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repository.FindByID[*article](t.Context(), f.repo, domain.StringID("a-9"), false)

		assert.ErrorIs(t, err, repository.ErrEntityNotFound)
		assert.ErrorIs(t, err, repository.ErrRecordNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := repository.FindByID[*article](t.Context(), f.repo, domain.StringID(""), false)

		assert.ErrorIs(t, err, domain.ErrEmptyIdentifier)
	})

	t.Run("unregistered type", func(t *testing.T) {
		_, err := repository.FindByID[*draft](t.Context(), f.repo, domain.StringID("d-1"), false)

		assert.ErrorIs(t, err, repository.ErrMapperNotRegistered)
	})
}

func Test_FindBy(t *testing.T) {
	f := newFixture(t)
	seedArticles(t, f)

	testCases := []struct {
		description string
		filters     filter.Builder
		expected    []string
	}{
		{"no filters", filter.Build(), []string{"Go in practice", "Domain modelling", "Go generics"}},
		{"gte", filter.Build().Gte("views", 12), []string{"Domain modelling", "Go generics"}},
		{"like", filter.Build().Like("title", "Go%"), []string{"Go in practice", "Go generics"}},
		{"combined", filter.Build().Like("title", "Go%").Lt("views", 10), []string{"Go in practice"}},
		{"in ids", filter.Build().In(repository.TargetID, "a-1", "a-2"), []string{"Go in practice", "Domain modelling"}},
		{"nothing", filter.Build().Eq("title", "Rust"), []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			articles, err := repository.FindBy[*article](t.Context(), f.repo, tc.filters, false)
			require.NoError(t, err)

			assert.Equal(t, tc.expected, titlesOf(articles))
		})
	}
}

func Test_FindBy_DeepLoadsRelatedRecordsPerEntity(t *testing.T) {
	f := newFixture(t)
	seedArticles(t, f)

	articles, err := repository.FindBy[*article](t.Context(), f.repo, filter.Build().Gt("views", 0), true)
	require.NoError(t, err)
	require.Len(t, articles, 3)

	assert.Len(t, articles[0].comments, 1)
	assert.Empty(t, articles[1].comments)
	assert.Len(t, articles[2].comments, 2)
}

func Test_FindBy_RejectsInvalidFilters(t *testing.T) {
	f := newFixture(t)
	seedArticles(t, f)
	f.store.Reset()

	_, err := repository.FindBy[*article](t.Context(), f.repo, filter.Build().Gt("views", "many"), false)

	assert.ErrorIs(t, err, repository.ErrQueryingRecordsFailed)
	assert.ErrorIs(t, err, filter.ErrValueInvalid)
}

func Test_FindOneBy(t *testing.T) {
	f := newFixture(t)
	seedArticles(t, f)

	a, err := repository.FindOneBy[*article](t.Context(), f.repo, filter.Build().Like("title", "Go%"), false)
	require.NoError(t, err)
	assert.Equal(t, "Go in practice", a.title)

	_, err = repository.FindOneBy[*article](t.Context(), f.repo, filter.Build().Eq("title", "Rust"), false)
	assert.ErrorIs(t, err, repository.ErrEntityNotFound)
}

func Test_All_Exists_Count(t *testing.T) {
	f := newFixture(t)
	seedArticles(t, f)

	all, err := repository.All[*comment](t.Context(), f.repo, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	exists, err := repository.Exists[*article](t.Context(), f.repo, domain.StringID("a-2"))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repository.Exists[*article](t.Context(), f.repo, domain.StringID("a-9"))
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repository.Exists[*article](t.Context(), f.repo, domain.StringID(""))
	assert.ErrorIs(t, err, domain.ErrEmptyIdentifier)

	count, err := repository.Count[*comment](t.Context(), f.repo, filter.Build().Eq("article_id", "a-3"))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repository.Count[*article](t.Context(), f.repo, filter.Build())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
