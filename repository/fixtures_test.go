package repository_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/ddd-toolkit-go/domain"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository"
	"github.com/AntonStoeckl/ddd-toolkit-go/repository/memoryengine"
	"github.com/AntonStoeckl/ddd-toolkit-go/testutil/testdoubles"
)

const (
	articleKind          = "article"
	commentKind          = "comment"
	commentsRelation     = "comments"
	articleCreatedEvent  = "ArticleCreated"
	articleRetitledEvent = "ArticleRetitled"
	articleArchivedEvent = "ArticleArchived"
)

var commentsOfArticle = repository.Relation{Name: commentsRelation, Kind: commentKind, ForeignKey: "article_id"}

type article struct {
	domain.Aggregate
	title    string
	views    int
	comments []*comment
}

var articleFields = domain.NewFieldRegistry(
	domain.Field("title",
		func(a *article) string { return a.title },
		func(a *article, v string) { a.title = v }),
	domain.Field("views",
		func(a *article) int { return a.views },
		func(a *article, v int) { a.views = v }),
)

func newArticle(t *testing.T, id, title string, views int, clock func() time.Time) *article {
	t.Helper()

	aggregate, err := domain.NewAggregate(domain.StringID(id), domain.WithClock(clock))
	require.NoError(t, err)

	a := &article{Aggregate: aggregate, title: title, views: views}

	event, err := domain.NewEvent(articleCreatedEvent, a.ID(), map[string]any{"title": title})
	require.NoError(t, err)
	require.NoError(t, a.RecordEvent(event))

	return a
}

func (a *article) retitle(title string) error {
	return a.UpdateAggregateRoot(
		articleFields.Bind(a),
		domain.Changes{"title": title},
		domain.ChangesetEventFactory(articleRetitledEvent),
	)
}

func (a *article) archive() error {
	event, err := domain.NewEvent(articleArchivedEvent, a.ID(), nil)
	if err != nil {
		return err
	}

	return a.RecordEvent(event)
}

func (a *article) Validate() error {
	if strings.TrimSpace(a.title) == "" {
		return domain.NewValidationError("title", "must not be empty")
	}

	return nil
}

type comment struct {
	domain.Entity
	articleID string
	body      string
}

func newComment(t *testing.T, id, articleID, body string, clock func() time.Time) *comment {
	t.Helper()

	entity, err := domain.NewEntity(domain.StringID(id), domain.WithClock(clock))
	require.NoError(t, err)

	return &comment{Entity: entity, articleID: articleID, body: body}
}

type articleMapper struct{}

func (articleMapper) Kind() string {
	return articleKind
}

func (articleMapper) ToRecord(a *article) (repository.Record, error) {
	return repository.Record{Data: map[string]any{"title": a.title, "views": a.views}}, nil
}

func (articleMapper) ToEntity(record repository.Record, deep bool) (*article, error) {
	aggregate, err := domain.AggregateFromState(record.State(domain.StringID(record.ID)))
	if err != nil {
		return nil, err
	}

	title, _ := record.Data["title"].(string)
	a := &article{Aggregate: aggregate, title: title, views: intFrom(record.Data["views"])}

	if deep {
		for _, related := range record.Related[commentsRelation] {
			c, err := commentMapper{}.ToEntity(related, false)
			if err != nil {
				return nil, err
			}

			a.comments = append(a.comments, c)
		}
	}

	return a, nil
}

type commentMapper struct{}

func (commentMapper) Kind() string {
	return commentKind
}

func (commentMapper) ToRecord(c *comment) (repository.Record, error) {
	return repository.Record{Data: map[string]any{"article_id": c.articleID, "body": c.body}}, nil
}

func (commentMapper) ToEntity(record repository.Record, _ bool) (*comment, error) {
	entity, err := domain.EntityFromState(record.State(domain.StringID(record.ID)))
	if err != nil {
		return nil, err
	}

	articleID, _ := record.Data["article_id"].(string)
	body, _ := record.Data["body"].(string)

	return &comment{Entity: entity, articleID: articleID, body: body}, nil
}

func intFrom(value any) int {
	switch typed := value.(type) {
	case float64:
		return int(typed)
	case int:
		return typed
	default:
		return 0
	}
}

// fakeClock advances by one second on every call.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}

type fixture struct {
	clock     *fakeClock
	memory    *memoryengine.RecordStore
	store     *testdoubles.RecordStoreSpy
	publisher *testdoubles.EventPublisherSpy
	mappers   *repository.MapperRegistry
	repo      *repository.Repository
}

func newFixture(t *testing.T, options ...repository.Option) fixture {
	t.Helper()

	memory, err := memoryengine.NewRecordStore()
	require.NoError(t, err)

	mappers := repository.NewMapperRegistry()
	require.NoError(t, repository.RegisterMapper[*article](mappers, articleMapper{}, commentsOfArticle))
	require.NoError(t, repository.RegisterMapper[*comment](mappers, commentMapper{}))

	store := testdoubles.NewRecordStoreSpy(memory)
	publisher := testdoubles.NewEventPublisherSpy()

	repo, err := repository.New(store, mappers, publisher, options...)
	require.NoError(t, err)

	return fixture{
		clock:     newFakeClock(),
		memory:    memory,
		store:     store,
		publisher: publisher,
		mappers:   mappers,
		repo:      repo,
	}
}

// secondRepository returns another Repository that shares the record store, like a second process would.
func (f fixture) secondRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(f.memory, f.mappers, testdoubles.NewEventPublisherSpy())
	require.NoError(t, err)

	return repo
}

func (f fixture) storedArticle(t *testing.T, id, title string, views int) *article {
	t.Helper()

	a := newArticle(t, id, title, views, f.clock.now)
	_, err := f.repo.SaveEntity(t.Context(), a)
	require.NoError(t, err, fmt.Sprintf("storing article %s", id))

	return a
}
