package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-clean-arch/cache"
	"github.com/goliatone/go-clean-arch/database"
	"github.com/goliatone/go-clean-arch/entity"
	"github.com/goliatone/go-clean-arch/metrics"
	"github.com/goliatone/go-clean-arch/model"
	"github.com/goliatone/go-clean-arch/pkg/testsupport"
	bunrepo "github.com/goliatone/go-repository-bun"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type Note struct {
	entity.Base
	Text string
}

type fakeDatabase struct {
	rows  map[string]Note
	calls map[string]int
	err   error
}

func newFakeDatabase(notes ...Note) *fakeDatabase {
	db := &fakeDatabase{rows: map[string]Note{}, calls: map[string]int{}}
	for _, n := range notes {
		db.rows[n.ID] = n
	}
	return db
}

func (f *fakeDatabase) String() string { return "app:note" }

func (f *fakeDatabase) Create(_ context.Context, fields entity.Fields) (Note, error) {
	f.calls["create"]++
	if f.err != nil {
		return Note{}, f.err
	}
	text, _ := fields.String("text")
	n := Note{Base: entity.Base{ID: "new"}, Text: text}
	f.rows[n.ID] = n
	return n, nil
}

func (f *fakeDatabase) Update(_ context.Context, fields entity.Fields) (Note, error) {
	f.calls["update"]++
	if f.err != nil {
		return Note{}, f.err
	}
	id, _ := fields.String("id")
	n, ok := f.rows[id]
	if !ok {
		return Note{}, entity.ErrEntityDoesNotExist
	}
	n.Text, _ = fields.String("text")
	f.rows[id] = n
	return n, nil
}

func (f *fakeDatabase) Get(_ context.Context, id string) (Note, error) {
	f.calls["get"]++
	if f.err != nil {
		return Note{}, f.err
	}
	n, ok := f.rows[id]
	if !ok {
		return Note{}, entity.ErrEntityDoesNotExist
	}
	return n, nil
}

func (f *fakeDatabase) Filter(_ context.Context, forceAll bool, _ entity.Fields, criteria ...bunrepo.SelectCriteria) ([]Note, error) {
	f.calls["filter"]++
	if f.err != nil {
		return nil, f.err
	}
	out := []Note{}
	for _, n := range f.rows {
		if forceAll || !n.IsDeleted() {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeDatabase) Delete(_ context.Context, id string) (Note, error) {
	f.calls["delete"]++
	n, ok := f.rows[id]
	if !ok {
		return Note{}, entity.ErrEntityDoesNotExist
	}
	n.Text = "deleted"
	f.rows[id] = n
	return n, nil
}

func (f *fakeDatabase) Reactivate(_ context.Context, id string) (Note, error) {
	f.calls["reactivate"]++
	n, ok := f.rows[id]
	if !ok {
		return Note{}, entity.ErrEntityDoesNotExist
	}
	return n, nil
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) (Note, bool, error) {
	return Note{}, false, errors.New("cache down")
}
func (brokenCache) Set(context.Context, string, Note) error { return errors.New("cache down") }
func (brokenCache) Delete(context.Context, string) error    { return errors.New("cache down") }

func memoryCache(t *testing.T) cache.Cache[Note] {
	t.Helper()
	c, err := cache.NewMemory[Note](cache.DefaultConfig())
	require.NoError(t, err)
	return c
}

func TestRepository_Key(t *testing.T) {
	r := New[Note](newFakeDatabase())
	assert.Equal(t, "app:note:42", r.Key("42"))
}

func TestRepository_GetReadThrough(t *testing.T) {
	ctx := context.Background()
	db := newFakeDatabase(Note{Base: entity.Base{ID: "1"}, Text: "hello"})
	c := memoryCache(t)
	m := metrics.New(prometheus.NewRegistry())
	r := New[Note](db, WithCache[Note](c), WithMetrics[Note](m))

	first, err := r.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "hello", first.Text)

	cached, ok, err := c.Get(ctx, "app:note:1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first, cached)

	second, err := r.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, db.calls["get"])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("app:note", metrics.CacheMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("app:note", metrics.CacheHit)))
}

func TestRepository_GetNotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	db := newFakeDatabase()
	c := memoryCache(t)
	r := New[Note](db, WithCache[Note](c))

	_, err := r.Get(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrEntityDoesNotExist)

	_, ok, _ := c.Get(ctx, "app:note:missing")
	assert.False(t, ok)
}

func TestRepository_CacheFailuresFallBackToDatabase(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	db := newFakeDatabase(Note{Base: entity.Base{ID: "1"}, Text: "hello"})
	r := New[Note](db, WithCache[Note](brokenCache{}), WithLogger[Note](zap.New(core)))

	n, err := r.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "hello", n.Text)

	_, err = r.Delete(ctx, "1")
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("cache get failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("cache set failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("cache delete failed").Len())
}

func TestRepository_WritesInvalidate(t *testing.T) {
	ctx := context.Background()
	db := newFakeDatabase(Note{Base: entity.Base{ID: "1"}, Text: "hello"})
	c := memoryCache(t)
	r := New[Note](db, WithCache[Note](c))

	_, err := r.Get(ctx, "1")
	require.NoError(t, err)

	updated, err := r.Update(ctx, entity.Fields{"id": "1", "text": "changed"})
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Text)

	_, ok, _ := c.Get(ctx, "app:note:1")
	assert.False(t, ok)

	got, err := r.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Text)

	_, err = r.Delete(ctx, "1")
	require.NoError(t, err)
	_, ok, _ = c.Get(ctx, "app:note:1")
	assert.False(t, ok)

	_, err = r.Get(ctx, "1")
	require.NoError(t, err)
	_, err = r.Reactivate(ctx, "1")
	require.NoError(t, err)
	_, ok, _ = c.Get(ctx, "app:note:1")
	assert.False(t, ok)
}

func TestRepository_PassThrough(t *testing.T) {
	ctx := context.Background()
	db := newFakeDatabase(Note{Base: entity.Base{ID: "1"}})
	r := New[Note](db)

	created, err := r.Create(ctx, entity.Fields{"text": "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", created.Text)

	all, err := r.All(ctx, false, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = r.Update(ctx, entity.Fields{"id": "missing"})
	assert.ErrorIs(t, err, entity.ErrEntityDoesNotExist)

	boom := errors.New("boom")
	db.err = boom
	_, err = r.All(ctx, true, nil)
	assert.ErrorIs(t, err, boom)
	_, err = r.Create(ctx, entity.Fields{})
	assert.ErrorIs(t, err, boom)
}

type noteModel struct {
	bun.BaseModel `bun:"table:notes,alias:n"`
	model.Base

	Text string `bun:"text"`
}

func decodeNote(m *noteModel) Note {
	return Note{Base: m.Entity(), Text: m.Text}
}

var _ Database[Note] = (*database.Database[noteModel, Note])(nil)

func TestRepository_WithBunDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := database.New[noteModel, Note](testsupport.NewSQLiteDB(t, (*noteModel)(nil)), decodeNote, database.WithApp("app"), database.WithName("note"))
	require.NoError(t, err)

	c := memoryCache(t)
	r := New[Note](db, WithCache[Note](c))

	created, err := r.Create(ctx, entity.Fields{"text": "hello"})
	require.NoError(t, err)

	got, err := r.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)

	_, ok, _ := c.Get(ctx, "app:note:"+created.ID)
	assert.True(t, ok)

	deleted, err := r.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted())

	got, err = r.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())

	actives, err := r.All(ctx, false, nil)
	require.NoError(t, err)
	assert.Empty(t, actives)
}
