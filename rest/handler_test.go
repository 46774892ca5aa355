package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-clean-arch/entity"
	"github.com/goliatone/go-clean-arch/metrics"
	"github.com/goliatone/go-clean-arch/presentation"
	"github.com/goliatone/go-clean-arch/serializer"
	bunrepo "github.com/goliatone/go-repository-bun"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Note struct {
	entity.Base
	Title string
}

type noteRepo struct {
	notes   map[string]Note
	filters []entity.Fields
	err     error
}

func newNoteRepo(notes ...Note) *noteRepo {
	r := &noteRepo{notes: map[string]Note{}}
	for _, n := range notes {
		r.notes[n.ID] = n
	}
	return r
}

func (r *noteRepo) lookup(id string) (Note, error) {
	if r.err != nil {
		return Note{}, r.err
	}
	n, ok := r.notes[id]
	if !ok {
		return Note{}, entity.ErrEntityDoesNotExist
	}
	return n, nil
}

func (r *noteRepo) Create(_ context.Context, fields entity.Fields) (Note, error) {
	title, _ := fields.String("title")
	n := Note{Base: entity.Base{ID: "n-new"}, Title: title}
	r.notes[n.ID] = n
	return n, nil
}

func (r *noteRepo) Get(_ context.Context, id string) (Note, error) { return r.lookup(id) }

func (r *noteRepo) All(_ context.Context, forceAll bool, filters entity.Fields, _ ...bunrepo.SelectCriteria) ([]Note, error) {
	r.filters = append(r.filters, filters)
	ids := make([]string, 0, len(r.notes))
	for id := range r.notes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := []Note{}
	for _, id := range ids {
		n := r.notes[id]
		if forceAll || !n.IsDeleted() {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *noteRepo) Update(_ context.Context, fields entity.Fields) (Note, error) {
	id, _ := fields.String("id")
	n, err := r.lookup(id)
	if err != nil {
		return n, err
	}
	n.Title, _ = fields.String("title")
	r.notes[id] = n
	return n, nil
}

func (r *noteRepo) Delete(_ context.Context, id string) (Note, error) {
	n, err := r.lookup(id)
	if err != nil {
		return n, err
	}
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	n.DeletedAt = &now
	r.notes[id] = n
	return n, nil
}

func (r *noteRepo) Reactivate(_ context.Context, id string) (Note, error) {
	n, err := r.lookup(id)
	if err != nil {
		return n, err
	}
	n.DeletedAt = nil
	r.notes[id] = n
	return n, nil
}

func newTestHandler(repo *noteRepo, opts ...Option) *Handler {
	s := serializer.New[Note](
		func(n Note) map[string]any { return map[string]any{"title": n.Title} },
		validation.Key("title", validation.Required),
	)
	return NewHandler(presentation.NewFactory[Note](repo, s), opts...)
}

type envelope struct {
	Data             json.RawMessage     `json:"data"`
	Errors           []string            `json:"errors"`
	ValidationErrors map[string][]string `json:"validation_errors"`
}

func do(t *testing.T, h http.Handler, method, target, body string, header ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func dataMap(t *testing.T, env envelope) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &m))
	return m
}

func TestHandler_Get(t *testing.T) {
	h := newTestHandler(newNoteRepo(Note{Base: entity.Base{ID: "1"}, Title: "hello"}))

	rec, env := do(t, h, http.MethodGet, "/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, env.Errors)
	assert.Equal(t, "hello", dataMap(t, env)["title"])
	assert.Equal(t, "1", dataMap(t, env)["id"])

	rec, env = do(t, h, http.MethodGet, "/missing", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, []string{"No results found!"}, env.Errors)
	assert.Empty(t, dataMap(t, env))
}

func TestHandler_GetLocalized(t *testing.T) {
	h := newTestHandler(newNoteRepo())

	_, env := do(t, h, http.MethodGet, "/missing", "", "Accept-Language", "pt-BR,pt;q=0.9")
	assert.Equal(t, []string{"Nenhum resultado encontrado!"}, env.Errors)

	_, env = do(t, h, http.MethodGet, "/missing", "", "Accept-Language", "fr-FR")
	assert.Equal(t, []string{"No results found!"}, env.Errors)
}

func TestHandler_List(t *testing.T) {
	deleted := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newNoteRepo(
		Note{Base: entity.Base{ID: "1"}, Title: "a"},
		Note{Base: entity.Base{ID: "2", DeletedAt: &deleted}, Title: "b"},
	)
	h := newTestHandler(repo)

	rec, env := do(t, h, http.MethodGet, "/?title=a", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 1)
	assert.Equal(t, entity.Fields{"title": "a"}, repo.filters[0])

	_, env = do(t, h, http.MethodGet, "/?force_all=true", "")
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 2)
	assert.Equal(t, entity.Fields{}, repo.filters[1])

	rec, env = do(t, h, http.MethodGet, "/?force_all=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"force_all must be a boolean"}, env.Errors)
}

func TestHandler_Create(t *testing.T) {
	repo := newNoteRepo()
	h := newTestHandler(repo)

	rec, env := do(t, h, http.MethodPost, "/", `{"title": "new"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new", dataMap(t, env)["title"])
	assert.Nil(t, env.ValidationErrors)
	assert.Contains(t, repo.notes, "n-new")

	rec, env = do(t, h, http.MethodPost, "/", `{"title": ""}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, []string{"Invalid input data!"}, env.Errors)
	assert.Equal(t, map[string][]string{"title": {"cannot be blank"}}, env.ValidationErrors)

	rec, env = do(t, h, http.MethodPost, "/", `[1, 2]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"request body must be a JSON object"}, env.Errors)

	rec, env = do(t, h, http.MethodPost, "/", `null`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"request body must be a JSON object"}, env.Errors)
}

func TestHandler_Update(t *testing.T) {
	repo := newNoteRepo(Note{Base: entity.Base{ID: "1"}, Title: "draft"})
	h := newTestHandler(repo)

	rec, env := do(t, h, http.MethodPut, "/1", `{"title": "final", "id": "ignored"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "final", dataMap(t, env)["title"])
	assert.Equal(t, "final", repo.notes["1"].Title)

	rec, env = do(t, h, http.MethodPatch, "/1", `{"title": ""}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, []string{"Invalid input data!"}, env.Errors)
	assert.Contains(t, env.ValidationErrors, "title")

	for _, body := range []string{`null`, `"title"`, `[]`} {
		rec, env = do(t, h, http.MethodPut, "/1", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, []string{"request body must be a JSON object"}, env.Errors, body)
	}
	assert.Equal(t, "final", repo.notes["1"].Title)

	rec, env = do(t, h, http.MethodPut, "/2", `{"title": "x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, []string{"No results found!"}, env.Errors)
}

func TestHandler_DeleteAndReactivate(t *testing.T) {
	repo := newNoteRepo(Note{Base: entity.Base{ID: "1"}, Title: "a"})
	h := newTestHandler(repo)

	rec, env := do(t, h, http.MethodDelete, "/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, dataMap(t, env)["is_deleted"])
	assert.True(t, repo.notes["1"].IsDeleted())

	rec, env = do(t, h, http.MethodPost, "/1/reactivate", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, dataMap(t, env)["is_deleted"])
	assert.False(t, repo.notes["1"].IsDeleted())

	rec, env = do(t, h, http.MethodDelete, "/9", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, []string{"No results found!"}, env.Errors)
}

func TestHandler_UnexpectedError(t *testing.T) {
	repo := newNoteRepo()
	repo.err = errors.New("connection reset")
	h := newTestHandler(repo)

	rec, env := do(t, h, http.MethodGet, "/1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, []string{"Internal Server Error"}, env.Errors)
}

func TestHandler_Metrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	h := newTestHandler(newNoteRepo(Note{Base: entity.Base{ID: "1"}}), WithMetrics(m))

	do(t, h, http.MethodGet, "/1", "")
	do(t, h, http.MethodGet, "/2", "")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "GET /{id}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "GET /{id}", "500")))
}
