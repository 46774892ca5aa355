package interactor

import (
	"context"

	"github.com/goliatone/go-clean-arch/entity"
	"go.opentelemetry.io/otel/attribute"
)

// Get loads one entity by id.
type Get[E any] struct {
	repo Repository[E]
	s    settings
	id   string
}

func NewGet[E any](repo Repository[E], opts ...Option) Get[E] {
	return Get[E]{repo: repo, s: newSettings(opts)}
}

func (i Get[E]) SetParams(id string) Get[E] {
	i.id = id
	return i
}

func (i Get[E]) Execute(ctx context.Context) (E, error) {
	ctx, span := i.s.start(ctx, "get", attribute.String("entity.id", i.id))
	e, err := i.repo.Get(ctx, i.id)
	end(span, err)
	return e, err
}

// Create stores a new entity built from fields.
type Create[E any] struct {
	repo   Repository[E]
	s      settings
	fields entity.Fields
}

func NewCreate[E any](repo Repository[E], opts ...Option) Create[E] {
	return Create[E]{repo: repo, s: newSettings(opts)}
}

func (i Create[E]) SetParams(fields entity.Fields) Create[E] {
	i.fields = fields
	return i
}

func (i Create[E]) Execute(ctx context.Context) (E, error) {
	ctx, span := i.s.start(ctx, "create", attribute.Int("entity.fields", len(i.fields)))
	e, err := i.repo.Create(ctx, i.fields)
	end(span, err)
	return e, err
}

// Update writes fields onto the entity named by fields["id"].
type Update[E any] struct {
	repo   Repository[E]
	s      settings
	fields entity.Fields
}

func NewUpdate[E any](repo Repository[E], opts ...Option) Update[E] {
	return Update[E]{repo: repo, s: newSettings(opts)}
}

func (i Update[E]) SetParams(fields entity.Fields) Update[E] {
	i.fields = fields
	return i
}

func (i Update[E]) Execute(ctx context.Context) (E, error) {
	id, _ := i.fields.String("id")
	ctx, span := i.s.start(ctx, "update", attribute.String("entity.id", id))
	e, err := i.repo.Update(ctx, i.fields)
	end(span, err)
	return e, err
}

// All lists entities. Filters are OR-ed; forceAll includes soft-deleted rows.
type All[E any] struct {
	repo     Repository[E]
	s        settings
	forceAll bool
	filters  entity.Fields
}

func NewAll[E any](repo Repository[E], opts ...Option) All[E] {
	return All[E]{repo: repo, s: newSettings(opts)}
}

func (i All[E]) SetParams(forceAll bool, filters entity.Fields) All[E] {
	i.forceAll = forceAll
	i.filters = filters
	return i
}

func (i All[E]) Execute(ctx context.Context) ([]E, error) {
	ctx, span := i.s.start(ctx, "all",
		attribute.Bool("entity.force_all", i.forceAll),
		attribute.Int("entity.filters", len(i.filters)),
	)
	items, err := i.repo.All(ctx, i.forceAll, i.filters)
	end(span, err)
	return items, err
}

// Delete soft-deletes an entity.
type Delete[E any] struct {
	repo Repository[E]
	s    settings
	id   string
}

func NewDelete[E any](repo Repository[E], opts ...Option) Delete[E] {
	return Delete[E]{repo: repo, s: newSettings(opts)}
}

func (i Delete[E]) SetParams(id string) Delete[E] {
	i.id = id
	return i
}

func (i Delete[E]) Execute(ctx context.Context) (E, error) {
	ctx, span := i.s.start(ctx, "delete", attribute.String("entity.id", i.id))
	e, err := i.repo.Delete(ctx, i.id)
	end(span, err)
	return e, err
}

// Reactivate restores a soft-deleted entity.
type Reactivate[E any] struct {
	repo Repository[E]
	s    settings
	id   string
}

func NewReactivate[E any](repo Repository[E], opts ...Option) Reactivate[E] {
	return Reactivate[E]{repo: repo, s: newSettings(opts)}
}

func (i Reactivate[E]) SetParams(id string) Reactivate[E] {
	i.id = id
	return i
}

func (i Reactivate[E]) Execute(ctx context.Context) (E, error) {
	ctx, span := i.s.start(ctx, "reactivate", attribute.String("entity.id", i.id))
	e, err := i.repo.Reactivate(ctx, i.id)
	end(span, err)
	return e, err
}
