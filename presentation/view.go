package presentation

import (
	"context"

	"github.com/goliatone/go-clean-arch/entity"
	"github.com/goliatone/go-clean-arch/interactor"
	"github.com/goliatone/go-clean-arch/serializer"
)

// View is the type erased presenter used by transports.
type View interface {
	Get(ctx context.Context, id string) (Response, error)
	Create(ctx context.Context, fields entity.Fields) (ValidatedResponse, error)
	Update(ctx context.Context, fields entity.Fields) (ValidatedResponse, error)
	Delete(ctx context.Context, id string) (Response, error)
	Reactivate(ctx context.Context, id string) (Response, error)
	All(ctx context.Context, forceAll bool, filters entity.Fields) (Response, error)
}

// ViewFactory builds a fresh View per request.
type ViewFactory interface {
	NewView(ctx context.Context) View
}

// ViewFactoryFunc adapts a function to ViewFactory.
type ViewFactoryFunc func(ctx context.Context) View

func (f ViewFactoryFunc) NewView(ctx context.Context) View {
	return f(ctx)
}

// Factory assembles a presenter and its interactors for entity E. A language
// stored with ContextWithLanguage overrides the configured one.
type Factory[E entity.Entity] struct {
	repo       interactor.Repository[E]
	serializer *serializer.Serializer[E]
	opts       []Option
	ops        []interactor.Option
}

// NewFactory creates a Factory.
func NewFactory[E entity.Entity](repo interactor.Repository[E], s *serializer.Serializer[E], opts ...Option) *Factory[E] {
	return &Factory[E]{repo: repo, serializer: s, opts: opts}
}

// WithInteractorOptions returns a copy of f passing opts to every interactor.
func (f *Factory[E]) WithInteractorOptions(opts ...interactor.Option) *Factory[E] {
	out := *f
	out.ops = append(append([]interactor.Option{}, f.ops...), opts...)
	return &out
}

// NewView implements ViewFactory.
func (f *Factory[E]) NewView(ctx context.Context) View {
	return f.Presenter(ctx)
}

// Presenter returns the typed presenter behind NewView.
func (f *Factory[E]) Presenter(ctx context.Context) *Presenter[E] {
	opts := append([]Option{}, f.opts...)
	if tag, ok := lookupLanguage(ctx); ok {
		opts = append(opts, WithLanguage(tag))
	}
	return NewPresenter(f.serializer, NewOperations(f.repo, f.ops...), opts...)
}
