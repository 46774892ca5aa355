// Package interactor holds the single purpose use cases run by presenters.
//
// Each interactor wraps one repository call. SetParams returns a configured
// copy, so a zero-parameter interactor can be shared and specialised per
// request:
//
//	get := interactor.NewGet[Post](repo)
//	post, err := get.SetParams(id).Execute(ctx)
//
// Execute runs inside an OpenTelemetry span named "interactor.<operation>".
package interactor

import (
	"context"

	"github.com/goliatone/go-clean-arch/entity"
	bunrepo "github.com/goliatone/go-repository-bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/goliatone/go-clean-arch/interactor"

// Repository is the storage facade interactors depend on.
type Repository[E any] interface {
	Create(ctx context.Context, fields entity.Fields) (E, error)
	Get(ctx context.Context, id string) (E, error)
	All(ctx context.Context, forceAll bool, filters entity.Fields, criteria ...bunrepo.SelectCriteria) ([]E, error)
	Update(ctx context.Context, fields entity.Fields) (E, error)
	Delete(ctx context.Context, id string) (E, error)
	Reactivate(ctx context.Context, id string) (E, error)
}

// Option configures an interactor.
type Option func(*settings)

type settings struct {
	tracer trace.Tracer
}

// WithTracerProvider replaces the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *settings) {
		if tp != nil {
			s.tracer = tp.Tracer(instrumentationName)
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{tracer: otel.Tracer(instrumentationName)}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) start(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "interactor."+operation, trace.WithAttributes(attrs...))
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
