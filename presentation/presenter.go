// Package presentation turns interactor results into status coded responses
// with localized error messages.
//
// Status codes follow a fixed mapping: a missing entity is reported as 500
// with MsgNotFound, invalid create input as 500 and invalid update input as
// 409 with MsgInvalidInput, and any failure while listing as 500 with
// MsgFetchFailed. Other errors from single entity operations are returned to
// the caller unchanged.
package presentation

import (
	"context"
	"net/http"
	"time"

	"github.com/goliatone/go-clean-arch/entity"
	"github.com/goliatone/go-clean-arch/interactor"
	"github.com/goliatone/go-clean-arch/metrics"
	"github.com/goliatone/go-clean-arch/serializer"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Response is the result of a presenter call. Body is a map for single
// entity operations and a slice of maps for All.
type Response struct {
	Body   any
	Status int
	Errors []string
}

// ValidatedResponse adds the per field validation errors of create/update.
type ValidatedResponse struct {
	Response
	ValidationErrors map[string][]string
}

// Operations is the set of interactors a Presenter drives.
type Operations[E any] struct {
	Create     interactor.Create[E]
	Get        interactor.Get[E]
	Update     interactor.Update[E]
	Delete     interactor.Delete[E]
	All        interactor.All[E]
	Reactivate interactor.Reactivate[E]
}

// NewOperations builds every interactor over repo.
func NewOperations[E any](repo interactor.Repository[E], opts ...interactor.Option) Operations[E] {
	return Operations[E]{
		Create:     interactor.NewCreate(repo, opts...),
		Get:        interactor.NewGet(repo, opts...),
		Update:     interactor.NewUpdate(repo, opts...),
		Delete:     interactor.NewDelete(repo, opts...),
		All:        interactor.NewAll(repo, opts...),
		Reactivate: interactor.NewReactivate(repo, opts...),
	}
}

// Option configures a Presenter.
type Option func(*config)

type config struct {
	lang     language.Tag
	logger   *zap.Logger
	metrics  *metrics.Metrics
	resource string
}

// WithLanguage selects the language of error messages.
func WithLanguage(tag language.Tag) Option {
	return func(c *config) {
		c.lang = tag
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records every call under resource.
func WithMetrics(m *metrics.Metrics, resource string) Option {
	return func(c *config) {
		c.metrics = m
		c.resource = resource
	}
}

// Presenter serves one entity type.
type Presenter[E entity.Entity] struct {
	serializer *serializer.Serializer[E]
	ops        Operations[E]
	printer    *message.Printer
	logger     *zap.Logger
	metrics    *metrics.Metrics
	resource   string
}

var _ View = (*Presenter[entity.Base])(nil)

// NewPresenter creates a Presenter.
func NewPresenter[E entity.Entity](s *serializer.Serializer[E], ops Operations[E], opts ...Option) *Presenter[E] {
	c := config{lang: language.English, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&c)
	}
	return &Presenter[E]{
		serializer: s,
		ops:        ops,
		printer:    NewPrinter(c.lang),
		logger:     c.logger,
		metrics:    c.metrics,
		resource:   c.resource,
	}
}

func (p *Presenter[E]) Get(ctx context.Context, id string) (resp Response, err error) {
	defer p.observe("get", time.Now(), &resp.Status)

	e, err := p.ops.Get.SetParams(id).Execute(ctx)
	return p.single("get", e, err)
}

func (p *Presenter[E]) Delete(ctx context.Context, id string) (resp Response, err error) {
	defer p.observe("delete", time.Now(), &resp.Status)

	e, err := p.ops.Delete.SetParams(id).Execute(ctx)
	return p.single("delete", e, err)
}

func (p *Presenter[E]) Reactivate(ctx context.Context, id string) (resp Response, err error) {
	defer p.observe("reactivate", time.Now(), &resp.Status)

	e, err := p.ops.Reactivate.SetParams(id).Execute(ctx)
	return p.single("reactivate", e, err)
}

func (p *Presenter[E]) Create(ctx context.Context, fields entity.Fields) (resp ValidatedResponse, err error) {
	defer p.observe("create", time.Now(), &resp.Status)

	if errs := p.serializer.Validate(fields); errs != nil {
		return p.invalid(http.StatusInternalServerError, errs), nil
	}

	e, err := p.ops.Create.SetParams(fields).Execute(ctx)
	if err != nil {
		p.logger.Error("create failed", zap.Error(err))
		return ValidatedResponse{}, err
	}
	return ValidatedResponse{Response: p.ok(p.serializer.Data(e))}, nil
}

func (p *Presenter[E]) Update(ctx context.Context, fields entity.Fields) (resp ValidatedResponse, err error) {
	defer p.observe("update", time.Now(), &resp.Status)

	if errs := p.serializer.Validate(fields); errs != nil {
		return p.invalid(http.StatusConflict, errs), nil
	}

	e, err := p.ops.Update.SetParams(fields).Execute(ctx)
	if err != nil {
		if entity.IsNotFound(err) {
			return ValidatedResponse{Response: p.notFound()}, nil
		}
		p.logger.Error("update failed", zap.Error(err))
		return ValidatedResponse{}, err
	}
	return ValidatedResponse{Response: p.ok(p.serializer.Data(e))}, nil
}

// All never returns an error; failures are reported through the response.
func (p *Presenter[E]) All(ctx context.Context, forceAll bool, filters entity.Fields) (resp Response, err error) {
	defer p.observe("all", time.Now(), &resp.Status)

	items, err := p.ops.All.SetParams(forceAll, filters).Execute(ctx)
	if err != nil {
		p.logger.Warn("list failed", zap.Bool("force_all", forceAll), zap.Error(err))
		return Response{
			Body:   map[string]any{},
			Status: http.StatusInternalServerError,
			Errors: []string{p.printer.Sprintf(MsgFetchFailed)},
		}, nil
	}
	return p.ok(p.serializer.Many(items)), nil
}

func (p *Presenter[E]) single(op string, e E, err error) (Response, error) {
	if err != nil {
		if entity.IsNotFound(err) {
			return p.notFound(), nil
		}
		p.logger.Error(op+" failed", zap.Error(err))
		return Response{}, err
	}
	return p.ok(p.serializer.Data(e)), nil
}

func (p *Presenter[E]) ok(body any) Response {
	return Response{Body: body, Status: http.StatusOK, Errors: []string{}}
}

func (p *Presenter[E]) notFound() Response {
	return Response{
		Body:   map[string]any{},
		Status: http.StatusInternalServerError,
		Errors: []string{p.printer.Sprintf(MsgNotFound)},
	}
}

func (p *Presenter[E]) invalid(status int, errs map[string][]string) ValidatedResponse {
	return ValidatedResponse{
		Response: Response{
			Body:   map[string]any{},
			Status: status,
			Errors: []string{p.printer.Sprintf(MsgInvalidInput)},
		},
		ValidationErrors: errs,
	}
}

// observe runs deferred; a zero status means the call returned an error.
func (p *Presenter[E]) observe(op string, start time.Time, status *int) {
	code := *status
	if code == 0 {
		code = http.StatusInternalServerError
	}
	p.metrics.RecordOperation(p.resource, op, code, time.Since(start))
}
