// Package database wraps a bun model behind the create/get/filter/update/delete
// contract used by repositories, translating missing rows into
// entity.ErrEntityDoesNotExist and rows into entities.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goliatone/go-clean-arch/entity"
	"github.com/goliatone/go-clean-arch/internal/naming"
	"github.com/goliatone/go-clean-arch/model"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
	"go.uber.org/zap"
)

// ErrNotARecord is returned by New when *M does not embed model.Base.
var ErrNotARecord = errors.New("database: model must embed model.Base")

// Decoder converts a loaded row into its entity.
type Decoder[M any, E any] func(m *M) E

// Database is the bun backed implementation for a single model type.
type Database[M any, E any] struct {
	db     bun.IDB
	table  *schema.Table
	decode Decoder[M, E]
	app    string
	name   string
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Database.
type Option func(*options)

type options struct {
	app    string
	name   string
	logger *zap.Logger
	now    func() time.Time
}

// WithApp sets the application label used in String.
func WithApp(app string) Option {
	return func(o *options) {
		o.app = app
	}
}

// WithName overrides the model name used in String.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates a Database for model M decoded into entity E.
func New[M any, E any](db bun.IDB, decode Decoder[M, E], opts ...Option) (*Database[M, E], error) {
	if db == nil {
		return nil, errors.New("database: bun.IDB is required")
	}
	if decode == nil {
		return nil, errors.New("database: decoder is required")
	}
	if _, ok := any(new(M)).(model.Record); !ok {
		return nil, ErrNotARecord
	}

	typ := reflect.TypeOf((*M)(nil)).Elem()
	o := options{
		name:   naming.ToSnake(typ.Name()),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Database[M, E]{
		db:     db,
		table:  db.Dialect().Tables().Get(typ),
		decode: decode,
		app:    o.app,
		name:   o.name,
		logger: o.logger.With(zap.String("database", joinName(o.app, o.name))),
		now:    o.now,
	}, nil
}

func joinName(app, name string) string {
	if app == "" {
		return name
	}
	return app + ":" + name
}

// String returns "<app>:<model>", or just the model name without an app.
func (d *Database[M, E]) String() string {
	return joinName(d.app, d.name)
}

// Create decodes fields into a new model, inserts it and returns the stored entity.
func (d *Database[M, E]) Create(ctx context.Context, fields entity.Fields) (E, error) {
	var zero E

	m := new(M)
	if err := decodeFields(d.writable(fields), m); err != nil {
		return zero, entity.NewInvalidEntity(err.Error())
	}

	if _, err := d.db.NewInsert().Model(m).Exec(ctx); err != nil {
		d.logger.Error("create failed", zap.Error(err))
		return zero, fmt.Errorf("%s: create: %w", d, err)
	}

	id := any(m).(model.Record).GetID()
	d.logger.Debug("created record", zap.String("id", id))

	return d.Get(ctx, id)
}

// Update writes fields onto the row identified by fields["id"] and returns
// the reloaded entity.
func (d *Database[M, E]) Update(ctx context.Context, fields entity.Fields) (E, error) {
	var zero E

	id, ok := idOf(fields)
	if !ok {
		return zero, entity.NewInvalidEntity("id is required")
	}

	values, err := d.coerce(d.writable(fields))
	if err != nil {
		return zero, entity.NewInvalidEntity(err.Error())
	}

	q := d.db.NewUpdate().
		Model((*M)(nil)).
		Set("? = ?", bun.Ident(model.ColumnUpdatedAt), d.now().UTC()).
		Where("? = ?", bun.Ident(model.ColumnID), id)
	for _, column := range sortedKeys(values) {
		q = q.Set("? = ?", bun.Ident(column), values[column])
	}

	if _, err := q.Exec(ctx); err != nil {
		d.logger.Error("update failed", zap.String("id", id), zap.Error(err))
		return zero, fmt.Errorf("%s: update %s: %w", d, id, err)
	}

	return d.Get(ctx, id)
}

// Get loads a row by primary key, soft-deleted rows included.
func (d *Database[M, E]) Get(ctx context.Context, id string) (E, error) {
	var zero E

	m, err := d.load(ctx, id)
	if err != nil {
		return zero, err
	}
	return d.decode(m), nil
}

// Filter lists active rows, or every row when forceAll is set. Filters are
// combined with OR; nil values match NULL columns.
func (d *Database[M, E]) Filter(ctx context.Context, forceAll bool, filters entity.Fields, criteria ...repository.SelectCriteria) ([]E, error) {
	var rows []M

	q := d.db.NewSelect().Model(&rows)
	if !forceAll {
		q = model.Actives()(q)
	}

	if len(filters) > 0 {
		var err error
		if filters, err = d.coerce(filters); err != nil {
			d.logger.Error("filter values do not match columns", zap.Error(err))
			return nil, fmt.Errorf("%s: filter: %w", d, err)
		}

		keys := sortedKeys(filters)
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for _, key := range keys {
				if filters[key] == nil {
					q = q.WhereOr("?TableAlias.? IS NULL", bun.Ident(key))
					continue
				}
				q = q.WhereOr("?TableAlias.? = ?", bun.Ident(key), filters[key])
			}
			return q
		})
	}

	for _, c := range criteria {
		q = c(q)
	}
	q = model.Ordered()(q)

	if err := q.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		d.logger.Error("filter failed", zap.Bool("force_all", forceAll), zap.Error(err))
		return nil, fmt.Errorf("%s: filter: %w", d, err)
	}

	out := make([]E, 0, len(rows))
	for i := range rows {
		out = append(out, d.decode(&rows[i]))
	}
	return out, nil
}

// Delete soft-deletes the row and returns it.
func (d *Database[M, E]) Delete(ctx context.Context, id string) (E, error) {
	var zero E

	m, err := d.load(ctx, id)
	if err != nil {
		return zero, err
	}

	now := d.now().UTC()
	any(m).(model.Record).Inactivate(now)

	if err := d.writeDeletedAt(ctx, id, now, &now); err != nil {
		return zero, err
	}
	d.logger.Debug("inactivated record", zap.String("id", id))

	return d.decode(m), nil
}

// Reactivate clears the soft-delete mark and returns the row.
func (d *Database[M, E]) Reactivate(ctx context.Context, id string) (E, error) {
	var zero E

	m, err := d.load(ctx, id)
	if err != nil {
		return zero, err
	}

	now := d.now().UTC()
	any(m).(model.Record).Activate(now)

	if err := d.writeDeletedAt(ctx, id, now, nil); err != nil {
		return zero, err
	}
	d.logger.Debug("activated record", zap.String("id", id))

	return d.decode(m), nil
}

func (d *Database[M, E]) writeDeletedAt(ctx context.Context, id string, now time.Time, deletedAt *time.Time) error {
	q := d.db.NewUpdate().
		Model((*M)(nil)).
		Set("? = ?", bun.Ident(model.ColumnUpdatedAt), now).
		Where("? = ?", bun.Ident(model.ColumnID), id)
	if deletedAt == nil {
		q = q.Set("? = NULL", bun.Ident(model.ColumnDeletedAt))
	} else {
		q = q.Set("? = ?", bun.Ident(model.ColumnDeletedAt), *deletedAt)
	}

	_, err := q.Exec(ctx)
	if err != nil {
		d.logger.Error("soft delete update failed", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("%s: write deleted_at %s: %w", d, id, err)
	}
	return nil
}

func (d *Database[M, E]) load(ctx context.Context, id string) (*M, error) {
	m := new(M)
	err := d.db.NewSelect().
		Model(m).
		Where("?TableAlias.? = ?", bun.Ident(model.ColumnID), id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrEntityDoesNotExist
	}
	if err != nil {
		d.logger.Error("get failed", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("%s: get %s: %w", d, id, err)
	}
	return m, nil
}

func idOf(fields entity.Fields) (string, bool) {
	v, ok := fields[model.ColumnID]
	if !ok || v == nil {
		return "", false
	}
	id := fmt.Sprint(v)
	return id, id != ""
}

// writable drops read-only columns and keys that are not columns of M.
func (d *Database[M, E]) writable(fields entity.Fields) entity.Fields {
	out := make(entity.Fields, len(fields))
	for k, v := range fields {
		if model.IsReadOnly(k) || !d.table.HasField(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// coerce converts values to the Go type of their column in M, the way Create
// decodes its input. Nil values and keys that are not columns are kept as is.
func (d *Database[M, E]) coerce(fields entity.Fields) (entity.Fields, error) {
	out := make(entity.Fields, len(fields))
	columns := make(entity.Fields, len(fields))
	for k, v := range fields {
		if v == nil || !d.table.HasField(k) {
			out[k] = v
			continue
		}
		columns[k] = v
	}
	if len(columns) == 0 {
		return out, nil
	}

	m := new(M)
	if err := decodeFields(columns, m); err != nil {
		return nil, err
	}
	strct := reflect.ValueOf(m).Elem()
	for k := range columns {
		out[k] = d.table.FieldMap[k].Value(strct).Interface()
	}
	return out, nil
}

func sortedKeys(fields entity.Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func decodeFields(fields entity.Fields, dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "bun",
		Squash:           true,
		WeaklyTypedInput: true,
		Result:           dst,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(fields))
}
