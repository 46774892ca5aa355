// Package serializer validates create/update input and renders entities as
// plain maps for the presentation layer.
package serializer

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-clean-arch/entity"
	"github.com/goliatone/go-clean-arch/model"
)

// Base output keys present on every serialized entity.
const (
	FieldID        = model.ColumnID
	FieldCreatedAt = model.ColumnCreatedAt
	FieldUpdatedAt = model.ColumnUpdatedAt
	FieldDeletedAt = model.ColumnDeletedAt
	FieldIsDeleted = "is_deleted"
)

// NonFieldErrors collects validation failures not tied to a single key.
const NonFieldErrors = "non_field_errors"

// ReadOnly lists the keys stripped from input before validation.
var ReadOnly = []string{FieldID, FieldCreatedAt, FieldUpdatedAt, FieldDeletedAt, FieldIsDeleted}

// FieldsFunc renders the entity specific fields of e.
type FieldsFunc[E any] func(e E) map[string]any

// Serializer validates input against ozzo rules and renders entities.
type Serializer[E entity.Entity] struct {
	rules  []*validation.KeyRules
	fields FieldsFunc[E]
}

// New builds a Serializer. Keys without a rule are accepted as is.
func New[E entity.Entity](fields FieldsFunc[E], rules ...*validation.KeyRules) *Serializer[E] {
	return &Serializer[E]{rules: rules, fields: fields}
}

// Validate returns the error messages per key, or nil when fields are valid.
func (s *Serializer[E]) Validate(fields entity.Fields) map[string][]string {
	input := make(map[string]any, len(fields))
	for k, v := range fields {
		if isReadOnly(k) {
			continue
		}
		input[k] = v
	}

	err := validation.Validate(input, validation.Map(s.rules...).AllowExtraKeys())
	if err == nil {
		return nil
	}

	out := map[string][]string{}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		out[NonFieldErrors] = []string{err.Error()}
		return out
	}
	flatten("", errs, out)
	return out
}

func flatten(prefix string, errs validation.Errors, out map[string][]string) {
	for key, err := range errs {
		if prefix != "" {
			key = prefix + "." + key
		}
		var nested validation.Errors
		if errors.As(err, &nested) {
			flatten(key, nested, out)
			continue
		}
		out[key] = append(out[key], err.Error())
	}
}

// Data renders e: the base fields followed by the entity fields. Base
// fields cannot be overridden.
func (s *Serializer[E]) Data(e E) map[string]any {
	out := map[string]any{}
	if s.fields != nil {
		for k, v := range s.fields(e) {
			out[k] = v
		}
	}

	base := e.Meta()
	out[FieldID] = base.ID
	out[FieldCreatedAt] = formatTime(base.CreatedAt)
	out[FieldUpdatedAt] = formatTime(base.UpdatedAt)
	out[FieldDeletedAt] = nil
	if base.DeletedAt != nil {
		out[FieldDeletedAt] = formatTime(*base.DeletedAt)
	}
	out[FieldIsDeleted] = base.IsDeleted()

	return out
}

// Many renders every entity, never returning nil.
func (s *Serializer[E]) Many(items []E) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, s.Data(item))
	}
	return out
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func isReadOnly(key string) bool {
	for _, k := range ReadOnly {
		if k == key {
			return true
		}
	}
	return false
}
