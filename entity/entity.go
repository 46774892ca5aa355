// Package entity holds the anemic value types shared by every layer.
//
// Entities mirror database rows: an ID, creation and update timestamps and an
// optional deletion timestamp. A record is either active (DeletedAt is nil) or
// soft-deleted; nothing else is enforced here.
package entity

import "time"

// Fields carries column keyed values for create, update and filter operations.
type Fields map[string]any

// Clone returns a shallow copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// String returns the value stored under key when it is a string.
func (f Fields) String(key string) (string, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Base is embedded by concrete entities.
type Base struct {
	ID        string     `json:"id" msgpack:"id"`
	CreatedAt time.Time  `json:"created_at" msgpack:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" msgpack:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" msgpack:"deleted_at"`
}

// Entity is implemented by any type embedding Base.
type Entity interface {
	Meta() Base
}

// Meta returns the base columns of the entity.
func (b Base) Meta() Base {
	return b
}

// GetID returns the entity identifier.
func (b Base) GetID() string {
	return b.ID
}

// IsDeleted reports whether the record has been soft-deleted.
func (b Base) IsDeleted() bool {
	return b.DeletedAt != nil
}
