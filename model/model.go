// Package model provides the bun mapped base model with soft-delete columns.
//
// Concrete models embed both bun.BaseModel (for the table name) and Base:
//
//	type Post struct {
//		bun.BaseModel `bun:"table:posts,alias:p"`
//		model.Base
//
//		Title string `bun:"title,notnull"`
//	}
package model

import (
	"context"
	"time"

	"github.com/goliatone/go-clean-arch/entity"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record is satisfied by pointers to any struct embedding Base.
type Record interface {
	GetID() string
	Entity() entity.Base
	Inactivate(now time.Time)
	Activate(now time.Time)
}

var (
	_ Record                    = (*Base)(nil)
	_ bun.BeforeAppendModelHook = (*Base)(nil)
)

// Base holds the columns shared by every table.
type Base struct {
	ID        string     `bun:"id,pk"`
	CreatedAt time.Time  `bun:"created_at,notnull"`
	UpdatedAt time.Time  `bun:"updated_at,notnull"`
	DeletedAt *time.Time `bun:"deleted_at"`
}

// BeforeAppendModel assigns the id and timestamps.
func (m *Base) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		m.UpdatedAt = now
	case *bun.UpdateQuery:
		m.UpdatedAt = now
	}
	return nil
}

// GetID returns the primary key.
func (m *Base) GetID() string {
	return m.ID
}

// Inactivate marks the record as soft-deleted.
func (m *Base) Inactivate(now time.Time) {
	m.DeletedAt = &now
	m.UpdatedAt = now
}

// Activate clears the soft-delete mark.
func (m *Base) Activate(now time.Time) {
	m.DeletedAt = nil
	m.UpdatedAt = now
}

// IsDeleted reports whether the row is soft-deleted.
func (m *Base) IsDeleted() bool {
	return m.DeletedAt != nil
}

// Entity copies the base columns into an entity.Base.
func (m *Base) Entity() entity.Base {
	var deletedAt *time.Time
	if m.DeletedAt != nil {
		t := *m.DeletedAt
		deletedAt = &t
	}
	return entity.Base{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		DeletedAt: deletedAt,
	}
}
