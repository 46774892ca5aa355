package model

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// Column names managed by Base.
const (
	ColumnID        = "id"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
	ColumnDeletedAt = "deleted_at"
)

// ReadOnlyColumns can never be written through create or update input.
var ReadOnlyColumns = []string{ColumnID, ColumnCreatedAt, ColumnUpdatedAt, ColumnDeletedAt}

// IsReadOnly reports whether column is managed by Base.
func IsReadOnly(column string) bool {
	for _, c := range ReadOnlyColumns {
		if c == column {
			return true
		}
	}
	return false
}

// Actives restricts a query to rows that are not soft-deleted.
func Actives() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.deleted_at IS NULL")
	}
}

// Inactives restricts a query to soft-deleted rows.
func Inactives() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.deleted_at IS NOT NULL")
	}
}

// Ordered applies the default ordering, newest first.
func Ordered() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			OrderExpr("?TableAlias.created_at DESC").
			OrderExpr("?TableAlias.updated_at DESC")
	}
}
