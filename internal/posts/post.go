// Package posts is a complete resource built on the clean architecture
// layers: a bun model, its entity, a serializer, GraphQL types and mutations.
package posts

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-clean-arch/entity"
	"github.com/goliatone/go-clean-arch/model"
	"github.com/goliatone/go-clean-arch/pkg/di"
	"github.com/goliatone/go-clean-arch/serializer"
	"github.com/uptrace/bun"
)

// Name is the database name of posts.
const Name = "post"

var errNotBool = validation.NewError("validation_is_bool", "must be a boolean")

// PostModel is the posts table.
type PostModel struct {
	bun.BaseModel `bun:"table:posts,alias:p"`
	model.Base

	Title     string `bun:"title,notnull"`
	Body      string `bun:"body,notnull"`
	Published bool   `bun:"published,notnull"`
}

// Post is the post entity.
type Post struct {
	entity.Base
	Title     string `json:"title" msgpack:"title"`
	Body      string `json:"body" msgpack:"body"`
	Published bool   `json:"published" msgpack:"published"`
}

// Decode converts a row into a Post.
func Decode(m *PostModel) Post {
	return Post{
		Base:      m.Entity(),
		Title:     m.Title,
		Body:      m.Body,
		Published: m.Published,
	}
}

// NewSerializer validates post input and renders posts.
func NewSerializer() *serializer.Serializer[Post] {
	return serializer.New[Post](
		func(p Post) map[string]any {
			return map[string]any{
				"title":     p.Title,
				"body":      p.Body,
				"published": p.Published,
			}
		},
		validation.Key("title", validation.Required, validation.Length(1, 255)),
		validation.Key("body", validation.Length(0, 10000)).Optional(),
		validation.Key("published", validation.By(isBool)).Optional(),
	)
}

func isBool(value any) error {
	if value == nil {
		return nil
	}
	if _, ok := value.(bool); !ok {
		return errNotBool
	}
	return nil
}

// ResourceConfig returns the di configuration of posts.
func ResourceConfig() di.ResourceConfig[PostModel, Post] {
	return di.ResourceConfig[PostModel, Post]{
		Name:       Name,
		Decode:     Decode,
		Serializer: NewSerializer(),
	}
}

// NewResource wires posts into c.
func NewResource(c *di.Container) (*di.Resource[PostModel, Post], error) {
	return di.NewResource(c, ResourceConfig())
}
