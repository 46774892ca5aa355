package posts

import (
	"github.com/goliatone/go-clean-arch/graph"
	"github.com/goliatone/go-clean-arch/presentation"
	"github.com/graphql-go/graphql"
)

// Schema holds the GraphQL fields of posts.
type Schema struct {
	Type      *graph.Type
	Queries   graphql.Fields
	Mutations graphql.Fields
}

// Register adds the Post type to registry and builds the posts connection
// and the createPost, updatePost and deletePost mutations.
func Register(registry *graph.Registry, factory presentation.ViewFactory) (*Schema, error) {
	t, err := registry.NewType(graph.TypeConfig{
		Name:        "Post",
		Description: "A blog post.",
		Fields: graphql.Fields{
			"title":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"body":      &graphql.Field{Type: graphql.String},
			"published": &graphql.Field{Type: graphql.Boolean},
		},
		ViewFactory: factory,
		FilterArgs: graphql.FieldConfigArgument{
			"title":     &graphql.ArgumentConfig{Type: graphql.String},
			"published": &graphql.ArgumentConfig{Type: graphql.Boolean},
		},
	})
	if err != nil {
		return nil, err
	}

	create, err := graph.NewCreateOrUpdateMutation(graph.CreateOrUpdateConfig{
		Name: "CreatePost",
		InputFields: graphql.InputObjectConfigFieldMap{
			"title":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"body":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"published": &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		},
		ResponseName:    "post",
		ResponseType:    t.Object,
		ViewFactory:     factory,
		LookupField:     "id",
		Operations:      []string{graph.OperationCreate},
		CamelCaseErrors: true,
	})
	if err != nil {
		return nil, err
	}

	// updates are validated with the create rules, so title stays required
	update, err := graph.NewCreateOrUpdateMutation(graph.CreateOrUpdateConfig{
		Name: "UpdatePost",
		InputFields: graphql.InputObjectConfigFieldMap{
			"id":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
			"title":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"body":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"published": &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		},
		ResponseName:    "post",
		ResponseType:    t.Object,
		ViewFactory:     factory,
		LookupField:     "id",
		Operations:      []string{graph.OperationUpdate},
		CamelCaseErrors: true,
	})
	if err != nil {
		return nil, err
	}

	remove, err := graph.NewDeleteMutation(graph.DeleteConfig{
		Name:        "DeletePost",
		ViewFactory: factory,
		LookupField: "id",
	})
	if err != nil {
		return nil, err
	}

	return &Schema{
		Type: t,
		Queries: graphql.Fields{
			"posts": graph.ConnectionField(t, graph.Connection(t)),
		},
		Mutations: graphql.Fields{
			"createPost": create,
			"updatePost": update,
			"deletePost": remove,
		},
	}, nil
}
