package graph

import (
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
)

// SchemaConfig lists the root fields of a schema. The node field of the
// registry is always added to the query root.
type SchemaConfig struct {
	Registry  *Registry
	Queries   graphql.Fields
	Mutations graphql.Fields
}

// Schema composes the Query and Mutation roots. The Mutation root is omitted
// when no mutation is configured.
func Schema(cfg SchemaConfig) (graphql.Schema, error) {
	if cfg.Registry == nil {
		cfg.Registry = NewRegistry()
	}

	queries := graphql.Fields{"node": cfg.Registry.NodeField()}
	for name, field := range cfg.Queries {
		queries[name] = field
	}

	schemaCfg := graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: queries,
		}),
		Types: cfg.Registry.Objects(),
	}
	if len(cfg.Mutations) > 0 {
		schemaCfg.Mutation = graphql.NewObject(graphql.ObjectConfig{
			Name:   "Mutation",
			Fields: cfg.Mutations,
		})
	}
	return graphql.NewSchema(schemaCfg)
}

// NewHandler serves schema over HTTP, with the GraphiQL page when graphiql
// is set.
func NewHandler(schema graphql.Schema, graphiql bool) *handler.Handler {
	return handler.New(&handler.Config{
		Schema:   &schema,
		Pretty:   true,
		GraphiQL: graphiql,
	})
}
