// Package graph builds relay compliant GraphQL types, connections and
// mutations that resolve through presentation views.
//
// Node objects are rendered from the plain maps produced by serializers:
// field names are camelCase in the schema and snake_case in the map.
package graph

import (
	"sort"

	"github.com/goliatone/go-clean-arch/internal/naming"
	"github.com/graphql-go/graphql"
)

// ErrorsType is the [String!]! list carried by every mutation payload.
var ErrorsType = graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))

// ValidationErrorType describes the messages reported for one input field.
var ValidationErrorType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ValidationError",
	Fields: graphql.Fields{
		"field": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
		},
		"messages": &graphql.Field{
			Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))),
		},
	},
})

// ValidationErrors converts presenter validation errors into
// ValidationErrorType values sorted by field. Field names are camelized when
// camel is set.
func ValidationErrors(errs map[string][]string, camel bool) []map[string]any {
	if camel {
		errs = naming.Camelize(errs).(map[string][]string)
	}

	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]map[string]any, 0, len(fields))
	for _, field := range fields {
		out = append(out, map[string]any{
			"field":    field,
			"messages": errs[field],
		})
	}
	return out
}
