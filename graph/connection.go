package graph

import (
	"net/http"

	"github.com/goliatone/go-clean-arch/entity"
	"github.com/goliatone/go-clean-arch/internal/naming"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/relay"
)

// ForceAllArg includes soft-deleted entities in a connection.
const ForceAllArg = "forceAll"

// Connection defines the relay connection of t with an extra total field
// counting every item before pagination.
func Connection(t *Type) *relay.GraphQLConnectionDefinitions {
	return relay.ConnectionDefinitions(relay.ConnectionConfig{
		Name:     t.Name,
		NodeType: t.Object,
		ConnectionFields: graphql.Fields{
			"total": &graphql.Field{
				Type:        graphql.Int,
				Description: "Number of items before pagination.",
			},
		},
	})
}

// ConnectionField lists t through View.All. The field accepts the relay
// pagination arguments, the filter arguments of t (pagination wins on a name
// clash) and forceAll.
func ConnectionField(t *Type, conn *relay.GraphQLConnectionDefinitions) *graphql.Field {
	args := graphql.FieldConfigArgument{}
	for name, arg := range t.filters {
		args[name] = arg
	}
	for name, arg := range relay.ConnectionArgs {
		args[name] = arg
	}
	args[ForceAllArg] = &graphql.ArgumentConfig{
		Type:         graphql.Boolean,
		DefaultValue: false,
	}

	return &graphql.Field{
		Type: conn.ConnectionType,
		Args: args,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			forceAll, _ := p.Args[ForceAllArg].(bool)

			filters := entity.Fields{}
			for name := range t.filters {
				if _, ok := relay.ConnectionArgs[name]; ok {
					continue
				}
				if v, ok := p.Args[name]; ok {
					filters[naming.ToSnake(name)] = v
				}
			}

			resp, err := t.factory.NewView(p.Context).All(p.Context, forceAll, filters)
			if err != nil {
				return nil, err
			}
			if resp.Status != http.StatusOK {
				return nil, responseError(resp.Errors)
			}

			items, _ := resp.Body.([]map[string]any)
			data := make([]interface{}, 0, len(items))
			for _, item := range items {
				data = append(data, t.node(item))
			}

			page := relay.ConnectionFromArray(data, relay.NewConnectionArguments(p.Args))
			return map[string]interface{}{
				"edges":    page.Edges,
				"pageInfo": page.PageInfo,
				"total":    len(data),
			}, nil
		},
	}
}
