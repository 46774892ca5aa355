package graph

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/goliatone/go-clean-arch/internal/naming"
	"github.com/goliatone/go-clean-arch/presentation"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/relay"
)

// typeKey tags node maps with the name of their GraphQL object so the Node
// interface can resolve them.
const typeKey = "__node_type"

// Type is a registered node object.
type Type struct {
	Name    string
	Object  *graphql.Object
	factory presentation.ViewFactory
	filters graphql.FieldConfigArgument
}

// TypeConfig describes a node object. Fields without a resolver read the
// snake_case key of the serialized entity.
type TypeConfig struct {
	Name        string
	Description string
	Fields      graphql.Fields
	ViewFactory presentation.ViewFactory
	// FilterArgs become arguments of the connection field and are passed
	// to View.All as snake_case filters.
	FilterArgs graphql.FieldConfigArgument
}

// Registry owns the relay Node interface and the types implementing it.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
	node  *relay.NodeDefinitions
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	r := &Registry{types: map[string]*Type{}}
	r.node = relay.NewNodeDefinitions(relay.NodeDefinitionsConfig{
		IDFetcher:   r.fetchNode,
		TypeResolve: r.resolveType,
	})
	return r
}

// NodeInterface returns the relay Node interface.
func (r *Registry) NodeInterface() *graphql.Interface {
	return r.node.NodeInterface
}

// NodeField returns the root node(id: ID!) field.
func (r *Registry) NodeField() *graphql.Field {
	return r.node.NodeField
}

// Objects returns every registered object sorted by name.
func (r *Registry) Objects() []graphql.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]graphql.Type, 0, len(names))
	for _, name := range names {
		out = append(out, r.types[name].Object)
	}
	return out
}

// Lookup returns the registered type called name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// NewType registers an object implementing Node with a global id and the
// base fields createdAt, updatedAt, deletedAt and isDeleted.
func (r *Registry) NewType(cfg TypeConfig) (*Type, error) {
	if cfg.Name == "" {
		return nil, ErrNameRequired
	}
	if cfg.ViewFactory == nil {
		return nil, fmt.Errorf("%s: %w", cfg.Name, ErrViewFactoryRequired)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[cfg.Name]; ok {
		return nil, fmt.Errorf("%s: %w", cfg.Name, ErrDuplicateType)
	}

	fields := graphql.Fields{
		"id": &graphql.Field{
			Type:        graphql.NewNonNull(graphql.ID),
			Description: "The ID of an object",
			Resolve:     globalIDResolver(cfg.Name),
		},
		"createdAt": mapField(graphql.String),
		"updatedAt": mapField(graphql.String),
		"deletedAt": mapField(graphql.String),
		"isDeleted": mapField(graphql.Boolean),
	}
	for name, field := range cfg.Fields {
		f := *field
		fields[name] = &f
	}
	for name, field := range fields {
		if field.Resolve == nil {
			field.Resolve = mapResolver(naming.ToSnake(name))
		}
	}

	t := &Type{
		Name:    cfg.Name,
		factory: cfg.ViewFactory,
		filters: cfg.FilterArgs,
		Object: graphql.NewObject(graphql.ObjectConfig{
			Name:        cfg.Name,
			Description: cfg.Description,
			Interfaces:  []*graphql.Interface{r.node.NodeInterface},
			Fields:      fields,
		}),
	}
	r.types[cfg.Name] = t
	return t, nil
}

// fetchNode resolves node(id) through the view of the type encoded in the
// global id. Missing entities resolve to null.
func (r *Registry) fetchNode(id string, info graphql.ResolveInfo, ctx context.Context) (interface{}, error) {
	resolved := relay.FromGlobalID(id)
	if resolved == nil {
		return nil, fmt.Errorf("invalid global id %q", id)
	}

	t, ok := r.Lookup(resolved.Type)
	if !ok {
		return nil, fmt.Errorf("unknown node type %q", resolved.Type)
	}

	resp, err := t.factory.NewView(ctx).Get(ctx, resolved.ID)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, nil
	}
	if node := t.node(resp.Body); node != nil {
		return node, nil
	}
	return nil, nil
}

func (r *Registry) resolveType(p graphql.ResolveTypeParams) *graphql.Object {
	body, ok := p.Value.(map[string]any)
	if !ok {
		return nil
	}
	name, _ := body[typeKey].(string)
	if t, ok := r.Lookup(name); ok {
		return t.Object
	}
	return nil
}

// node tags a serialized entity with the type name, or returns nil when
// body is not a map.
func (t *Type) node(body any) map[string]any {
	m, ok := body.(map[string]any)
	if !ok {
		return nil
	}
	return tag(m, t.Name)
}

func globalIDResolver(typeName string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		source, ok := p.Source.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: unexpected source %T", typeName, p.Source)
		}
		return relay.ToGlobalID(typeName, fmt.Sprint(source["id"])), nil
	}
}

func mapField(t graphql.Output) *graphql.Field {
	return &graphql.Field{Type: t}
}

func mapResolver(key string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		source, ok := p.Source.(map[string]any)
		if !ok {
			return nil, nil
		}
		return source[key], nil
	}
}
