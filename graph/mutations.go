package graph

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goliatone/go-clean-arch/entity"
	"github.com/goliatone/go-clean-arch/internal/naming"
	"github.com/goliatone/go-clean-arch/presentation"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/relay"
)

// Mutation operations.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
)

const clientMutationID = "clientMutationId"

// CreateOrUpdateConfig describes a mutation that updates when the lookup
// field is present and creates otherwise.
type CreateOrUpdateConfig struct {
	Name        string
	Description string
	InputFields graphql.InputObjectConfigFieldMap
	// ResponseName is the payload field carrying the serialized entity.
	ResponseName string
	ResponseType graphql.Output
	ViewFactory  presentation.ViewFactory
	// LookupField is the input field holding the id, global or raw.
	LookupField string
	// Operations defaults to create and update.
	Operations []string
	// CamelCaseErrors camelizes the field names of validation errors.
	CamelCaseErrors bool
}

// DeleteConfig describes a soft-delete mutation.
type DeleteConfig struct {
	Name        string
	Description string
	// InputFields defaults to a single ID! field named LookupField.
	InputFields graphql.InputObjectConfigFieldMap
	ViewFactory presentation.ViewFactory
	LookupField string
}

// NewCreateOrUpdateMutation builds a relay mutation whose payload carries
// the entity under ResponseName, errors and validationErrors.
func NewCreateOrUpdateMutation(cfg CreateOrUpdateConfig) (*graphql.Field, error) {
	if cfg.Name == "" {
		return nil, ErrNameRequired
	}
	if cfg.ViewFactory == nil {
		return nil, fmt.Errorf("%s: %w", cfg.Name, ErrViewFactoryRequired)
	}
	if cfg.LookupField == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Name, ErrLookupFieldRequired)
	}
	if cfg.Operations == nil {
		cfg.Operations = []string{OperationCreate, OperationUpdate}
	}
	canCreate, canUpdate := contains(cfg.Operations, OperationCreate), contains(cfg.Operations, OperationUpdate)
	if !canCreate && !canUpdate {
		return nil, fmt.Errorf("%s: %w", cfg.Name, ErrInvalidOperations)
	}
	if cfg.ResponseName == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Name, ErrResponseNameRequired)
	}
	if cfg.ResponseType == nil {
		return nil, fmt.Errorf("%s: %w", cfg.Name, ErrResponseTypeRequired)
	}

	typeName := ""
	if named, ok := cfg.ResponseType.(*graphql.Object); ok {
		typeName = named.Name()
	}

	return clientMutation(mutationConfig{
		Name:        cfg.Name,
		Description: cfg.Description,
		InputFields: cfg.InputFields,
		OutputFields: graphql.Fields{
			cfg.ResponseName: &graphql.Field{Type: cfg.ResponseType},
			"errors": &graphql.Field{
				Type:        ErrorsType,
				Description: "May contain more than one error.",
			},
			"validationErrors": &graphql.Field{
				Type:        graphql.NewList(ValidationErrorType),
				Description: "May contain more than one error for same field.",
			},
		},
		Mutate: func(ctx context.Context, inputMap map[string]interface{}) (map[string]interface{}, error) {
			input, _, hasLookup := decodeInput(inputMap, cfg.LookupField)

			view := cfg.ViewFactory.NewView(ctx)
			var (
				resp presentation.ValidatedResponse
				err  error
			)
			switch {
			case canUpdate && hasLookup:
				resp, err = view.Update(ctx, input)
			case canCreate:
				resp, err = view.Create(ctx, input)
			default:
				return nil, missingInput(OperationUpdate, cfg.LookupField)
			}
			if err != nil {
				return nil, err
			}

			var body interface{}
			if resp.Status == http.StatusOK {
				if m, ok := resp.Body.(map[string]any); ok {
					body = tag(m, typeName)
				}
			}

			return map[string]interface{}{
				cfg.ResponseName:   body,
				"errors":           nonNil(resp.Errors),
				"validationErrors": ValidationErrors(resp.ValidationErrors, cfg.CamelCaseErrors),
			}, nil
		},
	}), nil
}

// NewDeleteMutation builds a relay mutation with an ok flag and errors.
func NewDeleteMutation(cfg DeleteConfig) (*graphql.Field, error) {
	if cfg.Name == "" {
		return nil, ErrNameRequired
	}
	if cfg.ViewFactory == nil {
		return nil, fmt.Errorf("%s: %w", cfg.Name, ErrViewFactoryRequired)
	}
	if cfg.LookupField == "" {
		return nil, fmt.Errorf("%s: %w", cfg.Name, ErrLookupFieldRequired)
	}

	inputFields := cfg.InputFields
	if inputFields == nil {
		inputFields = graphql.InputObjectConfigFieldMap{
			cfg.LookupField: &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		}
	}

	return clientMutation(mutationConfig{
		Name:        cfg.Name,
		Description: cfg.Description,
		InputFields: inputFields,
		OutputFields: graphql.Fields{
			"ok": &graphql.Field{Type: graphql.Boolean},
			"errors": &graphql.Field{
				Type:        ErrorsType,
				Description: "May contain more than one error.",
			},
		},
		Mutate: func(ctx context.Context, inputMap map[string]interface{}) (map[string]interface{}, error) {
			input, lookup, hasLookup := decodeInput(inputMap, cfg.LookupField)
			if !hasLookup {
				return nil, missingInput("delete", cfg.LookupField)
			}

			resp, err := cfg.ViewFactory.NewView(ctx).Delete(ctx, fmt.Sprint(input[lookup]))
			if err != nil {
				return nil, err
			}
			if len(resp.Errors) > 0 {
				return map[string]interface{}{"ok": false, "errors": resp.Errors}, nil
			}
			return map[string]interface{}{"ok": true, "errors": []string{}}, nil
		},
	}), nil
}

type mutationConfig struct {
	Name         string
	Description  string
	InputFields  graphql.InputObjectConfigFieldMap
	OutputFields graphql.Fields
	Mutate       func(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error)
}

// clientMutation builds a relay style mutation taking a single <Name>Input
// argument and returning <Name>Payload. clientMutationId is optional and
// echoed back in the payload when sent.
func clientMutation(cfg mutationConfig) *graphql.Field {
	inputFields := make(graphql.InputObjectConfigFieldMap, len(cfg.InputFields)+1)
	for name, field := range cfg.InputFields {
		inputFields[name] = field
	}
	inputFields[clientMutationID] = &graphql.InputObjectFieldConfig{Type: graphql.String}

	outputFields := make(graphql.Fields, len(cfg.OutputFields)+1)
	for name, field := range cfg.OutputFields {
		outputFields[name] = field
	}
	outputFields[clientMutationID] = &graphql.Field{Type: graphql.String}

	inputType := graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   cfg.Name + "Input",
		Fields: inputFields,
	})
	payloadType := graphql.NewObject(graphql.ObjectConfig{
		Name:   cfg.Name + "Payload",
		Fields: outputFields,
	})

	return &graphql.Field{
		Name:        cfg.Name,
		Description: cfg.Description,
		Type:        payloadType,
		Args: graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(inputType)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			input, _ := p.Args["input"].(map[string]interface{})
			if input == nil {
				input = map[string]interface{}{}
			}

			payload, err := cfg.Mutate(p.Context, input)
			if err != nil {
				return nil, err
			}
			if id, ok := input[clientMutationID]; ok {
				payload[clientMutationID] = id
			}
			return payload, nil
		},
	}
}

// decodeInput converts input keys to snake_case, drops the client mutation
// id and replaces a global id in the lookup field by the raw id.
func decodeInput(inputMap map[string]interface{}, lookupField string) (entity.Fields, string, bool) {
	input := entity.Fields(naming.SnakeKeys(inputMap))
	delete(input, naming.ToSnake(clientMutationID))

	lookup := naming.ToSnake(lookupField)
	v, ok := input[lookup]
	if !ok || v == nil {
		delete(input, lookup)
		return input, lookup, false
	}
	if s, isString := v.(string); isString {
		if resolved := relay.FromGlobalID(s); resolved != nil && resolved.ID != "" {
			input[lookup] = resolved.ID
		}
	}
	return input, lookup, true
}

func tag(body map[string]any, typeName string) map[string]any {
	out := make(map[string]any, len(body)+1)
	for k, v := range body {
		out[k] = v
	}
	if typeName != "" {
		out[typeKey] = typeName
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
