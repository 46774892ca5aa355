package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Configuration errors returned while building types and mutations.
var (
	ErrNameRequired         = errors.New("graph: name is required")
	ErrViewFactoryRequired  = errors.New("graph: view factory is required")
	ErrLookupFieldRequired  = errors.New("graph: lookup field is required")
	ErrResponseNameRequired = errors.New("graph: response name is required for create or update mutations")
	ErrResponseTypeRequired = errors.New("graph: response type is required for create or update mutations")
	ErrInvalidOperations    = errors.New(`graph: operations must contain "create" and/or "update"`)
	ErrDuplicateType        = errors.New("graph: type already registered")
)

func missingInput(operation, field string) error {
	return fmt.Errorf("Invalid %s operation. Input parameter %q required.", operation, field)
}

// responseError joins the presenter messages of a failed list call.
func responseError(messages []string) error {
	if len(messages) == 0 {
		return errors.New("request failed")
	}
	return errors.New(strings.Join(messages, "; "))
}
