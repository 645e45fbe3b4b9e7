package ai

import (
	"context"
	"fmt"
	"strings"
)

// OperationHandler executes one classified operation for a merchant.
// It receives the extracted parameters and returns the operation's payload.
type OperationHandler func(ctx context.Context, merchantID string, p QueryParameters) (any, error)

// OperationDefinition describes a single dispatchable operation.
// Description is shown to the model verbatim, so it should name the
// parameters the operation reads.
type OperationDefinition struct {
	Name        string
	Description string
	Handler     OperationHandler
}

// OperationRegistry holds the operations the chat layer can dispatch to.
// The registry is built once by the application service; the agent only ever
// sees its PromptCatalog.
type OperationRegistry struct {
	ops []OperationDefinition
}

// NewOperationRegistry creates an empty OperationRegistry.
func NewOperationRegistry() *OperationRegistry {
	return &OperationRegistry{}
}

// Register adds an operation to the registry.
func (r *OperationRegistry) Register(op OperationDefinition) {
	r.ops = append(r.ops, op)
}

// Get returns the OperationDefinition for a given name, and whether it was found.
func (r *OperationRegistry) Get(name string) (OperationDefinition, bool) {
	for _, op := range r.ops {
		if op.Name == name {
			return op, true
		}
	}
	return OperationDefinition{}, false
}

// All returns all registered operations.
func (r *OperationRegistry) All() []OperationDefinition {
	return r.ops
}

// PromptCatalog renders the registry as the operation list embedded in the
// classification prompt, one "name: description" line per operation.
func (r *OperationRegistry) PromptCatalog() string {
	var b strings.Builder
	for _, op := range r.ops {
		fmt.Fprintf(&b, "%s: %s\n", op.Name, op.Description)
	}
	return b.String()
}
