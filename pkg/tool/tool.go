// Package tool holds the fixed set of capabilities an agent run may invoke.
// A registry is constructed once per session and is read-only afterwards;
// new capabilities are added by constructing new descriptors, never by
// registering mid-run.
package tool

import (
	"context"
	"fmt"
)

// ExecFunc executes a tool against validated arguments and returns a
// model-readable result. Executors may block on I/O and must honor ctx.
type ExecFunc func(ctx context.Context, args map[string]any) (string, error)

// Descriptor is the static metadata plus executor for one capability.
type Descriptor struct {
	Name        string
	Description string
	Schema      *Schema
	Execute     ExecFunc
}

// Registry maps tool names to descriptors for one session.
type Registry struct {
	tools map[string]Descriptor
	order []string
}

// NewRegistry builds a registry from descriptors. Names must be non-empty
// and unique; descriptor order is preserved for Describe.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{tools: make(map[string]Descriptor, len(descs))}
	for _, d := range descs {
		if d.Name == "" {
			return nil, fmt.Errorf("tool name is empty")
		}
		if d.Execute == nil {
			return nil, fmt.Errorf("tool %s has no executor", d.Name)
		}
		if _, exists := r.tools[d.Name]; exists {
			return nil, fmt.Errorf("tool %s registered twice", d.Name)
		}
		r.tools[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	return r, nil
}

// Describe returns the descriptors in registration order, for presentation
// to the model adapter.
func (r *Registry) Describe() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Invoke validates args against the tool's schema and delegates to its
// executor. Structural validation is the registry's responsibility; the
// executor only ever sees arguments that satisfy the declared schema.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	d, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := d.Schema.validate(args); err != nil {
		return "", &InvalidArgumentsError{Tool: name, Reason: err}
	}
	result, err := d.Execute(ctx, args)
	if err != nil {
		return "", &ExecutionError{Tool: name, Err: err}
	}
	return result, nil
}
