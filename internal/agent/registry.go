package agent

import (
	"errors"
	"fmt"

	"github.com/teemow/assistant/internal/tools/common"
)

// ErrUnknownTool is returned by Lookup for names that are not registered.
var ErrUnknownTool = errors.New("unknown tool")

// Registry is an ordered set of tools addressed by name.
type Registry struct {
	tools []common.Tool
	index map[string]int
}

// NewRegistry creates a registry holding tools in the given order.
func NewRegistry(tools ...common.Tool) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(tools))}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a tool. Names must be unique and non-empty.
func (r *Registry) Register(t common.Tool) error {
	if t.Name == "" {
		return errors.New("tool name must not be empty")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %s has no handler", t.Name)
	}
	if _, exists := r.index[t.Name]; exists {
		return fmt.Errorf("tool %s is already registered", t.Name)
	}
	r.index[t.Name] = len(r.tools)
	r.tools = append(r.tools, t)
	return nil
}

// Lookup returns the named tool or an error wrapping ErrUnknownTool.
func (r *Registry) Lookup(name string) (common.Tool, error) {
	i, ok := r.index[name]
	if !ok {
		return common.Tool{}, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return r.tools[i], nil
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.tools))
	for i, t := range r.tools {
		names[i] = t.Name
	}
	return names
}

// Tools returns a copy of the registered tools in order.
func (r *Registry) Tools() []common.Tool {
	return append([]common.Tool(nil), r.tools...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}
