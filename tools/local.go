package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/seralind/toolloop/chat"
)

// Definition declares one locally implemented tool.
type Definition struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Function    func(ctx context.Context, input json.RawMessage) (string, error)
}

// LocalRegistry serves tools implemented in-process. List reports tools in
// registration order.
type LocalRegistry struct {
	mu    sync.RWMutex
	defs  []Definition
	index map[string]int
}

func NewLocalRegistry(defs ...Definition) *LocalRegistry {
	r := &LocalRegistry{index: make(map[string]int, len(defs))}
	for _, def := range defs {
		r.Register(def)
	}
	return r
}

// Register adds def, replacing any earlier definition with the same name.
func (r *LocalRegistry) Register(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.index[def.Name]; ok {
		r.defs[i] = def
		return
	}
	r.index[def.Name] = len(r.defs)
	r.defs = append(r.defs, def)
}

func (r *LocalRegistry) List(ctx context.Context) ([]chat.Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]chat.Descriptor, len(r.defs))
	for i, def := range r.defs {
		out[i] = chat.Descriptor{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}
	}
	return out, nil
}

func (r *LocalRegistry) Resolve(ctx context.Context, name string) (Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return localHandle{def: r.defs[i]}, nil
}

type localHandle struct {
	def Definition
}

func (h localHandle) Name() string { return h.def.Name }

func (h localHandle) Call(ctx context.Context, args json.RawMessage) (Output, error) {
	content, err := h.def.Function(ctx, args)
	if err != nil {
		return Output{}, err
	}
	return Output{Content: content}, nil
}

// Builtin returns the registry of tools that ship with the binary, for
// running without a remote tool server.
func Builtin() *LocalRegistry {
	return NewLocalRegistry(GetTimeDefinition)
}
