package tool

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownTool is returned by Dispatch when a skill does not own the named tool.
var ErrUnknownTool = errors.New("unknown tool")

// Skill is a named group of tools. Skills are built once at startup and
// never mutated afterwards.
type Skill interface {
	// Name returns the skill's unique identifier.
	Name() string

	// Tools returns the skill's tool declarations in a stable order.
	Tools() []Declaration

	// Dispatch invokes the named tool with decoded JSON arguments.
	// The returned string is fed back to the model verbatim.
	Dispatch(ctx context.Context, name string, args map[string]any) (string, error)
}

// Handler is a single callable tool.
type Handler interface {
	Declaration() Declaration
	Call(ctx context.Context, args map[string]any) (string, error)
}

// Set is a Skill assembled from handlers.
type Set struct {
	name     string
	handlers []Handler
	index    map[string]Handler
}

// NewSet creates a skill named name exposing the given handlers.
// A later handler with the same tool name replaces an earlier one.
func NewSet(name string, handlers ...Handler) *Set {
	s := &Set{
		name:  name,
		index: make(map[string]Handler, len(handlers)),
	}
	for _, h := range handlers {
		decl := h.Declaration()
		if _, dup := s.index[decl.Name]; dup {
			for i, existing := range s.handlers {
				if existing.Declaration().Name == decl.Name {
					s.handlers[i] = h
				}
			}
		} else {
			s.handlers = append(s.handlers, h)
		}
		s.index[decl.Name] = h
	}
	return s
}

func (s *Set) Name() string {
	return s.name
}

func (s *Set) Tools() []Declaration {
	decls := make([]Declaration, 0, len(s.handlers))
	for _, h := range s.handlers {
		decls = append(decls, h.Declaration())
	}
	return decls
}

func (s *Set) Dispatch(ctx context.Context, name string, args map[string]any) (string, error) {
	h, ok := s.index[name]
	if !ok {
		return "", fmt.Errorf("%s: %w %q", s.name, ErrUnknownTool, name)
	}
	return h.Call(ctx, args)
}
