package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Validator is implemented by request types that check their own fields.
type Validator interface {
	Validate() error
}

// HandlerFunc executes a tool with a typed request.
type HandlerFunc[Req, Resp any] func(context.Context, Req) (Resp, error)

// TypedHandler decodes model arguments into Req, runs fn, and renders Resp.
// String responses are returned as-is; anything else is marshalled to JSON.
type TypedHandler[Req, Resp any] struct {
	decl Declaration
	fn   HandlerFunc[Req, Resp]
}

// Typed wraps fn as a Handler advertised under decl.
//
// Example usage:
//
//	tool.Typed(tool.Declaration{
//	    Name:        "get_time",
//	    Description: "Returns the current local time",
//	    Parameters:  tool.Object(nil),
//	}, func(ctx context.Context, _ struct{}) (string, error) { ... })
func Typed[Req, Resp any](decl Declaration, fn HandlerFunc[Req, Resp]) *TypedHandler[Req, Resp] {
	return &TypedHandler[Req, Resp]{decl: decl, fn: fn}
}

func (h *TypedHandler[Req, Resp]) Declaration() Declaration {
	return h.decl
}

// Call decodes args with mapstructure using the request's json tags,
// validates the request if it implements Validator, and executes the tool.
func (h *TypedHandler[Req, Resp]) Call(ctx context.Context, args map[string]any) (string, error) {
	var req Req

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &req,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return "", fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	if v, ok := any(&req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return "", fmt.Errorf("%s validation failed: %w", h.decl.Name, err)
		}
	}

	resp, err := h.fn(ctx, req)
	if err != nil {
		return "", err
	}

	if s, ok := any(resp).(string); ok {
		return s, nil
	}

	bytes, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal response: %w", err)
	}
	return string(bytes), nil
}
