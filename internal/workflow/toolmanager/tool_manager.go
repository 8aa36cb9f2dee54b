package toolmanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/Cyclone1070/anu/internal/provider"
	"github.com/Cyclone1070/anu/internal/tool"
	"github.com/Cyclone1070/anu/internal/workflow"
	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

// ErrorMarker prefixes every tool result that reports a failure, so the
// model can tell errors apart from ordinary output.
const ErrorMarker = "[TOOL_ERROR]"

// Func is a resolved tool callable.
type Func func(ctx context.Context, args map[string]any) (string, error)

type binding struct {
	skill  tool.Skill
	decl   tool.Declaration
	schema *gojsonschema.Schema
}

// ToolManager is the skill registry. It aggregates tool declarations from
// every loaded skill and resolves tool names at dispatch time. A tool name
// registered by a later skill shadows the earlier one.
type ToolManager struct {
	log    zerolog.Logger
	order  []string
	tools  map[string]*binding
	skills []string
}

// NewToolManager creates a registry holding skills, registered in order.
func NewToolManager(logger zerolog.Logger, skills ...tool.Skill) *ToolManager {
	tm := &ToolManager{
		log:   logger.With().Str("component", "toolmanager").Logger(),
		tools: make(map[string]*binding),
	}
	for _, s := range skills {
		tm.Register(s)
	}
	return tm
}

// Load builds each entry's skill and registers it. Constructor failures are
// logged and skipped. It returns the identifiers that loaded.
func (m *ToolManager) Load(entries []Entry) []string {
	var loaded []string
	for _, e := range entries {
		s, err := m.build(e)
		if err != nil {
			m.log.Warn().Err(err).Str("skill", e.ID).Msg("failed to load skill")
			continue
		}
		m.Register(s)
		loaded = append(loaded, e.ID)
	}
	return loaded
}

func (m *ToolManager) build(e Entry) (s tool.Skill, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("constructor panicked: %v", r)
		}
	}()
	if e.New == nil {
		return nil, fmt.Errorf("no constructor")
	}
	s, err = e.New()
	if err == nil && s == nil {
		err = fmt.Errorf("constructor returned no skill")
	}
	return s, err
}

// Register adds every tool of s.
func (m *ToolManager) Register(s tool.Skill) {
	m.skills = append(m.skills, s.Name())
	for _, decl := range s.Tools() {
		b := &binding{skill: s, decl: decl, schema: m.compile(decl)}
		if prev, ok := m.tools[decl.Name]; ok {
			m.log.Debug().
				Str("tool", decl.Name).
				Str("previous", prev.skill.Name()).
				Str("skill", s.Name()).
				Msg("tool shadowed by later skill")
		} else {
			m.order = append(m.order, decl.Name)
		}
		m.tools[decl.Name] = b
	}
}

func (m *ToolManager) compile(decl tool.Declaration) *gojsonschema.Schema {
	if decl.Parameters == nil {
		return nil
	}
	raw, err := json.Marshal(decl.Parameters)
	if err != nil {
		m.log.Warn().Err(err).Str("tool", decl.Name).Msg("cannot encode tool schema")
		return nil
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		m.log.Warn().Err(err).Str("tool", decl.Name).Msg("cannot compile tool schema")
		return nil
	}
	return schema
}

// Skills returns the names of registered skills in registration order.
func (m *ToolManager) Skills() []string {
	return append([]string(nil), m.skills...)
}

// Declarations returns every tool declaration in registration order.
// It is empty when no skill is registered.
func (m *ToolManager) Declarations() []tool.Declaration {
	decls := make([]tool.Declaration, 0, len(m.order))
	for _, name := range m.order {
		decls = append(decls, m.tools[name].decl)
	}
	return decls
}

// Resolve returns the callable for name. The callable checks its arguments
// against the tool's declared schema before dispatching to the owning skill.
func (m *ToolManager) Resolve(name string) (Func, bool) {
	b, ok := m.tools[name]
	if !ok {
		return nil, false
	}
	return func(ctx context.Context, args map[string]any) (string, error) {
		if err := b.validate(args); err != nil {
			return "", err
		}
		return b.skill.Dispatch(ctx, name, args)
	}, true
}

func (b *binding) validate(args map[string]any) error {
	if b.schema == nil {
		return nil
	}
	result, err := b.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return fmt.Errorf("invalid arguments: %s", strings.Join(problems, "; "))
}

// Execute runs a tool call and returns the result as a tool message.
// Every failure, including panics inside the tool, becomes a marked error
// result so the turn can continue.
func (m *ToolManager) Execute(ctx context.Context, tc provider.ToolCall, events chan<- workflow.Event) provider.Message {
	name := tc.Function.Name
	if events != nil {
		events <- workflow.ToolStartEvent{ToolName: name, Args: string(tc.Function.Arguments)}
	}

	content, failed := m.run(ctx, name, tc.Function.Arguments)
	if failed {
		content = formatToolError(name, content)
	}

	if events != nil {
		events <- workflow.ToolEndEvent{ToolName: name, Result: content, Failed: failed}
	}

	return provider.Message{
		Role:       provider.RoleTool,
		ToolCallID: tc.ID,
		ToolName:   name,
		Content:    content,
	}
}

// Invoke resolves and runs a single tool outside of a model turn.
func (m *ToolManager) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encode arguments: %w", err)
	}
	content, failed := m.run(ctx, name, raw)
	if failed {
		return "", errors.New(content)
	}
	return content, nil
}

func (m *ToolManager) run(ctx context.Context, name string, rawArgs json.RawMessage) (content string, failed bool) {
	fn, ok := m.Resolve(name)
	if !ok {
		return fmt.Sprintf("tool %q does not exist. Available tools: %s", name, strings.Join(m.order, ", ")), true
	}

	args, err := decodeArgs(rawArgs)
	if err != nil {
		return fmt.Sprintf("invalid arguments: %v", err), true
	}

	defer func() {
		if r := recover(); r != nil {
			m.log.Error().
				Str("tool", name).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("tool panicked")
			content = fmt.Sprintf("tool panicked: %v", r)
			failed = true
		}
	}()

	out, err := fn(ctx, args)
	if err != nil {
		m.log.Warn().Err(err).Str("tool", name).Msg("tool failed")
		return err.Error(), true
	}
	if out == "" {
		out = "[OK]"
	}
	return out, false
}

// decodeArgs treats null, empty and blank arguments as no arguments.
func decodeArgs(raw json.RawMessage) (map[string]any, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == `""` {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(trimmed), &args); err != nil {
		// Some models double-encode arguments as a JSON string.
		var inner string
		if json.Unmarshal([]byte(trimmed), &inner) == nil {
			return decodeArgs(json.RawMessage(inner))
		}
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func formatToolError(name, detail string) string {
	return fmt.Sprintf("%s Tool %q failed: %s", ErrorMarker, name, detail)
}
