package toolmanager

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Cyclone1070/anu/internal/provider"
	"github.com/Cyclone1070/anu/internal/tool"
	"github.com/Cyclone1070/anu/internal/workflow"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Text string `json:"text"`
}

func echoSkill(name, description string) tool.Skill {
	return tool.NewSet(name,
		tool.Typed(tool.Declaration{
			Name:        "echo",
			Description: description,
			Parameters:  tool.Object(map[string]*tool.Schema{"text": tool.String("text to echo")}, "text"),
		}, func(ctx context.Context, req echoRequest) (string, error) {
			return name + ":" + req.Text, nil
		}),
	)
}

func callOf(name, args string) provider.ToolCall {
	return provider.ToolCall{ID: "call-1", Function: provider.FunctionCall{Name: name, Arguments: json.RawMessage(args)}}
}

func TestLoad_ConstructorFailureIsNotFatal(t *testing.T) {
	tm := NewToolManager(zerolog.Nop())

	loaded := tm.Load([]Entry{
		{ID: "broken", New: func() (tool.Skill, error) { return nil, errors.New("missing credentials") }},
		{ID: "panicky", New: func() (tool.Skill, error) { panic("boom") }},
		{ID: "echo", New: func() (tool.Skill, error) { return echoSkill("echo", "Echo"), nil }},
	})

	assert.Equal(t, []string{"echo"}, loaded)
	require.Len(t, tm.Declarations(), 1)
	assert.Equal(t, "echo", tm.Declarations()[0].Name)
}

func TestDeclarations_EmptyWithoutSkills(t *testing.T) {
	tm := NewToolManager(zerolog.Nop())

	assert.Empty(t, tm.Declarations())
}

func TestRegister_LaterSkillShadowsTool(t *testing.T) {
	tm := NewToolManager(zerolog.Nop(), echoSkill("first", "v1"), echoSkill("second", "v2"))

	decls := tm.Declarations()
	require.Len(t, decls, 1)
	assert.Equal(t, "v2", decls[0].Description)

	fn, ok := tm.Resolve("echo")
	require.True(t, ok)
	out, err := fn(context.Background(), map[string]any{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "second:hi", out)
	assert.Equal(t, []string{"first", "second"}, tm.Skills())
}

func TestResolve_NotFound(t *testing.T) {
	tm := NewToolManager(zerolog.Nop())

	_, ok := tm.Resolve("nope")

	assert.False(t, ok)
}

func TestExecute_Success(t *testing.T) {
	tm := NewToolManager(zerolog.Nop(), echoSkill("s", "Echo"))
	events := make(chan workflow.Event, 4)

	msg := tm.Execute(context.Background(), callOf("echo", `{"text":"hello"}`), events)

	assert.Equal(t, provider.RoleTool, msg.Role)
	assert.Equal(t, "call-1", msg.ToolCallID)
	assert.Equal(t, "echo", msg.ToolName)
	assert.Equal(t, "s:hello", msg.Content)
	assert.Equal(t, workflow.ToolStartEvent{ToolName: "echo", Args: `{"text":"hello"}`}, <-events)
	assert.Equal(t, workflow.ToolEndEvent{ToolName: "echo", Result: "s:hello"}, <-events)
}

func TestExecute_UnknownToolIsMarked(t *testing.T) {
	tm := NewToolManager(zerolog.Nop(), echoSkill("s", "Echo"))

	msg := tm.Execute(context.Background(), callOf("missing", `{}`), nil)

	assert.Contains(t, msg.Content, ErrorMarker)
	assert.Contains(t, msg.Content, `"missing"`)
	assert.Contains(t, msg.Content, "echo")
}

func TestExecute_SchemaViolationIsMarked(t *testing.T) {
	tm := NewToolManager(zerolog.Nop(), echoSkill("s", "Echo"))

	msg := tm.Execute(context.Background(), callOf("echo", `{}`), nil)

	assert.Contains(t, msg.Content, ErrorMarker)
	assert.Contains(t, msg.Content, "text")
}

func TestExecute_MalformedJSONIsMarked(t *testing.T) {
	tm := NewToolManager(zerolog.Nop(), echoSkill("s", "Echo"))

	msg := tm.Execute(context.Background(), callOf("echo", `{"text":`), nil)

	assert.Contains(t, msg.Content, ErrorMarker)
	assert.Contains(t, msg.Content, "invalid arguments")
}

func TestExecute_NullArgumentsMeanNoArguments(t *testing.T) {
	called := false
	s := tool.NewSet("clock", tool.Typed(tool.Declaration{Name: "tick", Parameters: tool.Object(nil)},
		func(ctx context.Context, _ struct{}) (string, error) {
			called = true
			return "", nil
		}))
	tm := NewToolManager(zerolog.Nop(), s)

	for _, args := range []string{"", "null", `""`} {
		msg := tm.Execute(context.Background(), callOf("tick", args), nil)
		assert.Equal(t, "[OK]", msg.Content)
	}
	assert.True(t, called)
}

func TestExecute_PanicIsCaught(t *testing.T) {
	s := tool.NewSet("bad", tool.Typed(tool.Declaration{Name: "explode"},
		func(ctx context.Context, _ struct{}) (string, error) {
			panic("kaboom")
		}))
	tm := NewToolManager(zerolog.Nop(), s)

	msg := tm.Execute(context.Background(), callOf("explode", `{}`), nil)

	assert.Contains(t, msg.Content, ErrorMarker)
	assert.Contains(t, msg.Content, "kaboom")
}

func TestExecute_ToolErrorIsMarked(t *testing.T) {
	s := tool.NewSet("bad", tool.Typed(tool.Declaration{Name: "fail"},
		func(ctx context.Context, _ struct{}) (string, error) {
			return "", errors.New("disk on fire")
		}))
	tm := NewToolManager(zerolog.Nop(), s)

	msg := tm.Execute(context.Background(), callOf("fail", `{}`), nil)

	assert.Equal(t, `[TOOL_ERROR] Tool "fail" failed: disk on fire`, msg.Content)
}

func TestInvoke(t *testing.T) {
	tm := NewToolManager(zerolog.Nop(), echoSkill("s", "Echo"))

	out, err := tm.Invoke(context.Background(), "echo", map[string]any{"text": "x"})
	require.NoError(t, err)
	assert.Equal(t, "s:x", out)

	_, err = tm.Invoke(context.Background(), "nope", nil)
	assert.Error(t, err)
}

func TestDecodeArgs_DoubleEncoded(t *testing.T) {
	args, err := decodeArgs(json.RawMessage(`"{\"text\":\"hi\"}"`))

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"text": "hi"}, args)
}

func TestResolve_ValidatesArguments(t *testing.T) {
	tm := NewToolManager(zerolog.Nop(), echoSkill("s", "Echo"))

	fn, ok := tm.Resolve("echo")
	require.True(t, ok)

	_, err := fn(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid arguments")
}

func TestExecute_DispatchesThroughResolvedTool(t *testing.T) {
	dispatched := 0
	counting := tool.NewSet("counting",
		tool.Typed(tool.Declaration{
			Name:       "count",
			Parameters: tool.Object(nil),
		}, func(context.Context, struct{}) (string, error) {
			dispatched++
			return "counted", nil
		}),
	)
	tm := NewToolManager(zerolog.Nop(), counting)

	fn, ok := tm.Resolve("count")
	require.True(t, ok)
	direct, err := fn(context.Background(), map[string]any{})
	require.NoError(t, err)

	msg := tm.Execute(context.Background(), callOf("count", `{}`), nil)
	invoked, err := tm.Invoke(context.Background(), "count", nil)
	require.NoError(t, err)

	assert.Equal(t, "counted", direct)
	assert.Equal(t, "counted", msg.Content)
	assert.Equal(t, "counted", invoked)
	assert.Equal(t, 3, dispatched)
}
