package agents

import (
	"context"
	"errors"

	"github.com/bububa/multi-agents/components"
	"github.com/bububa/multi-agents/schema"
	"github.com/bububa/multi-agents/tools"
)

// ToolAgent chains a structured extraction agent, a tool run, and an answer
// phrasing agent. The start agent turns the user input into the tool input
// schema T, the tool result feeds the end agent as system context.
type ToolAgent[I schema.Schema, T schema.Schema, O schema.Schema] struct {
	start *Agent[I, T]
	end   *Agent[I, O]
	tool  tools.OrchestrationTool
}

// NewToolAgent returns a new ToolAgent instance
func NewToolAgent[I schema.Schema, T schema.Schema, O schema.Schema](options ...Option) *ToolAgent[I, T, O] {
	return &ToolAgent[I, T, O]{
		start: NewAgent[I, T](options...),
		end:   NewAgent[I, O](options...),
	}
}

func (t *ToolAgent[I, T, O]) SetTool(tool tools.OrchestrationTool) *ToolAgent[I, T, O] {
	t.tool = tool
	return t
}

// Start exposes the extraction stage for prompt customization
func (t *ToolAgent[I, T, O]) Start() *Agent[I, T] {
	return t.start
}

// End exposes the phrasing stage for prompt customization
func (t *ToolAgent[I, T, O]) End() *Agent[I, O] {
	return t.end
}

func (t *ToolAgent[I, T, O]) Name() string {
	return t.start.Name()
}

func (t *ToolAgent[I, T, O]) ResetMemory() {
	t.start.ResetMemory()
	t.end.ResetMemory()
}

// Run runs the tool agent with the given user input synchronously.
func (t *ToolAgent[I, T, O]) Run(ctx context.Context, userInput *I, output *O, apiResp *components.ApiResponse) error {
	toolInput := new(T)
	if err := t.start.Run(ctx, userInput, toolInput, apiResp); err != nil {
		return err
	}
	if t.tool != nil {
		toolResult, err := t.tool.RunOrchestration(ctx, toolInput)
		if err != nil {
			return err
		}
		outO, ok := toolResult.(schema.Schema)
		if !ok {
			return errors.New("invalid tool output schema")
		}
		t.end.NewMessage(components.SystemRole, outO)
	}
	return t.end.Run(ctx, userInput, output, apiResp)
}
