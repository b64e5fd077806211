package tools

import (
	"context"
	"errors"

	"github.com/bububa/multi-agents/schema"
)

// ITool is the untyped surface every tool exposes
type ITool interface {
	SetTitle(string)
	Title() string
	SetDescription(string)
	Description() string
	SetStartHook(fn func(context.Context, ITool, any))
	SetEndHook(fn func(context.Context, ITool, any, any))
	SetErrorHook(fn func(context.Context, ITool, any, error))
}

// Tool is a typed tool with a schema bound input and output
type Tool[I schema.Schema, O schema.Schema] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// OrchestrationTool runs with untyped parameters so agents can drive
// heterogeneous tools through one call site
type OrchestrationTool interface {
	ITool
	RunOrchestration(context.Context, any) (any, error)
}

type orchestrated[I schema.Schema, O schema.Schema] struct {
	Tool[I, O]
}

// Orchestrate adapts a typed tool into an OrchestrationTool.
// Hooks registered on the tool fire around each orchestrated run.
func Orchestrate[I schema.Schema, O schema.Schema](t Tool[I, O]) OrchestrationTool {
	return &orchestrated[I, O]{Tool: t}
}

func (t *orchestrated[I, O]) RunOrchestration(ctx context.Context, input any) (any, error) {
	in, ok := input.(*I)
	if !ok {
		return nil, errors.New("invalid tool input schema")
	}
	if fn := hooks(t.Tool).startHook; fn != nil {
		fn(ctx, t.Tool, in)
	}
	out, err := t.Tool.Run(ctx, in)
	if err != nil {
		if fn := hooks(t.Tool).errorHook; fn != nil {
			fn(ctx, t.Tool, in, err)
		}
		return nil, err
	}
	if fn := hooks(t.Tool).endHook; fn != nil {
		fn(ctx, t.Tool, in, out)
	}
	return out, nil
}

type hookCarrier interface {
	Hooks() Hooks
}

func hooks(t ITool) Hooks {
	if c, ok := t.(hookCarrier); ok {
		return c.Hooks()
	}
	return Hooks{}
}
