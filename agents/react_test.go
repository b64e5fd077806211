package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bububa/multi-agents/components"
)

// scriptedCompleter replays canned completions and records prompts.
type scriptedCompleter struct {
	replies []string
	err     error
	prompts []string
}

func (c *scriptedCompleter) Complete(ctx context.Context, prompt string, apiResp *components.ApiResponse) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	if len(c.replies) == 0 {
		return "", errors.New("script exhausted")
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	if apiResp != nil {
		apiResp.Usage = &components.ApiUsage{InputTokens: 10, OutputTokens: 5}
	}
	return reply, nil
}

func echoTool(calls *[]string) ReActTool {
	return ReActTool{
		Name:        "EchoTool",
		Description: "echoes its input",
		Run: func(ctx context.Context, input string) (string, error) {
			*calls = append(*calls, input)
			return "echo: " + input, nil
		},
	}
}

func TestReActToolThenFinal(t *testing.T) {
	var calls []string
	completer := &scriptedCompleter{replies: []string{
		"Thought: I should echo.\nAction: EchoTool\nAction Input: USD EUR\nObservation: hallucinated",
		"Thought: done.\nFinal Answer: 1 USD = 0.93 EUR",
	}}
	agent := NewReActAgent(completer, WithReActTools(echoTool(&calls)))
	apiResp := new(components.ApiResponse)
	out, err := agent.Run(context.Background(), "rate?", apiResp)
	if err != nil {
		t.Fatal(err)
	}
	if out != "1 USD = 0.93 EUR" {
		t.Errorf("expect final answer, but got %q", out)
	}
	if len(calls) != 1 || calls[0] != "USD EUR" {
		t.Errorf("expect one tool call with USD EUR, got %v", calls)
	}
	// the hallucinated observation must not reach the scratchpad
	if strings.Contains(completer.prompts[1], "hallucinated") {
		t.Error("model written observation leaked into the scratchpad")
	}
	if !strings.Contains(completer.prompts[1], "Observation: echo: USD EUR") {
		t.Error("tool observation missing from the scratchpad")
	}
	if apiResp.Usage == nil || apiResp.Usage.InputTokens != 20 {
		t.Errorf("expect usage accumulated over 2 calls, got %+v", apiResp.Usage)
	}
}

func TestReActMultiLineFinalAnswer(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{
		"Final Answer:\n$181.85\n- Nvidia Hits Record High – reuters.com",
	}}
	agent := NewReActAgent(completer)
	out, err := agent.Run(context.Background(), "stock?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "$181.85\n") {
		t.Errorf("expect multi line final answer preserved, got %q", out)
	}
}

func TestReActSalvageMixedStep(t *testing.T) {
	var calls []string
	completer := &scriptedCompleter{replies: []string{
		"Thought: rushing.\nAction: EchoTool\nAction Input: x\nFinal Answer: 42\nextra",
	}}
	agent := NewReActAgent(completer, WithReActTools(echoTool(&calls)))
	out, err := agent.Run(context.Background(), "q", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != "42" {
		t.Errorf("expect salvaged single line answer, got %q", out)
	}
	if len(calls) != 0 {
		t.Error("no tool should run when the step is salvaged")
	}
}

func TestReActUnknownTool(t *testing.T) {
	var calls []string
	completer := &scriptedCompleter{replies: []string{
		"Thought: hm.\nAction: NoSuchTool\nAction Input: x",
		"Final Answer: ok",
	}}
	agent := NewReActAgent(completer, WithReActTools(echoTool(&calls)))
	out, err := agent.Run(context.Background(), "q", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != "ok" {
		t.Errorf("expect recovery after unknown tool, got %q", out)
	}
	if !strings.Contains(completer.prompts[1], `unknown tool "NoSuchTool"`) {
		t.Error("expect unknown tool observation in the scratchpad")
	}
}

func TestReActCompleterFailure(t *testing.T) {
	wantErr := errors.New("quota exceeded")
	completer := &scriptedCompleter{err: wantErr}
	agent := NewReActAgent(completer)
	if _, err := agent.Run(context.Background(), "q", nil); !errors.Is(err, wantErr) {
		t.Errorf("expect completer error propagated, got %v", err)
	}
}

func TestReActToolFailure(t *testing.T) {
	wantErr := errors.New("provider down")
	completer := &scriptedCompleter{replies: []string{
		"Thought: go.\nAction: FailTool\nAction Input: x",
	}}
	agent := NewReActAgent(completer, WithReActTools(ReActTool{
		Name:        "FailTool",
		Description: "always fails",
		Run: func(ctx context.Context, input string) (string, error) {
			return "", wantErr
		},
	}))
	if _, err := agent.Run(context.Background(), "q", nil); !errors.Is(err, wantErr) {
		t.Errorf("expect tool error propagated, got %v", err)
	}
}

func TestReActMaxIterations(t *testing.T) {
	var calls []string
	completer := &scriptedCompleter{replies: []string{
		"Action: EchoTool\nAction Input: 1",
		"Action: EchoTool\nAction Input: 2",
	}}
	agent := NewReActAgent(completer, WithReActTools(echoTool(&calls)), WithMaxIterations(2))
	if _, err := agent.Run(context.Background(), "q", nil); err == nil {
		t.Error("expect error when the iteration budget runs out")
	}
	if len(calls) != 2 {
		t.Errorf("expect 2 tool calls, got %d", len(calls))
	}
}

func TestReActIdempotent(t *testing.T) {
	run := func() string {
		var calls []string
		completer := &scriptedCompleter{replies: []string{
			"Action: EchoTool\nAction Input: USD EUR",
			"Final Answer: 1 USD = 0.93 EUR",
		}}
		agent := NewReActAgent(completer, WithReActTools(echoTool(&calls)))
		out, err := agent.Run(context.Background(), "rate?", nil)
		if err != nil {
			t.Fatal(err)
		}
		return out
	}
	if first, second := run(), run(); first != second {
		t.Errorf("expect deterministic output, got %q vs %q", first, second)
	}
}
