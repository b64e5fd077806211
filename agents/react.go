package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/bububa/multi-agents/components"
)

// ReActTool is a tool exposed to the plan-act-observe loop. Inputs and
// outputs are plain text, matching what the model emits and reads back.
type ReActTool struct {
	Name        string
	Description string
	Run         func(ctx context.Context, input string) (string, error)
}

// DefaultReActPrompt is the strict plan-act-observe prompt. Placeholders:
// {tools}, {tool_names}, {input}, {agent_scratchpad}.
const DefaultReActPrompt = `You are a precise assistant that follows the ReAct pattern.

You have tools:
{tools}

Tool names: {tool_names}

Rules:
- If you need information, take exactly ONE Action and wait for its Observation.
- DO NOT write "Final Answer" in the same turn where you take an Action.
- Only when you are completely done (no more Actions needed) output:
  Final Answer: <the concise answer only, no extra narration>

Format strictly:
Thought: <your reasoning>
Action: <one of {tool_names}>
Action Input: <input>
Observation: <tool result>

(repeat Thought/Action/Action Input/Observation as needed)
THEN finish with:
Final Answer: <answer>

IMPORTANT:
- Never include both an Action and Final Answer in the same step.
- Keep the Final Answer to a single line if possible.

Question: {input}

{agent_scratchpad}`

const defaultMaxIterations = 4

// ReActAgent drives an explicit Thought/Action/Action Input/Observation loop
// over a Completer. Each iteration sends the full prompt plus the scratchpad
// accumulated so far, parses one step of model output, and either runs the
// requested tool or returns the final answer.
type ReActAgent struct {
	name          string
	completer     Completer
	tools         []ReActTool
	prompt        string
	maxIterations int
}

var _ IAgent = (*ReActAgent)(nil)

// NewReActAgent returns a new ReActAgent instance
func NewReActAgent(completer Completer, options ...ReActOption) *ReActAgent {
	ret := &ReActAgent{
		completer: completer,
	}
	for _, opt := range options {
		opt(ret)
	}
	if ret.prompt == "" {
		ret.prompt = DefaultReActPrompt
	}
	if ret.maxIterations <= 0 {
		ret.maxIterations = defaultMaxIterations
	}
	return ret
}

type ReActOption func(*ReActAgent)

func WithReActName(name string) ReActOption {
	return func(a *ReActAgent) {
		a.name = name
	}
}

// WithReActPrompt overrides the loop prompt. The template must keep the
// {tools}, {tool_names}, {input} and {agent_scratchpad} placeholders.
func WithReActPrompt(prompt string) ReActOption {
	return func(a *ReActAgent) {
		a.prompt = prompt
	}
}

func WithReActTools(tools ...ReActTool) ReActOption {
	return func(a *ReActAgent) {
		a.tools = append(a.tools, tools...)
	}
}

func WithMaxIterations(n int) ReActOption {
	return func(a *ReActAgent) {
		a.maxIterations = n
	}
}

func (a *ReActAgent) Name() string {
	return a.name
}

var (
	actionRe      = regexp.MustCompile(`(?m)^\s*Action:\s*(.+)\s*$`)
	actionInputRe = regexp.MustCompile(`(?m)^\s*Action Input:\s*(.+)\s*$`)
	finalRe       = regexp.MustCompile(`(?s)Final Answer:\s*(.+)`)
)

// Run executes the loop until the model emits a final answer, a tool or the
// model fails, or the iteration budget runs out.
func (a *ReActAgent) Run(ctx context.Context, query string, apiResp *components.ApiResponse) (string, error) {
	var scratchpad strings.Builder
	for i := 0; i < a.maxIterations; i++ {
		stepResp := new(components.ApiResponse)
		text, err := a.completer.Complete(ctx, a.renderPrompt(query, scratchpad.String()), stepResp)
		if err != nil {
			return "", err
		}
		mergeApiResponse(apiResp, stepResp)
		step := truncateAtObservation(text)
		action := actionRe.FindStringSubmatch(step)
		final := finalRe.FindStringSubmatch(step)
		switch {
		case action != nil && final != nil:
			// Model broke the one-thing-per-step rule. Salvage the final
			// answer the way the original executor does on parse errors.
			return firstLine(final[1]), nil
		case final != nil:
			return strings.TrimSpace(final[1]), nil
		case action != nil:
			observation, err := a.observe(ctx, strings.TrimSpace(action[1]), parseActionInput(step))
			if err != nil {
				return "", err
			}
			scratchpad.WriteString(strings.TrimSpace(step))
			scratchpad.WriteString("\nObservation: ")
			scratchpad.WriteString(observation)
			scratchpad.WriteString("\n")
		default:
			if salvaged := finalRe.FindStringSubmatch(text); salvaged != nil {
				return firstLine(salvaged[1]), nil
			}
			return "", fmt.Errorf("model output contains neither an Action nor a Final Answer: %q", firstLine(text))
		}
	}
	return "", fmt.Errorf("no final answer after %d iterations", a.maxIterations)
}

// observe dispatches one tool call. An unknown tool name feeds back into the
// scratchpad as an observation so the model can correct itself.
func (a *ReActAgent) observe(ctx context.Context, name, input string) (string, error) {
	for _, tool := range a.tools {
		if tool.Name == name {
			return tool.Run(ctx, input)
		}
	}
	return fmt.Sprintf("unknown tool %q, valid tools: %s", name, strings.Join(a.toolNames(), ", ")), nil
}

func (a *ReActAgent) renderPrompt(query, scratchpad string) string {
	descriptions := make([]string, 0, len(a.tools))
	for _, tool := range a.tools {
		descriptions = append(descriptions, fmt.Sprintf("%s: %s", tool.Name, tool.Description))
	}
	return strings.NewReplacer(
		"{tools}", strings.Join(descriptions, "\n"),
		"{tool_names}", strings.Join(a.toolNames(), ", "),
		"{input}", query,
		"{agent_scratchpad}", scratchpad,
	).Replace(a.prompt)
}

func (a *ReActAgent) toolNames() []string {
	names := make([]string, 0, len(a.tools))
	for _, tool := range a.tools {
		names = append(names, tool.Name)
	}
	return names
}

// truncateAtObservation drops everything from the first model-written
// "Observation:" onward. Observations come from tools, not the model.
func truncateAtObservation(text string) string {
	if idx := strings.Index(text, "Observation:"); idx >= 0 {
		return text[:idx]
	}
	return text
}

func parseActionInput(step string) string {
	if m := actionInputRe.FindStringSubmatch(step); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func mergeApiResponse(dist, src *components.ApiResponse) {
	if dist == nil || src == nil {
		return
	}
	dist.ID = src.ID
	dist.Role = src.Role
	if src.Model != "" {
		dist.Model = src.Model
	}
	if src.Usage != nil {
		if dist.Usage == nil {
			dist.Usage = new(components.ApiUsage)
		}
		dist.Usage.Merge(src.Usage)
	}
}
