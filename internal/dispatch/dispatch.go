// Package dispatch selects and runs the launcher's agents behind one facade.
// A Handle is built per request from the process configuration; construction
// fails fast on missing credentials, before any network traffic.
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bububa/multi-agents/agents"
	"github.com/bububa/multi-agents/components"
	"github.com/bububa/multi-agents/components/systemprompt/cot"
	"github.com/bububa/multi-agents/components/systemprompt/simple"
	"github.com/bububa/multi-agents/internal/config"
	"github.com/bububa/multi-agents/schema"
	"github.com/bububa/multi-agents/tools"
	"github.com/bububa/multi-agents/tools/calculator"
	"github.com/bububa/multi-agents/tools/exchange"
	"github.com/bububa/multi-agents/tools/headlines"
	"github.com/bububa/multi-agents/tools/stock"
)

// Name identifies one of the launchable agents
type Name string

const (
	// ToolExchange currency rate agent, reasoning loop plus rate tool
	ToolExchange Name = "tool_exchange"
	// ReactCalculator structured extraction agent around the calculator tool
	ReactCalculator Name = "react_calculator"
	// GeminiReact financial agent, stock quote plus news headlines
	GeminiReact Name = "gemini_react"
)

// Names lists the launchable agents in menu order.
func Names() []Name {
	return []Name{ReactCalculator, GeminiReact, ToolExchange}
}

// ParseName validates a user supplied agent name.
func ParseName(s string) (Name, error) {
	switch name := Name(s); name {
	case ToolExchange, ReactCalculator, GeminiReact:
		return name, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAgent, s)
	}
}

// Params carries the financial agent tuning knobs. The zero value means
// defaults; out of range values are clamped, not rejected.
type Params struct {
	// Ticker stock symbol for the financial agent
	Ticker string
	// MaxHeadlines bullet budget, clamped to 1..5
	MaxHeadlines int
	// FreshDays headline recency window, clamped to 1..7
	FreshDays int
	// JSON also render the result block as JSON
	JSON bool
}

func (p Params) normalized() Params {
	if p.Ticker == "" {
		p.Ticker = "NVDA"
	}
	if p.MaxHeadlines == 0 {
		p.MaxHeadlines = 4
	}
	p.MaxHeadlines = clamp(p.MaxHeadlines, 1, 5)
	if p.FreshDays == 0 {
		p.FreshDays = 1
	}
	p.FreshDays = clamp(p.FreshDays, 1, 7)
	return p
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Handle is a ready to run agent. Run returns the complete output or an
// error, never partial output.
type Handle interface {
	Name() Name
	Run(ctx context.Context, query string) (string, error)
}

// Registry builds agent handles from the process configuration.
type Registry struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRegistry returns a new Registry instance
func NewRegistry(cfg *config.Config, logger *zap.Logger) *Registry {
	return &Registry{
		cfg:    cfg,
		logger: logger,
	}
}

// Select builds the handle for an agent name. Unknown names fail with
// ErrUnknownAgent, absent credentials with config.MissingKeyError.
func (r *Registry) Select(ctx context.Context, name Name, params Params) (Handle, error) {
	switch name {
	case ToolExchange:
		return r.exchangeHandle(ctx)
	case ReactCalculator:
		return r.calculatorHandle()
	case GeminiReact:
		return r.financialHandle(ctx, params)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgent, string(name))
	}
}

// Run selects and runs an agent in one step.
func (r *Registry) Run(ctx context.Context, name Name, query string, params Params) (string, error) {
	handle, err := r.Select(ctx, name, params)
	if err != nil {
		return "", err
	}
	return handle.Run(ctx, query)
}

const defaultExchangeQuery = "What is the exchange rate between USD and EUR?"

func (r *Registry) exchangeHandle(ctx context.Context) (Handle, error) {
	client, err := r.cfg.GeminiClient(ctx)
	if err != nil {
		return nil, err
	}
	completer := agents.NewGeminiCompleter(client, r.cfg.GeminiModel, r.cfg.Temperature)
	var opts []exchange.Option
	if r.cfg.ExchangeBaseURL != "" {
		opts = append(opts, exchange.WithBaseURL(r.cfg.ExchangeBaseURL))
	}
	rateTool := exchange.New(opts...)
	agent := agents.NewReActAgent(completer,
		agents.WithReActName(string(ToolExchange)),
		agents.WithReActTools(agents.ReActTool{
			Name:        rateTool.Title(),
			Description: rateTool.Description(),
			Run: func(ctx context.Context, input string) (string, error) {
				fields := strings.Fields(strings.ToUpper(strings.TrimSpace(input)))
				if len(fields) != 2 {
					return "Invalid pair.", nil
				}
				out, err := rateTool.Run(ctx, exchange.NewInput(fields[0], fields[1]))
				if err != nil {
					return "", err
				}
				return out.String(), nil
			},
		}),
	)
	return &reactHandle{
		name:         ToolExchange,
		agent:        agent,
		logger:       r.logger,
		defaultQuery: defaultExchangeQuery,
	}, nil
}

const defaultCalculatorQuery = "What is (12 + 4) * 3.5 - 1.25?"

func (r *Registry) calculatorHandle() (Handle, error) {
	client, err := r.cfg.Instructor()
	if err != nil {
		return nil, err
	}
	calc := calculator.New(
		tools.WithStartHook(func(ctx context.Context, t tools.ITool, input any) {
			r.logger.Debug("tool start", zap.String("tool", t.Title()))
		}),
		tools.WithEndHook(func(ctx context.Context, t tools.ITool, input, output any) {
			r.logger.Debug("tool end", zap.String("tool", t.Title()))
		}),
		tools.WithErrorHook(func(ctx context.Context, t tools.ITool, input any, err error) {
			r.logger.Error("tool failed", zap.String("tool", t.Title()), zap.Error(err))
		}),
	)
	agent := agents.NewToolAgent[schema.Input, calculator.Input, schema.Output](
		agents.WithClient(client),
		agents.WithModel(r.cfg.ChatModel),
		agents.WithTemperature(r.cfg.Temperature),
		agents.WithMaxTokens(r.cfg.MaxTokens),
		agents.WithName(string(ReactCalculator)),
	)
	agent.SetTool(tools.Orchestrate[calculator.Input, calculator.Output](calc))
	agent.Start().SetSystemPromptGenerator(cot.New(
		cot.WithBackground("You translate a user's math question into a calculator expression."),
		cot.WithSteps(
			"Identify the arithmetic expression in the question.",
			"Rewrite it using numbers, +, -, *, /, ** and parentheses only.",
		),
		cot.WithOutputInstructs("Fill the expression field with the bare expression and nothing else."),
	))
	agent.End().SetSystemPromptGenerator(simple.New(
		"You report the result of a calculation. The system context contains the numeric result. Reply with one short sentence stating it.",
	))
	return &calculatorRun{
		agent:        agent,
		logger:       r.logger,
		defaultQuery: defaultCalculatorQuery,
	}, nil
}

func (r *Registry) financialHandle(ctx context.Context, params Params) (Handle, error) {
	params = params.normalized()
	client, err := r.cfg.GeminiClient(ctx)
	if err != nil {
		return nil, err
	}
	completer := agents.NewGeminiCompleter(client, r.cfg.GeminiModel, financialTemperature)
	var stockOpts []stock.Option
	if r.cfg.StockBaseURL != "" {
		stockOpts = append(stockOpts, stock.WithBaseURL(r.cfg.StockBaseURL))
	}
	quote := stock.New(stockOpts...)
	var newsOpts []headlines.Option
	if r.cfg.NewsBaseURL != "" {
		newsOpts = append(newsOpts, headlines.WithBaseURL(r.cfg.NewsBaseURL))
	}
	news := headlines.New(newsOpts...)
	agent := agents.NewReActAgent(completer,
		agents.WithReActName(string(GeminiReact)),
		agents.WithReActPrompt(FinancialReActPrompt),
		agents.WithReActTools(
			agents.ReActTool{
				Name:        quote.Title(),
				Description: quote.Description(),
				Run: func(ctx context.Context, input string) (string, error) {
					out, err := quote.Run(ctx, stock.NewInput(input))
					if err != nil {
						return "", err
					}
					return out.String(), nil
				},
			},
			agents.ReActTool{
				Name:        news.Title(),
				Description: news.Description(),
				Run: func(ctx context.Context, input string) (string, error) {
					out, err := news.Run(ctx, headlines.NewInput(input, params.FreshDays, params.MaxHeadlines))
					if err != nil {
						return "", err
					}
					return out.String(), nil
				},
			},
		),
	)
	return &reactHandle{
		name:   GeminiReact,
		agent:  agent,
		logger: r.logger,
		defaultQuery: fmt.Sprintf("Get %s latest price and %d recent headlines (fresh=%dd).",
			params.Ticker, params.MaxHeadlines, params.FreshDays),
		post: func(out string) string {
			safe := FormatGuard(out, params.MaxHeadlines)
			rendered := FinalResultMarker + "\n" + safe
			if params.JSON {
				rendered += "\n" + ToJSON(safe)
			}
			return rendered
		},
	}, nil
}

// financialTemperature is a bit above the default to let the model rephrase
// headlines instead of echoing observations.
const financialTemperature float32 = 0.2

// reactHandle runs a plan-act-observe agent with optional output rewriting.
type reactHandle struct {
	name         Name
	agent        *agents.ReActAgent
	logger       *zap.Logger
	defaultQuery string
	post         func(string) string
}

func (h *reactHandle) Name() Name {
	return h.name
}

func (h *reactHandle) Run(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		query = h.defaultQuery
	}
	h.logger.Info("agent run", zap.String("agent", string(h.name)), zap.String("query", query))
	apiResp := new(components.ApiResponse)
	out, err := h.agent.Run(ctx, query, apiResp)
	if err != nil {
		h.logger.Error("agent failed", zap.String("agent", string(h.name)), zap.Error(err))
		return "", wrapUpstream(err)
	}
	logUsage(h.logger, string(h.name), apiResp)
	if h.post != nil {
		out = h.post(out)
	}
	return out, nil
}

// calculatorRun runs the calculator tool agent.
type calculatorRun struct {
	agent        *agents.ToolAgent[schema.Input, calculator.Input, schema.Output]
	logger       *zap.Logger
	defaultQuery string
}

func (h *calculatorRun) Name() Name {
	return ReactCalculator
}

func (h *calculatorRun) Run(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		query = h.defaultQuery
	}
	h.logger.Info("agent run", zap.String("agent", string(ReactCalculator)), zap.String("query", query))
	output := new(schema.Output)
	apiResp := new(components.ApiResponse)
	if err := h.agent.Run(ctx, schema.NewInput(query), output, apiResp); err != nil {
		h.logger.Error("agent failed", zap.String("agent", string(ReactCalculator)), zap.Error(err))
		return "", wrapUpstream(err)
	}
	logUsage(h.logger, string(ReactCalculator), apiResp)
	return output.ChatMessage, nil
}

func logUsage(logger *zap.Logger, agent string, apiResp *components.ApiResponse) {
	if apiResp == nil || apiResp.Usage == nil {
		return
	}
	logger.Debug("token usage",
		zap.String("agent", agent),
		zap.Int("input_tokens", apiResp.Usage.InputTokens),
		zap.Int("output_tokens", apiResp.Usage.OutputTokens),
	)
}

// FinancialReActPrompt steers the financial agent. Placeholders match the
// reasoning loop contract: {tools}, {tool_names}, {input}, {agent_scratchpad}.
const FinancialReActPrompt = `You are a precise financial assistant.

You have access to tools:
{tools}

Tool names: {tool_names}

Task:
1) Use tools to get the latest stock price for a ticker.
2) Use tools to fetch 3-5 very recent news headlines.
3) Produce the Final Answer in this exact format:
   - A single line with just the price like: "$123.45"
   - Then 3-5 bullets: "Title – host"

Rules:
- Do NOT copy/paste tool Observations verbatim.
- Headlines tool returns plain lines: "Title | full_link | host".
  Use only Title and host for the bullets ("Title – host").
  Do NOT include the raw URLs in the Final Answer.
- If no headlines, write one bullet: "No recent headlines found."
- Keep it concise. No extra commentary.

Follow ReAct:
Thought: ...
Action: one of {tool_names}
Action Input: ...
Observation: ...
(repeat as needed)

When done, output only:
Final Answer:
$<price>
- <Title 1> – <host 1>
- <Title 2> – <host 2>
- <Title 3> – <host 3>

Input question: {input}

{agent_scratchpad}`
