// Command agents launches one of the demo agents from the terminal or serves
// the browser UI.
//
// Run one agent:
//
//	agents -which gemini_react -ticker NVDA -max 4 -fresh 1 -json
//
// Serve the UI:
//
//	agents -serve -addr 127.0.0.1:7860
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/bububa/multi-agents/internal/config"
	"github.com/bububa/multi-agents/internal/dispatch"
	"github.com/bububa/multi-agents/internal/logging"
	"github.com/bububa/multi-agents/internal/webui"
)

func main() {
	var (
		which      = flag.String("which", "", "agent to run: react_calculator, gemini_react or tool_exchange")
		query      = flag.String("query", "", "question for the agent, empty for the agent's default")
		ticker     = flag.String("ticker", "", "ticker for gemini_react (e.g., NVDA)")
		maxBullets = flag.Int("max", 0, "headline count for gemini_react (1..5)")
		fresh      = flag.Int("fresh", 0, "recency window in days (1..7) for gemini_react")
		jsonOut    = flag.Bool("json", false, "ask gemini_react to also print JSON")
		serve      = flag.Bool("serve", false, "serve the browser UI instead of a one-shot run")
		addr       = flag.String("addr", "127.0.0.1:7860", "listen address for -serve")
		configPath = flag.String("config", "", "optional YAML config file")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail(err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fail(err)
	}
	defer logger.Sync()

	registry := dispatch.NewRegistry(cfg, logger)

	if *serve {
		server := webui.New(registry, logger)
		logger.Info("serving browser UI", zap.String("addr", *addr))
		if err := http.ListenAndServe(*addr, server.Handler()); err != nil {
			fail(err)
		}
		return
	}

	if *which == "" {
		fmt.Fprintln(os.Stderr, "Error: -which is required (or use -serve)")
		flag.Usage()
		os.Exit(2)
	}
	name, err := dispatch.ParseName(*which)
	if err != nil {
		fail(err)
	}
	out, err := registry.Run(context.Background(), name, *query, dispatch.Params{
		Ticker:       *ticker,
		MaxHeadlines: *maxBullets,
		FreshDays:    *fresh,
		JSON:         *jsonOut,
	})
	if err != nil {
		fail(err)
	}
	fmt.Println(out)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
