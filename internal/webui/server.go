// Package webui serves the browser front end of the launcher: an agent
// picker with the financial tuning knobs and a run endpoint.
package webui

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/bububa/multi-agents/internal/config"
	"github.com/bububa/multi-agents/internal/dispatch"
)

// Server exposes the launcher over HTTP.
type Server struct {
	registry *dispatch.Registry
	logger   *zap.Logger
	tmpl     *template.Template
	requests atomic.Int64
}

// New returns a new Server instance
func New(registry *dispatch.Registry, logger *zap.Logger) *Server {
	return &Server{
		registry: registry,
		logger:   logger,
		tmpl:     template.Must(template.New("index").Parse(indexTemplate)),
	}
}

// Handler builds the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/run", s.handleRun)
	return mux
}

// Requests reports how many run requests the server has accepted.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Agents []dispatch.Name
	}{
		Agents: dispatch.Names(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		s.logger.Error("render index", zap.Error(err))
	}
}

// runRequest is the POST /api/run payload
type runRequest struct {
	Agent        string `json:"agent"`
	Query        string `json:"query,omitempty"`
	Ticker       string `json:"ticker,omitempty"`
	MaxHeadlines int    `json:"max_headlines,omitempty"`
	FreshDays    int    `json:"fresh_days,omitempty"`
	JSON         bool   `json:"json,omitempty"`
}

type runResponse struct {
	Agent  string `json:"agent"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	s.requests.Inc()
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, runResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	name, err := dispatch.ParseName(req.Agent)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, runResponse{Agent: req.Agent, Error: err.Error()})
		return
	}
	params := dispatch.Params{
		Ticker:       req.Ticker,
		MaxHeadlines: req.MaxHeadlines,
		FreshDays:    req.FreshDays,
		JSON:         req.JSON,
	}
	out, err := s.registry.Run(r.Context(), name, req.Query, params)
	if err != nil {
		s.logger.Error("run failed", zap.String("agent", string(name)), zap.Error(err))
		writeJSON(w, statusFor(err), runResponse{Agent: string(name), Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, runResponse{Agent: string(name), Output: out})
}

// statusFor maps the error taxonomy to HTTP statuses: bad name 400, bad
// configuration 500, provider or tool failure 502.
func statusFor(err error) int {
	var missing *config.MissingKeyError
	switch {
	case errors.Is(err, dispatch.ErrUnknownAgent):
		return http.StatusBadRequest
	case errors.As(err, &missing):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Multi-Agent Launcher</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
label { display: block; margin-top: .75rem; }
input, select { width: 100%; padding: .4rem; }
#gemini-only { border: 1px solid #ddd; padding: .5rem 1rem 1rem; margin-top: 1rem; }
button { margin-top: 1rem; padding: .5rem 1.5rem; }
pre { background: #f6f6f6; padding: 1rem; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>Multi-Agent Launcher</h1>
<label>Agent
<select id="agent">
{{- range .Agents}}
<option value="{{.}}">{{.}}</option>
{{- end}}
</select>
</label>
<label>Question (optional, each agent has a default)
<input id="query" type="text" placeholder="leave empty for the default question">
</label>
<div id="gemini-only">
<label>Ticker <input id="ticker" type="text" value="NVDA"></label>
<label>Max headlines (1-5) <input id="max" type="number" min="1" max="5" value="4"></label>
<label>Recency in days (1-7) <input id="fresh" type="number" min="1" max="7" value="1"></label>
<label><input id="json" type="checkbox" style="width:auto"> Also render JSON</label>
</div>
<button id="run">Run Agent</button>
<pre id="output"></pre>
<script>
const agent = document.getElementById("agent");
const geminiOnly = document.getElementById("gemini-only");
function toggle() { geminiOnly.style.display = agent.value === "gemini_react" ? "" : "none"; }
agent.addEventListener("change", toggle);
toggle();
document.getElementById("run").addEventListener("click", async () => {
  const output = document.getElementById("output");
  output.textContent = "running...";
  const body = {
    agent: agent.value,
    query: document.getElementById("query").value,
    ticker: document.getElementById("ticker").value,
    max_headlines: parseInt(document.getElementById("max").value, 10) || 0,
    fresh_days: parseInt(document.getElementById("fresh").value, 10) || 0,
    json: document.getElementById("json").checked,
  };
  try {
    const resp = await fetch("/api/run", {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify(body),
    });
    const data = await resp.json();
    output.textContent = data.error ? "Error: " + data.error : data.output;
  } catch (err) {
    output.textContent = "Error: " + err;
  }
});
</script>
</body>
</html>`
