package stock

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bububa/multi-agents/schema"
	"github.com/bububa/multi-agents/tools"
)

// DefaultBaseURL is the keyless Stooq quote endpoint
const DefaultBaseURL = "https://stooq.com"

// Input Schema for input to a tool looking up the latest close price for a
// stock ticker, e.g. NVDA.
type Input struct {
	schema.Base
	// Ticker the stock symbol to look up
	Ticker string `json:"ticker" jsonschema:"title=ticker,description=Stock ticker symbol, e.g. NVDA." validate:"required"`
}

// NewInput returns a normalized stock quote Input
func NewInput(ticker string) *Input {
	return &Input{
		Ticker: strings.ToUpper(strings.TrimSpace(ticker)),
	}
}

// Output represents the latest quote for a ticker
type Output struct {
	schema.Base
	// Ticker the requested symbol
	Ticker string `json:"ticker" jsonschema:"title=ticker,description=Requested stock ticker."`
	// Price the latest daily close
	Price float64 `json:"price" jsonschema:"title=price,description=Latest daily close price."`
	// Source the provider symbol the quote came from, e.g. "Stooq NVDA.US"
	Source string `json:"source,omitempty" jsonschema:"title=source,description=Provider symbol the quote came from."`
}

// String renders the quote line the agents expect,
// e.g. "The latest price of NVDA is $181.85 (Stooq NVDA.US)."
func (o Output) String() string {
	return fmt.Sprintf("The latest price of %s is $%.2f (%s).", o.Ticker, o.Price, o.Source)
}

type Config struct {
	tools.Config
	baseURL    string
	httpClient *http.Client
}

// Tool fetches a daily price history CSV from Stooq and returns the last
// close. US tickers need a ".us" suffix on Stooq, so the bare symbol is tried
// first and the suffixed one second.
type Tool struct {
	Config
}

var _ tools.Tool[Input, Output] = (*Tool)(nil)

func New(opts ...Option) *Tool {
	ret := new(Tool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("StockPriceTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Latest close price for a stock ticker (e.g., NVDA).")
	}
	if ret.baseURL == "" {
		ret.baseURL = DefaultBaseURL
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	return ret
}

// Run looks up the latest close for the ticker.
func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	if input.Ticker == "" {
		return nil, errors.New("no ticker given")
	}
	sym := strings.ToLower(input.Ticker)
	var lastErr error
	for _, candidate := range []string{sym, sym + ".us"} {
		price, err := t.fetchLastClose(ctx, candidate)
		if err != nil {
			lastErr = err
			continue
		}
		return &Output{
			Ticker: input.Ticker,
			Price:  price,
			Source: fmt.Sprintf("Stooq %s", strings.ToUpper(candidate)),
		}, nil
	}
	return nil, fmt.Errorf("price lookup failed for %s: %w", input.Ticker, lastErr)
}

// fetchLastClose downloads the daily history CSV for a symbol and parses the
// close column of the final row.
func (t *Tool) fetchLastClose(ctx context.Context, sym string) (float64, error) {
	values := url.Values{}
	values.Set("s", sym)
	values.Set("i", "d")
	reqURL := fmt.Sprintf("%s/q/d/l/?%s", t.baseURL, values.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("error querying quote provider: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("non-200 response from quote provider: %d", httpResp.StatusCode)
	}
	records, err := csv.NewReader(httpResp.Body).ReadAll()
	if err != nil {
		return 0, err
	}
	if len(records) < 2 {
		return 0, fmt.Errorf("no price data returned for %s", sym)
	}
	closeIdx := -1
	for idx, col := range records[0] {
		if strings.EqualFold(col, "Close") {
			closeIdx = idx
			break
		}
	}
	if closeIdx < 0 {
		return 0, fmt.Errorf("no close column in quote data for %s", sym)
	}
	last := records[len(records)-1]
	if closeIdx >= len(last) {
		return 0, fmt.Errorf("malformed quote row for %s", sym)
	}
	price, err := strconv.ParseFloat(last[closeIdx], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed close price for %s: %w", sym, err)
	}
	return price, nil
}
