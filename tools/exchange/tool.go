package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bububa/multi-agents/schema"
	"github.com/bububa/multi-agents/tools"
)

// DefaultBaseURL is the keyless exchange rate provider endpoint
const DefaultBaseURL = "https://api.exchangerate-api.com"

// base aliases schema.Base so the embedded field name does not collide with
// the Base currency field on Input and Output.
type base = schema.Base

// Input Schema for input to a tool looking up the spot exchange rate between
// two currencies. Currency codes are ISO 4217, e.g. USD, EUR.
type Input struct {
	base
	// Base the currency to convert from
	Base string `json:"base" jsonschema:"title=base,description=Currency code to convert from, e.g. USD." validate:"required,len=3,alpha"`
	// Quote the currency to convert to
	Quote string `json:"quote" jsonschema:"title=quote,description=Currency code to convert to, e.g. EUR." validate:"required,len=3,alpha"`
}

// NewInput returns a normalized exchange rate Input
func NewInput(base, quote string) *Input {
	return &Input{
		Base:  strings.ToUpper(strings.TrimSpace(base)),
		Quote: strings.ToUpper(strings.TrimSpace(quote)),
	}
}

// Output represents the result of an exchange rate lookup
type Output struct {
	base
	// Base the currency converted from
	Base string `json:"base" jsonschema:"title=base,description=Currency code converted from."`
	// Quote the currency converted to
	Quote string `json:"quote" jsonschema:"title=quote,description=Currency code converted to."`
	// Rate units of quote currency per one unit of base currency
	Rate float64 `json:"rate" jsonschema:"title=rate,description=Units of quote currency per one unit of base currency."`
}

// String renders the canonical rate line, e.g. "1 USD = 0.93 EUR"
func (o Output) String() string {
	return fmt.Sprintf("1 %s = %s %s", o.Base, strconv.FormatFloat(o.Rate, 'f', -1, 64), o.Quote)
}

// ratesResponse is the provider payload for GET /v4/latest/{base}
type ratesResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

type Config struct {
	tools.Config
	baseURL    string
	httpClient *http.Client
}

// Tool looks up a spot exchange rate with a single provider request.
// No retries, no caching.
type Tool struct {
	Config
	validate *validator.Validate
}

var _ tools.Tool[Input, Output] = (*Tool)(nil)

func New(opts ...Option) *Tool {
	ret := new(Tool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("ExchangeRateConverter")
	}
	if ret.Description() == "" {
		ret.SetDescription("Returns the spot exchange rate for a currency pair like \"USD EUR\". Output is '1 USD = 0.93 EUR'.")
	}
	if ret.baseURL == "" {
		ret.baseURL = DefaultBaseURL
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	ret.validate = validator.New()
	return ret
}

// Run fetches the latest rates for the base currency and picks the quote.
func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	if err := t.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid currency pair %s/%s: %w", input.Base, input.Quote, err)
	}
	reqURL := fmt.Sprintf("%s/v4/latest/%s", t.baseURL, input.Base)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying exchange rate provider: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from exchange rate provider: %d", httpResp.StatusCode)
	}
	var rates ratesResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&rates); err != nil {
		return nil, err
	}
	rate, ok := rates.Rates[input.Quote]
	if !ok {
		return nil, fmt.Errorf("provider returned no %s rate for base %s", input.Quote, input.Base)
	}
	return &Output{
		Base:  input.Base,
		Quote: input.Quote,
		Rate:  rate,
	}, nil
}
