package headlines

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/bububa/multi-agents/schema"
	"github.com/bububa/multi-agents/tools"
)

// DefaultBaseURL is the keyless Google News RSS endpoint
const DefaultBaseURL = "https://news.google.com"

// Input Schema for input to a tool fetching recent news headlines for a free
// text query, with a recency window in days.
type Input struct {
	schema.Base
	// Query the search query, e.g. "NVDA stock"
	Query string `json:"query" jsonschema:"title=query,description=News search query." validate:"required"`
	// FreshDays recency window in days for returned headlines
	FreshDays int `json:"fresh_days,omitempty" jsonschema:"title=fresh_days,description=Recency window in days."`
	// Max maximum number of headlines to return
	Max int `json:"max,omitempty" jsonschema:"title=max,description=Maximum number of headlines."`
}

// NewInput returns a headlines Input with defaulted windows
func NewInput(query string, freshDays, max int) *Input {
	if freshDays <= 0 {
		freshDays = 1
	}
	if max <= 0 {
		max = 4
	}
	return &Input{
		Query:     query,
		FreshDays: freshDays,
		Max:       max,
	}
}

// Item is a single headline
type Item struct {
	schema.Base
	// Title the cleaned headline title
	Title string `json:"title" jsonschema:"title=title,description=Headline title."`
	// Link the unwrapped article URL
	Link string `json:"link" jsonschema:"title=link,description=Article URL."`
	// Host the short source host, e.g. "reuters.com"
	Host string `json:"host" jsonschema:"title=host,description=Short source host."`
}

// Output represents the fetched headlines
type Output struct {
	schema.Base
	// Items the fetched headlines, newest first as returned by the feed
	Items []Item `json:"items,omitempty" jsonschema:"title=items,description=Fetched headlines."`
}

// String renders one "Title | link | host" line per headline. Agents are
// instructed to use only the title and host parts.
func (o Output) String() string {
	if len(o.Items) == 0 {
		return "No headlines found."
	}
	lines := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, fmt.Sprintf("%s | %s | %s", item.Title, item.Link, item.Host))
	}
	return strings.Join(lines, "\n")
}

// rssFeed is the subset of the RSS payload the tool consumes
type rssFeed struct {
	Items []rssItem `xml:"channel>item"`
}

type rssItem struct {
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type Config struct {
	tools.Config
	baseURL    string
	language   string
	country    string
	httpClient *http.Client
}

// Tool fetches recent headlines from the Google News RSS search feed.
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
		ret.SetTitle("NewsHeadlinesTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Returns up to N recent news headlines for a query, as plain 'Title | link | host' lines.")
	}
	if ret.baseURL == "" {
		ret.baseURL = DefaultBaseURL
	}
	if ret.language == "" {
		ret.language = "en-CA"
	}
	if ret.country == "" {
		ret.country = "CA"
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	return ret
}

// Run fetches and normalizes headlines for the query.
func (t *Tool) Run(ctx context.Context, input *Input) (*Output, error) {
	values := url.Values{}
	values.Set("q", fmt.Sprintf("%s when:%dd", input.Query, input.FreshDays))
	values.Set("hl", t.language)
	values.Set("gl", t.country)
	values.Set("ceid", fmt.Sprintf("%s:%s", t.country, shortLanguage(t.language)))
	reqURL := fmt.Sprintf("%s/rss/search?%s", t.baseURL, values.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying news feed: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from news feed: %d", httpResp.StatusCode)
	}
	var feed rssFeed
	if err := xml.NewDecoder(httpResp.Body).Decode(&feed); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(feed.Items))
	items := make([]Item, 0, input.Max)
	for _, entry := range feed.Items {
		title := cleanTitle(entry.Title)
		link := unwrapGoogleNews(strings.TrimSpace(entry.Link))
		if title == "" || link == "" {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		items = append(items, Item{
			Title: title,
			Link:  link,
			Host:  shortHost(link),
		})
		if len(items) >= input.Max {
			break
		}
	}
	return &Output{Items: items}, nil
}

var parentheticalRe = regexp.MustCompile(`\s*\([^)]+\)`)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// cleanTitle drops parentheticals like (NASDAQ:NVDA) and collapses spaces.
func cleanTitle(s string) string {
	s = parentheticalRe.ReplaceAllString(s, "")
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}

// unwrapGoogleNews resolves a news.google.com redirect link to its target
// when the target is carried in the "url" query parameter.
func unwrapGoogleNews(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return link
	}
	if !strings.HasSuffix(parsed.Host, "news.google.com") {
		return link
	}
	if target := parsed.Query().Get("url"); target != "" {
		return target
	}
	return link
}

// shortHost returns the article host without www./m. prefixes.
func shortHost(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return link
	}
	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	return host
}

func shortLanguage(lang string) string {
	if idx := strings.IndexByte(lang, '-'); idx > 0 {
		return lang[:idx]
	}
	return lang
}
