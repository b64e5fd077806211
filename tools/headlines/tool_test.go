package headlines

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>search results</title>
<item><title>Nvidia Hits Record High (NASDAQ:NVDA)</title><link>https://news.google.com/articles/abc?url=https%3A%2F%2Fwww.reuters.com%2Fnvda-record</link></item>
<item><title>Nvidia Hits Record High (NASDAQ:NVDA)</title><link>https://news.google.com/articles/dup?url=https%3A%2F%2Fwww.cnbc.com%2Fnvda</link></item>
<item><title>Chipmakers   Rally On AI Demand</title><link>https://m.bloomberg.com/chip-rally</link></item>
<item><title>Markets Close Mixed</title><link>https://www.ft.com/markets-close</link></item>
<item><title>Extra Headline Beyond Cap</title><link>https://example.com/extra</link></item>
</channel></rss>`

func startFeedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "NVDA stock when:2d" {
			t.Errorf("unexpected feed query %q", got)
		}
		fmt.Fprint(w, body)
	}))
}

func TestHeadlines(t *testing.T) {
	ctx := context.Background()
	srv := startFeedServer(t, sampleFeed)
	defer srv.Close()
	tool := New(WithBaseURL(srv.URL))
	out, err := tool.Run(ctx, NewInput("NVDA stock", 2, 3))
	if err != nil {
		t.Fatalf("Error running headlines tool: %v", err)
	}
	if len(out.Items) != 3 {
		t.Fatalf("Expect 3 headlines, but got %d", len(out.Items))
	}
	first := out.Items[0]
	if first.Title != "Nvidia Hits Record High" {
		t.Errorf("Expect cleaned title, but got %q", first.Title)
	}
	if first.Link != "https://www.reuters.com/nvda-record" {
		t.Errorf("Expect unwrapped link, but got %q", first.Link)
	}
	if first.Host != "reuters.com" {
		t.Errorf("Expect short host reuters.com, but got %q", first.Host)
	}
	if second := out.Items[1]; second.Host != "bloomberg.com" {
		t.Errorf("Expect m. prefix stripped, but got %q", second.Host)
	}
	if second := out.Items[1]; second.Title != "Chipmakers Rally On AI Demand" {
		t.Errorf("Expect collapsed spaces, but got %q", second.Title)
	}
}

func TestHeadlinesEmptyFeed(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>empty</title></channel></rss>`)
	}))
	defer srv.Close()
	tool := New(WithBaseURL(srv.URL))
	out, err := tool.Run(ctx, NewInput("nothing", 1, 4))
	if err != nil {
		t.Fatalf("Error running headlines tool: %v", err)
	}
	if got := out.String(); got != "No headlines found." {
		t.Errorf("Expect fallback line, but got %q", got)
	}
}

func TestHeadlinesFeedFailure(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	tool := New(WithBaseURL(srv.URL))
	if _, err := tool.Run(ctx, NewInput("NVDA", 1, 4)); err == nil {
		t.Error("Expect error on feed failure")
	}
}
