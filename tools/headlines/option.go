package headlines

import "net/http"

type Option func(*Config)

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.baseURL = baseURL
	}
}

// WithLocale sets the feed language (e.g. "en-CA") and country (e.g. "CA")
func WithLocale(language, country string) Option {
	return func(c *Config) {
		c.language = language
		c.country = country
	}
}

func WithHTTPClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}
