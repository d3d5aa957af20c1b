package websearch

import "context"

// Result is one web search hit.
type Result struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// SearchProvider defines the interface for web search backends.
type SearchProvider interface {
	Search(ctx context.Context, query string, num int) ([]Result, error)
}
