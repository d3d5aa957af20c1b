package googlecse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ai-salesagent-be/pkg/websearch"
)

const endpoint = "https://www.googleapis.com/customsearch/v1"

// CSEProvider implements SearchProvider on the Google Custom Search JSON API.
type CSEProvider struct {
	ApiKey string
	CxID   string
	Client *http.Client
}

var _ websearch.SearchProvider = &CSEProvider{}

func NewCSEProvider(apiKey, cxID string) *CSEProvider {
	return &CSEProvider{
		ApiKey: apiKey,
		CxID:   cxID,
		Client: &http.Client{
			Timeout: 12 * time.Second,
		},
	}
}

type cseResponse struct {
	Items []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"items"`
}

func (p *CSEProvider) Search(ctx context.Context, query string, num int) ([]websearch.Result, error) {
	if p.ApiKey == "" || p.CxID == "" {
		return nil, fmt.Errorf("google cse credentials are not configured")
	}
	if num > 10 {
		num = 10 // API maximum per request
	}

	params := url.Values{}
	params.Set("key", p.ApiKey)
	params.Set("cx", p.CxID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cse request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cse error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var cseResp cseResponse
	if err := json.Unmarshal(bodyBytes, &cseResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]websearch.Result, 0, len(cseResp.Items))
	for _, it := range cseResp.Items {
		if it.Link == "" {
			continue
		}
		results = append(results, websearch.Result{Title: it.Title, Link: it.Link})
	}
	return results, nil
}
