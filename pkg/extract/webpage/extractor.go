package webpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"ai-salesagent-be/pkg/extract"
)

const maxChars = 120000

// WebPageExtractor implements PageExtractor with a plain HTTP fetch
// and an HTML tokenizer pass that drops markup plus script/style bodies.
type WebPageExtractor struct {
	Client    *http.Client
	UserAgent string
}

var _ extract.PageExtractor = &WebPageExtractor{}

func NewWebPageExtractor() *WebPageExtractor {
	return &WebPageExtractor{
		Client: &http.Client{
			Timeout: 12 * time.Second,
		},
		UserAgent: "Mozilla/5.0",
	}
}

func (w *WebPageExtractor) ExtractMainText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", w.UserAgent)

	resp, err := w.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("page fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page fetch error (status %d): %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return "", fmt.Errorf("read page body: %w", err)
	}

	text := StripHTML(string(body))
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	return text, nil
}

// StripHTML walks the token stream keeping text nodes only,
// skipping over script, style and noscript subtrees.
func StripHTML(page string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(page))

	var sb strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skippedTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skippedTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				sb.Write(tokenizer.Text())
				sb.WriteByte(' ')
			}
		}
	}
}

func skippedTag(name string) bool {
	switch name {
	case "script", "style", "noscript":
		return true
	}
	return false
}
