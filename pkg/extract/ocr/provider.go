package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"ai-salesagent-be/pkg/extract"
)

// HTTPOCRProvider implements OCRProvider against a tesseract-server style
// endpoint that accepts raw document bytes and returns recognized plain text.
type HTTPOCRProvider struct {
	Endpoint string
	Lang     string
	Client   *http.Client
}

var _ extract.OCRProvider = &HTTPOCRProvider{}

func NewHTTPOCRProvider(endpoint, lang string) *HTTPOCRProvider {
	if lang == "" {
		lang = "eng"
	}
	return &HTTPOCRProvider{
		Endpoint: endpoint,
		Lang:     lang,
		Client: &http.Client{
			Timeout: 180 * time.Second, // page-wise OCR is slow
		},
	}
}

func (p *HTTPOCRProvider) Recognize(ctx context.Context, doc []byte) (string, error) {
	if p.Endpoint == "" {
		return "", fmt.Errorf("ocr endpoint is not configured")
	}

	url := p.Endpoint + "?lang=" + p.Lang
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr error (status %d): %s", resp.StatusCode, string(body))
	}

	return CleanOCRText(string(body)), nil
}

var (
	dehyphenRe   = regexp.MustCompile(`-\s*\n\s*`)
	trailingWsRe = regexp.MustCompile(`\s+\n`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
	spaceRunRe   = regexp.MustCompile(`[ \t]{2,}`)
)

// CleanOCRText repairs line-break hyphenation and collapses whitespace noise
// typical of page-wise OCR output.
func CleanOCRText(text string) string {
	text = dehyphenRe.ReplaceAllString(text, "")
	text = trailingWsRe.ReplaceAllString(text, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	text = spaceRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
