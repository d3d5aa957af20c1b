package tika

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"ai-salesagent-be/pkg/extract"
)

const (
	maxChars = 40000

	// Average extracted chars per page below this means the document
	// is most likely a scan with no text layer.
	minCharsPerPage = 50
)

// TikaExtractor implements DocumentExtractor and ScanDetector against an
// Apache Tika server (PUT /tika for text, PUT /meta for metadata).
type TikaExtractor struct {
	BaseURL string
	Client  *http.Client
}

var (
	_ extract.DocumentExtractor = &TikaExtractor{}
	_ extract.ScanDetector      = &TikaExtractor{}
)

func NewTikaExtractor(baseURL string) *TikaExtractor {
	if baseURL == "" {
		baseURL = "http://localhost:9998"
	}
	return &TikaExtractor{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func (t *TikaExtractor) ExtractText(ctx context.Context, doc []byte) (string, error) {
	body, err := t.put(ctx, "/tika", doc, "text/plain")
	if err != nil {
		return "", err
	}

	text := whitespaceRe.ReplaceAllString(string(body), " ")
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	return text, nil
}

func (t *TikaExtractor) LooksScanned(ctx context.Context, doc []byte) (bool, error) {
	meta, err := t.put(ctx, "/meta", doc, "application/json")
	if err != nil {
		// Unreadable by the parser: treat as scanned or malformed.
		return true, nil
	}

	var metaMap map[string]interface{}
	if err := json.Unmarshal(meta, &metaMap); err != nil {
		return true, nil
	}
	pages := metaPageCount(metaMap)
	if pages == 0 {
		return true, nil
	}

	text, err := t.ExtractText(ctx, doc)
	if err != nil {
		return true, nil
	}

	avg := float64(len(text)) / float64(pages)
	return avg < minCharsPerPage, nil
}

func metaPageCount(meta map[string]interface{}) int {
	for _, key := range []string{"xmpTPg:NPages", "meta:page-count", "Page-Count"} {
		switch v := meta[key].(type) {
		case float64:
			return int(v)
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return 0
}

func (t *TikaExtractor) put(ctx context.Context, path string, doc []byte, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "PUT", t.BaseURL+path, bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tika request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tika error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
