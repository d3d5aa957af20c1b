package extract

import "context"

// DocumentExtractor pulls plain text out of an uploaded document (PDF bytes).
type DocumentExtractor interface {
	ExtractText(ctx context.Context, doc []byte) (string, error)
}

// ScanDetector decides whether a document is a scan (image-only) and needs OCR.
type ScanDetector interface {
	LooksScanned(ctx context.Context, doc []byte) (bool, error)
}

// OCRProvider recognizes text from a scanned document.
type OCRProvider interface {
	Recognize(ctx context.Context, doc []byte) (string, error)
}

// PageExtractor fetches a URL and extracts its readable main text.
type PageExtractor interface {
	ExtractMainText(ctx context.Context, pageURL string) (string, error)
}
