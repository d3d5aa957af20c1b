package answer

// Citation points at where a piece of the final answer came from.
type Citation struct {
	Type string `json:"type"` // "pdf" | "url"
	Ref  string `json:"ref"`
}

const (
	CitationPDF = "pdf"
	CitationURL = "url"
)

// RagPayload is the document-grounded candidate. Status stays "unknown" when
// RAG is disabled, the gate rejects the hits, or synthesis begs off with the
// insufficient-evidence marker.
type RagPayload struct {
	Status     string     `json:"status"` // "known" | "unknown"
	Summary    string     `json:"summary,omitempty"`
	Citations  []Citation `json:"citations,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
}

// CsePayload is the web-sourced candidate.
type CsePayload struct {
	Summary    string   `json:"summary"`
	Sources    []string `json:"sources"`
	Confidence float64  `json:"confidence"`
}

// FusedPayload is the short agreement/difference line produced when both
// candidates survive.
type FusedPayload struct {
	Comparator string `json:"comparator"`
	Summary    string `json:"summary"`
}

// Result is the full payload of one answered question.
type Result struct {
	Rag            RagPayload    `json:"rag"`
	Cse            CsePayload    `json:"cse"`
	Fused          *FusedPayload `json:"fused,omitempty"`
	FinalAnswer    string        `json:"final_answer"`
	FinalCitations []Citation    `json:"final_citations"`
}

// SidePayload is one side of a comparison answer.
type SidePayload struct {
	Summary    string   `json:"summary"`
	Sources    []string `json:"sources"`
	Confidence float64  `json:"confidence"`
}

// MatrixRow is one row of the comparison matrix. Citation index lists are
// simple 0..len(urls) ranges, not content-matched.
type MatrixRow struct {
	Dimension string `json:"dimension"`
	AValue    string `json:"a_value"`
	BValue    string `json:"b_value"`
	ACites    []int  `json:"a_cites"`
	BCites    []int  `json:"b_cites"`
}

// CompareResult is the payload of one comparison question. A and B are empty
// objects when comparison was never initialized.
type CompareResult struct {
	A              interface{} `json:"A"`
	B              interface{} `json:"B"`
	Matrix         []MatrixRow `json:"matrix"`
	Comparator     string      `json:"comparator,omitempty"`
	Recommendation string      `json:"recommendation"`
}

// InitTopicResult reports the state after topic (re)initialization.
type InitTopicResult struct {
	Topic       interface{} `json:"topic"`
	RagEnabled  bool        `json:"rag_enabled"`
	IndexStatus string      `json:"index_status"` // "ready" | "disabled_or_empty"
}

const (
	IndexStatusReady    = "ready"
	IndexStatusDisabled = "disabled_or_empty"
)
