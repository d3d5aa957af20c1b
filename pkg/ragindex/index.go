package ragindex

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"ai-salesagent-be/pkg/embedding"
)

// Chunking parameters: word windows of ChunkSize words, consecutive windows
// sharing Overlap words so a fact split at a boundary survives in one piece.
const (
	ChunkSize = 800
	Overlap   = 150
)

// RetrievalHit is one scored chunk. Score is cosine similarity, a plain dot
// product since stored vectors and query vectors are unit-normalized.
type RetrievalHit struct {
	Chunk string  `json:"chunk"`
	Score float64 `json:"score"`
}

// ChunkWords splits text on whitespace and walks it with an overlapping word
// window. Every word lands in at least one chunk.
func ChunkWords(text string, chunkSize, overlap int) []string {
	words := strings.Fields(strings.TrimSpace(text))
	if len(words) == 0 {
		return nil
	}

	step := chunkSize - overlap
	if step < 1 {
		step = 1
	}

	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// Index is a small in-memory vector index over one document: the parallel
// array of chunk strings and their unit-normalized embeddings. Exhaustive
// scan retrieval; a target document yields a few hundred chunks at most.
type Index struct {
	provider embedding.EmbeddingProvider
	chunks   []string
	vectors  [][]float32
}

func NewIndex(provider embedding.EmbeddingProvider) *Index {
	return &Index{provider: provider}
}

// Build rebuilds the index from scratch, discarding any prior state.
func (idx *Index) Build(text string) error {
	idx.chunks = nil
	idx.vectors = nil

	chunks := ChunkWords(text, ChunkSize, Overlap)
	if len(chunks) == 0 {
		return nil
	}

	responses, err := idx.provider.GenerateBatch(chunks, embedding.TaskRetrievalDocument)
	if err != nil {
		return fmt.Errorf("chunk embedding failed: %w", err)
	}
	if len(responses) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(responses), len(chunks))
	}

	vectors := make([][]float32, len(responses))
	for i, res := range responses {
		vectors[i] = normalize(res.Embedding.Values)
	}

	idx.chunks = chunks
	idx.vectors = vectors
	return nil
}

// Retrieve returns the top-k chunks by cosine similarity, descending, ties
// broken by original chunk order. Empty if the index was never built or was
// built on empty text.
func (idx *Index) Retrieve(query string, k int) ([]RetrievalHit, error) {
	if len(idx.chunks) == 0 {
		return nil, nil
	}

	res, err := idx.provider.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	q := normalize(res.Embedding.Values)

	order := make([]int, len(idx.chunks))
	scores := make([]float64, len(idx.chunks))
	for i := range idx.chunks {
		order[i] = i
		scores[i] = dot(idx.vectors[i], q)
	}

	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	hits := make([]RetrievalHit, k)
	for i := 0; i < k; i++ {
		hits[i] = RetrievalHit{Chunk: idx.chunks[order[i]], Score: scores[order[i]]}
	}
	return hits, nil
}

// Len reports the number of indexed chunks.
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// Chunks returns the indexed chunk texts in original order.
func (idx *Index) Chunks() []string {
	return idx.chunks
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
