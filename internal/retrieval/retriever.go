// Package retrieval provides semantic nearest-neighbor search over the
// company policy FAQ corpus.
package retrieval

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"
)

// UnavailableMessage is returned for every lookup when the retriever
// failed to initialize.
const UnavailableMessage = "Policy lookup is currently unavailable. Please try again later."

// NoResultsMessage is returned when retrieval yields nothing relevant.
const NoResultsMessage = "No relevant policy information found. Please contact customer service."

// ChunkSeparator joins retrieved chunks in a lookup answer.
const ChunkSeparator = "\n\n---\n\n"

// FallbackFAQ is the built-in placeholder corpus used when the FAQ
// document cannot be fetched at startup.
const FallbackFAQ = "# Company FAQ\n\n## Cancellation Policy\nCancellations allowed up to 24 hours before departure."

// Embedder turns a batch of texts into embedding vectors.
type Embedder interface {
	CreateEmbeddings(ctx context.Context, model string, input []string) ([][]float64, error)
}

// Chunk is one immutable section of the policy corpus.
type Chunk struct {
	Text      string
	Embedding []float64
	Ordinal   int
}

// Retriever ranks policy chunks against a query embedding by inner
// product. The corpus is fixed after construction.
type Retriever struct {
	chunks   []Chunk
	embedder Embedder
	model    string
}

// FetchFAQ downloads the FAQ document. On any failure it returns the
// built-in fallback document instead of an error so startup never fails
// on an unreachable source.
func FetchFAQ(url string, timeout time.Duration) string {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		log.Printf("WARN: failed to fetch FAQ, using fallback: %v", err)
		return FallbackFAQ
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("WARN: FAQ fetch returned %d, using fallback", resp.StatusCode)
		return FallbackFAQ
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("WARN: failed to read FAQ body, using fallback: %v", err)
		return FallbackFAQ
	}
	return string(body)
}

// SplitSections splits a markdown document at "##" section boundaries.
// The heading stays attached to its section.
func SplitSections(doc string) []string {
	parts := strings.Split(doc, "\n##")
	var sections []string
	for i, p := range parts {
		if i > 0 {
			p = "##" + p
		}
		if s := strings.TrimSpace(p); s != "" {
			sections = append(sections, s)
		}
	}
	return sections
}

// NewRetriever embeds the corpus sections and builds the flat index.
func NewRetriever(ctx context.Context, embedder Embedder, model, doc string) (*Retriever, error) {
	sections := SplitSections(doc)
	if len(sections) == 0 {
		return nil, fmt.Errorf("policy corpus is empty")
	}

	vectors, err := embedder.CreateEmbeddings(ctx, model, sections)
	if err != nil {
		return nil, fmt.Errorf("failed to embed policy corpus: %w", err)
	}

	chunks := make([]Chunk, len(sections))
	for i, s := range sections {
		chunks[i] = Chunk{Text: s, Embedding: vectors[i], Ordinal: i}
	}
	log.Printf("Policy retriever ready with %d sections", len(chunks))
	return &Retriever{chunks: chunks, embedder: embedder, model: model}, nil
}

// Query returns the k chunks most similar to the query. Embedding-service
// failures are converted to an empty result, never an error.
func (r *Retriever) Query(ctx context.Context, query string, k int) []Chunk {
	vectors, err := r.embedder.CreateEmbeddings(ctx, r.model, []string{query})
	if err != nil {
		log.Printf("ERROR: policy query embedding failed: %v", err)
		return nil
	}
	queryVec := vectors[0]

	type scored struct {
		chunk Chunk
		score float64
	}
	ranked := make([]scored, len(r.chunks))
	for i, c := range r.chunks {
		ranked[i] = scored{chunk: c, score: dot(queryVec, c.Embedding)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]Chunk, k)
	for i := 0; i < k; i++ {
		out[i] = ranked[i].chunk
	}
	return out
}

// Lookup answers a policy question with the top-k chunk texts joined by a
// visible separator. A nil retriever and an empty retrieval both degrade
// to fixed messages; this path never returns a hard failure.
func (r *Retriever) Lookup(ctx context.Context, query string, k int) string {
	if r == nil {
		return UnavailableMessage
	}
	chunks := r.Query(ctx, query, k)
	if len(chunks) == 0 {
		return NoResultsMessage
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, ChunkSeparator)
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
