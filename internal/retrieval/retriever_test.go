package retrieval

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// stubEmbedder embeds texts deterministically: each known text gets its
// own axis so inner-product ranking is exact.
type stubEmbedder struct {
	axes map[string]int
	dim  int
	fail bool
}

func newStubEmbedder(texts ...string) *stubEmbedder {
	axes := make(map[string]int, len(texts))
	for i, txt := range texts {
		axes[txt] = i
	}
	return &stubEmbedder{axes: axes, dim: len(texts)}
}

func (s *stubEmbedder) CreateEmbeddings(_ context.Context, _ string, input []string) ([][]float64, error) {
	if s.fail {
		return nil, fmt.Errorf("embedding service down")
	}
	out := make([][]float64, len(input))
	for i, txt := range input {
		vec := make([]float64, s.dim)
		if axis, ok := s.axes[txt]; ok {
			vec[axis] = 1
		}
		out[i] = vec
	}
	return out, nil
}

const testDoc = "# FAQ\n\n## Cancellation Policy\nCancellations allowed up to 24 hours before departure.\n\n## Baggage Rules\nOne carry-on bag is included."

func testSections() []string {
	return SplitSections(testDoc)
}

func TestSplitSections(t *testing.T) {
	sections := testSections()
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d: %q", len(sections), sections)
	}
	if !strings.HasPrefix(sections[1], "## Cancellation Policy") {
		t.Fatalf("heading not kept with section: %q", sections[1])
	}
	if !strings.HasPrefix(sections[2], "## Baggage Rules") {
		t.Fatalf("heading not kept with section: %q", sections[2])
	}
}

func TestQueryRoundTrip(t *testing.T) {
	sections := testSections()
	emb := newStubEmbedder(sections...)
	r, err := NewRetriever(context.Background(), emb, "emb", testDoc)
	if err != nil {
		t.Fatalf("NewRetriever failed: %v", err)
	}

	// Querying with the literal chunk text must rank that chunk first.
	chunks := r.Query(context.Background(), sections[2], 2)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != sections[2] {
		t.Fatalf("expected round-trip chunk first, got %q", chunks[0].Text)
	}
}

func TestLookupJoinsChunks(t *testing.T) {
	sections := testSections()
	emb := newStubEmbedder(sections...)
	r, err := NewRetriever(context.Background(), emb, "emb", testDoc)
	if err != nil {
		t.Fatalf("NewRetriever failed: %v", err)
	}

	answer := r.Lookup(context.Background(), sections[1], 2)
	if !strings.Contains(answer, ChunkSeparator) {
		t.Fatalf("expected joined chunks, got %q", answer)
	}
	if !strings.Contains(answer, "Cancellation Policy") {
		t.Fatalf("expected cancellation section, got %q", answer)
	}
}

func TestLookupEmbeddingFailure(t *testing.T) {
	sections := testSections()
	emb := newStubEmbedder(sections...)
	r, err := NewRetriever(context.Background(), emb, "emb", testDoc)
	if err != nil {
		t.Fatalf("NewRetriever failed: %v", err)
	}

	emb.fail = true
	answer := r.Lookup(context.Background(), "anything", 2)
	if answer != NoResultsMessage {
		t.Fatalf("expected no-results message, got %q", answer)
	}
}

func TestLookupNilRetriever(t *testing.T) {
	var r *Retriever
	answer := r.Lookup(context.Background(), "anything", 2)
	if answer != UnavailableMessage {
		t.Fatalf("expected unavailable message, got %q", answer)
	}
}

func TestNewRetrieverEmbedFailure(t *testing.T) {
	emb := &stubEmbedder{fail: true}
	if _, err := NewRetriever(context.Background(), emb, "emb", testDoc); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFetchFAQSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testDoc)
	}))
	defer server.Close()

	doc := FetchFAQ(server.URL, time.Second)
	if doc != testDoc {
		t.Fatalf("unexpected document: %q", doc)
	}
}

func TestFetchFAQFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	doc := FetchFAQ(server.URL, time.Second)
	if doc != FallbackFAQ {
		t.Fatalf("expected fallback document, got %q", doc)
	}

	if doc = FetchFAQ("http://127.0.0.1:1", 100*time.Millisecond); doc != FallbackFAQ {
		t.Fatalf("expected fallback document on unreachable source, got %q", doc)
	}
}
