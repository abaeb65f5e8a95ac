package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTopK is the number of results returned when a caller does not say.
	DefaultTopK = 3

	// DefaultMinSimilarity is the similarity floor for plain searches.
	DefaultMinSimilarity = 0.3

	// AugmentTopK is the number of documents prepended by AugmentPrompt.
	AugmentTopK = 3

	// AugmentMinSimilarity is the similarity floor used by AugmentPrompt.
	AugmentMinSimilarity = 0.4

	// SimilarityWeight and KeywordWeight combine into the relevance score.
	SimilarityWeight = 0.7
	KeywordWeight    = 0.3
)

// ErrEmptyContent is returned when adding a document without content.
var ErrEmptyContent = errors.New("document content is empty")

// Persister durably records documents added at runtime.
type Persister interface {
	Append(ctx context.Context, doc Document) error
}

// Option configures a Store.
type Option func(*Store)

// WithEmbedder replaces the default HashEmbedder.
func WithEmbedder(embedder TextEmbedder) Option {
	return func(s *Store) {
		s.embedder = embedder
	}
}

// WithPersister makes AddDocument write through to p before the document
// becomes searchable.
func WithPersister(p Persister) Option {
	return func(s *Store) {
		s.persister = p
	}
}

// WithClock overrides the time source used for CreatedAt defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithIDGenerator overrides document id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// WithAugmentation overrides the result count and similarity floor used by
// AugmentPrompt. Non-positive values keep the defaults.
func WithAugmentation(topK int, minSimilarity float64) Option {
	return func(s *Store) {
		if topK > 0 {
			s.augmentTopK = topK
		}
		if minSimilarity > 0 {
			s.augmentMinSimilarity = minSimilarity
		}
	}
}

// Store is a concurrent in-memory document index. Documents are never
// removed.
type Store struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]*Document

	embedder  TextEmbedder
	persister Persister
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger

	augmentTopK          int
	augmentMinSimilarity float64
}

// NewStore creates a store holding seed.
func NewStore(seed []Document, opts ...Option) *Store {
	s := &Store{
		docs:     make(map[string]*Document),
		embedder: NewHashEmbedder(EmbeddingDimension),
		now:      time.Now,
		newID: func() string {
			return "doc_" + uuid.New().String()
		},
		logger:               slog.Default().With("component", "retrieval.store"),
		augmentTopK:          AugmentTopK,
		augmentMinSimilarity: AugmentMinSimilarity,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Seed(seed)
	return s
}

// Seed inserts documents that are not already present and returns how many
// were added. Documents without an id receive one. Missing embeddings are
// generated on first search.
func (s *Store) Seed(docs []Document) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = s.newID()
		}
		if _, exists := s.docs[doc.ID]; exists {
			continue
		}
		stored := doc.clone()
		s.docs[stored.ID] = &stored
		s.order = append(s.order, stored.ID)
		added++
	}

	if added > 0 {
		s.logger.Debug("documents seeded", "added", added, "total", len(s.order))
	}
	return added
}

// AddDocument assigns a fresh id, computes the embedding and stores doc.
// Any id or embedding on the input is ignored. When a Persister is
// configured the document is persisted first; a persistence failure leaves
// the store unchanged.
func (s *Store) AddDocument(ctx context.Context, doc Document) (Document, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return Document{}, ErrEmptyContent
	}
	if !doc.Metadata.Classification.Valid() {
		return Document{}, fmt.Errorf("%w: %q", ErrInvalidClassification, doc.Metadata.Classification)
	}

	stored := doc.clone()
	stored.ID = s.newID()
	stored.Embedding = s.embedder.Embed(stored.Content)
	if stored.Metadata.CreatedAt.IsZero() {
		stored.Metadata.CreatedAt = s.now().UTC()
	}

	if s.persister != nil {
		if err := s.persister.Append(ctx, stored); err != nil {
			return Document{}, fmt.Errorf("persist document: %w", err)
		}
	}

	s.mu.Lock()
	s.docs[stored.ID] = &stored
	s.order = append(s.order, stored.ID)
	s.mu.Unlock()

	s.logger.Info("document added",
		"document_id", stored.ID,
		"classification", stored.Metadata.Classification,
	)

	return stored.clone(), nil
}

// GetDocument returns the document with id if clearance ranks at or above
// its classification.
func (s *Store) GetDocument(id string, clearance Classification) (Document, error) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	var out Document
	if ok {
		out = doc.clone()
	}
	s.mu.RUnlock()

	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}

	if clearance.Rank() < out.Metadata.Classification.Rank() {
		return Document{}, &ClearanceError{
			DocumentID:     id,
			Classification: out.Metadata.Classification,
			Clearance:      clearance,
		}
	}

	return out, nil
}

// Search returns at most topK documents whose embedding similarity to query
// is at least minSimilarity, ordered by descending relevance score. Equal
// scores keep insertion order. Every classification is searched, which is
// what prompt augmentation needs.
func (s *Store) Search(query string, topK int, minSimilarity float64) []SearchResult {
	return s.search(query, topK, minSimilarity, Secret)
}

// SearchWithClearance is Search restricted to documents classified at or
// below clearance.
func (s *Store) SearchWithClearance(query string, topK int, minSimilarity float64, clearance Classification) []SearchResult {
	return s.search(query, topK, minSimilarity, clearance)
}

func (s *Store) search(query string, topK int, minSimilarity float64, clearance Classification) []SearchResult {
	if topK <= 0 {
		return []SearchResult{}
	}

	queryVec := s.embedder.Embed(query)
	queryWords := queryTerms(query)

	s.mu.RLock()
	snapshot := make([]Document, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, *s.docs[id])
	}
	s.mu.RUnlock()

	results := make([]SearchResult, 0)
	generated := make(map[string][]float64)
	for _, doc := range snapshot {
		if doc.Metadata.Classification.Rank() > clearance.Rank() {
			continue
		}

		vec := doc.Embedding
		if len(vec) == 0 {
			vec = s.embedder.Embed(doc.Content)
			generated[doc.ID] = vec
			doc.Embedding = vec
		}

		similarity := CosineSimilarity(queryVec, vec)
		if similarity < minSimilarity {
			continue
		}

		results = append(results, SearchResult{
			Document:       doc.clone(),
			Similarity:     similarity,
			RelevanceScore: similarity*SimilarityWeight + keywordOverlap(queryWords, doc.Content)*KeywordWeight,
		})
	}

	if len(generated) > 0 {
		s.cacheEmbeddings(generated)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// AugmentPrompt prepends the most relevant documents to query. The query is
// returned unchanged when nothing is relevant enough.
func (s *Store) AugmentPrompt(query string) string {
	results := s.Search(query, s.augmentTopK, s.augmentMinSimilarity)
	if len(results) == 0 {
		return query
	}

	blocks := make([]string, len(results))
	for i, result := range results {
		blocks[i] = fmt.Sprintf("[Context %d] (Relevance: %.1f%%)\n%s",
			i+1, result.RelevanceScore*100, result.Document.Content)
	}

	return "Based on the following relevant information:\n\n" +
		strings.Join(blocks, "\n\n") +
		"\n\n---\n\nUser Query: " + query
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// List returns copies of every document in insertion order.
func (s *Store) List() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0, len(s.order))
	for _, id := range s.order {
		docs = append(docs, s.docs[id].clone())
	}
	return docs
}

func (s *Store) cacheEmbeddings(generated map[string][]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, vec := range generated {
		if doc, ok := s.docs[id]; ok && len(doc.Embedding) == 0 {
			doc.Embedding = vec
		}
	}
}

// queryTerms lowercases query and splits it on whitespace. Leading and
// trailing whitespace yields no empty terms.
func queryTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// keywordOverlap returns the fraction of query words that occur as a
// substring of some content word.
func keywordOverlap(queryWords []string, content string) float64 {
	if len(queryWords) == 0 {
		return 0
	}

	contentWords := strings.Fields(strings.ToLower(content))
	matched := 0
	for _, qw := range queryWords {
		for _, cw := range contentWords {
			if strings.Contains(cw, qw) {
				matched++
				break
			}
		}
	}

	return float64(matched) / float64(len(queryWords))
}
